// Package surface defines the capabilities hawk needs from a live chat page.
//
// A Surface is a rendered, mutating document owned by a single caller. The
// core packages only read from it (completion, extract) or hand it a prompt
// (chat); how the page is driven is up to the implementation.
package surface

import "context"

// Sampler reads the full visible text of the page.
type Sampler interface {
	VisibleText(ctx context.Context) (string, error)
}

// Querier runs an extraction script in the page. The bool result is false
// when the script produced no value (null or undefined).
type Querier interface {
	Query(ctx context.Context, script string, arg any) (string, bool, error)
}

// Submitter types input into the page's prompt field and sends it. It
// returns false when no input field could be found.
type Submitter interface {
	Submit(ctx context.Context, input string) (bool, error)
}

// Surface is the full capability set of a chat page.
type Surface interface {
	Sampler
	Querier
	Submitter

	// Navigate loads url in the page.
	Navigate(ctx context.Context, url string) error

	// Close releases the page and everything backing it.
	Close() error
}
