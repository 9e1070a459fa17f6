package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// DefaultNoiseTokens are words that mark a line as page chrome rather than
// answer text: navigation labels, sign-in prompts and compose affordances.
var DefaultNoiseTokens = []string{
	"gemini", "google", "sign in", "menu", "settings", "new chat", "send", "type",
}

// NoiseFilter decides which whole-page lines are chrome.
type NoiseFilter struct {
	tokens   []string
	patterns []glob.Glob
}

// NewNoiseFilter builds a filter from substring tokens plus glob patterns
// (for example "*cookie*"). Matching is case-insensitive.
func NewNoiseFilter(tokens []string, patterns []string) (*NoiseFilter, error) {
	f := &NoiseFilter{}
	for _, t := range tokens {
		f.tokens = append(f.tokens, strings.ToLower(t))
	}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid noise pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

// DefaultNoiseFilter uses DefaultNoiseTokens and no patterns.
func DefaultNoiseFilter() *NoiseFilter {
	f, _ := NewNoiseFilter(DefaultNoiseTokens, nil)
	return f
}

// IsNoise reports whether line should be dropped.
func (f *NoiseFilter) IsNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, t := range f.tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	for _, g := range f.patterns {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// pageTail keeps the last limit lines of page that are longer than minLength
// and not noise.
func (f *NoiseFilter) pageTail(page string, minLength, limit int) string {
	var kept []string
	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minLength || f.IsNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return strings.Join(kept, "\n")
}
