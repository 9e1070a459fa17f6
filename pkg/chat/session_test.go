package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/hawk/internal/testing/surfacetest"
	"github.com/entrhq/hawk/pkg/clock"
	"github.com/entrhq/hawk/pkg/completion"
	"github.com/entrhq/hawk/pkg/extract"
	"github.com/entrhq/hawk/pkg/table"
)

// mockPage records calls so tests can prove what was not touched.
type mockPage struct {
	mock.Mock
}

func (m *mockPage) Submit(ctx context.Context, input string) (bool, error) {
	args := m.Called(ctx, input)
	return args.Bool(0), args.Error(1)
}

func (m *mockPage) VisibleText(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockPage) Query(ctx context.Context, script string, arg any) (string, bool, error) {
	args := m.Called(ctx, script, arg)
	return args.String(0), args.Bool(1), args.Error(2)
}

func newTestSession(page Page, opts ...Option) (*Session, *clock.Fake) {
	fake := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(fake)}, opts...)
	return NewSession(page, opts...), fake
}

func TestAskComparisonEndToEnd(t *testing.T) {
	answer := "| Feature | A | B |\n|---|---|---|\n| Speed | Fast | Slow |"
	page := surfacetest.NewPage()
	page.Texts = []string{"loading", "loading more", "done", "done", "done"}
	page.Elements[extract.SelectorMessageContent] = []surfacetest.Element{{Text: answer}}

	var events []Event
	s, fake := newTestSession(page, WithObserver(func(ev Event, detail string) {
		events = append(events, ev)
	}))
	start := fake.Now()

	question := "What is the difference between A and B?"
	ans, err := s.Ask(context.Background(), question)
	require.NoError(t, err)

	assert.Equal(t, question, ans.Question)
	assert.Equal(t, KindComparison, ans.Kind)
	assert.Equal(t, OutcomeAnswered, ans.Outcome)
	assert.Equal(t, "message-content", ans.Strategy)
	assert.True(t, ans.Stable)
	assert.Equal(t, answer, ans.Text)

	submitted := page.Submitted()
	require.Len(t, submitted, 1)
	assert.True(t, strings.HasPrefix(submitted[0], question))
	assert.Contains(t, submitted[0], TableDirective)

	parsed := table.Parse(ans.Text)
	assert.Equal(t, []string{"Feature", "A", "B"}, parsed.Header)
	assert.Equal(t, [][]string{{"Speed", "Fast", "Slow"}}, parsed.Rows)

	assert.Equal(t, []Event{EventSending, EventSent}, events)
	assert.Less(t, fake.Now().Sub(start), completion.DefaultTimeout)
}

func TestAskGeneralQuestionSendsQuestionVerbatim(t *testing.T) {
	page := surfacetest.NewPage()
	page.Texts = []string{"stable page"}
	page.Elements[extract.SelectorMessageContent] = []surfacetest.Element{{Text: "This article argues that naps are good."}}

	s, _ := newTestSession(page)
	ans, err := s.Ask(context.Background(), "Summarize this article")
	require.NoError(t, err)

	assert.Equal(t, KindGeneral, ans.Kind)
	assert.Equal(t, []string{"Summarize this article"}, page.Submitted())
	assert.False(t, table.Parse(ans.Text).IsTabular())
}

func TestAskSubmitNotFoundShortCircuits(t *testing.T) {
	page := &mockPage{}
	page.On("Submit", mock.Anything, "hello there").Return(false, nil)

	var failure string
	s, fake := newTestSession(page, WithObserver(func(ev Event, detail string) {
		if ev == EventSendFailed {
			failure = detail
		}
	}))

	ans, err := s.Ask(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Equal(t, FailedToSend, ans.Text)
	assert.Equal(t, OutcomeSendFailed, ans.Outcome)
	assert.Equal(t, "could not find input element", failure)
	page.AssertExpectations(t)
	page.AssertNotCalled(t, "VisibleText", mock.Anything)
	page.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []time.Duration{DefaultSubmitDelay}, fake.Sleeps(), "no polling or settling after a failed submit")
}

func TestAskSubmitErrorShortCircuits(t *testing.T) {
	page := &mockPage{}
	page.On("Submit", mock.Anything, mock.Anything).Return(false, errors.New("page crashed"))

	s, _ := newTestSession(page)
	ans, err := s.Ask(context.Background(), "Compare X and Y")
	require.NoError(t, err)

	assert.Equal(t, FailedToSend, ans.Text)
	page.AssertNotCalled(t, "VisibleText", mock.Anything)
}

func TestAskTimeoutStillExtracts(t *testing.T) {
	page := surfacetest.NewPage()
	var growing []string
	for i := 0; i < 100; i++ {
		growing = append(growing, strings.Repeat("z", i+1))
	}
	page.Texts = growing
	page.Elements[extract.SelectorModelResponse] = []surfacetest.Element{{Text: "A partial answer that is long enough."}}

	var timedOut bool
	s, fake := newTestSession(page, WithTimeout(10*time.Second), WithObserver(func(ev Event, _ string) {
		if ev == EventTimedOut {
			timedOut = true
		}
	}))
	start := fake.Now()

	ans, err := s.Ask(context.Background(), "Tell me a story")
	require.NoError(t, err)

	assert.False(t, ans.Stable)
	assert.True(t, timedOut)
	assert.Equal(t, "A partial answer that is long enough.", ans.Text)
	assert.GreaterOrEqual(t, fake.Now().Sub(start), 10*time.Second)
}

func TestAskExhausted(t *testing.T) {
	page := surfacetest.NewPage()
	page.Texts = []string{"Menu"}

	var fellBack bool
	s, _ := newTestSession(page, WithObserver(func(ev Event, _ string) {
		fellBack = fellBack || ev == EventFallback
	}))

	ans, err := s.Ask(context.Background(), "Anything?")
	require.NoError(t, err)
	assert.Equal(t, extract.Sentinel, ans.Text)
	assert.Equal(t, OutcomeExhausted, ans.Outcome)
	assert.True(t, fellBack)
}

func TestAskFallback(t *testing.T) {
	page := surfacetest.NewPage()
	page.Texts = []string{"Sign in\nThe only substantial line of the reply."}

	s, _ := newTestSession(page)
	ans, err := s.Ask(context.Background(), "Anything?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, ans.Outcome)
	assert.Equal(t, "The only substantial line of the reply.", ans.Text)
}

func TestAskCancelled(t *testing.T) {
	page := surfacetest.NewPage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newTestSession(page)
	_, err := s.Ask(ctx, "Anything?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.Submitted())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "answered", OutcomeAnswered.String())
	assert.Equal(t, "fallback", OutcomeFallback.String())
	assert.Equal(t, "exhausted", OutcomeExhausted.String())
	assert.Equal(t, "send-failed", OutcomeSendFailed.String())
}
