package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/hawk/pkg/chat"
	"github.com/entrhq/hawk/pkg/render"
	"github.com/entrhq/hawk/pkg/table"
)

type fakeAsker struct {
	answers   map[string]chat.Answer
	err       error
	questions []string
}

func (a *fakeAsker) Ask(ctx context.Context, q string) (chat.Answer, error) {
	a.questions = append(a.questions, q)
	if a.err != nil {
		return chat.Answer{Question: q}, a.err
	}
	if ans, ok := a.answers[q]; ok {
		return ans, nil
	}
	return chat.Answer{Question: q, Text: "An answer to " + q, Outcome: chat.OutcomeAnswered}, nil
}

type fakeConsole struct {
	events   []string
	statuses []string
	spins    []string
	tables   []table.Table
	texts    []string
}

func (c *fakeConsole) Question(q string) { c.events = append(c.events, "question:"+q) }
func (c *fakeConsole) Table(t table.Table) { c.events = append(c.events, "table"); c.tables = append(c.tables, t) }
func (c *fakeConsole) Text(s string) { c.events = append(c.events, "text"); c.texts = append(c.texts, s) }
func (c *fakeConsole) Prompt() { c.events = append(c.events, "prompt") }
func (c *fakeConsole) Rule() { c.events = append(c.events, "rule") }
func (c *fakeConsole) Status(l render.Level, msg string) {
	c.events = append(c.events, "status")
	c.statuses = append(c.statuses, msg)
}

func (c *fakeConsole) Spin(ctx context.Context, label string, fn func(context.Context) error) error {
	c.spins = append(c.spins, label)
	return fn(ctx)
}

func TestRunAnswersUntilQuit(t *testing.T) {
	asker := &fakeAsker{}
	console := &fakeConsole{}
	e := NewExecutor(asker, console, WithReader(strings.NewReader("What is Go?\n  QUIT  \nnever asked\n")))

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"What is Go?"}, asker.questions)
	assert.Equal(t, []string{ThinkingLabel}, console.spins)
	assert.Equal(t, []string{"prompt", "question:What is Go?", "text", "rule", "prompt"}, console.events)
	assert.Equal(t, []string{"An answer to What is Go?"}, console.texts)
}

func TestRunEOFEndsLoop(t *testing.T) {
	asker := &fakeAsker{}
	e := NewExecutor(asker, &fakeConsole{}, WithReader(strings.NewReader("first\nsecond")))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []string{"first", "second"}, asker.questions)
}

func TestRunKeepsQuestionWhitespace(t *testing.T) {
	asker := &fakeAsker{}
	console := &fakeConsole{}
	e := NewExecutor(asker, console, WithReader(strings.NewReader("  indented question \r\n")))

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"  indented question "}, asker.questions)
	assert.Contains(t, console.events, "question:  indented question ")
}

func TestReadLinesStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan line)
	done := make(chan struct{})
	go func() {
		readLines(ctx, strings.NewReader("unread\nlines\n"), out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after cancellation")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestRunBlankInputReprompts(t *testing.T) {
	asker := &fakeAsker{}
	console := &fakeConsole{}
	e := NewExecutor(asker, console, WithReader(strings.NewReader("   \nexit\n")))

	require.NoError(t, e.Run(context.Background()))

	assert.Empty(t, asker.questions)
	assert.Equal(t, []string{"Please enter a question"}, console.statuses)
	assert.Equal(t, []string{"prompt", "status", "prompt"}, console.events)
}

func TestRunTabularAnswer(t *testing.T) {
	q := "Compare Go vs Rust"
	asker := &fakeAsker{answers: map[string]chat.Answer{
		q: {Text: "| Feature | Go | Rust |\n|---|---|---|\n| GC | yes | no |", Outcome: chat.OutcomeAnswered},
	}}
	console := &fakeConsole{}
	e := NewExecutor(asker, console, WithReader(strings.NewReader(q+"\n")))

	require.NoError(t, e.Run(context.Background()))

	require.Len(t, console.tables, 1)
	assert.Equal(t, []string{"Feature", "Go", "Rust"}, console.tables[0].Header)
	assert.Equal(t, [][]string{{"GC", "yes", "no"}}, console.tables[0].Rows)
}

func TestRunSendFailureIsDisplayed(t *testing.T) {
	asker := &fakeAsker{answers: map[string]chat.Answer{
		"hi": {Text: chat.FailedToSend, Outcome: chat.OutcomeSendFailed},
	}}
	console := &fakeConsole{}
	e := NewExecutor(asker, console, WithReader(strings.NewReader("hi\n")))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []string{chat.FailedToSend}, console.texts)
}

func TestRunCancelledAsk(t *testing.T) {
	asker := &fakeAsker{err: context.Canceled}
	e := NewExecutor(asker, &fakeConsole{}, WithReader(strings.NewReader("hi\nmore\n")))

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"hi"}, asker.questions)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asker := &fakeAsker{}
	e := NewExecutor(asker, &fakeConsole{}, WithReader(strings.NewReader("hi\n")))

	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
	assert.Empty(t, asker.questions)
}

func TestCopyAnswers(t *testing.T) {
	var copied []string
	copier := func(s string) error {
		copied = append(copied, s)
		return nil
	}

	t.Run("copies answered", func(t *testing.T) {
		copied = nil
		console := &fakeConsole{}
		e := NewExecutor(&fakeAsker{}, console,
			WithReader(strings.NewReader("hi\n")),
			WithCopyAnswers(true),
			WithCopier(copier))

		require.NoError(t, e.Run(context.Background()))
		assert.Equal(t, []string{"An answer to hi"}, copied)
		assert.Contains(t, console.statuses, "📋 Answer copied to clipboard")
	})

	t.Run("skips sentinel", func(t *testing.T) {
		copied = nil
		asker := &fakeAsker{answers: map[string]chat.Answer{
			"hi": {Text: "nothing", Outcome: chat.OutcomeExhausted},
		}}
		e := NewExecutor(asker, &fakeConsole{},
			WithReader(strings.NewReader("hi\n")),
			WithCopyAnswers(true),
			WithCopier(copier))

		require.NoError(t, e.Run(context.Background()))
		assert.Empty(t, copied)
	})

	t.Run("copy failure is a warning", func(t *testing.T) {
		console := &fakeConsole{}
		e := NewExecutor(&fakeAsker{}, console,
			WithReader(strings.NewReader("hi\n")),
			WithCopyAnswers(true),
			WithCopier(func(string) error { return errors.New("no clipboard") }))

		require.NoError(t, e.Run(context.Background()))
		assert.Contains(t, console.statuses, "Could not copy answer to clipboard")
	})
}

func TestIsQuit(t *testing.T) {
	for _, in := range []string{"quit", "EXIT", " q ", "Quit\n"} {
		assert.True(t, IsQuit(in), in)
	}
	for _, in := range []string{"", "quite", "exit now", "qq"} {
		assert.False(t, IsQuit(in), in)
	}
}

func TestStatusObserver(t *testing.T) {
	console := &fakeConsole{}
	observe := StatusObserver(console)

	observe(chat.EventSending, "What is Go?")
	observe(chat.EventSent, "")
	observe(chat.EventSendFailed, chat.ReasonNoInput)
	observe(chat.EventSendFailed, "page crashed")
	observe(chat.EventFallback, "")

	assert.Equal(t, []string{
		"Sending: What is Go?",
		"✓ Message sent successfully",
		"❌ Could not find input element",
		"Error sending message: page crashed",
		"Using fallback extraction...",
	}, console.statuses)
}
