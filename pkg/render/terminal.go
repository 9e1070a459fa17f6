// Package render presents questions and answers in the terminal.
//
// Renderer is the seam between the REPL and the presentation: tabular
// answers go to Table, everything else to Text. Terminal is the lipgloss
// implementation; free text is run through glamour so markdown in answers
// (lists, emphasis, code) renders properly.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/entrhq/hawk/pkg/table"
)

// Level selects the style of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// Renderer displays one turn.
type Renderer interface {
	// Question shows the question an answer belongs to.
	Question(q string)
	// Table shows a tabular answer.
	Table(t table.Table)
	// Text shows a free-text answer.
	Text(s string)
	// Status shows a one-line progress or diagnostic message.
	Status(level Level, msg string)
}

const ruleWidth = 60

// Terminal renders with lipgloss to a writer.
type Terminal struct {
	w         io.Writer
	styles    styles
	width     int
	markdown  bool
	glamStyle string
	animate   bool

	mu   sync.Mutex
	live *tea.Program
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithWidth sets the wrap width for free text and tables. Zero leaves
// content unwrapped.
func WithWidth(n int) TerminalOption {
	return func(t *Terminal) {
		t.width = n
	}
}

// WithMarkdown enables glamour rendering of free text using the named
// standard style ("dark", "light", "notty", ...).
func WithMarkdown(style string) TerminalOption {
	return func(t *Terminal) {
		t.markdown = true
		t.glamStyle = style
	}
}

// WithSpinner enables the animated spinner in Spin.
func WithSpinner(enabled bool) TerminalOption {
	return func(t *Terminal) {
		t.animate = enabled
	}
}

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		w:      w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Banner prints the startup banner.
func (t *Terminal) Banner(name string) {
	rule := t.styles.banner.Render(strings.Repeat("=", ruleWidth))
	title := t.styles.title.Render(fmt.Sprintf("%16s🚀 %s IS GETTING STARTED 🚀", "", strings.ToUpper(name)))
	fmt.Fprintf(t.w, "\n%s\n%s\n%s\n\n", rule, title, rule)
}

// Rule prints a horizontal separator between turns.
func (t *Terminal) Rule() {
	fmt.Fprintln(t.w, t.styles.rule.Render(strings.Repeat("─", ruleWidth)))
}

// Prompt writes the REPL prompt without a trailing newline.
func (t *Terminal) Prompt() {
	fmt.Fprintf(t.w, "\n%s (%s): ", t.styles.prompt.Render("💭 Your question"), t.styles.hint.Render("'quit' to exit"))
}

// Question implements Renderer.
func (t *Terminal) Question(q string) {
	body := t.styles.questionMark.Render("Q:") + " " + q
	fmt.Fprintf(t.w, "\n%s\n\n", t.styles.question.Render(body))
}

// Table implements Renderer.
func (t *Terminal) Table(tbl table.Table) {
	tw := ltable.New().
		Border(lipgloss.DoubleBorder()).
		BorderStyle(t.styles.tableBorder).
		Headers(tbl.Header...).
		Rows(tbl.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return t.styles.header
			}
			return t.styles.columns[col%len(t.styles.columns)]
		})
	if t.width > 0 {
		tw = tw.Width(t.width - 4)
	}

	content := t.styles.tableTitle.Render("📊 Comparison Table") + "\n" + tw.String()
	fmt.Fprintf(t.w, "%s\n\n", t.styles.tablePanel.Render(content))
}

// Text implements Renderer.
func (t *Terminal) Text(s string) {
	body := strings.TrimSpace(s)
	if t.markdown {
		if rendered, err := t.renderMarkdown(body); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}

	content := t.styles.textTitle.Render("🤖 Response") + "\n" + body
	fmt.Fprintf(t.w, "%s\n\n", t.styles.textPanel.Render(content))
}

func (t *Terminal) renderMarkdown(s string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(t.glamStyle)}
	if t.width > 0 {
		opts = append(opts, glamour.WithWordWrap(t.width-4))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(s)
}

// Status implements Renderer.
func (t *Terminal) Status(level Level, msg string) {
	style := t.styles.info
	switch level {
	case LevelSuccess:
		style = t.styles.success
	case LevelWarn:
		style = t.styles.warn
	case LevelError:
		style = t.styles.err
	}
	line := style.Render(msg)
	if t.printLive(line) {
		return
	}
	fmt.Fprintln(t.w, line)
}

// Display parses answer and shows it as a table when it is tabular, as free
// text otherwise, after echoing the question.
func Display(r Renderer, question, answer string) {
	r.Question(question)
	if parsed := table.Parse(answer); parsed.IsTabular() {
		r.Table(parsed)
		return
	}
	r.Text(answer)
}
