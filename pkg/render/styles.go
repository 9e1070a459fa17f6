package render

import "github.com/charmbracelet/lipgloss"

// Color palette. Single source of truth for terminal colors.
var (
	cyan    = lipgloss.Color("#67E8F9") // questions, table borders, banner rules
	green   = lipgloss.Color("#A8E6CF") // success, table panel
	yellow  = lipgloss.Color("#FDE68A") // free-text panel, warnings
	blue    = lipgloss.Color("#93C5FD")
	magenta = lipgloss.Color("#F0ABFC") // banner title
	red     = lipgloss.Color("#FFB3BA") // errors
	muted   = lipgloss.Color("#6B7280") // rules, hints
)

// columnColors cycle across table columns.
var columnColors = []lipgloss.Color{green, yellow, blue, magenta}

// styles are bound to one lipgloss renderer so color detection follows the
// output writer rather than os.Stdout.
type styles struct {
	question     lipgloss.Style
	questionMark lipgloss.Style
	tablePanel   lipgloss.Style
	textPanel    lipgloss.Style
	tableTitle   lipgloss.Style
	textTitle    lipgloss.Style
	tableBorder  lipgloss.Style
	header       lipgloss.Style
	columns      []lipgloss.Style

	banner  lipgloss.Style
	title   lipgloss.Style
	rule    lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	prompt  lipgloss.Style
	hint    lipgloss.Style
	spinner lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	s := styles{
		question: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(0, 1),
		questionMark: r.NewStyle().Foreground(cyan).Bold(true),
		tablePanel: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(green).
			Padding(0, 1),
		textPanel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(yellow).
			Padding(0, 1),
		tableTitle:  r.NewStyle().Foreground(green).Bold(true),
		textTitle:   r.NewStyle().Foreground(yellow).Bold(true),
		tableBorder: r.NewStyle().Foreground(cyan),
		header:      r.NewStyle().Foreground(cyan).Bold(true).Padding(0, 1),

		banner:  r.NewStyle().Foreground(cyan).Bold(true),
		title:   r.NewStyle().Foreground(magenta).Bold(true),
		rule:    r.NewStyle().Foreground(muted),
		info:    r.NewStyle().Foreground(cyan),
		success: r.NewStyle().Foreground(green),
		warn:    r.NewStyle().Foreground(yellow),
		err:     r.NewStyle().Foreground(red),
		prompt:  r.NewStyle().Foreground(cyan).Bold(true),
		hint:    r.NewStyle().Foreground(red),
		spinner: r.NewStyle().Foreground(cyan),
	}
	for _, c := range columnColors {
		s.columns = append(s.columns, r.NewStyle().Foreground(c).Padding(0, 1))
	}
	return s
}
