// Package table finds a pipe-delimited (markdown style) table in free text.
//
// Parsing is best effort: any line containing the cell delimiter takes part,
// alignment lines such as "|---|:--:|" are dropped wherever they appear, the
// first remaining line becomes the header and the rest become rows. Text
// without delimited lines parses to an empty Table, which callers treat as
// plain prose.
package table

import (
	"strings"
)

// Delimiter separates cells within a line.
const Delimiter = "|"

// alignment is the punctuation allowed in a separator cell.
const alignment = "-:"

// Table is a header plus rows, every row normalized to the header's length.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// IsTabular reports whether the table has a header and at least one row.
// A non-tabular result should be rendered as free text.
func (t Table) IsTabular() bool {
	return len(t.Header) > 0 && len(t.Rows) > 0
}

// Parse extracts the first table found in text.
func Parse(text string) Table {
	var t Table

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, Delimiter) {
			continue
		}

		cells := splitCells(line)
		if len(cells) == 0 || isSeparator(cells) {
			continue
		}

		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}

	for i, row := range t.Rows {
		t.Rows[i] = normalize(row, len(t.Header))
	}
	return t
}

// splitCells splits a trimmed line on the delimiter and trims each cell. The
// empty cells produced by a leading or trailing delimiter are dropped; empty
// cells in the middle are kept so columns stay aligned.
func splitCells(line string) []string {
	parts := strings.Split(line, Delimiter)
	if strings.HasPrefix(line, Delimiter) {
		parts = parts[1:]
	}
	if strings.HasSuffix(line, Delimiter) && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparator reports whether every cell is made only of alignment punctuation.
func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, alignment+" \t") != "" {
			return false
		}
	}
	return true
}

func normalize(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// Markdown renders the table back to pipe-delimited text. Parse(t.Markdown())
// yields t again unless a row is entirely empty.
func (t Table) Markdown() string {
	if len(t.Header) == 0 {
		return ""
	}

	var b strings.Builder
	writeLine(&b, t.Header)

	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeLine(&b, sep)

	for _, row := range t.Rows {
		writeLine(&b, row)
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	b.WriteString(Delimiter)
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(" ")
		b.WriteString(Delimiter)
	}
	b.WriteString("\n")
}
