package extract

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// markupText flattens an HTML fragment to text, dropping script-like
// elements and putting block-level elements and table rows on their own
// lines. Table cells are joined with " | " so tables survive as text the
// table parser can read.
func markupText(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return tidyLines(b.String()), nil
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		switch {
		case tag == "br":
			b.WriteString("\n")
			return
		case tag == "tr":
			writeRow(b, n)
			return
		case isBlockElement(tag):
			b.WriteString("\n")
			defer b.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
}

// writeRow writes a table row as "| a | b |".
func writeRow(b *strings.Builder, tr *html.Node) {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		var cell strings.Builder
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			writeNode(&cell, cc)
		}
		cells = append(cells, strings.Join(strings.Fields(cell.String()), " "))
	}
	if len(cells) == 0 {
		return
	}
	b.WriteString("\n| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

// collapseSpace turns whitespace runs, including newlines, into single spaces.
func collapseSpace(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(words, " ")
	if unicode.IsSpace(rune(s[0])) {
		out = " " + out
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

// tidyLines trims every line and collapses runs of blank lines.
func tidyLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "embed", "object", "svg", "button", "template":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "header", "footer", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "thead", "tbody",
		"blockquote", "pre", "hr", "message-content":
		return true
	}
	return false
}
