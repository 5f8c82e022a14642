package console

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const ellipsis = "…"

type column struct {
	header string
	width  int
}

// table renders rows into a fixed-width bordered ASCII layout. Cells wider
// than the column are truncated, never wrapped.
type table struct {
	columns []column
	rows    [][]string
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	sep := t.separator()
	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.header
	}
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, t.formatRow(headers))
	fmt.Fprintln(w, sep)
	for _, row := range t.rows {
		fmt.Fprintln(w, t.formatRow(row))
	}
	fmt.Fprintln(w, sep)
}

func (t *table) separator() string {
	var b strings.Builder
	for _, c := range t.columns {
		b.WriteString("+")
		b.WriteString(strings.Repeat("-", c.width+2))
	}
	b.WriteString("+")
	return b.String()
}

func (t *table) formatRow(cells []string) string {
	var b strings.Builder
	for i, c := range t.columns {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if cell == "" {
			cell = "N/A"
		}
		b.WriteString("| ")
		b.WriteString(pad(truncate(cell, c.width), c.width))
		b.WriteString(" ")
	}
	b.WriteString("|")
	return b.String()
}

// truncate cuts s to width-2 runes plus an ellipsis when it does not fit.
// The result never exceeds width runes.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	keep := width - 2
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + ellipsis
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
