package completeness

import (
	"strings"
	"unicode/utf8"
)

// methodHeader is the header of the row-label column.
const methodHeader = "Method"

// Markdown renders the matrix as a markdown table. Supported cells show
// present, unsupported cells show absent. Every column is padded to its
// widest cell so the source stays readable.
func (m *Matrix) Markdown(present, absent string) string {
	header := append([]string{methodHeader}, m.Columns...)
	body := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		line := make([]string, 0, len(header))
		line = append(line, r.Method)
		for _, ok := range r.Cells {
			if ok {
				line = append(line, present)
			} else {
				line = append(line, absent)
			}
		}
		body = append(body, line)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(utf8.RuneCountInString(h), len(separator))
	}
	for _, line := range body {
		for i, cell := range line {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder
	writeLine(&b, header, widths)
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = separator
	}
	writeLine(&b, seps, widths)
	for _, line := range body {
		writeLine(&b, line, widths)
	}
	return b.String()
}

const separator = "---"

func writeLine(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
