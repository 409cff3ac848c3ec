// Package render formats trace results, decoded mapping tables, and
// diagnostics for terminal output. It is the CLI's only lipgloss
// consumer — pkg/sourcemap and pkg/diagnostic return plain data/strings
// so they stay usable from a non-terminal caller (the query server).
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sourcemapgo/tracemap/pkg/diagnostic"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	foundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	caretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// OriginalPosition renders an OriginalPositionFor result as a labeled
// key/value block, or a bold red "not found" marker when the query missed.
func OriginalPosition(pos sourcemap.OriginalPosition) string {
	if !pos.Found {
		return missStyle.Render("not found")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("source:"), valueStyle.Render(pos.Source))
	fmt.Fprintf(&b, "%s %s:%s\n", labelStyle.Render("position:"),
		valueStyle.Render(strconv.Itoa(pos.Line)), valueStyle.Render(strconv.Itoa(pos.Column)))
	if pos.HasName {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("name:"), valueStyle.Render(pos.Name))
	}
	return b.String()
}

// GeneratedPosition renders a GeneratedPositionFor result.
func GeneratedPosition(pos sourcemap.GeneratedPosition) string {
	if !pos.Found {
		return missStyle.Render("not found")
	}
	return fmt.Sprintf("%s %s:%s\n", labelStyle.Render("position:"),
		valueStyle.Render(strconv.Itoa(pos.Line)), valueStyle.Render(strconv.Itoa(pos.Column)))
}

// MappingsTable renders a fixed-width table of decoded mappings, one row
// per segment, in the order EachMapping delivers them.
func MappingsTable(mappings []sourcemap.Mapping) string {
	var b strings.Builder
	cols := []string{"GEN LINE", "GEN COL", "SOURCE", "ORIG LINE", "ORIG COL", "NAME"}
	b.WriteString(headerStyle.Render(padRow(cols, colWidths)) + "\n")
	b.WriteString(borderStyle.Render(strings.Repeat("-", rowWidth(colWidths))) + "\n")

	for _, m := range mappings {
		source := "-"
		if m.HasSource {
			source = m.Source
		}
		origLine, origCol := "-", "-"
		if m.HasSource {
			origLine = strconv.Itoa(m.OriginalLine)
			origCol = strconv.Itoa(m.OriginalColumn)
		}
		name := "-"
		if m.HasName {
			name = m.Name
		}
		row := []string{
			strconv.Itoa(m.GeneratedLine), strconv.Itoa(m.GeneratedColumn),
			source, origLine, origCol, name,
		}
		b.WriteString(padRow(row, colWidths) + "\n")
	}
	return b.String()
}

var colWidths = []int{9, 8, 24, 10, 9, 16}

func rowWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w + 1
	}
	return total
}

func padRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		w := widths[0]
		if i < len(widths) {
			w = widths[i]
		}
		if len(cell) > w {
			cell = cell[:w-1] + "…"
		}
		fmt.Fprintf(&b, "%-*s ", w, cell)
	}
	return strings.TrimRight(b.String(), " ")
}

// SourcesList renders a flattened map's resolved source list, marking
// entries that carry embedded sourcesContent.
func SourcesList(tm *sourcemap.TraceMap) string {
	var b strings.Builder
	for i, src := range tm.ResolvedSources {
		marker := dimStyle.Render("(no content)")
		if _, ok := tm.SourceContentFor(deref(tm.Sources, i)); ok {
			marker = foundStyle.Render("(embedded content)")
		}
		fmt.Fprintf(&b, "%s %s %s\n", labelStyle.Render(fmt.Sprintf("[%d]", i)), valueStyle.Render(src), marker)
	}
	return b.String()
}

func deref(sources []*string, i int) string {
	if i < 0 || i >= len(sources) || sources[i] == nil {
		return ""
	}
	return *sources[i]
}

// Diagnostic re-renders a diagnostic.SourceError's plain Format() output
// with the header and caret line colorized.
func Diagnostic(e *diagnostic.SourceError) string {
	lines := strings.Split(e.Format(), "\n")
	var b strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Error:"):
			b.WriteString(missStyle.Render(line))
		case strings.Contains(line, "^"):
			b.WriteString(caretLine(line))
		case strings.HasPrefix(line, "Suggestion:"):
			b.WriteString(foundStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// caretLine colorizes only the run of "^" characters in a snippet's
// underline row, leaving the leading gutter and indentation untouched.
func caretLine(line string) string {
	idx := strings.IndexByte(line, '^')
	if idx < 0 {
		return line
	}
	end := idx
	for end < len(line) && line[end] == '^' {
		end++
	}
	return line[:idx] + caretStyle.Render(line[idx:end]) + line[end:]
}
