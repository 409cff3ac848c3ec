// Package diagnostic renders rustc-style error messages anchored to an
// original source position recovered through a sourcemap.TraceMap, the
// same presentation pkg/errors builds around a go/token.Position but keyed
// off a generated position traced back through a source map instead.
package diagnostic

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

// SourceError is one diagnostic, anchored to an original (source, line,
// column) recovered via OriginalPositionFor.
type SourceError struct {
	Message string
	File    string
	Line    int // 1-indexed
	Column  int // 1-indexed
	Length  int // span length, for the underline

	SourceLines   []string
	HighlightLine int // index into SourceLines carrying the error

	Annotation string
	Suggestion string
}

// sourceCache caches original-file contents read from disk when a map
// carries no sourcesContent for the traced source. Keyed by resolved
// source path.
var (
	sourceCache   = make(map[string][]string)
	sourceCacheMu sync.RWMutex
)

// FromGeneratedPosition traces a 1-based generated line / 0-based column
// through tm and builds a SourceError at the resulting original position.
// When the trace misses (OriginalPosition.Found is false), the returned
// error still carries message but with no source context.
func FromGeneratedPosition(tm *sourcemap.TraceMap, genLine, genCol int, message string) (*SourceError, error) {
	pos, err := tm.OriginalPositionFor(genLine, genCol, sourcemap.GreatestLowerBound)
	if err != nil {
		return nil, err
	}
	if !pos.Found {
		return &SourceError{Message: message, File: "unknown", Length: 1}, nil
	}

	lines, highlight := sourceContext(tm, pos.Source, pos.Line, 2)
	return &SourceError{
		Message:       message,
		File:          pos.Source,
		Line:          pos.Line,
		Column:        pos.Column + 1,
		Length:        1,
		SourceLines:   lines,
		HighlightLine: highlight,
	}, nil
}

// WithAnnotation sets the text shown after the "^^^^" underline.
func (e *SourceError) WithAnnotation(annotation string) *SourceError {
	e.Annotation = annotation
	return e
}

// WithSuggestion sets a multi-line suggestion block shown below the
// snippet.
func (e *SourceError) WithSuggestion(suggestion string) *SourceError {
	e.Suggestion = suggestion
	return e
}

// Format produces the rustc-style rendering: a header line, an optional
// source snippet with a caret underline, then any suggestion.
func (e *SourceError) Format() string {
	var buf strings.Builder

	if e.Line > 0 {
		fmt.Fprintf(&buf, "Error: %s in %s:%d:%d\n\n", e.Message, filepath.Base(e.File), e.Line, e.Column)
	} else {
		fmt.Fprintf(&buf, "Error: %s\n\n", e.Message)
	}

	if len(e.SourceLines) > 0 && e.Line > 0 {
		startLine := e.Line - e.HighlightLine

		for i, line := range e.SourceLines {
			lineNum := startLine + i
			fmt.Fprintf(&buf, "  %4d | %s\n", lineNum, line)

			if i != e.HighlightLine {
				continue
			}
			caretIndent := utf8.RuneCountInString(line[:min(e.Column-1, len(line))])
			caretLen := e.Length
			if caretLen < 1 {
				caretLen = 1
			}
			fmt.Fprintf(&buf, "       | %s%s", strings.Repeat(" ", caretIndent), strings.Repeat("^", caretLen))
			if e.Annotation != "" {
				fmt.Fprintf(&buf, " %s", e.Annotation)
			}
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&buf, "Suggestion: %s\n", e.Suggestion)
	}

	return buf.String()
}

// Error implements the error interface.
func (e *SourceError) Error() string { return e.Format() }

// sourceContext returns up to contextLines lines of source on either side
// of targetLine (1-indexed), preferring the map's embedded sourcesContent
// and falling back to a cached disk read of the resolved source path.
func sourceContext(tm *sourcemap.TraceMap, source string, targetLine, contextLines int) ([]string, int) {
	var allLines []string
	if content, ok := tm.SourceContentFor(source); ok {
		allLines = strings.Split(content, "\n")
	} else {
		allLines = readCachedFile(source)
	}
	if allLines == nil {
		return nil, 0
	}

	targetIdx := targetLine - 1
	if targetIdx < 0 || targetIdx >= len(allLines) {
		return nil, 0
	}
	start := max(0, targetIdx-contextLines)
	end := min(len(allLines), targetIdx+contextLines+1)
	return allLines[start:end], targetIdx - start
}

func readCachedFile(filename string) []string {
	sourceCacheMu.RLock()
	lines, cached := sourceCache[filename]
	sourceCacheMu.RUnlock()
	if cached {
		return lines
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	if scanner.Err() != nil {
		return nil
	}

	sourceCacheMu.Lock()
	sourceCache[filename] = out
	sourceCacheMu.Unlock()
	return out
}

// ClearCache drops every cached disk read. Useful between test cases that
// reuse a source path with different contents.
func ClearCache() {
	sourceCacheMu.Lock()
	sourceCache = make(map[string][]string)
	sourceCacheMu.Unlock()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
