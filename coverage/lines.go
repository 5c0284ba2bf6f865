package coverage

import (
	"bytes"
	"html"
)

// sourceLine is one line of an instrumented source file, annotated with whether the report
// generator considers it covered. Grounded on report_source_lines.go's coverageSourceLine.
type sourceLine struct {
	Number    int
	Contents  string
	IsCovered bool
	// IsBeacon marks a line that is itself a beacon emission statement; these are suppressed from
	// the rendered report regardless of IsCovered.
	IsBeacon bool
}

// ContentsHTML returns the line's contents, HTML-escaped for safe template rendering.
func (sl sourceLine) ContentsHTML() string {
	return html.EscapeString(sl.Contents)
}

// splitSourceLines splits source into one sourceLine per line, 1-indexed.
func splitSourceLines(source []byte) []sourceLine {
	rawLines := bytes.Split(source, []byte("\n"))
	lines := make([]sourceLine, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = sourceLine{Number: i + 1, Contents: string(raw)}
	}
	return lines
}
