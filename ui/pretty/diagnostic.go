package pretty

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/parser"
)

// FormatDocument formats every diagnostic of doc.
func (s *Styles) FormatDocument(doc *format.Document, showContext bool) string {
	var builder strings.Builder
	for _, err := range doc.Errors {
		builder.WriteString(s.FormatDiagnostic(doc, err, showContext))
	}
	return builder.String()
}

// FormatDiagnostic formats a single diagnostic for terminal output.
func (s *Styles) FormatDiagnostic(doc *format.Document, err parser.SyntaxError, showContext bool) string {
	var builder strings.Builder

	path := doc.Path
	if path == "" {
		path = "<stdin>"
	}
	start := doc.Position(err.Range.Start)

	location := fmt.Sprintf("%s%s",
		s.FilePath.Render(path),
		s.Location.Render(fmt.Sprintf(":%d:%d", start.Line, start.Column)),
	)

	// Main line: location  error  message  (code)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.Error.Render("error"),
		s.Message.Render(err.Message.String()),
		s.Code.Render("("+err.Code()+")"),
	))

	if showContext {
		line := doc.Lines().Line(start.Line - 1)
		end := err.Range.End
		if e := doc.Position(end); e.Line != start.Line {
			end = err.Range.Start + len(line) - (start.Column - 1)
		}
		builder.WriteString(s.FormatSourceContext(line, start.Line, start.Column, end-err.Range.Start))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker under the
// byte range [column, column+length) of line. Columns are one-based.
func (s *Styles) FormatSourceContext(line string, lineNumber, column, length int) string {
	var builder strings.Builder

	line = strings.ReplaceAll(line, "\t", " ")
	gutter := fmt.Sprintf("%6d | ", lineNumber)
	builder.WriteString(s.LineNumber.Render(gutter) + s.Highlight(line) + "\n")

	column = min(max(column, 1), len(line)+1)
	prefix := line[:column-1]
	marked := line[column-1 : min(column-1+length, len(line))]
	width := max(runewidth.StringWidth(marked), 1)

	padding := strings.Repeat(" ", len(gutter)+runewidth.StringWidth(prefix))
	builder.WriteString(padding + s.Caret.Render(strings.Repeat("^", width)) + "\n")

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d errors)", issueCount))
	}
	return header
}
