package syntax

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// LineCol is a zero-based position. Col counts bytes from the line start.
type LineCol struct {
	Line int
	Col  int
}

// LineIndex converts byte offsets into line/column positions.
type LineIndex struct {
	text       string
	lineStarts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}

// LineCol returns the position of offset. Offsets past the end clamp to the
// end of the text.
func (li *LineIndex) LineCol(offset int) LineCol {
	offset = min(max(offset, 0), len(li.text))
	line := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	return LineCol{Line: line, Col: offset - li.lineStarts[line]}
}

// UTF16Col returns the position of offset with the column counted in UTF-16
// code units, as used by the Language Server Protocol.
func (li *LineIndex) UTF16Col(offset int) LineCol {
	pos := li.LineCol(offset)
	start := li.lineStarts[pos.Line]
	col := 0
	for _, r := range li.text[start : start+pos.Col] {
		col += utf16.RuneLen(r)
	}
	return LineCol{Line: pos.Line, Col: col}
}

// Offset converts a byte based position back into an offset.
func (li *LineIndex) Offset(pos LineCol) int {
	if pos.Line >= len(li.lineStarts) {
		return len(li.text)
	}
	return min(li.lineStarts[pos.Line]+pos.Col, li.lineEnd(pos.Line))
}

// OffsetUTF16 converts an LSP style position into an offset.
func (li *LineIndex) OffsetUTF16(pos LineCol) int {
	if pos.Line >= len(li.lineStarts) {
		return len(li.text)
	}
	offset := li.lineStarts[pos.Line]
	end := li.lineEnd(pos.Line)
	for col := 0; col < pos.Col && offset < end; {
		r, size := utf8.DecodeRuneInString(li.text[offset:])
		col += utf16.RuneLen(r)
		offset += size
	}
	return offset
}

// Line returns the text of line i without its terminating newline.
func (li *LineIndex) Line(i int) string {
	if i < 0 || i >= len(li.lineStarts) {
		return ""
	}
	return li.text[li.lineStarts[i]:li.lineEnd(i)]
}

func (li *LineIndex) lineEnd(i int) int {
	if i+1 < len(li.lineStarts) {
		return li.lineStarts[i+1] - 1
	}
	return len(li.text)
}
