package format

import (
	"encoding"
	"sync"

	"github.com/dhamidi/wat/parser"
	"github.com/dhamidi/wat/syntax"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *Document) error
}

// Document is one parsed source file.
type Document struct {
	Path   string
	Source string
	Root   *syntax.SyntaxNode
	Errors []parser.SyntaxError

	linesOnce sync.Once
	lines     *syntax.LineIndex
}

// NewDocument parses source. path is only used for display.
func NewDocument(path, source string, opts ...parser.Option) *Document {
	root, errs := parser.Parse(source, opts...)
	return &Document{Path: path, Source: source, Root: root, Errors: errs}
}

func (d *Document) Lines() *syntax.LineIndex {
	d.linesOnce.Do(func() {
		d.lines = syntax.NewLineIndex(d.Source)
	})
	return d.lines
}

// Position is a one-based line and column. Columns count bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (d *Document) Position(offset int) Position {
	lc := d.Lines().LineCol(offset)
	return Position{Line: lc.Line + 1, Column: lc.Col + 1}
}
