package format

import (
	"fmt"
	"io"
	"strings"
)

// LineEncoder writes one "path:line:col: message" line per diagnostic.
type LineEncoder struct {
	w   io.Writer
	doc *Document
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	path := e.doc.Path
	if path == "" {
		path = "-"
	}
	for _, err := range e.doc.Errors {
		pos := e.doc.Position(err.Range.Start)
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n", path, pos.Line, pos.Column, err.Message)
	}
	return []byte(sb.String()), nil
}
