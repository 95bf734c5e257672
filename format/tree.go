package format

import (
	"io"
)

// TreeEncoder writes the indented debug dump of the syntax tree.
type TreeEncoder struct {
	w   io.Writer
	doc *Document
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	return []byte(e.doc.Root.Debug()), nil
}
