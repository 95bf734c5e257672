package format

import (
	"encoding/json"
	"io"

	"github.com/samber/lo"

	"github.com/dhamidi/wat/parser"
)

// JSONEncoder writes the diagnostics of a document.
type JSONEncoder struct {
	w   io.Writer
	doc *Document
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildReport(), "", "  ")
}

type jsonReport struct {
	Path   string       `json:"path"`
	Errors []jsonError `json:"errors"`
}

type jsonError struct {
	Range   [2]int   `json:"range"`
	Start   Position `json:"start"`
	End     Position `json:"end"`
	Message string   `json:"message"`
	Kind    string   `json:"kind"`
	Code    string   `json:"code"`
}

func (e *JSONEncoder) buildReport() jsonReport {
	return jsonReport{
		Path: e.doc.Path,
		Errors: lo.Map(e.doc.Errors, func(err parser.SyntaxError, _ int) jsonError {
			return jsonError{
				Range:   [2]int{err.Range.Start, err.Range.End},
				Start:   e.doc.Position(err.Range.Start),
				End:     e.doc.Position(err.Range.End),
				Message: err.Message.String(),
				Kind:    err.Message.Kind.String(),
				Code:    err.Code(),
			}
		}),
	}
}
