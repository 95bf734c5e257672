package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/wat/parser"
)

// TokenEncoder lists the context-free token stream of a document, one
// tab-separated token per line: kind, range and quoted text.
type TokenEncoder struct {
	w   io.Writer
	doc *Document

	// SkipTrivia drops whitespace and comments from the listing.
	SkipTrivia bool
}

func NewTokenEncoder(w io.Writer) *TokenEncoder {
	return &TokenEncoder{w: w}
}

func (e *TokenEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TokenEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, tok := range parser.Tokenize(e.doc.Source) {
		if e.SkipTrivia && tok.Kind.IsTrivia() {
			continue
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s", tok.Kind, tok.Range, strconv.Quote(tok.Text))
		if tok.Unterminated {
			sb.WriteString("\tunterminated")
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
