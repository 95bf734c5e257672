package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/wat/syntax"
)

// ASTJSONEncoder writes the syntax tree as nested JSON objects. Tokens carry
// their text, so the output can be decoded back into an identical tree with
// DecodeASTJSON.
type ASTJSONEncoder struct {
	w   io.Writer
	doc *Document
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.nodeToJSON(e.doc.Root), "", "  ")
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Span     *astJSONSpan   `json:"span,omitempty"`
	Token    *string        `json:"token,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start  Position `json:"start"`
	End    Position `json:"end"`
	Offset [2]int   `json:"offset"`
}

func (e *ASTJSONEncoder) span(r syntax.TextRange) *astJSONSpan {
	return &astJSONSpan{
		Start:  e.doc.Position(r.Start),
		End:    e.doc.Position(r.End),
		Offset: [2]int{r.Start, r.End},
	}
}

func (e *ASTJSONEncoder) nodeToJSON(n *syntax.SyntaxNode) *astJSONNode {
	jn := &astJSONNode{
		Kind: n.Kind().String(),
		Span: e.span(n.TextRange()),
	}
	for child := range n.ChildrenWithTokens() {
		switch el := child.(type) {
		case *syntax.SyntaxNode:
			jn.Children = append(jn.Children, e.nodeToJSON(el))
		case *syntax.SyntaxToken:
			text := el.Text()
			jn.Children = append(jn.Children, &astJSONNode{
				Kind:  el.Kind().String(),
				Span:  e.span(el.TextRange()),
				Token: &text,
			})
		}
	}
	return jn
}

// DecodeASTJSON rebuilds the green tree written by ASTJSONEncoder. Spans are
// ignored; they are recomputed from the token texts.
func DecodeASTJSON(data []byte) (*syntax.GreenNode, error) {
	var root astJSONNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode syntax tree: %w", err)
	}
	el, err := jsonToGreen(&root)
	if err != nil {
		return nil, err
	}
	node, ok := el.(*syntax.GreenNode)
	if !ok {
		return nil, fmt.Errorf("decode syntax tree: root %s is a token", root.Kind)
	}
	return node, nil
}

func jsonToGreen(jn *astJSONNode) (syntax.GreenElement, error) {
	kind, ok := syntax.KindFromString(jn.Kind)
	if !ok {
		return nil, fmt.Errorf("decode syntax tree: unknown kind %q", jn.Kind)
	}
	if kind.IsToken() {
		if jn.Token == nil {
			return nil, fmt.Errorf("decode syntax tree: token %s has no text", jn.Kind)
		}
		return syntax.NewToken(kind, *jn.Token), nil
	}
	children := make([]syntax.GreenElement, 0, len(jn.Children))
	for _, child := range jn.Children {
		el, err := jsonToGreen(child)
		if err != nil {
			return nil, err
		}
		children = append(children, el)
	}
	return syntax.NewNode(kind, children), nil
}
