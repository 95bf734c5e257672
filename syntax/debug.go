package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Debug renders the subtree as an indented outline, one element per line:
//
//	MODULE@0..8
//	  L_PAREN@0..1 "("
//	  KEYWORD@1..7 "module"
//	  R_PAREN@7..8 ")"
func (n *SyntaxNode) Debug() string {
	var sb strings.Builder
	depth := 0
	walk := n.PreorderWithTokens()
	for walk.Next() {
		if walk.Event() == Leave {
			if _, ok := walk.Element().(*SyntaxNode); ok {
				depth--
			}
			continue
		}
		sb.WriteString(strings.Repeat("  ", depth))
		switch el := walk.Element().(type) {
		case *SyntaxNode:
			fmt.Fprintf(&sb, "%s@%s\n", el.Kind(), el.TextRange())
			depth++
		case *SyntaxToken:
			fmt.Fprintf(&sb, "%s@%s %s\n", el.Kind(), el.TextRange(), strconv.Quote(el.Text()))
		}
	}
	return sb.String()
}

// Debug renders the token as KIND@start..end "text".
func (t *SyntaxToken) Debug() string {
	return fmt.Sprintf("%s@%s %s", t.Kind(), t.TextRange(), strconv.Quote(t.Text()))
}
