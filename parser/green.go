package parser

import "github.com/dhamidi/wat/syntax"

// Green elements shared by every tree the parser builds.
var (
	lParenToken = syntax.NewToken(syntax.KindLParen, "(")
	rParenToken = syntax.NewToken(syntax.KindRParen, ")")

	numTypes = map[string]*syntax.GreenNode{
		"i32": numType("i32"),
		"i64": numType("i64"),
		"f32": numType("f32"),
		"f64": numType("f64"),
	}
)

func numType(name string) *syntax.GreenNode {
	return syntax.NewNode(syntax.KindNumType, []syntax.GreenElement{
		syntax.NewToken(syntax.KindTypeKeyword, name),
	})
}
