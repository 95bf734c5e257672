package pretty

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
)

var watLexer = chroma.Coalesce(lexerFor("wat"))

func lexerFor(name string) chroma.Lexer {
	if l := lexers.Get(name); l != nil {
		return l
	}
	return lexers.Fallback
}

// Highlight colors one line of WebAssembly text. Without color the line is
// returned unchanged.
func (s *Styles) Highlight(line string) string {
	if !s.color {
		return line
	}
	it, err := watLexer.Tokenise(nil, line)
	if err != nil {
		return s.SourceLine.Render(line)
	}
	var sb strings.Builder
	for tok := it(); tok != chroma.EOF; tok = it() {
		sb.WriteString(s.styleFor(tok.Type).Render(tok.Value))
	}
	return sb.String()
}

func (s *Styles) styleFor(t chroma.TokenType) lipgloss.Style {
	switch {
	case t.InCategory(chroma.Comment):
		return s.Comment
	case t == chroma.KeywordType:
		return s.Type
	case t.InCategory(chroma.Keyword):
		return s.Keyword
	case t.InSubCategory(chroma.LiteralString):
		return s.String
	case t.InSubCategory(chroma.LiteralNumber):
		return s.Number
	case t.InCategory(chroma.Name):
		return s.Ident
	case t == chroma.Punctuation:
		return s.Punctuation
	}
	return s.SourceLine
}
