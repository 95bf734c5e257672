package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/wat/syntax"
)

type tokenSummary struct {
	Kind         syntax.SyntaxKind
	Text         string
	Unterminated bool
}

func summarize(tokens []Token) []tokenSummary {
	var out []tokenSummary
	for _, tok := range tokens {
		out = append(out, tokenSummary{Kind: tok.Kind, Text: tok.Text, Unterminated: tok.Unterminated})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenSummary
	}{
		{"int with separators", "1_000", []tokenSummary{{Kind: syntax.KindInt, Text: "1_000"}}},
		{"double underscore", "1__000", []tokenSummary{{Kind: syntax.KindError, Text: "1__000"}}},
		{"trailing underscore", "1_", []tokenSummary{{Kind: syntax.KindError, Text: "1_"}}},
		{"hex float", "0x1.8p3", []tokenSummary{{Kind: syntax.KindFloat, Text: "0x1.8p3"}}},
		{"decimal float", "-1.5e-3", []tokenSummary{{Kind: syntax.KindFloat, Text: "-1.5e-3"}}},
		{"nan payload", "nan:0x7f", []tokenSummary{{Kind: syntax.KindFloat, Text: "nan:0x7f"}}},
		{"inf", "+inf", []tokenSummary{{Kind: syntax.KindFloat, Text: "+inf"}}},
		{"signed int", "-42", []tokenSummary{{Kind: syntax.KindInt, Text: "-42"}}},
		{"number followed by id char", "0x1g", []tokenSummary{{Kind: syntax.KindError, Text: "0x1g"}}},
		{"string with escapes", `"a\u{41}b"`, []tokenSummary{{Kind: syntax.KindString, Text: `"a\u{41}b"`}}},
		{"escaped quote", `"a\"b"`, []tokenSummary{{Kind: syntax.KindString, Text: `"a\"b"`}}},
		{"unterminated string", "\"abc\n", []tokenSummary{
			{Kind: syntax.KindString, Text: `"abc`, Unterminated: true},
			{Kind: syntax.KindWhitespace, Text: "\n"},
		}},
		{"unterminated at eof", `"abc`, []tokenSummary{{Kind: syntax.KindString, Text: `"abc`, Unterminated: true}}},
		{"nested block comment", "(; a (; b ;) c ;)", []tokenSummary{{Kind: syntax.KindBlockComment, Text: "(; a (; b ;) c ;)"}}},
		{"unterminated block comment", "(; a", []tokenSummary{{Kind: syntax.KindBlockComment, Text: "(; a"}}},
		{"line comment", ";; hi\n", []tokenSummary{
			{Kind: syntax.KindLineComment, Text: ";; hi"},
			{Kind: syntax.KindWhitespace, Text: "\n"},
		}},
		{"identifier", "$foo.bar", []tokenSummary{{Kind: syntax.KindIdent, Text: "$foo.bar"}}},
		{"lone dollar", "$", []tokenSummary{{Kind: syntax.KindError, Text: "$"}}},
		{"mem arg", "offset=4", []tokenSummary{
			{Kind: syntax.KindMemArgKeyword, Text: "offset"},
			{Kind: syntax.KindEq, Text: "="},
			{Kind: syntax.KindInt, Text: "4"},
		}},
		{"words", "(func i32 i32.add i32x4 null)", []tokenSummary{
			{Kind: syntax.KindLParen, Text: "("},
			{Kind: syntax.KindKeyword, Text: "func"},
			{Kind: syntax.KindWhitespace, Text: " "},
			{Kind: syntax.KindTypeKeyword, Text: "i32"},
			{Kind: syntax.KindWhitespace, Text: " "},
			{Kind: syntax.KindInstrName, Text: "i32.add"},
			{Kind: syntax.KindWhitespace, Text: " "},
			{Kind: syntax.KindShapeDescriptor, Text: "i32x4"},
			{Kind: syntax.KindWhitespace, Text: " "},
			{Kind: syntax.KindModifierKeyword, Text: "null"},
			{Kind: syntax.KindRParen, Text: ")"},
		}},
		{"offset keyword", "offset", []tokenSummary{{Kind: syntax.KindKeyword, Text: "offset"}}},
		{"non-ascii", "é", []tokenSummary{{Kind: syntax.KindError, Text: "é"}}},
		{"invalid utf-8", "\xff", []tokenSummary{{Kind: syntax.KindError, Text: "\xff"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(Tokenize(tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeCoversInput(t *testing.T) {
	input := "(module $m\n  (func (export \"f\") (result i32) ;; c\n    i32.const 0x_1 é \"x\n  ))"
	var sb strings.Builder
	offset := 0
	for _, tok := range Tokenize(input) {
		if tok.Range.Start != offset {
			t.Fatalf("token %q starts at %d, want %d", tok.Text, tok.Range.Start, offset)
		}
		sb.WriteString(tok.Text)
		offset = tok.Range.End
	}
	if got := sb.String(); got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestIsIDChar(t *testing.T) {
	tests := []struct {
		r    rune
		want bool
	}{
		{'a', true},
		{'Z', true},
		{'0', true},
		{'$', true},
		{'.', true},
		{'\'', true},
		{'_', true},
		{'(', false},
		{')', false},
		{'"', false},
		{',', false},
		{';', false},
		{'[', false},
		{'}', false},
		{' ', false},
		{'é', false},
	}
	for _, tt := range tests {
		if got := IsIDChar(tt.r); got != tt.want {
			t.Errorf("IsIDChar(%q): got %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestLexerNextRestoresPosition(t *testing.T) {
	l := newLexer("foo")
	if _, ok := l.next(syntax.KindInt); ok {
		t.Fatal("INT matched a word")
	}
	if l.pos != 0 {
		t.Errorf("pos: got %d, want 0", l.pos)
	}
	tok, ok := l.next(syntax.KindInstrName)
	if !ok || tok.text != "foo" {
		t.Errorf("got %q %v, want foo", tok.text, ok)
	}
}

func TestLexerErrorToken(t *testing.T) {
	tests := []struct {
		input    string
		topLevel bool
		want     string
		ok       bool
	}{
		{"abc def", false, "abc", true},
		{")", true, ")", true},
		{")", false, "", false},
		{"(", true, "", false},
		{" x", true, "", false},
		{";; c", true, "", false},
		{"\"ab", false, "\"ab", true},
		{"日本", false, "日", true},
	}
	for _, tt := range tests {
		l := newLexer(tt.input)
		l.topLevel = tt.topLevel
		tok, ok := l.error()
		if ok != tt.ok || tok.text != tt.want {
			t.Errorf("error(%q): got %q %v, want %q %v", tt.input, tok.text, ok, tt.want, tt.ok)
		}
		if tok.kind != syntax.KindError && ok {
			t.Errorf("error(%q): kind %v", tt.input, tok.kind)
		}
	}
}

func TestLexerPeekSkipsTrivia(t *testing.T) {
	l := newLexer(" ;; c\n  (; x ;) end")
	if got := l.peekWord(); got != "end" {
		t.Errorf("got %q, want end", got)
	}
	if l.pos != 0 {
		t.Errorf("peek moved to %d", l.pos)
	}
}
