package parser

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/wat/syntax"
)

// IsIDChar reports whether r may appear in an identifier or keyword:
// ASCII letters and digits plus ASCII punctuation other than the quote,
// separator and bracket characters.
func IsIDChar(r rune) bool {
	return r < utf8.RuneSelf && isIDByte(byte(r))
}

func isIDByte(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	case b == '"', b == ',', b == ';', b == '(', b == ')', b == '[', b == ']', b == '{', b == '}':
		return false
	}
	return b > ' ' && b < 0x7f
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

type lexToken struct {
	kind         syntax.SyntaxKind
	text         string
	start        int
	unterminated bool
}

func (t lexToken) textRange() syntax.TextRange {
	return syntax.TextRange{Start: t.start, End: t.start + len(t.text)}
}

// lexer is a directed scanner: the parser asks for a token of a specific
// kind at the current position instead of consuming a pre-classified
// stream, so the same text can be a keyword in one place and an
// instruction name in another.
type lexer struct {
	source string
	pos    int
	// At top level a stray ")" is an error token; inside a module it closes
	// the enclosing construct.
	topLevel bool
}

func newLexer(source string) *lexer {
	return &lexer{source: source, topLevel: true}
}

func (l *lexer) rest() string { return l.source[l.pos:] }
func (l *lexer) eof() bool    { return l.pos >= len(l.source) }

func (l *lexer) at(c byte) bool {
	return l.pos < len(l.source) && l.source[l.pos] == c
}

func (l *lexer) take(kind syntax.SyntaxKind, n int) lexToken {
	tok := lexToken{kind: kind, text: l.source[l.pos : l.pos+n], start: l.pos}
	l.pos += n
	return tok
}

// next scans one token of the given kind. The position is left unchanged
// when the input does not start with such a token.
func (l *lexer) next(kind syntax.SyntaxKind) (lexToken, bool) {
	s := l.rest()
	n := 0
	switch kind {
	case syntax.KindLParen:
		if strings.HasPrefix(s, "(") && !strings.HasPrefix(s, "(;") {
			n = 1
		}
	case syntax.KindRParen:
		if strings.HasPrefix(s, ")") {
			n = 1
		}
	case syntax.KindEq:
		if strings.HasPrefix(s, "=") {
			n = 1
		}
	case syntax.KindKeyword, syntax.KindInstrName, syntax.KindTypeKeyword, syntax.KindModifierKeyword:
		n = scanWord(s)
	case syntax.KindShapeDescriptor:
		if n = scanWord(s); !slices.Contains(ShapeDescriptors, s[:n]) {
			n = 0
		}
	case syntax.KindMemArgKeyword:
		n = scanMemArgKeyword(s)
	case syntax.KindIdent:
		n = scanIdent(s)
	case syntax.KindString:
		var terminated bool
		if n, terminated = scanString(s); n > 0 {
			tok := l.take(kind, n)
			tok.unterminated = !terminated
			return tok, true
		}
	case syntax.KindInt:
		n = scanInt(s)
	case syntax.KindUnsignedInt:
		n = scanNumberEnd(s, scanUnsigned(s))
	case syntax.KindFloat:
		n = scanFloat(s)
	case syntax.KindError:
		return l.error()
	}
	if n == 0 {
		return lexToken{}, false
	}
	return l.take(kind, n), true
}

// keyword scans a KEYWORD token whose text is one of words.
func (l *lexer) keyword(words ...string) (lexToken, bool) {
	return l.wordIn(syntax.KindKeyword, words)
}

func (l *lexer) wordIn(kind syntax.SyntaxKind, words []string) (lexToken, bool) {
	n := scanWord(l.rest())
	if n == 0 || !slices.Contains(words, l.source[l.pos:l.pos+n]) {
		return lexToken{}, false
	}
	return l.take(kind, n), true
}

// peek reports the token of the given kind after any trivia without moving.
func (l *lexer) peek(kind syntax.SyntaxKind) (lexToken, bool) {
	pos := l.pos
	l.skipTrivia()
	tok, ok := l.next(kind)
	l.pos = pos
	return tok, ok
}

// peekWord returns the word after any trivia, or "".
func (l *lexer) peekWord() string {
	tok, _ := l.peek(syntax.KindKeyword)
	return tok.text
}

func (l *lexer) skipTrivia() {
	for {
		if _, ok := l.trivia(); !ok {
			return
		}
	}
}

// trivia scans whitespace, a line comment or a (possibly nested) block
// comment. An unterminated block comment runs to the end of input.
func (l *lexer) trivia() (lexToken, bool) {
	s := l.rest()
	switch {
	case s == "":
		return lexToken{}, false
	case isSpace(s[0]):
		n := 1
		for n < len(s) && isSpace(s[n]) {
			n++
		}
		return l.take(syntax.KindWhitespace, n), true
	case strings.HasPrefix(s, "(;"):
		return l.take(syntax.KindBlockComment, scanBlockComment(s)), true
	case strings.HasPrefix(s, ";;"):
		n := strings.IndexByte(s, '\n')
		if n < 0 {
			n = len(s)
		}
		return l.take(syntax.KindLineComment, n), true
	}
	return lexToken{}, false
}

// error scans one unit of unparseable input. It never yields whitespace,
// comments or "(", and yields ")" only at top level.
func (l *lexer) error() (lexToken, bool) {
	s := l.rest()
	if s == "" {
		return lexToken{}, false
	}
	var n int
	switch c := s[0]; {
	case isSpace(c), c == '(':
		return lexToken{}, false
	case strings.HasPrefix(s, ";;"):
		return lexToken{}, false
	case c == ')':
		if !l.topLevel {
			return lexToken{}, false
		}
		n = 1
	case c == '"':
		n, _ = scanString(s)
	case isIDByte(c):
		n = scanIDRun(s)
	default:
		_, n = utf8.DecodeRuneInString(s)
	}
	return l.take(syntax.KindError, n), true
}

func scanIDRun(s string) int {
	n := 0
	for n < len(s) && isIDByte(s[n]) {
		n++
	}
	return n
}

func scanWord(s string) int {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return 0
	}
	return scanIDRun(s)
}

func scanIdent(s string) int {
	if !strings.HasPrefix(s, "$") {
		return 0
	}
	n := scanIDRun(s[1:])
	if n == 0 {
		return 0
	}
	return n + 1
}

// scanMemArgKeyword accepts "offset" or "align" when followed by "=" or by
// something that cannot continue the word.
func scanMemArgKeyword(s string) int {
	for _, kw := range []string{"offset", "align"} {
		if !strings.HasPrefix(s, kw) {
			continue
		}
		if len(s) == len(kw) || s[len(kw)] == '=' || !isIDByte(s[len(kw)]) {
			return len(kw)
		}
	}
	return 0
}

// scanString returns the length of a string literal and whether it was
// closed. An unclosed string stops before the line break or at the end of
// input.
func scanString(s string) (int, bool) {
	if !strings.HasPrefix(s, "\"") {
		return 0, false
	}
	i := 1
	for i < len(s) {
		switch s[i] {
		case '"':
			return i + 1, true
		case '\n', '\r':
			return i, false
		case '\\':
			if i+1 < len(s) && s[i+1] != '\n' && s[i+1] != '\r' {
				i += 2
			} else {
				i++
			}
		default:
			i++
		}
	}
	return len(s), false
}

func scanBlockComment(s string) int {
	depth := 0
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "(;"):
			depth++
			i += 2
		case strings.HasPrefix(s[i:], ";)"):
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(s)
}

// scanDigits accepts digits separated by single underscores. A trailing or
// doubled underscore rejects the whole run.
func scanDigits(s string, digit func(byte) bool) int {
	if s == "" || !digit(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) {
		switch {
		case digit(s[i]):
			i++
		case s[i] == '_':
			if i+1 >= len(s) || !digit(s[i+1]) {
				return 0
			}
			i += 2
		default:
			return i
		}
	}
	return i
}

func scanUnsigned(s string) int {
	if strings.HasPrefix(s, "0x") {
		if n := scanDigits(s[2:], isHexDigit); n > 0 {
			return n + 2
		}
		return 0
	}
	return scanDigits(s, isDigit)
}

func scanSign(s string) int {
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 1
	}
	return 0
}

// scanNumberEnd rejects a number that runs into further identifier
// characters, so "0x1g" is not split into "0x1" and "g".
func scanNumberEnd(s string, n int) int {
	if n == 0 || n < len(s) && isIDByte(s[n]) {
		return 0
	}
	return n
}

func scanInt(s string) int {
	sign := scanSign(s)
	n := scanUnsigned(s[sign:])
	if n == 0 {
		return 0
	}
	return scanNumberEnd(s, sign+n)
}

func scanFloat(s string) int {
	i := scanSign(s)
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "0x"):
		i += 2
		n := scanDigits(s[i:], isHexDigit)
		if n == 0 {
			return 0
		}
		i += n
		if strings.HasPrefix(s[i:], ".") {
			i++
			i += scanDigits(s[i:], isHexDigit)
		}
		if strings.HasPrefix(s[i:], "p") || strings.HasPrefix(s[i:], "P") {
			i++
			i += scanSign(s[i:])
			n := scanDigits(s[i:], isDigit)
			if n == 0 {
				return 0
			}
			i += n
		}
	case rest != "" && isDigit(rest[0]):
		i += scanDigits(rest, isDigit)
		if strings.HasPrefix(s[i:], ".") {
			i++
			i += scanDigits(s[i:], isDigit)
		}
		if strings.HasPrefix(s[i:], "e") || strings.HasPrefix(s[i:], "E") {
			i++
			i += scanSign(s[i:])
			n := scanDigits(s[i:], isDigit)
			if n == 0 {
				return 0
			}
			i += n
		}
	case strings.HasPrefix(rest, "inf"):
		i += 3
	case strings.HasPrefix(rest, "nan:0x"):
		i += 6
		n := scanDigits(s[i:], isHexDigit)
		if n == 0 {
			return 0
		}
		i += n
	case strings.HasPrefix(rest, "nan"):
		i += 3
	default:
		return 0
	}
	return scanNumberEnd(s, i)
}

// Token is one classified span produced by Tokenize.
type Token struct {
	Kind  syntax.SyntaxKind
	Text  string
	Range syntax.TextRange
	// Unterminated is set on a STRING that ran into a line break or the end
	// of input.
	Unterminated bool
}

// Tokenize splits source into a flat list of classified tokens covering the
// whole input. Words are classified without grammatical context, so a word
// the parser would read as a type or instruction name may be reported
// differently here.
func Tokenize(source string) []Token {
	l := newLexer(source)
	var tokens []Token
	for !l.eof() {
		tok := l.scanAny()
		tokens = append(tokens, Token{
			Kind:         tok.kind,
			Text:         tok.text,
			Range:        tok.textRange(),
			Unterminated: tok.unterminated,
		})
	}
	return tokens
}

func (l *lexer) scanAny() lexToken {
	if tok, ok := l.trivia(); ok {
		return tok
	}
	for _, kind := range []syntax.SyntaxKind{
		syntax.KindLParen, syntax.KindRParen, syntax.KindEq,
		syntax.KindIdent, syntax.KindString,
		syntax.KindInt, syntax.KindFloat,
	} {
		if tok, ok := l.next(kind); ok {
			return tok
		}
	}
	// "offset" and "align" are memory argument keywords only when written
	// as "offset=...".
	if n := scanMemArgKeyword(l.rest()); n > 0 && strings.HasPrefix(l.rest()[n:], "=") {
		return l.take(syntax.KindMemArgKeyword, n)
	}
	if n := scanWord(l.rest()); n > 0 {
		return l.take(classifyWord(l.source[l.pos:l.pos+n]), n)
	}
	tok, _ := l.error()
	return tok
}

func classifyWord(word string) syntax.SyntaxKind {
	switch {
	case slices.Contains(ShapeDescriptors, word):
		return syntax.KindShapeDescriptor
	case IsKeyword(word):
		return syntax.KindKeyword
	case IsTypeKeyword(word):
		return syntax.KindTypeKeyword
	case slices.Contains(ModifierKeywords, word):
		return syntax.KindModifierKeyword
	}
	return syntax.KindInstrName
}
