package parser

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/dhamidi/wat/syntax"
)

// ImplicitClose selects how a missing ")" is detected when the next input
// opens a new parenthesized form.
type ImplicitClose int

const (
	// CloseOnNewline ends the current form at a "(" preceded by a line break
	// and absorbs a "(" on the same line as an error group.
	CloseOnNewline ImplicitClose = iota
	// CloseAlways ends the current form at any "(".
	CloseAlways
	// CloseNever absorbs every unexpected group until a balancing ")".
	CloseNever
)

var implicitCloseNames = [...]string{
	CloseOnNewline: "newline",
	CloseAlways:    "always",
	CloseNever:     "never",
}

func (c ImplicitClose) String() string {
	if c >= 0 && int(c) < len(implicitCloseNames) {
		return implicitCloseNames[c]
	}
	return fmt.Sprintf("ImplicitClose(%d)", int(c))
}

// ParseImplicitClose is the inverse of ImplicitClose.String.
func ParseImplicitClose(s string) (ImplicitClose, error) {
	for i, name := range implicitCloseNames {
		if name == s {
			return ImplicitClose(i), nil
		}
	}
	return CloseOnNewline, fmt.Errorf("unknown implicit close policy %q (want newline, always or never)", s)
}

// Option configures a Parser.
type Option func(*Parser)

// WithImplicitClose sets the policy used when a ")" is expected but "(" is
// found.
func WithImplicitClose(policy ImplicitClose) Option {
	return func(p *Parser) {
		p.implicitClose = policy
	}
}

// Parser turns WebAssembly text into a green tree. Every input produces a
// tree covering the whole source; malformed parts are kept as ERROR tokens
// and reported in Errors.
type Parser struct {
	source        string
	lexer         *lexer
	elements      []syntax.GreenElement
	errors        []SyntaxError
	cache         *syntax.Cache
	implicitClose ImplicitClose
}

// NewParser creates a parser for source.
func NewParser(source string, opts ...Option) *Parser {
	p := &Parser{
		source: source,
		lexer:  newLexer(source),
		cache:  syntax.NewCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses source and returns the red root together with the
// diagnostics ordered by start offset.
func Parse(source string, opts ...Option) (*syntax.SyntaxNode, []SyntaxError) {
	green, errs := ParseToGreen(source, opts...)
	return syntax.NewRoot(green), errs
}

// ParseToGreen is like Parse but returns the green root.
func ParseToGreen(source string, opts ...Option) (*syntax.GreenNode, []SyntaxError) {
	p := NewParser(source, opts...)
	root := p.Parse()
	return root, p.Errors()
}

// Parse runs the parser. It must be called at most once.
func (p *Parser) Parse() *syntax.GreenNode {
	mark := p.startNode()
	for p.retry((*Parser).parseModule) != failed {
	}
	p.parseTrivias()
	// Recovery at the root absorbs every kind of input, so this loop only
	// guards against leaving text out of the tree.
	for !p.lexer.eof() {
		p.lexer.topLevel = true
		tok, ok := p.lexer.error()
		if !ok {
			if tok, ok = p.lexer.trivia(); !ok {
				_, n := utf8.DecodeRuneInString(p.lexer.rest())
				tok = p.lexer.take(syntax.KindError, n)
			}
		}
		if tok.kind == syntax.KindError {
			p.reportToken(tok, UnexpectedToken)
		}
		p.addToken(tok)
	}
	return p.finishNode(syntax.KindRoot, mark)
}

// Errors returns the diagnostics collected so far, ordered by start offset.
func (p *Parser) Errors() []SyntaxError {
	errs := slices.Clone(p.errors)
	slices.SortStableFunc(errs, func(a, b SyntaxError) int {
		return a.Range.Start - b.Range.Start
	})
	return errs
}

type nodeMark int

type checkpoint struct {
	elements int
	errors   int
	pos      int
	topLevel bool
}

func (p *Parser) startNode() nodeMark {
	return nodeMark(len(p.elements))
}

// finishNode moves every element added since mark into a new node.
func (p *Parser) finishNode(kind syntax.SyntaxKind, mark nodeMark) *syntax.GreenNode {
	node := syntax.NewNode(kind, p.elements[mark:])
	clear(p.elements[mark:])
	p.elements = p.elements[:mark]
	return node
}

func (p *Parser) addChild(e syntax.GreenElement) {
	p.elements = append(p.elements, e)
}

func (p *Parser) checkpoint() checkpoint {
	return checkpoint{
		elements: len(p.elements),
		errors:   len(p.errors),
		pos:      p.lexer.pos,
		topLevel: p.lexer.topLevel,
	}
}

// reset rewinds the input and drops every element and diagnostic produced
// after c was taken.
func (p *Parser) reset(c checkpoint) {
	clear(p.elements[c.elements:])
	p.elements = p.elements[:c.elements]
	p.errors = p.errors[:c.errors]
	p.lexer.pos = c.pos
	p.lexer.topLevel = c.topLevel
}

// token converts a scanned token into a green token, reporting unterminated
// strings.
func (p *Parser) token(tok lexToken) *syntax.GreenToken {
	if tok.unterminated && tok.kind == syntax.KindString {
		p.report(syntax.EmptyRange(tok.start+len(tok.text)), ExpectedChar('"'))
	}
	switch tok.kind {
	case syntax.KindLParen:
		return lParenToken
	case syntax.KindRParen:
		return rParenToken
	}
	return p.cache.Token(tok.kind, tok.text)
}

func (p *Parser) addToken(tok lexToken) {
	p.addChild(p.token(tok))
}

func (p *Parser) report(r syntax.TextRange, msg Message) {
	p.errors = append(p.errors, SyntaxError{Range: r, Message: msg})
}

func (p *Parser) reportToken(tok lexToken, msg Message) {
	p.report(tok.textRange(), msg)
}
