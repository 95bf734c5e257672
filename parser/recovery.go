package parser

import (
	"slices"
	"strings"

	"github.com/dhamidi/wat/syntax"
)

// parseFunc parses one construct at the current position, without leading
// trivia. It returns nil when the construct is not there; the caller then
// discards whatever the function added.
type parseFunc func(*Parser) syntax.GreenElement

type status int

const (
	failed status = iota
	parsed
	recovered
)

func (s status) String() string {
	switch s {
	case parsed:
		return "parsed"
	case recovered:
		return "recovered"
	}
	return "failed"
}

// retry parses f after trivia. When f fails, stray tokens are absorbed as
// ERROR and f is tried again; a parenthesized group is absorbed as a whole
// unless its head word is one of allowed, which leaves it for an enclosing
// construct. Input is left untouched only when failed is returned.
func (p *Parser) retry(f parseFunc, allowed ...string) status {
	result := failed
	for {
		outer := p.checkpoint()
		p.parseTrivias()
		inner := p.checkpoint()
		if e := f(p); e != nil && p.lexer.pos > inner.pos {
			p.addChild(e)
			if result == recovered {
				return recovered
			}
			return parsed
		}
		p.reset(inner)
		if tok, ok := p.errorToken(allowed); ok {
			p.addChild(tok)
			result = recovered
			continue
		}
		if elems, ok := p.errorTerm(allowed); ok {
			p.elements = append(p.elements, elems...)
			return recovered
		}
		p.reset(outer)
		return result
	}
}

// resume parses a required construct. Stray tokens in front of it are
// absorbed as ERROR. When it is still missing the trivia is given back and
// msg is reported at the next token.
func (p *Parser) resume(f parseFunc, msg Message) bool {
	for {
		outer := p.checkpoint()
		p.parseTrivias()
		inner := p.checkpoint()
		if e := f(p); e != nil && p.lexer.pos > inner.pos {
			p.addChild(e)
			return true
		}
		p.reset(inner)
		if tok, ok := p.errorToken(nil); ok {
			p.addChild(tok)
			continue
		}
		p.reset(outer)
		p.reportMissing(msg)
		return false
	}
}

// expectRightParen closes the current form. Stray tokens and groups before
// the ")" are absorbed as ERROR; whether a "(" instead ends the form is
// decided by the implicit close policy.
func (p *Parser) expectRightParen() {
	for {
		c := p.checkpoint()
		trivia := p.parseTrivias()
		if tok, ok := p.lexer.next(syntax.KindRParen); ok {
			p.addToken(tok)
			return
		}
		if tok, ok := p.lexer.peek(syntax.KindLParen); ok {
			newline := strings.ContainsAny(trivia, "\n\r")
			if p.implicitClose == CloseAlways || p.implicitClose == CloseOnNewline && newline {
				p.reset(c)
				p.report(syntax.NewRange(tok.start, tok.start+1), ExpectedChar(')'))
				return
			}
			if elems, ok := p.errorTerm(nil); ok {
				p.elements = append(p.elements, elems...)
				continue
			}
		}
		if tok, ok := p.errorToken(nil); ok {
			p.addChild(tok)
			continue
		}
		p.reset(c)
		p.report(syntax.EmptyRange(len(p.source)), ExpectedChar(')'))
		return
	}
}

// errorToken absorbs one unparseable token unless it is a word in allowed.
func (p *Parser) errorToken(allowed []string) (*syntax.GreenToken, bool) {
	pos := p.lexer.pos
	tok, ok := p.lexer.error()
	if !ok {
		return nil, false
	}
	if slices.Contains(allowed, tok.text) {
		p.lexer.pos = pos
		return nil, false
	}
	p.reportToken(tok, UnexpectedToken)
	return p.token(tok), true
}

// errorTerm absorbs a balanced parenthesized group as ERROR tokens, keeping
// its trivia. A group whose head word is in allowed is refused. An
// unbalanced group runs to the end of input.
func (p *Parser) errorTerm(allowed []string) ([]syntax.GreenElement, bool) {
	open, ok := p.lexer.peek(syntax.KindLParen)
	if !ok || open.start != p.lexer.pos {
		return nil, false
	}
	if len(allowed) > 0 {
		pos := p.lexer.pos
		p.lexer.pos++
		p.lexer.skipTrivia()
		word := scanWord(p.lexer.rest())
		head := p.lexer.rest()[:word]
		p.lexer.pos = pos
		if word > 0 && slices.Contains(allowed, head) {
			return nil, false
		}
	}

	var elems []syntax.GreenElement
	depth := 0
loop:
	for {
		if tok, ok := p.lexer.trivia(); ok {
			elems = append(elems, p.cache.Token(tok.kind, tok.text))
			continue
		}
		var tok lexToken
		switch {
		case p.lexer.at('('):
			tok = p.lexer.take(syntax.KindError, 1)
			depth++
		case p.lexer.at(')'):
			tok = p.lexer.take(syntax.KindError, 1)
			depth--
		default:
			if tok, ok = p.lexer.error(); !ok {
				break loop
			}
		}
		elems = append(elems, p.cache.Token(syntax.KindError, tok.text))
		if depth == 0 {
			break
		}
	}
	p.report(syntax.NewRange(open.start, p.lexer.pos), UnexpectedToken)
	return elems, true
}

// reportMissing reports msg at the next token after trivia, or at the end
// of the input.
func (p *Parser) reportMissing(msg Message) {
	pos := p.lexer.pos
	defer func() { p.lexer.pos = pos }()
	p.lexer.skipTrivia()
	if p.lexer.at('(') || p.lexer.at(')') {
		p.report(syntax.NewRange(p.lexer.pos, p.lexer.pos+1), msg)
		return
	}
	if tok, ok := p.lexer.error(); ok {
		p.reportToken(tok, msg)
		return
	}
	p.report(syntax.EmptyRange(len(p.source)), msg)
}

// tryParse runs f and rewinds when it fails.
func (p *Parser) tryParse(f parseFunc) syntax.GreenElement {
	c := p.checkpoint()
	if e := f(p); e != nil {
		return e
	}
	p.reset(c)
	return nil
}

// tryParseWithTrivias adds the trivia and the result of f when f succeeds
// and leaves no trace otherwise.
func (p *Parser) tryParseWithTrivias(f parseFunc) bool {
	c := p.checkpoint()
	p.parseTrivias()
	if e := f(p); e != nil {
		p.addChild(e)
		return true
	}
	p.reset(c)
	return false
}

// eat adds the trivia and a token of kind when the token is next.
func (p *Parser) eat(kind syntax.SyntaxKind) bool {
	c := p.checkpoint()
	p.parseTrivias()
	if tok, ok := p.lexer.next(kind); ok {
		p.addToken(tok)
		return true
	}
	p.reset(c)
	return false
}

// parseTrivias adds every trivia token at the current position and returns
// their combined text.
func (p *Parser) parseTrivias() string {
	start := p.lexer.pos
	for {
		tok, ok := p.lexer.trivia()
		if !ok {
			return p.source[start:p.lexer.pos]
		}
		p.addToken(tok)
	}
}

// openKeyword parses "(" followed by one of keywords. On success the tokens
// are added under the returned mark; otherwise nothing is consumed.
func (p *Parser) openKeyword(keywords ...string) (nodeMark, lexToken, bool) {
	c := p.checkpoint()
	mark := p.startNode()
	if _, ok := p.lexer.next(syntax.KindLParen); !ok {
		return 0, lexToken{}, false
	}
	p.addChild(lParenToken)
	p.parseTrivias()
	tok, ok := p.lexer.keyword(keywords...)
	if !ok {
		p.reset(c)
		return 0, lexToken{}, false
	}
	p.addToken(tok)
	return mark, tok, true
}

// tryOpenKeyword is openKeyword after trivia. The trivia stays with the
// enclosing node.
func (p *Parser) tryOpenKeyword(keywords ...string) (nodeMark, lexToken, bool) {
	c := p.checkpoint()
	p.parseTrivias()
	mark, tok, ok := p.openKeyword(keywords...)
	if !ok {
		p.reset(c)
	}
	return mark, tok, ok
}
