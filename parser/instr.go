package parser

import (
	"slices"

	"github.com/dhamidi/wat/syntax"
)

const memArgTriviaMessage = "whitespaces or comments are not allowed inside memory argument"

var blockKinds = map[string]syntax.SyntaxKind{
	"block":     syntax.KindBlockBlock,
	"loop":      syntax.KindBlockLoop,
	"if":        syntax.KindBlockIf,
	"try_table": syntax.KindBlockTryTable,
}

func (p *Parser) parseInstrs(allowed []string) {
	for p.retry((*Parser).parseInstr, allowed...) != failed {
	}
}

// parseInstr reads one folded "(name ...)" or sequence "name ..."
// instruction.
func (p *Parser) parseInstr() syntax.GreenElement {
	c := p.checkpoint()
	var instr syntax.GreenElement
	if p.lexer.at('(') {
		instr = p.parseFoldedInstr()
	} else {
		instr = p.parseSequenceInstr()
	}
	if instr == nil {
		p.reset(c)
	}
	return instr
}

// instrName scans an instruction name. Words that end or separate blocks
// and module field keywords never name an instruction.
func (p *Parser) instrName() (lexToken, bool) {
	pos := p.lexer.pos
	tok, ok := p.lexer.next(syntax.KindInstrName)
	if !ok {
		return lexToken{}, false
	}
	if slices.Contains(reservedInstrWords, tok.text) {
		p.lexer.pos = pos
		return lexToken{}, false
	}
	if _, block := blockKinds[tok.text]; block {
		tok.kind = syntax.KindKeyword
	}
	return tok, true
}

func (p *Parser) parseFoldedInstr() syntax.GreenElement {
	mark := p.startNode()
	if _, ok := p.lexer.next(syntax.KindLParen); !ok {
		return nil
	}
	p.addChild(lParenToken)
	p.parseTrivias()
	name, ok := p.instrName()
	if !ok {
		return nil
	}
	p.addToken(name)
	switch name.text {
	case "if":
		return p.parseBlockIfFolded(mark)
	case "try_table":
		return p.parseBlockTryTableFolded(mark)
	case "block", "loop":
		p.eat(syntax.KindIdent)
		p.tryParseWithTrivias((*Parser).parseBlockType)
		p.parseInstrs(bodyAllowed)
		p.expectRightParen()
		return p.finishNode(blockKinds[name.text], mark)
	}
	return p.parsePlainInstrFolded(mark)
}

func (p *Parser) parseSequenceInstr() syntax.GreenElement {
	mark := p.startNode()
	name, ok := p.instrName()
	if !ok {
		return nil
	}
	p.addToken(name)
	switch name.text {
	case "if":
		return p.parseBlockIfSequence(mark)
	case "try_table":
		p.eat(syntax.KindIdent)
		p.tryParseWithTrivias((*Parser).parseBlockType)
		for p.tryParseWithTrivias((*Parser).parseCatch) {
		}
		return p.finishBlockSequence(syntax.KindBlockTryTable, mark)
	case "block", "loop":
		p.eat(syntax.KindIdent)
		p.tryParseWithTrivias((*Parser).parseBlockType)
		return p.finishBlockSequence(blockKinds[name.text], mark)
	}
	return p.parsePlainInstrSequence(mark)
}

// finishBlockSequence reads the body of a sequence block up to "end" and the
// optional label after it.
func (p *Parser) finishBlockSequence(kind syntax.SyntaxKind, mark nodeMark) *syntax.GreenNode {
	for !p.atWord("end") && p.retry((*Parser).parseInstr, endAllowed...) != failed {
	}
	p.resume(parseKeyword("end"), ExpectedLiteral("end"))
	p.eat(syntax.KindIdent)
	return p.finishNode(kind, mark)
}

func (p *Parser) atWord(words ...string) bool {
	return slices.Contains(words, p.lexer.peekWord())
}

func (p *Parser) parseBlockType() syntax.GreenElement {
	if use := p.parseTypeUse(); use != nil {
		return node(syntax.KindBlockType, use)
	}
	return nil
}

func (p *Parser) parseBlockIfFolded(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.tryParseWithTrivias((*Parser).parseBlockType)
	for !p.shouldExitBlockIfCond() && p.retry((*Parser).parseInstr, ifCondAllowed...) != failed {
	}
	p.resume((*Parser).parseThenBlock, ExpectedDescription("then block"))
	if elseMark, _, ok := p.tryOpenKeyword("else"); ok {
		p.eat(syntax.KindIdent)
		p.parseInstrs(bodyAllowed)
		p.expectRightParen()
		p.addChild(p.finishNode(syntax.KindBlockIfElse, elseMark))
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindBlockIf, mark)
}

// shouldExitBlockIfCond reports whether the condition of a folded if is
// over: the next form is not parenthesized or is "(then" or "(else".
func (p *Parser) shouldExitBlockIfCond() bool {
	pos := p.lexer.pos
	defer func() { p.lexer.pos = pos }()
	p.lexer.skipTrivia()
	if _, ok := p.lexer.next(syntax.KindLParen); !ok {
		return true
	}
	p.lexer.skipTrivia()
	_, ok := p.lexer.keyword("then", "else")
	return ok
}

func (p *Parser) parseThenBlock() syntax.GreenElement {
	mark, _, ok := p.openKeyword("then")
	if !ok {
		return nil
	}
	p.parseInstrs(bodyAllowed)
	p.expectRightParen()
	return p.finishNode(syntax.KindBlockIfThen, mark)
}

func (p *Parser) parseBlockIfSequence(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.tryParseWithTrivias((*Parser).parseBlockType)

	thenMark := p.startNode()
	for !p.atWord("end", "else") && p.retry((*Parser).parseInstr, ifThenAllowed...) != failed {
	}
	p.addChild(p.finishNode(syntax.KindBlockIfThen, thenMark))

	c := p.checkpoint()
	p.parseTrivias()
	elseMark := p.startNode()
	if tok, ok := p.lexer.keyword("else"); ok {
		p.addToken(tok)
		p.eat(syntax.KindIdent)
		for !p.atWord("end") && p.retry((*Parser).parseInstr, endAllowed...) != failed {
		}
		p.addChild(p.finishNode(syntax.KindBlockIfElse, elseMark))
	} else {
		p.reset(c)
	}

	p.resume(parseKeyword("end"), ExpectedLiteral("end"))
	p.eat(syntax.KindIdent)
	return p.finishNode(syntax.KindBlockIf, mark)
}

func (p *Parser) parseBlockTryTableFolded(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.tryParseWithTrivias((*Parser).parseBlockType)
	for p.tryParseWithTrivias((*Parser).parseCatch) {
	}
	p.parseInstrs(bodyAllowed)
	p.expectRightParen()
	return p.finishNode(syntax.KindBlockTryTable, mark)
}

func (p *Parser) parseCatch() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(CatchKeywords...)
	if !ok {
		return nil
	}
	kind := syntax.KindCatchAll
	if kw.text == "catch" || kw.text == "catch_ref" {
		kind = syntax.KindCatch
		p.resume((*Parser).parseIndex, ExpectedDescription("tag index"))
	}
	p.resume((*Parser).parseIndex, ExpectedDescription("label index"))
	p.expectRightParen()
	return p.finishNode(kind, mark)
}

var immediateTokenKinds = []syntax.SyntaxKind{
	syntax.KindInt,
	syntax.KindFloat,
	syntax.KindIdent,
	syntax.KindString,
	syntax.KindShapeDescriptor,
}

var immediateParsers = []parseFunc{
	(*Parser).parseRefType,
	(*Parser).parseTypeUse,
	(*Parser).parseMemArg,
	parseHeapType(true),
}

func (p *Parser) parseImmediate() syntax.GreenElement {
	for _, kind := range immediateTokenKinds {
		if tok, ok := p.lexer.next(kind); ok {
			return node(syntax.KindImmediate, p.token(tok))
		}
	}
	for _, parse := range immediateParsers {
		if e := p.tryParse(parse); e != nil {
			return node(syntax.KindImmediate, e)
		}
	}
	return nil
}

// parseMemArg reads "offset=N" or "align=N". Trivia around "=" is kept in
// the tree and reported.
func (p *Parser) parseMemArg() syntax.GreenElement {
	mark := p.startNode()
	tok, ok := p.lexer.next(syntax.KindMemArgKeyword)
	if !ok {
		return nil
	}
	p.addToken(tok)
	p.memArgPart(syntax.KindEq, ExpectedChar('='))
	p.memArgPart(syntax.KindUnsignedInt, ExpectedDescription("unsigned integer"))
	return p.finishNode(syntax.KindMemArg, mark)
}

func (p *Parser) memArgPart(kind syntax.SyntaxKind, missing Message) {
	c := p.checkpoint()
	before := p.lexer.pos
	p.parseTrivias()
	after := p.lexer.pos
	tok, ok := p.lexer.next(kind)
	if !ok {
		p.reset(c)
		p.reportMissing(missing)
		return
	}
	p.addToken(tok)
	if after > before {
		p.report(syntax.NewRange(before, after), Description(memArgTriviaMessage))
	}
}

func (p *Parser) parsePlainInstrFolded(mark nodeMark) *syntax.GreenNode {
	for p.tryParseWithTrivias(func(p *Parser) syntax.GreenElement {
		if imm := p.parseImmediate(); imm != nil {
			return imm
		}
		if tok, ok := p.lexer.error(); ok {
			p.reportToken(tok, Description("invalid immediate"))
			return p.token(tok)
		}
		return nil
	}) {
	}
	for p.peekLParen() && p.retry((*Parser).parseInstr, bodyAllowed...) != failed {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindPlainInstr, mark)
}

func (p *Parser) parsePlainInstrSequence(mark nodeMark) *syntax.GreenNode {
	for p.tryParseWithTrivias(func(p *Parser) syntax.GreenElement {
		if p.atWord("end", "else") {
			return nil
		}
		return p.parseImmediate()
	}) {
	}
	return p.finishNode(syntax.KindPlainInstr, mark)
}

func (p *Parser) peekLParen() bool {
	_, ok := p.lexer.peek(syntax.KindLParen)
	return ok
}
