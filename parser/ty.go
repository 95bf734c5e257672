package parser

import (
	"slices"

	"github.com/dhamidi/wat/syntax"
)

func node(kind syntax.SyntaxKind, children ...syntax.GreenElement) *syntax.GreenNode {
	return syntax.NewNode(kind, children)
}

func (p *Parser) parseIndex() syntax.GreenElement {
	if tok, ok := p.lexer.next(syntax.KindIdent); ok {
		return node(syntax.KindIndex, p.token(tok))
	}
	if tok, ok := p.lexer.next(syntax.KindUnsignedInt); ok {
		return node(syntax.KindIndex, p.token(tok))
	}
	return nil
}

func (p *Parser) parseUnsignedInt() syntax.GreenElement {
	if tok, ok := p.lexer.next(syntax.KindUnsignedInt); ok {
		return p.token(tok)
	}
	return nil
}

func (p *Parser) parseAddrType() syntax.GreenElement {
	tok, ok := p.lexer.next(syntax.KindTypeKeyword)
	if !ok {
		return nil
	}
	if !slices.Contains(AddrTypeKeywords, tok.text) {
		tok.kind = syntax.KindError
		p.reportToken(tok, Description("invalid address type"))
	}
	return node(syntax.KindAddrType, p.token(tok))
}

func (p *Parser) parseLimits() syntax.GreenElement {
	mark := p.startNode()
	tok, ok := p.lexer.next(syntax.KindUnsignedInt)
	if !ok {
		return nil
	}
	p.addToken(tok)
	p.eat(syntax.KindUnsignedInt)
	return p.finishNode(syntax.KindLimits, mark)
}

func (p *Parser) parseMemPageSize() syntax.GreenElement {
	mark, _, ok := p.openKeyword("pagesize")
	if !ok {
		return nil
	}
	p.resume((*Parser).parseUnsignedInt, ExpectedDescription("unsigned integer"))
	p.expectRightParen()
	return p.finishNode(syntax.KindMemPageSize, mark)
}

func (p *Parser) parseShareKeyword() syntax.GreenElement {
	tok, ok := p.lexer.next(syntax.KindKeyword)
	if !ok {
		return nil
	}
	if !slices.Contains(ShareKeywords, tok.text) {
		tok.kind = syntax.KindError
		p.reportToken(tok, Description("expected share keyword to be `shared` or `unshared`"))
	}
	return p.token(tok)
}

func (p *Parser) parseMemType() syntax.GreenElement {
	mark := p.startNode()
	if addr := p.tryParse((*Parser).parseAddrType); addr != nil {
		p.addChild(addr)
		p.parseTrivias()
	}
	limits := p.parseLimits()
	if limits == nil {
		return nil
	}
	p.addChild(limits)
	p.tryParseWithTrivias((*Parser).parseShareKeyword)
	p.tryParseWithTrivias((*Parser).parseMemPageSize)
	return p.finishNode(syntax.KindMemType, mark)
}

func (p *Parser) parseTableType() syntax.GreenElement {
	mark := p.startNode()
	if addr := p.tryParse((*Parser).parseAddrType); addr != nil {
		p.addChild(addr)
		p.parseTrivias()
	}
	limits := p.parseLimits()
	if limits == nil {
		return nil
	}
	p.addChild(limits)
	p.resume((*Parser).parseRefType, ExpectedDescription("ref type"))
	return p.finishNode(syntax.KindTableType, mark)
}

func (p *Parser) parsePackedType() syntax.GreenElement {
	tok, ok := p.lexer.wordIn(syntax.KindTypeKeyword, PackedTypeKeywords)
	if !ok {
		return nil
	}
	return node(syntax.KindPackedType, p.token(tok))
}

// parseValueType reads a number, vector or reference type. An unknown word
// is kept as an ERROR token so lists of types continue past it.
func (p *Parser) parseValueType() syntax.GreenElement {
	if p.lexer.at('(') {
		return p.parseRefTypeDetailed()
	}
	tok, ok := p.lexer.next(syntax.KindTypeKeyword)
	if !ok {
		return nil
	}
	switch {
	case numTypes[tok.text] != nil:
		return numTypes[tok.text]
	case slices.Contains(VecTypeKeywords, tok.text):
		return node(syntax.KindVecType, p.token(tok))
	case slices.Contains(RefTypeKeywords, tok.text):
		return node(syntax.KindRefType, p.token(tok))
	}
	tok.kind = syntax.KindError
	p.reportToken(tok, Description("invalid value type"))
	return p.token(tok)
}

func (p *Parser) parseRefType() syntax.GreenElement {
	if tok, ok := p.lexer.wordIn(syntax.KindTypeKeyword, RefTypeKeywords); ok {
		return node(syntax.KindRefType, p.token(tok))
	}
	return p.parseRefTypeDetailed()
}

func (p *Parser) parseRefTypeDetailed() syntax.GreenElement {
	mark, _, ok := p.openKeyword("ref")
	if !ok {
		return nil
	}
	p.tryParseWithTrivias(func(p *Parser) syntax.GreenElement {
		if tok, ok := p.lexer.wordIn(syntax.KindModifierKeyword, []string{"null"}); ok {
			return p.token(tok)
		}
		return nil
	})
	p.resume(parseHeapType(false), ExpectedDescription("heap type"))
	p.expectRightParen()
	return p.finishNode(syntax.KindRefType, mark)
}

// parseHeapType returns a parser for an abstract heap type or a type index.
// As an instruction immediate an unknown word is left for the next
// construct; inside a reference type it becomes an ERROR token.
func parseHeapType(immediate bool) parseFunc {
	return func(p *Parser) syntax.GreenElement {
		pos := p.lexer.pos
		if tok, ok := p.lexer.next(syntax.KindTypeKeyword); ok {
			if slices.Contains(HeapTypeKeywords, tok.text) {
				return node(syntax.KindHeapType, p.token(tok))
			}
			if !immediate {
				tok.kind = syntax.KindError
				p.reportToken(tok, Description("invalid heap type"))
				return p.token(tok)
			}
			p.lexer.pos = pos
		}
		if index := p.parseIndex(); index != nil {
			return node(syntax.KindHeapType, index)
		}
		return nil
	}
}

func (p *Parser) parseGlobalType() syntax.GreenElement {
	if mark, _, ok := p.openKeyword("mut"); ok {
		p.resume((*Parser).parseValueType, ExpectedDescription("value type"))
		p.expectRightParen()
		return p.finishNode(syntax.KindGlobalType, mark)
	}
	if ty := p.parseValueType(); ty != nil {
		return node(syntax.KindGlobalType, ty)
	}
	return nil
}

func (p *Parser) parseStorageType() syntax.GreenElement {
	if ty := p.tryParse((*Parser).parsePackedType); ty != nil {
		return ty
	}
	return p.parseValueType()
}

func (p *Parser) parseFieldType() syntax.GreenElement {
	if mark, _, ok := p.openKeyword("mut"); ok {
		p.resume((*Parser).parseStorageType, ExpectedDescription("storage type"))
		p.expectRightParen()
		return p.finishNode(syntax.KindFieldType, mark)
	}
	if ty := p.parseStorageType(); ty != nil {
		return node(syntax.KindFieldType, ty)
	}
	return nil
}

func (p *Parser) parseField() syntax.GreenElement {
	mark, _, ok := p.openKeyword("field")
	if !ok {
		return nil
	}
	if p.eat(syntax.KindIdent) {
		p.resume((*Parser).parseFieldType, ExpectedDescription("field type"))
	} else {
		for p.retry((*Parser).parseFieldType) != failed {
		}
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindField, mark)
}

// parseParam reads "(param $id type)" or "(param type*)".
func (p *Parser) parseParam() syntax.GreenElement {
	mark, _, ok := p.openKeyword("param")
	if !ok {
		return nil
	}
	if p.eat(syntax.KindIdent) {
		p.resume((*Parser).parseValueType, ExpectedDescription("value type"))
	} else {
		for p.retry((*Parser).parseValueType) != failed {
		}
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindParam, mark)
}

func (p *Parser) parseResult() syntax.GreenElement {
	mark, _, ok := p.openKeyword("result")
	if !ok {
		return nil
	}
	for p.retry((*Parser).parseValueType) != failed {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindResult, mark)
}

func (p *Parser) parseFuncType(mark nodeMark) *syntax.GreenNode {
	for p.tryParseWithTrivias((*Parser).parseParam) {
	}
	for p.tryParseWithTrivias((*Parser).parseResult) {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindFuncType, mark)
}

func (p *Parser) parseStructType(mark nodeMark) *syntax.GreenNode {
	for p.retry((*Parser).parseField) != failed {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindStructType, mark)
}

func (p *Parser) parseArrayType(mark nodeMark) *syntax.GreenNode {
	p.resume((*Parser).parseFieldType, ExpectedDescription("field type"))
	p.expectRightParen()
	return p.finishNode(syntax.KindArrayType, mark)
}

func (p *Parser) parseContType(mark nodeMark) *syntax.GreenNode {
	p.resume((*Parser).parseIndex, ExpectedDescription("index"))
	p.expectRightParen()
	return p.finishNode(syntax.KindContType, mark)
}

var compositeTypeParsers = map[string]func(*Parser, nodeMark) *syntax.GreenNode{
	"func":   (*Parser).parseFuncType,
	"struct": (*Parser).parseStructType,
	"array":  (*Parser).parseArrayType,
	"cont":   (*Parser).parseContType,
}

var compositeTypeKeywords = []string{"func", "struct", "array", "cont"}

func (p *Parser) parseCompositeType() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(compositeTypeKeywords...)
	if !ok {
		return nil
	}
	return compositeTypeParsers[kw.text](p, mark)
}

// parseSubType reads a composite type, optionally wrapped in
// "(sub final? index* composite)".
func (p *Parser) parseSubType() syntax.GreenElement {
	if ty := p.tryParse((*Parser).parseCompositeType); ty != nil {
		return node(syntax.KindSubType, ty)
	}
	mark, _, ok := p.openKeyword("sub")
	if !ok {
		return nil
	}
	p.tryParseWithTrivias(func(p *Parser) syntax.GreenElement {
		if tok, ok := p.lexer.wordIn(syntax.KindModifierKeyword, []string{"final"}); ok {
			return p.token(tok)
		}
		return nil
	})
	for p.tryParseWithTrivias((*Parser).parseIndex) {
	}
	p.resume((*Parser).parseCompositeType, ExpectedDescription("composite type"))
	p.expectRightParen()
	return p.finishNode(syntax.KindSubType, mark)
}

// parseTypeUse reads "(type idx)? (param ...)* (result ...)*". It fails only
// when none of the three parts is present.
func (p *Parser) parseTypeUse() syntax.GreenElement {
	mark := p.startNode()
	found := false
	if _, _, ok := p.openKeyword("type"); ok {
		found = true
		p.resume((*Parser).parseIndex, ExpectedDescription("index"))
		p.expectRightParen()
	}
	for p.tryParseWithTrivias((*Parser).parseParam) {
		found = true
	}
	for p.tryParseWithTrivias((*Parser).parseResult) {
		found = true
	}
	if !found {
		return nil
	}
	return p.finishNode(syntax.KindTypeUse, mark)
}

type externTypeParser struct {
	kind  syntax.SyntaxKind
	parse func(*Parser)
}

var externTypeParsers = map[string]externTypeParser{
	"func": {syntax.KindExternTypeFunc, func(p *Parser) {
		p.tryParseWithTrivias((*Parser).parseTypeUse)
	}},
	"global": {syntax.KindExternTypeGlobal, func(p *Parser) {
		p.resume((*Parser).parseGlobalType, ExpectedDescription("global type"))
	}},
	"memory": {syntax.KindExternTypeMemory, func(p *Parser) {
		p.resume((*Parser).parseMemType, ExpectedDescription("memory type"))
	}},
	"table": {syntax.KindExternTypeTable, func(p *Parser) {
		p.resume((*Parser).parseTableType, ExpectedDescription("table type"))
	}},
	"tag": {syntax.KindExternTypeTag, func(p *Parser) {
		p.tryParseWithTrivias((*Parser).parseTypeUse)
	}},
}

var externKeywords = []string{"func", "global", "memory", "table", "tag"}

// parseExternType reads the description of an imported item.
func (p *Parser) parseExternType() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(externKeywords...)
	if !ok {
		return nil
	}
	ext := externTypeParsers[kw.text]
	p.eat(syntax.KindIdent)
	ext.parse(p)
	p.expectRightParen()
	return p.finishNode(ext.kind, mark)
}
