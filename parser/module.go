package parser

import (
	"slices"

	"github.com/dhamidi/wat/syntax"
)

var moduleFieldParsers = map[string]func(*Parser, nodeMark) *syntax.GreenNode{
	"data":   (*Parser).parseModuleFieldData,
	"elem":   (*Parser).parseModuleFieldElem,
	"export": (*Parser).parseModuleFieldExport,
	"func":   (*Parser).parseModuleFieldFunc,
	"global": (*Parser).parseModuleFieldGlobal,
	"import": (*Parser).parseModuleFieldImport,
	"memory": (*Parser).parseModuleFieldMemory,
	"rec":    (*Parser).parseRecType,
	"start":  (*Parser).parseModuleFieldStart,
	"table":  (*Parser).parseModuleFieldTable,
	"tag":    (*Parser).parseModuleFieldTag,
	"type":   (*Parser).parseTypeDef,
}

// parseModule reads "(module $id? field*)". A module field at top level
// starts an implicit module holding it and every field after it.
func (p *Parser) parseModule() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(moduleKeywords...)
	if !ok {
		return nil
	}
	topLevel := p.lexer.topLevel
	p.lexer.topLevel = false
	defer func() { p.lexer.topLevel = topLevel }()

	if kw.text == "module" {
		p.eat(syntax.KindIdent)
		p.parseModuleFields()
		p.expectRightParen()
		return p.finishNode(syntax.KindModule, mark)
	}
	field := moduleFieldParsers[kw.text](p, mark)
	mark = p.startNode()
	p.addChild(field)
	p.parseModuleFields()
	return p.finishNode(syntax.KindModule, mark)
}

func (p *Parser) parseModuleFields() {
	for p.retry((*Parser).parseModuleField, "module") != failed {
	}
}

func (p *Parser) parseModuleField() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(ModuleFieldKeywords...)
	if !ok {
		return nil
	}
	return moduleFieldParsers[kw.text](p, mark)
}

func parseString(kind syntax.SyntaxKind) parseFunc {
	return func(p *Parser) syntax.GreenElement {
		tok, ok := p.lexer.next(syntax.KindString)
		if !ok {
			return nil
		}
		return node(kind, p.token(tok))
	}
}

// parseExportsAndImport reads the inline "(export ...)" and "(import ...)"
// abbreviations of a field. A second import or an export after the import
// is still parsed and reported at its keyword.
func (p *Parser) parseExportsAndImport() {
	hasImport := false
	for {
		mark, kw, ok := p.tryOpenKeyword("export", "import")
		if !ok {
			return
		}
		if hasImport {
			if kw.text == "import" {
				p.reportToken(kw, Description("only one import is allowed"))
			} else {
				p.reportToken(kw, Description("export must come before import"))
			}
		}
		if kw.text == "import" {
			hasImport = true
			p.addChild(p.parseImport(mark))
		} else {
			p.addChild(p.parseExport(mark))
		}
	}
}

func (p *Parser) parseImport(mark nodeMark) *syntax.GreenNode {
	p.resume(parseString(syntax.KindModuleName), ExpectedDescription("import module name"))
	p.resume(parseString(syntax.KindName), ExpectedDescription("import name"))
	p.expectRightParen()
	return p.finishNode(syntax.KindImport, mark)
}

func (p *Parser) parseExport(mark nodeMark) *syntax.GreenNode {
	p.resume(parseString(syntax.KindName), ExpectedDescription("export name"))
	p.expectRightParen()
	return p.finishNode(syntax.KindExport, mark)
}

func (p *Parser) parseModuleFieldData(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.tryParseWithTrivias((*Parser).parseMemUse)
	p.tryParseWithTrivias((*Parser).parseOffset)
	for p.eat(syntax.KindString) {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldData, mark)
}

func (p *Parser) parseModuleFieldElem(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	switch {
	case p.tryParseWithTrivias(parseKeyword("declare")):
		p.resume((*Parser).parseElemList, ExpectedDescription("elem list"))
	case p.tryParseWithTrivias((*Parser).parseElemList):
	default:
		p.tryParseWithTrivias((*Parser).parseTableUse)
		p.resume((*Parser).parseOffset, ExpectedDescription("offset"))
		p.tryParseWithTrivias((*Parser).parseElemList)
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldElem, mark)
}

func (p *Parser) parseModuleFieldExport(mark nodeMark) *syntax.GreenNode {
	p.resume(parseString(syntax.KindName), ExpectedDescription("export name"))
	p.resume((*Parser).parseExternIdx, ExpectedDescription("export idx"))
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldExport, mark)
}

func (p *Parser) parseModuleFieldFunc(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.parseExportsAndImport()
	p.tryParseWithTrivias((*Parser).parseTypeUse)
	for p.tryParseWithTrivias((*Parser).parseLocal) {
	}
	p.parseInstrs(bodyAllowed)
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldFunc, mark)
}

func (p *Parser) parseModuleFieldGlobal(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.parseExportsAndImport()
	p.resume((*Parser).parseGlobalType, ExpectedDescription("global type"))
	p.parseInstrs(bodyAllowed)
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldGlobal, mark)
}

func (p *Parser) parseModuleFieldImport(mark nodeMark) *syntax.GreenNode {
	p.resume(parseString(syntax.KindModuleName), ExpectedDescription("import module name"))
	p.resume(parseString(syntax.KindName), ExpectedDescription("import name"))
	p.resume((*Parser).parseExternType, ExpectedDescription("extern type"))
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldImport, mark)
}

func (p *Parser) parseModuleFieldMemory(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.parseExportsAndImport()
	if _, ok := p.lexer.peek(syntax.KindLParen); ok {
		p.resume((*Parser).parseData, ExpectedDescription("data"))
	} else {
		p.resume((*Parser).parseMemType, ExpectedDescription("memory type"))
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldMemory, mark)
}

func (p *Parser) parseModuleFieldStart(mark nodeMark) *syntax.GreenNode {
	p.resume((*Parser).parseIndex, ExpectedDescription("index"))
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldStart, mark)
}

// parseModuleFieldTable reads either a table type with an optional
// initializer expression or the inline "reftype (elem ...)" abbreviation.
func (p *Parser) parseModuleFieldTable(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.parseExportsAndImport()
	_, limits := p.lexer.peek(syntax.KindUnsignedInt)
	if limits || slices.Contains(AddrTypeKeywords, p.lexer.peekWord()) {
		p.resume((*Parser).parseTableType, ExpectedDescription("table type"))
		p.parseInstrs(bodyAllowed)
	} else {
		p.resume((*Parser).parseRefType, ExpectedDescription("ref type"))
		p.resume((*Parser).parseElem, ExpectedDescription("elem"))
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldTable, mark)
}

func (p *Parser) parseModuleFieldTag(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.parseExportsAndImport()
	p.tryParseWithTrivias((*Parser).parseTypeUse)
	p.expectRightParen()
	return p.finishNode(syntax.KindModuleFieldTag, mark)
}

func (p *Parser) parseTypeDef(mark nodeMark) *syntax.GreenNode {
	p.eat(syntax.KindIdent)
	p.resume((*Parser).parseSubType, ExpectedDescription("sub type"))
	p.expectRightParen()
	return p.finishNode(syntax.KindTypeDef, mark)
}

func (p *Parser) parseRecType(mark nodeMark) *syntax.GreenNode {
	for p.retry((*Parser).parseRecTypeDef) != failed {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindRecType, mark)
}

func (p *Parser) parseRecTypeDef() syntax.GreenElement {
	mark, _, ok := p.openKeyword("type")
	if !ok {
		return nil
	}
	return p.parseTypeDef(mark)
}

func parseKeyword(word string) parseFunc {
	return func(p *Parser) syntax.GreenElement {
		if tok, ok := p.lexer.keyword(word); ok {
			return p.token(tok)
		}
		return nil
	}
}

func (p *Parser) parseData() syntax.GreenElement {
	mark, _, ok := p.openKeyword("data")
	if !ok {
		return nil
	}
	for p.eat(syntax.KindString) {
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindData, mark)
}

func (p *Parser) parseElem() syntax.GreenElement {
	mark, _, ok := p.openKeyword("elem")
	if !ok {
		return nil
	}
	if _, ok := p.lexer.peek(syntax.KindLParen); ok {
		for p.retry((*Parser).parseElemExpr) != failed {
		}
	} else {
		for p.retry((*Parser).parseIndex) != failed {
		}
	}
	p.expectRightParen()
	return p.finishNode(syntax.KindElem, mark)
}

// parseElemExpr reads "(item instr*)" or a single folded instruction.
func (p *Parser) parseElemExpr() syntax.GreenElement {
	if mark, _, ok := p.openKeyword("item"); ok {
		p.parseInstrs(bodyAllowed)
		p.expectRightParen()
		return p.finishNode(syntax.KindElemExpr, mark)
	}
	if !p.lexer.at('(') {
		return nil
	}
	if instr := p.parseInstr(); instr != nil {
		return node(syntax.KindElemExpr, instr)
	}
	return nil
}

func (p *Parser) parseElemList() syntax.GreenElement {
	var head syntax.GreenElement
	if tok, ok := p.lexer.keyword("func"); ok {
		head = p.token(tok)
	} else if index := p.parseIndex(); index != nil {
		head = index
	}
	if head != nil {
		mark := p.startNode()
		p.addChild(head)
		for p.retry((*Parser).parseIndex) != failed {
		}
		return p.finishNode(syntax.KindElemList, mark)
	}
	ty := p.parseRefType()
	if ty == nil {
		return nil
	}
	mark := p.startNode()
	p.addChild(ty)
	for p.retry((*Parser).parseElemExpr) != failed {
	}
	return p.finishNode(syntax.KindElemList, mark)
}

func (p *Parser) parseOffset() syntax.GreenElement {
	if mark, _, ok := p.openKeyword("offset"); ok {
		p.parseInstrs(bodyAllowed)
		p.expectRightParen()
		return p.finishNode(syntax.KindOffset, mark)
	}
	if !p.lexer.at('(') {
		return nil
	}
	if instr := p.parseInstr(); instr != nil {
		return node(syntax.KindOffset, instr)
	}
	return nil
}

func (p *Parser) parseMemUse() syntax.GreenElement {
	mark, _, ok := p.openKeyword("memory")
	if !ok {
		return nil
	}
	p.resume((*Parser).parseIndex, ExpectedDescription("index"))
	p.expectRightParen()
	return p.finishNode(syntax.KindMemUse, mark)
}

func (p *Parser) parseTableUse() syntax.GreenElement {
	mark, _, ok := p.openKeyword("table")
	if !ok {
		return nil
	}
	p.resume((*Parser).parseIndex, ExpectedDescription("index"))
	p.expectRightParen()
	return p.finishNode(syntax.KindTableUse, mark)
}

func (p *Parser) parseLocal() syntax.GreenElement {
	mark, _, ok := p.openKeyword("local")
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
	return p.finishNode(syntax.KindLocal, mark)
}

var externIdxKinds = map[string]syntax.SyntaxKind{
	"func":   syntax.KindExternIdxFunc,
	"global": syntax.KindExternIdxGlobal,
	"memory": syntax.KindExternIdxMemory,
	"table":  syntax.KindExternIdxTable,
	"tag":    syntax.KindExternIdxTag,
}

func (p *Parser) parseExternIdx() syntax.GreenElement {
	mark, kw, ok := p.openKeyword(externKeywords...)
	if !ok {
		return nil
	}
	p.resume((*Parser).parseIndex, ExpectedDescription("index"))
	p.expectRightParen()
	return p.finishNode(externIdxKinds[kw.text], mark)
}
