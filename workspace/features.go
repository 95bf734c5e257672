package workspace

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/parser"
	"github.com/dhamidi/wat/syntax"
)

const diagnosticSource = "wat"

// ToRange converts a byte range into an LSP range with UTF-16 columns.
func ToRange(doc *format.Document, r syntax.TextRange) protocol.Range {
	return protocol.Range{
		Start: toPosition(doc, r.Start),
		End:   toPosition(doc, r.End),
	}
}

func toPosition(doc *format.Document, offset int) protocol.Position {
	lc := doc.Lines().UTF16Col(offset)
	return protocol.Position{Line: protocol.UInteger(lc.Line), Character: protocol.UInteger(lc.Col)}
}

// ToOffset converts an LSP position into a byte offset.
func ToOffset(doc *format.Document, pos protocol.Position) int {
	return doc.Lines().OffsetUTF16(syntax.LineCol{Line: int(pos.Line), Col: int(pos.Character)})
}

// Diagnostics converts the syntax errors of doc.
func Diagnostics(doc *format.Document) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	return lo.Map(doc.Errors, func(err parser.SyntaxError, _ int) protocol.Diagnostic {
		return protocol.Diagnostic{
			Range:    ToRange(doc, err.Range),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: err.Code()},
			Source:   &source,
			Message:  "syntax error: " + err.Message.String(),
		}
	})
}

// FoldingRanges yields a region for every node that opens with a parenthesis
// or keyword and spans more than one line.
func FoldingRanges(doc *format.Document) []protocol.FoldingRange {
	kind := string(protocol.FoldingRangeKindRegion)
	ranges := []protocol.FoldingRange{}
	for _, node := range doc.Root.Descendants().All() {
		if node.TokenOfKind(syntax.KindKeyword) == nil && node.TokenOfKind(syntax.KindLParen) == nil {
			continue
		}
		r := ToRange(doc, node.TextRange())
		if r.Start.Line == r.End.Line {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine:      r.Start.Line,
			StartCharacter: &r.Start.Character,
			EndLine:        r.End.Line,
			EndCharacter:   &r.End.Character,
			Kind:           &kind,
		})
	}
	return ranges
}

// SelectionRanges expands each position from the token under it through all
// enclosing nodes.
func SelectionRanges(doc *format.Document, positions []protocol.Position) []protocol.SelectionRange {
	var result []protocol.SelectionRange
	for _, pos := range positions {
		tok := meaningfulToken(doc.Root, ToOffset(doc, pos))
		if tok == nil {
			// One entry per position; an empty document selects nothing.
			result = append(result, protocol.SelectionRange{Range: protocol.Range{Start: pos, End: pos}})
			continue
		}
		sel := protocol.SelectionRange{Range: ToRange(doc, tok.TextRange())}
		sel.Parent = parentSelection(doc, tok.Parent())
		result = append(result, sel)
	}
	return result
}

func parentSelection(doc *format.Document, node *syntax.SyntaxNode) *protocol.SelectionRange {
	if node == nil {
		return nil
	}
	return &protocol.SelectionRange{
		Range:  ToRange(doc, node.TextRange()),
		Parent: parentSelection(doc, node.Parent()),
	}
}

// meaningfulToken prefers a non-trivia token touching offset.
func meaningfulToken(root *syntax.SyntaxNode, offset int) *syntax.SyntaxToken {
	at := root.TokenAtOffset(offset)
	tokens := at.Tokens()
	for i := len(tokens) - 1; i >= 0; i-- {
		if !tokens[i].Kind().IsTrivia() {
			return tokens[i]
		}
	}
	return at.RightBiased()
}

var fieldSymbolKinds = map[syntax.SyntaxKind]protocol.SymbolKind{
	syntax.KindModuleFieldFunc:   protocol.SymbolKindFunction,
	syntax.KindModuleFieldGlobal: protocol.SymbolKindVariable,
	syntax.KindModuleFieldMemory: protocol.SymbolKindArray,
	syntax.KindModuleFieldTable:  protocol.SymbolKindArray,
	syntax.KindModuleFieldTag:    protocol.SymbolKindEvent,
	syntax.KindModuleFieldData:   protocol.SymbolKindConstant,
	syntax.KindModuleFieldElem:   protocol.SymbolKindConstant,
	syntax.KindModuleFieldImport: protocol.SymbolKindInterface,
	syntax.KindModuleFieldExport: protocol.SymbolKindInterface,
	syntax.KindModuleFieldStart:  protocol.SymbolKindFunction,
	syntax.KindTypeDef:           protocol.SymbolKindClass,
}

// DocumentSymbols lists modules with their fields. Functions carry their
// params and locals, struct types their fields.
func DocumentSymbols(doc *format.Document) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for module := range doc.Root.ChildrenOfKind(syntax.KindModule) {
		symbols = append(symbols, moduleSymbol(doc, module, len(symbols)))
	}
	return symbols
}

func moduleSymbol(doc *format.Document, module *syntax.SyntaxNode, index int) protocol.DocumentSymbol {
	sym := newSymbol(doc, module, symbolName(module, index), protocol.SymbolKindModule)
	counts := map[syntax.SyntaxKind]int{}
	for field := range module.Children() {
		switch field.Kind() {
		case syntax.KindRecType:
			for def := range field.ChildrenOfKind(syntax.KindTypeDef) {
				sym.Children = append(sym.Children, fieldSymbol(doc, def, counts))
			}
		default:
			if _, ok := fieldSymbolKinds[field.Kind()]; ok {
				sym.Children = append(sym.Children, fieldSymbol(doc, field, counts))
			}
		}
	}
	return sym
}

func fieldSymbol(doc *format.Document, field *syntax.SyntaxNode, counts map[syntax.SyntaxKind]int) protocol.DocumentSymbol {
	index := counts[field.Kind()]
	counts[field.Kind()]++

	name := symbolName(field, index)
	sym := newSymbol(doc, field, name, fieldSymbolKinds[field.Kind()])
	if detail := symbolDetail(field); detail != "" {
		sym.Detail = &detail
	}

	switch field.Kind() {
	case syntax.KindModuleFieldFunc:
		params := 0
		for child := range field.Children() {
			switch child.Kind() {
			case syntax.KindTypeUse:
				for param := range child.ChildrenOfKind(syntax.KindParam) {
					sym.Children = append(sym.Children, newSymbol(doc, param, symbolName(param, params), protocol.SymbolKindVariable))
					params++
				}
			case syntax.KindLocal:
				sym.Children = append(sym.Children, newSymbol(doc, child, symbolName(child, params), protocol.SymbolKindVariable))
				params++
			}
		}
	case syntax.KindTypeDef:
		if st := findDescendant(field, syntax.KindStructType); st != nil {
			i := 0
			for f := range st.ChildrenOfKind(syntax.KindField) {
				sym.Children = append(sym.Children, newSymbol(doc, f, symbolName(f, i), protocol.SymbolKindField))
				i++
			}
		}
	}
	return sym
}

func newSymbol(doc *format.Document, node *syntax.SyntaxNode, name string, kind protocol.SymbolKind) protocol.DocumentSymbol {
	selection := node.TextRange()
	if ident := node.TokenOfKind(syntax.KindIdent); ident != nil {
		selection = ident.TextRange()
	} else if kw := node.TokenOfKind(syntax.KindKeyword); kw != nil {
		selection = kw.TextRange()
	}
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          ToRange(doc, node.TextRange()),
		SelectionRange: ToRange(doc, selection),
	}
}

// symbolName is the $identifier of node, the quoted name of an import or
// export, or "#index".
func symbolName(node *syntax.SyntaxNode, index int) string {
	if ident := node.TokenOfKind(syntax.KindIdent); ident != nil {
		return ident.Text()
	}
	switch node.Kind() {
	case syntax.KindModule:
		return "module"
	case syntax.KindModuleFieldImport:
		if module, name := stringOf(node, syntax.KindModuleName), stringOf(node, syntax.KindName); module != "" || name != "" {
			return module + "." + name
		}
	case syntax.KindModuleFieldExport:
		if name := stringOf(node, syntax.KindName); name != "" {
			return name
		}
	case syntax.KindModuleFieldStart:
		return "start"
	}
	return "#" + strconv.Itoa(index)
}

func symbolDetail(node *syntax.SyntaxNode) string {
	switch node.Kind() {
	case syntax.KindTypeDef:
		for _, kind := range []syntax.SyntaxKind{syntax.KindFuncType, syntax.KindStructType, syntax.KindArrayType, syntax.KindContType} {
			if comp := findDescendant(node, kind); comp != nil {
				if kw := comp.TokenOfKind(syntax.KindKeyword); kw != nil {
					return kw.Text()
				}
			}
		}
	case syntax.KindModuleFieldGlobal:
		if ty := node.FirstChildOfKind(syntax.KindGlobalType); ty != nil {
			return ty.Text()
		}
	case syntax.KindModuleFieldImport:
		for child := range node.Children() {
			if ext, ok := externKinds[child.Kind()]; ok {
				return ext
			}
		}
	case syntax.KindModuleFieldExport:
		for child := range node.Children() {
			if ext, ok := externKinds[child.Kind()]; ok {
				if idx := child.FirstChildOfKind(syntax.KindIndex); idx != nil {
					return fmt.Sprintf("%s %s", ext, idx.Text())
				}
				return ext
			}
		}
	}
	return ""
}

var externKinds = map[syntax.SyntaxKind]string{
	syntax.KindExternTypeFunc:   "func",
	syntax.KindExternTypeGlobal: "global",
	syntax.KindExternTypeMemory: "memory",
	syntax.KindExternTypeTable:  "table",
	syntax.KindExternTypeTag:    "tag",
	syntax.KindExternIdxFunc:    "func",
	syntax.KindExternIdxGlobal:  "global",
	syntax.KindExternIdxMemory:  "memory",
	syntax.KindExternIdxTable:   "table",
	syntax.KindExternIdxTag:     "tag",
}

// stringOf returns the unquoted text of the string inside the first child of
// the given kind.
func stringOf(node *syntax.SyntaxNode, kind syntax.SyntaxKind) string {
	child := node.FirstChildOfKind(kind)
	if child == nil {
		return ""
	}
	tok := child.TokenOfKind(syntax.KindString)
	if tok == nil {
		return ""
	}
	if s, err := strconv.Unquote(tok.Text()); err == nil {
		return s
	}
	return tok.Text()
}

func findDescendant(node *syntax.SyntaxNode, kind syntax.SyntaxKind) *syntax.SyntaxNode {
	it := node.Descendants()
	for it.Next() {
		if it.Node().Kind() == kind {
			return it.Node()
		}
	}
	return nil
}
