package syntax

type SyntaxKind uint16

const (
	KindError SyntaxKind = iota

	// Trivia
	KindWhitespace
	KindLineComment
	KindBlockComment

	// Tokens
	KindLParen
	KindRParen
	KindKeyword
	KindInstrName
	KindTypeKeyword
	KindModifierKeyword
	KindMemArgKeyword
	KindShapeDescriptor
	KindEq
	KindIdent
	KindString
	KindInt
	KindUnsignedInt
	KindFloat

	// Module
	KindRoot
	KindModule
	KindModuleName
	KindName
	KindModuleFieldData
	KindModuleFieldElem
	KindModuleFieldExport
	KindModuleFieldFunc
	KindModuleFieldGlobal
	KindModuleFieldImport
	KindModuleFieldMemory
	KindModuleFieldStart
	KindModuleFieldTable
	KindModuleFieldTag
	KindTypeDef
	KindRecType
	KindTypeUse
	KindIndex
	KindLocal
	KindExport
	KindImport
	KindMemUse
	KindTableUse
	KindOffset
	KindElem
	KindElemList
	KindElemExpr
	KindData
	KindExternTypeFunc
	KindExternTypeGlobal
	KindExternTypeMemory
	KindExternTypeTable
	KindExternTypeTag
	KindExternIdxFunc
	KindExternIdxGlobal
	KindExternIdxMemory
	KindExternIdxTable
	KindExternIdxTag

	// Types
	KindSubType
	KindFuncType
	KindStructType
	KindArrayType
	KindContType
	KindField
	KindFieldType
	KindParam
	KindResult
	KindNumType
	KindVecType
	KindRefType
	KindHeapType
	KindPackedType
	KindAddrType
	KindGlobalType
	KindMemType
	KindTableType
	KindLimits
	KindMemPageSize

	// Instructions
	KindPlainInstr
	KindImmediate
	KindMemArg
	KindBlockType
	KindBlockBlock
	KindBlockLoop
	KindBlockIf
	KindBlockIfThen
	KindBlockIfElse
	KindBlockTryTable
	KindCatch
	KindCatchAll

	kindCount
)

var syntaxKindNames = [...]string{
	KindError:             "ERROR",
	KindWhitespace:        "WHITESPACE",
	KindLineComment:       "LINE_COMMENT",
	KindBlockComment:      "BLOCK_COMMENT",
	KindLParen:            "L_PAREN",
	KindRParen:            "R_PAREN",
	KindKeyword:           "KEYWORD",
	KindInstrName:         "INSTR_NAME",
	KindTypeKeyword:       "TYPE_KEYWORD",
	KindModifierKeyword:   "MODIFIER_KEYWORD",
	KindMemArgKeyword:     "MEM_ARG_KEYWORD",
	KindShapeDescriptor:   "SHAPE_DESCRIPTOR",
	KindEq:                "EQ",
	KindIdent:             "IDENT",
	KindString:            "STRING",
	KindInt:               "INT",
	KindUnsignedInt:       "UNSIGNED_INT",
	KindFloat:             "FLOAT",
	KindRoot:              "ROOT",
	KindModule:            "MODULE",
	KindModuleName:        "MODULE_NAME",
	KindName:              "NAME",
	KindModuleFieldData:   "MODULE_FIELD_DATA",
	KindModuleFieldElem:   "MODULE_FIELD_ELEM",
	KindModuleFieldExport: "MODULE_FIELD_EXPORT",
	KindModuleFieldFunc:   "MODULE_FIELD_FUNC",
	KindModuleFieldGlobal: "MODULE_FIELD_GLOBAL",
	KindModuleFieldImport: "MODULE_FIELD_IMPORT",
	KindModuleFieldMemory: "MODULE_FIELD_MEMORY",
	KindModuleFieldStart:  "MODULE_FIELD_START",
	KindModuleFieldTable:  "MODULE_FIELD_TABLE",
	KindModuleFieldTag:    "MODULE_FIELD_TAG",
	KindTypeDef:           "TYPE_DEF",
	KindRecType:           "REC_TYPE",
	KindTypeUse:           "TYPE_USE",
	KindIndex:             "INDEX",
	KindLocal:             "LOCAL",
	KindExport:            "EXPORT",
	KindImport:            "IMPORT",
	KindMemUse:            "MEM_USE",
	KindTableUse:          "TABLE_USE",
	KindOffset:            "OFFSET",
	KindElem:              "ELEM",
	KindElemList:          "ELEM_LIST",
	KindElemExpr:          "ELEM_EXPR",
	KindData:              "DATA",
	KindExternTypeFunc:    "EXTERN_TYPE_FUNC",
	KindExternTypeGlobal:  "EXTERN_TYPE_GLOBAL",
	KindExternTypeMemory:  "EXTERN_TYPE_MEMORY",
	KindExternTypeTable:   "EXTERN_TYPE_TABLE",
	KindExternTypeTag:     "EXTERN_TYPE_TAG",
	KindExternIdxFunc:     "EXTERN_IDX_FUNC",
	KindExternIdxGlobal:   "EXTERN_IDX_GLOBAL",
	KindExternIdxMemory:   "EXTERN_IDX_MEMORY",
	KindExternIdxTable:    "EXTERN_IDX_TABLE",
	KindExternIdxTag:      "EXTERN_IDX_TAG",
	KindSubType:           "SUB_TYPE",
	KindFuncType:          "FUNC_TYPE",
	KindStructType:        "STRUCT_TYPE",
	KindArrayType:         "ARRAY_TYPE",
	KindContType:          "CONT_TYPE",
	KindField:             "FIELD",
	KindFieldType:         "FIELD_TYPE",
	KindParam:             "PARAM",
	KindResult:            "RESULT",
	KindNumType:           "NUM_TYPE",
	KindVecType:           "VEC_TYPE",
	KindRefType:           "REF_TYPE",
	KindHeapType:          "HEAP_TYPE",
	KindPackedType:        "PACKED_TYPE",
	KindAddrType:          "ADDR_TYPE",
	KindGlobalType:        "GLOBAL_TYPE",
	KindMemType:           "MEM_TYPE",
	KindTableType:         "TABLE_TYPE",
	KindLimits:            "LIMITS",
	KindMemPageSize:       "MEM_PAGE_SIZE",
	KindPlainInstr:        "PLAIN_INSTR",
	KindImmediate:         "IMMEDIATE",
	KindMemArg:            "MEM_ARG",
	KindBlockType:         "BLOCK_TYPE",
	KindBlockBlock:        "BLOCK_BLOCK",
	KindBlockLoop:         "BLOCK_LOOP",
	KindBlockIf:           "BLOCK_IF",
	KindBlockIfThen:       "BLOCK_IF_THEN",
	KindBlockIfElse:       "BLOCK_IF_ELSE",
	KindBlockTryTable:     "BLOCK_TRY_TABLE",
	KindCatch:             "CATCH",
	KindCatchAll:          "CATCH_ALL",
}

func (k SyntaxKind) String() string {
	if k < kindCount {
		return syntaxKindNames[k]
	}
	return "Unknown"
}

// KindFromString returns the kind whose String form is name.
func KindFromString(name string) (SyntaxKind, bool) {
	for k, n := range syntaxKindNames {
		if n == name {
			return SyntaxKind(k), true
		}
	}
	return KindError, false
}

// IsTrivia reports whether tokens of this kind are whitespace or comments.
func (k SyntaxKind) IsTrivia() bool {
	return k == KindWhitespace || k == KindLineComment || k == KindBlockComment
}

// IsToken reports whether k is a leaf kind. ERROR is a token kind; the parser
// never builds ERROR nodes.
func (k SyntaxKind) IsToken() bool {
	return k <= KindFloat
}

func (k SyntaxKind) IsNode() bool {
	return k > KindFloat && k < kindCount
}

func (k SyntaxKind) IsPunct() bool {
	return k == KindLParen || k == KindRParen
}

// IsModuleField reports whether k is one of the top-level module field kinds,
// including type definitions and rec groups.
func (k SyntaxKind) IsModuleField() bool {
	switch k {
	case KindModuleFieldData, KindModuleFieldElem, KindModuleFieldExport,
		KindModuleFieldFunc, KindModuleFieldGlobal, KindModuleFieldImport,
		KindModuleFieldMemory, KindModuleFieldStart, KindModuleFieldTable,
		KindModuleFieldTag, KindTypeDef, KindRecType:
		return true
	}
	return false
}

// IsInstr reports whether k is a plain or block instruction.
func (k SyntaxKind) IsInstr() bool {
	switch k {
	case KindPlainInstr, KindBlockBlock, KindBlockLoop, KindBlockIf, KindBlockTryTable:
		return true
	}
	return false
}
