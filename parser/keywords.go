package parser

import "slices"

// ModuleFieldKeywords are the keywords that may open a module field.
var ModuleFieldKeywords = []string{
	"data", "elem", "export", "func", "global", "import",
	"memory", "rec", "start", "table", "tag", "type",
}

// NumTypeKeywords are the number types.
var NumTypeKeywords = []string{"i32", "i64", "f32", "f64"}

// VecTypeKeywords are the vector types.
var VecTypeKeywords = []string{"v128"}

// RefTypeKeywords are the abbreviated reference types.
var RefTypeKeywords = []string{
	"anyref", "eqref", "i31ref", "structref", "arrayref", "nullref",
	"funcref", "nullfuncref", "exnref", "nullexnref",
	"externref", "nullexternref", "contref", "nullcontref",
}

// HeapTypeKeywords are the abstract heap types.
var HeapTypeKeywords = []string{
	"any", "eq", "i31", "struct", "array", "none",
	"func", "nofunc", "exn", "noexn", "extern", "noextern", "cont", "nocont",
}

// PackedTypeKeywords are the storage-only packed types.
var PackedTypeKeywords = []string{"i8", "i16"}

// AddrTypeKeywords are the index types of memories and tables.
var AddrTypeKeywords = []string{"i32", "i64"}

// ShapeDescriptors are the lane shapes of SIMD instructions.
var ShapeDescriptors = []string{"i8x16", "i16x8", "i32x4", "i64x2", "f32x4", "f64x2"}

// ShareKeywords are accepted after memory limits.
var ShareKeywords = []string{"shared", "unshared"}

// ModifierKeywords are classified as MODIFIER_KEYWORD.
var ModifierKeywords = []string{"null", "final"}

// BlockInstrNames are the structured control instructions.
var BlockInstrNames = []string{"block", "loop", "if", "try_table"}

// CatchKeywords open the catch clauses of try_table.
var CatchKeywords = []string{"catch", "catch_ref", "catch_all", "catch_all_ref"}

var (
	moduleKeywords = append([]string{"module"}, ModuleFieldKeywords...)

	// Words that never start an instruction. Module field keywords are
	// included so a field following an unclosed function is left for the
	// module to parse.
	reservedInstrWords = append([]string{"then", "else", "end"}, ModuleFieldKeywords...)

	bodyAllowed   = ModuleFieldKeywords
	endAllowed    = append([]string{"end"}, ModuleFieldKeywords...)
	ifThenAllowed = append([]string{"end", "else"}, ModuleFieldKeywords...)
	ifCondAllowed = append([]string{"then", "else"}, ModuleFieldKeywords...)

	otherKeywords = []string{
		"module", "local", "param", "result", "mut", "sub", "struct", "array",
		"field", "ref", "item", "offset", "declare", "then", "else", "end",
		"pagesize", "cont",
	}
)

// IsKeyword reports whether word is a keyword of the text format, as opposed
// to an instruction name.
func IsKeyword(word string) bool {
	return slices.Contains(ModuleFieldKeywords, word) ||
		slices.Contains(otherKeywords, word) ||
		slices.Contains(BlockInstrNames, word) ||
		slices.Contains(CatchKeywords, word) ||
		slices.Contains(ShareKeywords, word)
}

// IsTypeKeyword reports whether word names a value, heap or packed type.
func IsTypeKeyword(word string) bool {
	return slices.Contains(NumTypeKeywords, word) ||
		slices.Contains(VecTypeKeywords, word) ||
		slices.Contains(RefTypeKeywords, word) ||
		slices.Contains(HeapTypeKeywords, word) ||
		slices.Contains(PackedTypeKeywords, word)
}
