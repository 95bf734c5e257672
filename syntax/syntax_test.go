package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleTree builds the tree for "(module (func))".
func sampleTree() *GreenNode {
	fn := NewNode(KindModuleFieldFunc, []GreenElement{
		NewToken(KindLParen, "("),
		NewToken(KindKeyword, "func"),
		NewToken(KindRParen, ")"),
	})
	module := NewNode(KindModule, []GreenElement{
		NewToken(KindLParen, "("),
		NewToken(KindKeyword, "module"),
		NewToken(KindWhitespace, " "),
		fn,
		NewToken(KindRParen, ")"),
	})
	return NewNode(KindRoot, []GreenElement{module})
}

func TestGreenNodeText(t *testing.T) {
	root := sampleTree()
	if got, want := root.Text(), "(module (func))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := root.TextLen(), 15; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
	module := root.Child(0).(*GreenNode)
	if got, want := module.ChildOffset(3), 8; got != want {
		t.Errorf("child offset: got %d, want %d", got, want)
	}
}

func TestGreenEqualAndHash(t *testing.T) {
	a, b := sampleTree(), sampleTree()
	if a == b {
		t.Fatal("expected distinct allocations")
	}
	if !GreenEqual(a, b) {
		t.Error("structurally identical trees should be equal")
	}
	if GreenHash(a) != GreenHash(b) {
		t.Error("equal trees should hash equally")
	}

	module := a.Child(0).(*GreenNode)
	changed := module.ReplaceChild(1, NewToken(KindKeyword, "modulf"))
	if GreenEqual(module, changed) {
		t.Error("trees with different token text should differ")
	}
	if got, want := module.Child(1).Text(), "module"; got != want {
		t.Errorf("original was modified: got %q, want %q", got, want)
	}
}

func TestGreenInsertRemoveChild(t *testing.T) {
	module := sampleTree().Child(0).(*GreenNode)
	inserted := module.InsertChild(2, NewToken(KindWhitespace, "  "))
	if got, want := inserted.Text(), "(module   (func))"; got != want {
		t.Errorf("insert: got %q, want %q", got, want)
	}
	removed := module.RemoveChild(2)
	if got, want := removed.Text(), "(module(func))"; got != want {
		t.Errorf("remove: got %q, want %q", got, want)
	}
}

func TestCacheInternsTokens(t *testing.T) {
	cache := NewCache()
	a := cache.Token(KindLParen, "(")
	b := cache.Token(KindLParen, "(")
	c := cache.Token(KindKeyword, "(")
	if a != b {
		t.Error("same kind and text should share a token")
	}
	if a == c {
		t.Error("different kinds must not share a token")
	}
	if got, want := cache.Len(), 2; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestRedNavigation(t *testing.T) {
	root := NewRoot(sampleTree())
	module := root.FirstChild()
	if module == nil || module.Kind() != KindModule {
		t.Fatalf("got %v, want MODULE", module)
	}
	if module.Parent() != root {
		t.Error("parent of module should be root")
	}

	fn := module.FirstChildOfKind(KindModuleFieldFunc)
	if fn == nil {
		t.Fatal("missing MODULE_FIELD_FUNC")
	}
	if got, want := fn.TextRange(), NewRange(8, 14); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := fn.Index(), 3; got != want {
		t.Errorf("index: got %d, want %d", got, want)
	}

	var kinds []SyntaxKind
	for anc := range fn.Ancestors() {
		kinds = append(kinds, anc.Kind())
	}
	if diff := cmp.Diff([]SyntaxKind{KindModuleFieldFunc, KindModule, KindRoot}, kinds); diff != "" {
		t.Errorf("ancestors mismatch (-want +got):\n%s", diff)
	}

	prev := fn.PrevSiblingOrToken()
	if prev == nil || prev.Kind() != KindWhitespace {
		t.Errorf("got %v, want WHITESPACE", prev)
	}
	next := fn.NextSiblingOrToken()
	if next == nil || next.Kind() != KindRParen || next.TextRange() != NewRange(14, 15) {
		t.Errorf("got %v, want R_PAREN@14..15", next)
	}
	if fn.NextSibling() != nil {
		t.Error("func has no following sibling node")
	}

	first, last := root.FirstToken(), root.LastToken()
	if first.TextRange() != NewRange(0, 1) || last.TextRange() != NewRange(14, 15) {
		t.Errorf("got %v and %v", first.TextRange(), last.TextRange())
	}
}

func TestTokenNeighbours(t *testing.T) {
	root := NewRoot(sampleTree())
	tok := root.TokenAtOffset(10).Left
	if tok == nil || tok.Text() != "func" {
		t.Fatalf("got %v, want func", tok)
	}
	if got := tok.PrevToken(); got == nil || got.Text() != "(" || got.TextRange().Start != 8 {
		t.Errorf("prev: got %v", got)
	}
	closeFn := tok.NextToken()
	if closeFn == nil || closeFn.TextRange() != NewRange(13, 14) {
		t.Fatalf("next: got %v", closeFn)
	}
	closeModule := closeFn.NextToken()
	if closeModule == nil || closeModule.TextRange() != NewRange(14, 15) {
		t.Fatalf("next across parent: got %v", closeModule)
	}
	if closeModule.NextToken() != nil {
		t.Error("last token has no successor")
	}
}

func TestTokenAtOffset(t *testing.T) {
	root := NewRoot(sampleTree())
	tests := []struct {
		name   string
		offset int
		kind   TokenAtOffsetKind
		texts  []string
	}{
		{"inside keyword", 3, TokenSingle, []string{"module"}},
		{"boundary", 1, TokenBetween, []string{"(", "module"}},
		{"start of file", 0, TokenSingle, []string{"("}},
		{"end of file", 15, TokenSingle, []string{")"}},
		{"past end", 16, TokenNone, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := root.TokenAtOffset(tt.offset)
			if res.Kind != tt.kind {
				t.Errorf("kind: got %v, want %v", res.Kind, tt.kind)
			}
			var texts []string
			for _, tok := range res.Tokens() {
				texts = append(texts, tok.Text())
			}
			if diff := cmp.Diff(tt.texts, texts); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenAtOffsetEmptyTree(t *testing.T) {
	root := NewRoot(NewNode(KindRoot, nil))
	if got := root.TokenAtOffset(0); got.Kind != TokenNone {
		t.Errorf("got %v, want TokenNone", got.Kind)
	}
}

func TestDescendantsPreorder(t *testing.T) {
	root := NewRoot(sampleTree())
	var kinds []SyntaxKind
	for _, node := range root.Descendants().All() {
		kinds = append(kinds, node.Kind())
	}
	want := []SyntaxKind{KindRoot, KindModule, KindModuleFieldFunc}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDescendantsSkipSubtree(t *testing.T) {
	root := NewRoot(sampleTree())
	var kinds []SyntaxKind
	it := root.Descendants()
	for it.Next() {
		kinds = append(kinds, it.Node().Kind())
		if it.Node().Kind() == KindModule {
			it.SkipSubtree()
		}
	}
	if diff := cmp.Diff([]SyntaxKind{KindRoot, KindModule}, kinds); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDescendantsWithTokensReproducesText(t *testing.T) {
	root := NewRoot(sampleTree())
	var text string
	for _, tok := range root.Tokens() {
		text += tok.Text()
	}
	if got, want := text, "(module (func))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCoveringElement(t *testing.T) {
	root := NewRoot(sampleTree())
	el := root.CoveringElement(NewRange(9, 13))
	if el.Kind() != KindKeyword || el.Text() != "func" {
		t.Errorf("got %s %q, want KEYWORD func", el.Kind(), el.Text())
	}
	el = root.CoveringElement(NewRange(8, 15))
	if el.Kind() != KindModule {
		t.Errorf("got %s, want MODULE", el.Kind())
	}
}

func TestReplaceWith(t *testing.T) {
	root := NewRoot(sampleTree())
	fn := root.FirstChild().FirstChildOfKind(KindModuleFieldFunc)
	replacement := NewNode(KindModuleFieldFunc, []GreenElement{
		NewToken(KindLParen, "("),
		NewToken(KindKeyword, "func"),
		NewToken(KindWhitespace, " "),
		NewToken(KindIdent, "$f"),
		NewToken(KindRParen, ")"),
	})
	newRoot := fn.ReplaceWith(replacement)
	if got, want := newRoot.Text(), "(module (func $f))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := root.Text(), "(module (func))"; got != want {
		t.Errorf("original changed: got %q, want %q", got, want)
	}
}

func TestNodePtrAndKey(t *testing.T) {
	root := NewRoot(sampleTree())
	fn := root.FirstChild().FirstChildOfKind(KindModuleFieldFunc)
	ptr := NewNodePtr(fn)
	if got, want := ptr.String(), "MODULE_FIELD_FUNC@8..14"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	again, err := ptr.ToNode(NewRoot(root.Green()))
	if err != nil {
		t.Fatal(err)
	}
	if again.Key() != fn.Key() {
		t.Error("resolved node should have the same key")
	}

	missing := NodePtr{Kind: KindModuleFieldGlobal, Range: NewRange(8, 14)}
	if _, err := missing.ToNode(root); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestDebug(t *testing.T) {
	root := NewRoot(sampleTree())
	want := `ROOT@0..15
  MODULE@0..15
    L_PAREN@0..1 "("
    KEYWORD@1..7 "module"
    WHITESPACE@7..8 " "
    MODULE_FIELD_FUNC@8..14
      L_PAREN@8..9 "("
      KEYWORD@9..13 "func"
      R_PAREN@13..14 ")"
    R_PAREN@14..15 ")"
`
	if diff := cmp.Diff(want, root.Debug()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestKindString(t *testing.T) {
	if got, want := KindModuleFieldFunc.String(), "MODULE_FIELD_FUNC"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := SyntaxKind(9999).String(), "Unknown"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	k, ok := KindFromString("BLOCK_IF_THEN")
	if !ok || k != KindBlockIfThen {
		t.Errorf("got %v %v", k, ok)
	}
	if !KindLineComment.IsTrivia() || KindLParen.IsTrivia() {
		t.Error("trivia classification is wrong")
	}
	if !KindFloat.IsToken() || KindRoot.IsToken() {
		t.Error("token classification is wrong")
	}
}

func TestLineIndex(t *testing.T) {
	li := NewLineIndex("ab\néx\n\U0001F600z")
	tests := []struct {
		offset int
		byteC  LineCol
		utf16C LineCol
	}{
		{0, LineCol{0, 0}, LineCol{0, 0}},
		{3, LineCol{1, 0}, LineCol{1, 0}},
		{5, LineCol{1, 2}, LineCol{1, 1}},
		{11, LineCol{2, 4}, LineCol{2, 2}},
		{100, LineCol{2, 5}, LineCol{2, 3}},
	}
	for _, tt := range tests {
		if got := li.LineCol(tt.offset); got != tt.byteC {
			t.Errorf("LineCol(%d): got %v, want %v", tt.offset, got, tt.byteC)
		}
		if got := li.UTF16Col(tt.offset); got != tt.utf16C {
			t.Errorf("UTF16Col(%d): got %v, want %v", tt.offset, got, tt.utf16C)
		}
	}
	if got, want := li.OffsetUTF16(LineCol{2, 2}), 11; got != want {
		t.Errorf("OffsetUTF16: got %d, want %d", got, want)
	}
	if got, want := li.Line(1), "éx"; got != want {
		t.Errorf("Line: got %q, want %q", got, want)
	}
}
