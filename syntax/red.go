package syntax

import "iter"

// SyntaxElement is either a *SyntaxNode or a *SyntaxToken.
type SyntaxElement interface {
	Kind() SyntaxKind
	TextRange() TextRange
	Text() string
	Parent() *SyntaxNode
	Index() int
	Key() Key
	greenElement() GreenElement
}

// Key identifies a red element within one tree: the green element it views
// plus its absolute range. Keys are comparable and stable across repeated
// navigation of the same tree, but not across parses.
type Key struct {
	green GreenElement
	Range TextRange
}

// SyntaxNode is a cursor over a green node that knows its parent, its index in
// the parent and its absolute offset. Nodes are cheap to create and are not
// cached; navigate again rather than keeping them around.
type SyntaxNode struct {
	green  *GreenNode
	parent *SyntaxNode
	index  int
	offset int
}

// SyntaxToken is a cursor over a green token.
type SyntaxToken struct {
	green  *GreenToken
	parent *SyntaxNode
	index  int
	offset int
}

// NewRoot wraps a green node as the root of a red tree.
func NewRoot(green *GreenNode) *SyntaxNode {
	return &SyntaxNode{green: green}
}

func (n *SyntaxNode) Green() *GreenNode          { return n.green }
func (n *SyntaxNode) Kind() SyntaxKind           { return n.green.kind }
func (n *SyntaxNode) Parent() *SyntaxNode        { return n.parent }
func (n *SyntaxNode) Index() int                 { return n.index }
func (n *SyntaxNode) Text() string               { return n.green.Text() }
func (n *SyntaxNode) String() string             { return n.green.Text() }
func (n *SyntaxNode) greenElement() GreenElement { return n.green }

func (n *SyntaxNode) TextRange() TextRange {
	return TextRange{Start: n.offset, End: n.offset + n.green.textLen}
}

func (n *SyntaxNode) Key() Key {
	return Key{green: n.green, Range: n.TextRange()}
}

// Root walks up to the root of the tree.
func (n *SyntaxNode) Root() *SyntaxNode {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

func (n *SyntaxNode) childAt(i int) SyntaxElement {
	offset := n.offset + n.green.offsets[i]
	switch child := n.green.children[i].(type) {
	case *GreenNode:
		return &SyntaxNode{green: child, parent: n, index: i, offset: offset}
	case *GreenToken:
		return &SyntaxToken{green: child, parent: n, index: i, offset: offset}
	}
	return nil
}

func (n *SyntaxNode) nodeAt(i int) *SyntaxNode {
	if child, ok := n.green.children[i].(*GreenNode); ok {
		return &SyntaxNode{green: child, parent: n, index: i, offset: n.offset + n.green.offsets[i]}
	}
	return nil
}

// Children yields the child nodes in order, skipping tokens.
func (n *SyntaxNode) Children() iter.Seq[*SyntaxNode] {
	return func(yield func(*SyntaxNode) bool) {
		for i := range n.green.children {
			if child := n.nodeAt(i); child != nil {
				if !yield(child) {
					return
				}
			}
		}
	}
}

// ChildrenWithTokens yields nodes and tokens in document order.
func (n *SyntaxNode) ChildrenWithTokens() iter.Seq[SyntaxElement] {
	return func(yield func(SyntaxElement) bool) {
		for i := range n.green.children {
			if !yield(n.childAt(i)) {
				return
			}
		}
	}
}

// ChildrenOfKind yields the child nodes of the given kind.
func (n *SyntaxNode) ChildrenOfKind(kind SyntaxKind) iter.Seq[*SyntaxNode] {
	return func(yield func(*SyntaxNode) bool) {
		for child := range n.Children() {
			if child.Kind() == kind && !yield(child) {
				return
			}
		}
	}
}

func (n *SyntaxNode) FirstChild() *SyntaxNode {
	for i := range n.green.children {
		if child := n.nodeAt(i); child != nil {
			return child
		}
	}
	return nil
}

func (n *SyntaxNode) LastChild() *SyntaxNode {
	for i := len(n.green.children) - 1; i >= 0; i-- {
		if child := n.nodeAt(i); child != nil {
			return child
		}
	}
	return nil
}

// FirstChildOfKind returns the first child node of the given kind, or nil.
func (n *SyntaxNode) FirstChildOfKind(kind SyntaxKind) *SyntaxNode {
	for child := range n.ChildrenOfKind(kind) {
		return child
	}
	return nil
}

func (n *SyntaxNode) FirstChildOrToken() SyntaxElement {
	if len(n.green.children) == 0 {
		return nil
	}
	return n.childAt(0)
}

func (n *SyntaxNode) LastChildOrToken() SyntaxElement {
	if len(n.green.children) == 0 {
		return nil
	}
	return n.childAt(len(n.green.children) - 1)
}

// TokenOfKind returns the first direct child token of the given kind.
func (n *SyntaxNode) TokenOfKind(kind SyntaxKind) *SyntaxToken {
	for i, child := range n.green.children {
		if tok, ok := child.(*GreenToken); ok && tok.kind == kind {
			return n.childAt(i).(*SyntaxToken)
		}
	}
	return nil
}

func (n *SyntaxNode) NextSibling() *SyntaxNode {
	if n.parent == nil {
		return nil
	}
	for i := n.index + 1; i < len(n.parent.green.children); i++ {
		if sibling := n.parent.nodeAt(i); sibling != nil {
			return sibling
		}
	}
	return nil
}

func (n *SyntaxNode) PrevSibling() *SyntaxNode {
	if n.parent == nil {
		return nil
	}
	for i := n.index - 1; i >= 0; i-- {
		if sibling := n.parent.nodeAt(i); sibling != nil {
			return sibling
		}
	}
	return nil
}

func (n *SyntaxNode) NextSiblingOrToken() SyntaxElement {
	return nextSiblingOrToken(n.parent, n.index)
}

func (n *SyntaxNode) PrevSiblingOrToken() SyntaxElement {
	return prevSiblingOrToken(n.parent, n.index)
}

func nextSiblingOrToken(parent *SyntaxNode, index int) SyntaxElement {
	if parent == nil || index+1 >= len(parent.green.children) {
		return nil
	}
	return parent.childAt(index + 1)
}

func prevSiblingOrToken(parent *SyntaxNode, index int) SyntaxElement {
	if parent == nil || index == 0 {
		return nil
	}
	return parent.childAt(index - 1)
}

// Ancestors yields n and then each enclosing node up to the root.
func (n *SyntaxNode) Ancestors() iter.Seq[*SyntaxNode] {
	return func(yield func(*SyntaxNode) bool) {
		for node := n; node != nil; node = node.parent {
			if !yield(node) {
				return
			}
		}
	}
}

// FirstToken returns the first leaf token under n, or nil for an empty node.
func (n *SyntaxNode) FirstToken() *SyntaxToken {
	for i := range n.green.children {
		switch child := n.childAt(i).(type) {
		case *SyntaxToken:
			return child
		case *SyntaxNode:
			if tok := child.FirstToken(); tok != nil {
				return tok
			}
		}
	}
	return nil
}

// LastToken returns the last leaf token under n, or nil for an empty node.
func (n *SyntaxNode) LastToken() *SyntaxToken {
	for i := len(n.green.children) - 1; i >= 0; i-- {
		switch child := n.childAt(i).(type) {
		case *SyntaxToken:
			return child
		case *SyntaxNode:
			if tok := child.LastToken(); tok != nil {
				return tok
			}
		}
	}
	return nil
}

// ChildOrTokenAtRange returns the direct child whose range contains rng.
func (n *SyntaxNode) ChildOrTokenAtRange(rng TextRange) SyntaxElement {
	rel := rng.Start - n.offset
	if rel < 0 || rng.End > n.offset+n.green.textLen {
		return nil
	}
	i := n.green.childIndexAt(rel)
	// Zero-length children share their start with the next child, so step
	// back until a child actually covers the range.
	for ; i >= 0; i-- {
		child := n.childAt(i)
		if child.TextRange().ContainsRange(rng) {
			return child
		}
		if child.TextRange().End < rng.Start {
			break
		}
	}
	return nil
}

// CoveringElement returns the deepest element whose range contains rng.
func (n *SyntaxNode) CoveringElement(rng TextRange) SyntaxElement {
	var res SyntaxElement = n
	for {
		node, ok := res.(*SyntaxNode)
		if !ok {
			return res
		}
		child := node.ChildOrTokenAtRange(rng)
		if child == nil {
			return res
		}
		res = child
	}
}

// ReplaceWith rebuilds every ancestor of n with replacement substituted for
// n and returns the new root. The current tree is not modified.
func (n *SyntaxNode) ReplaceWith(replacement *GreenNode) *GreenNode {
	if n.parent == nil {
		return replacement
	}
	return n.parent.ReplaceWith(n.parent.green.ReplaceChild(n.index, replacement))
}

func (t *SyntaxToken) Green() *GreenToken         { return t.green }
func (t *SyntaxToken) Kind() SyntaxKind           { return t.green.kind }
func (t *SyntaxToken) Text() string               { return t.green.text }
func (t *SyntaxToken) String() string             { return t.green.text }
func (t *SyntaxToken) Parent() *SyntaxNode        { return t.parent }
func (t *SyntaxToken) Index() int                 { return t.index }
func (t *SyntaxToken) greenElement() GreenElement { return t.green }

func (t *SyntaxToken) TextRange() TextRange {
	return TextRange{Start: t.offset, End: t.offset + len(t.green.text)}
}

func (t *SyntaxToken) Key() Key {
	return Key{green: t.green, Range: t.TextRange()}
}

func (t *SyntaxToken) NextSiblingOrToken() SyntaxElement {
	return nextSiblingOrToken(t.parent, t.index)
}

func (t *SyntaxToken) PrevSiblingOrToken() SyntaxElement {
	return prevSiblingOrToken(t.parent, t.index)
}

// Ancestors yields the enclosing nodes of t from the innermost outwards.
func (t *SyntaxToken) Ancestors() iter.Seq[*SyntaxNode] {
	if t.parent == nil {
		return func(func(*SyntaxNode) bool) {}
	}
	return t.parent.Ancestors()
}

// NextToken returns the following leaf token in document order.
func (t *SyntaxToken) NextToken() *SyntaxToken {
	var el SyntaxElement = t
	for el != nil {
		for sibling := siblingAfter(el); sibling != nil; sibling = siblingAfter(sibling) {
			switch s := sibling.(type) {
			case *SyntaxToken:
				return s
			case *SyntaxNode:
				if tok := s.FirstToken(); tok != nil {
					return tok
				}
			}
		}
		if parent := el.Parent(); parent != nil {
			el = parent
		} else {
			el = nil
		}
	}
	return nil
}

// PrevToken returns the preceding leaf token in document order.
func (t *SyntaxToken) PrevToken() *SyntaxToken {
	var el SyntaxElement = t
	for el != nil {
		for sibling := siblingBefore(el); sibling != nil; sibling = siblingBefore(sibling) {
			switch s := sibling.(type) {
			case *SyntaxToken:
				return s
			case *SyntaxNode:
				if tok := s.LastToken(); tok != nil {
					return tok
				}
			}
		}
		if parent := el.Parent(); parent != nil {
			el = parent
		} else {
			el = nil
		}
	}
	return nil
}

func siblingAfter(el SyntaxElement) SyntaxElement {
	return nextSiblingOrToken(el.Parent(), el.Index())
}

func siblingBefore(el SyntaxElement) SyntaxElement {
	return prevSiblingOrToken(el.Parent(), el.Index())
}

// ReplaceWith rebuilds the ancestors of t with replacement in its place and
// returns the new root.
func (t *SyntaxToken) ReplaceWith(replacement *GreenToken) *GreenNode {
	return t.parent.ReplaceWith(t.parent.green.ReplaceChild(t.index, replacement))
}
