package syntax

// TokenAtOffsetKind tells how many tokens touch an offset.
type TokenAtOffsetKind int

const (
	// TokenNone means the offset is outside the node or the node is empty.
	TokenNone TokenAtOffsetKind = iota
	// TokenSingle means exactly one token contains or ends at the offset.
	TokenSingle
	// TokenBetween means the offset is the boundary between two tokens.
	TokenBetween
)

// TokenAtOffset is the result of SyntaxNode.TokenAtOffset. For TokenSingle
// only Left is set.
type TokenAtOffset struct {
	Kind  TokenAtOffsetKind
	Left  *SyntaxToken
	Right *SyntaxToken
}

// RightBiased returns the token starting at the offset when the offset is a
// boundary, the single token otherwise.
func (t TokenAtOffset) RightBiased() *SyntaxToken {
	if t.Kind == TokenBetween {
		return t.Right
	}
	return t.Left
}

// LeftBiased returns the token ending at the offset when the offset is a
// boundary, the single token otherwise.
func (t TokenAtOffset) LeftBiased() *SyntaxToken {
	return t.Left
}

// Tokens returns the zero, one or two tokens in document order.
func (t TokenAtOffset) Tokens() []*SyntaxToken {
	switch t.Kind {
	case TokenSingle:
		return []*SyntaxToken{t.Left}
	case TokenBetween:
		return []*SyntaxToken{t.Left, t.Right}
	}
	return nil
}

// TokenAtOffset finds the leaf tokens touching offset. Zero-length children
// are ignored. An offset equal to the end of the node is accepted.
func (n *SyntaxNode) TokenAtOffset(offset int) TokenAtOffset {
	rng := n.TextRange()
	if rng.IsEmpty() || !rng.ContainsInclusive(offset) {
		return TokenAtOffset{}
	}
	var left, right SyntaxElement
	for child := range n.ChildrenWithTokens() {
		childRange := child.TextRange()
		if childRange.IsEmpty() || !childRange.ContainsInclusive(offset) {
			continue
		}
		if left == nil {
			left = child
		} else {
			right = child
			break
		}
	}
	if left == nil {
		return TokenAtOffset{}
	}
	if right == nil {
		return elementTokenAtOffset(left, offset)
	}
	l := elementTokenAtOffset(left, offset)
	r := elementTokenAtOffset(right, offset)
	return TokenAtOffset{Kind: TokenBetween, Left: l.Left, Right: r.Left}
}

func elementTokenAtOffset(el SyntaxElement, offset int) TokenAtOffset {
	switch el := el.(type) {
	case *SyntaxToken:
		return TokenAtOffset{Kind: TokenSingle, Left: el}
	case *SyntaxNode:
		return el.TokenAtOffset(offset)
	}
	return TokenAtOffset{}
}
