package syntax

import (
	"encoding/binary"
	"hash/maphash"
	"io"
	"iter"
	"slices"
	"sort"
	"strings"
)

// GreenElement is either a *GreenNode or a *GreenToken.
type GreenElement interface {
	Kind() SyntaxKind
	TextLen() int
	Text() string
	writeText(sb *strings.Builder)
	hash(h *maphash.Hash)
}

// GreenToken is an immutable leaf: a kind and the exact source text it covers.
type GreenToken struct {
	kind SyntaxKind
	text string
}

// NewToken creates a token. No validation is performed on the kind/text pair.
func NewToken(kind SyntaxKind, text string) *GreenToken {
	return &GreenToken{kind: kind, text: text}
}

func (t *GreenToken) Kind() SyntaxKind { return t.kind }
func (t *GreenToken) Text() string     { return t.text }
func (t *GreenToken) TextLen() int     { return len(t.text) }

func (t *GreenToken) String() string {
	return t.text
}

func (t *GreenToken) writeText(sb *strings.Builder) {
	sb.WriteString(t.text)
}

func (t *GreenToken) hash(h *maphash.Hash) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(t.kind))
	h.Write(buf[:])
	h.WriteString(t.text)
	h.WriteByte(0)
}

// Equal reports whether both tokens have the same kind and text.
func (t *GreenToken) Equal(other *GreenToken) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.kind == other.kind && t.text == other.text
}

// GreenNode is an immutable interior node. Its children are fixed at
// construction and its text length is cached.
type GreenNode struct {
	kind     SyntaxKind
	textLen  int
	children []GreenElement
	offsets  []int
}

// NewNode creates a node owning a copy of children.
func NewNode(kind SyntaxKind, children []GreenElement) *GreenNode {
	n := &GreenNode{
		kind:     kind,
		children: slices.Clone(children),
		offsets:  make([]int, len(children)),
	}
	for i, child := range n.children {
		n.offsets[i] = n.textLen
		n.textLen += child.TextLen()
	}
	return n
}

func (n *GreenNode) Kind() SyntaxKind { return n.kind }
func (n *GreenNode) TextLen() int     { return n.textLen }

// Len returns the number of direct children.
func (n *GreenNode) Len() int {
	return len(n.children)
}

func (n *GreenNode) Child(i int) GreenElement {
	return n.children[i]
}

// ChildOffset returns the start of child i relative to the start of n.
func (n *GreenNode) ChildOffset(i int) int {
	return n.offsets[i]
}

func (n *GreenNode) Children() iter.Seq2[int, GreenElement] {
	return func(yield func(int, GreenElement) bool) {
		for i, child := range n.children {
			if !yield(i, child) {
				return
			}
		}
	}
}

// childIndexAt returns the index of the last child starting at or before the
// relative offset.
func (n *GreenNode) childIndexAt(offset int) int {
	i := sort.Search(len(n.offsets), func(i int) bool {
		return n.offsets[i] > offset
	})
	return i - 1
}

// ReplaceChild returns a new node with child i replaced. n is left untouched
// and no ancestor is updated.
func (n *GreenNode) ReplaceChild(i int, child GreenElement) *GreenNode {
	children := slices.Clone(n.children)
	children[i] = child
	return NewNode(n.kind, children)
}

// InsertChild returns a new node with child inserted before index i.
func (n *GreenNode) InsertChild(i int, child GreenElement) *GreenNode {
	return NewNode(n.kind, slices.Insert(slices.Clone(n.children), i, child))
}

// RemoveChild returns a new node without child i.
func (n *GreenNode) RemoveChild(i int) *GreenNode {
	return NewNode(n.kind, slices.Delete(slices.Clone(n.children), i, i+1))
}

// Text reconstructs the source text covered by the node.
func (n *GreenNode) Text() string {
	var sb strings.Builder
	sb.Grow(n.textLen)
	n.writeText(&sb)
	return sb.String()
}

func (n *GreenNode) String() string {
	return n.Text()
}

func (n *GreenNode) writeText(sb *strings.Builder) {
	for _, child := range n.children {
		child.writeText(sb)
	}
}

// WriteTo writes the node's text to w.
func (n *GreenNode) WriteTo(w io.Writer) (int64, error) {
	written, err := io.WriteString(w, n.Text())
	return int64(written), err
}

func (n *GreenNode) hash(h *maphash.Hash) {
	var buf [10]byte
	binary.LittleEndian.PutUint16(buf[:2], uint16(n.kind))
	binary.LittleEndian.PutUint64(buf[2:], uint64(len(n.children)))
	h.Write(buf[:])
	for _, child := range n.children {
		child.hash(h)
	}
}

// Equal reports structural equality: same kind and pairwise equal children.
func (n *GreenNode) Equal(other *GreenNode) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.kind != other.kind || n.textLen != other.textLen || len(n.children) != len(other.children) {
		return false
	}
	for i := range n.children {
		if !GreenEqual(n.children[i], other.children[i]) {
			return false
		}
	}
	return true
}

// GreenEqual compares two green elements structurally.
func GreenEqual(a, b GreenElement) bool {
	switch a := a.(type) {
	case *GreenNode:
		b, ok := b.(*GreenNode)
		return ok && a.Equal(b)
	case *GreenToken:
		b, ok := b.(*GreenToken)
		return ok && a.Equal(b)
	}
	return a == nil && b == nil
}

var hashSeed = maphash.MakeSeed()

// GreenHash returns a structural hash of e, consistent with GreenEqual within
// one process.
func GreenHash(e GreenElement) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	e.hash(&h)
	return h.Sum64()
}

type tokenKey struct {
	kind SyntaxKind
	text string
}

// Cache interns green tokens so equal tokens produced during one parse share
// a single allocation. A Cache is not safe for concurrent use.
type Cache struct {
	tokens map[tokenKey]*GreenToken
}

func NewCache() *Cache {
	return &Cache{tokens: make(map[tokenKey]*GreenToken)}
}

// Token returns the interned token for kind and text.
func (c *Cache) Token(kind SyntaxKind, text string) *GreenToken {
	key := tokenKey{kind: kind, text: text}
	if tok, ok := c.tokens[key]; ok {
		return tok
	}
	tok := NewToken(kind, text)
	c.tokens[key] = tok
	return tok
}

// Len returns the number of distinct tokens interned so far.
func (c *Cache) Len() int {
	return len(c.tokens)
}
