package syntax

// WalkEvent is emitted by a preorder walk when entering or leaving an element.
type WalkEvent int

const (
	Enter WalkEvent = iota
	Leave
)

func (e WalkEvent) String() string {
	if e == Enter {
		return "Enter"
	}
	return "Leave"
}

// Preorder walks the nodes of a subtree, reporting both entry and exit.
//
//	walk := root.Preorder()
//	for walk.Next() {
//		if walk.Event() == syntax.Enter && walk.Node().Kind() == syntax.KindPlainInstr {
//			walk.SkipSubtree()
//		}
//	}
type Preorder struct {
	start   *SyntaxNode
	next    *SyntaxNode
	nextEv  WalkEvent
	current *SyntaxNode
	event   WalkEvent
}

// Preorder returns a walker positioned before n.
func (n *SyntaxNode) Preorder() *Preorder {
	return &Preorder{start: n, next: n, nextEv: Enter}
}

// Next advances the walk and reports whether an event is available.
func (p *Preorder) Next() bool {
	if p.next == nil {
		p.current = nil
		return false
	}
	p.current, p.event = p.next, p.nextEv
	switch p.event {
	case Enter:
		if child := p.current.FirstChild(); child != nil {
			p.next, p.nextEv = child, Enter
		} else {
			p.next, p.nextEv = p.current, Leave
		}
	case Leave:
		if p.current == p.start {
			p.next = nil
		} else if sibling := p.current.NextSibling(); sibling != nil {
			p.next, p.nextEv = sibling, Enter
		} else {
			p.next, p.nextEv = p.current.parent, Leave
		}
	}
	return true
}

func (p *Preorder) Node() *SyntaxNode { return p.current }
func (p *Preorder) Event() WalkEvent  { return p.event }

// SkipSubtree prevents the walk from descending into the node that was just
// entered. The next event is that node's Leave.
func (p *Preorder) SkipSubtree() {
	if p.current != nil && p.event == Enter {
		p.next, p.nextEv = p.current, Leave
	}
}

// Descendants iterates the subtree rooted at a node in preorder, starting
// with the node itself.
//
//	it := root.Descendants()
//	for it.Next() {
//		node := it.Node()
//		...
//	}
type Descendants struct {
	walk *Preorder
}

// Descendants returns a preorder iterator over n and every node below it.
func (n *SyntaxNode) Descendants() *Descendants {
	return &Descendants{walk: n.Preorder()}
}

func (d *Descendants) Next() bool {
	for d.walk.Next() {
		if d.walk.event == Enter {
			return true
		}
	}
	return false
}

func (d *Descendants) Node() *SyntaxNode {
	return d.walk.current
}

// SkipSubtree prunes the children of the node last returned by Node.
func (d *Descendants) SkipSubtree() {
	d.walk.SkipSubtree()
}

// All drains the iterator into a slice.
func (d *Descendants) All() []*SyntaxNode {
	var nodes []*SyntaxNode
	for d.Next() {
		nodes = append(nodes, d.Node())
	}
	return nodes
}

// PreorderWithTokens walks nodes and tokens. Tokens produce an Enter event
// immediately followed by a Leave event.
type PreorderWithTokens struct {
	start   *SyntaxNode
	next    SyntaxElement
	nextEv  WalkEvent
	current SyntaxElement
	event   WalkEvent
}

func (n *SyntaxNode) PreorderWithTokens() *PreorderWithTokens {
	return &PreorderWithTokens{start: n, next: n, nextEv: Enter}
}

func (p *PreorderWithTokens) Next() bool {
	if p.next == nil {
		p.current = nil
		return false
	}
	p.current, p.event = p.next, p.nextEv
	switch p.event {
	case Enter:
		switch el := p.current.(type) {
		case *SyntaxNode:
			if child := el.FirstChildOrToken(); child != nil {
				p.next, p.nextEv = child, Enter
			} else {
				p.next, p.nextEv = el, Leave
			}
		case *SyntaxToken:
			p.next, p.nextEv = el, Leave
		}
	case Leave:
		if node, ok := p.current.(*SyntaxNode); ok && node == p.start {
			p.next = nil
		} else if sibling := siblingAfter(p.current); sibling != nil {
			p.next, p.nextEv = sibling, Enter
		} else {
			p.next, p.nextEv = p.current.Parent(), Leave
		}
	}
	return true
}

func (p *PreorderWithTokens) Element() SyntaxElement { return p.current }
func (p *PreorderWithTokens) Event() WalkEvent       { return p.event }

// SkipSubtree prevents descending into the node that was just entered.
func (p *PreorderWithTokens) SkipSubtree() {
	if node, ok := p.current.(*SyntaxNode); ok && p.event == Enter {
		p.next, p.nextEv = node, Leave
	}
}

// DescendantsWithTokens iterates nodes and tokens of a subtree in preorder.
type DescendantsWithTokens struct {
	walk *PreorderWithTokens
}

func (n *SyntaxNode) DescendantsWithTokens() *DescendantsWithTokens {
	return &DescendantsWithTokens{walk: n.PreorderWithTokens()}
}

func (d *DescendantsWithTokens) Next() bool {
	for d.walk.Next() {
		if d.walk.event == Enter {
			return true
		}
	}
	return false
}

func (d *DescendantsWithTokens) Element() SyntaxElement {
	return d.walk.current
}

func (d *DescendantsWithTokens) SkipSubtree() {
	d.walk.SkipSubtree()
}

// Tokens yields every leaf token under n in document order.
func (n *SyntaxNode) Tokens() []*SyntaxToken {
	var tokens []*SyntaxToken
	it := n.DescendantsWithTokens()
	for it.Next() {
		if tok, ok := it.Element().(*SyntaxToken); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
