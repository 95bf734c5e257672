package syntax

import "fmt"

// NodePtr is a lightweight handle to a node: its kind and absolute range.
// It can be kept after the red tree is dropped and resolved later against
// any root built from the same green tree.
type NodePtr struct {
	Kind  SyntaxKind
	Range TextRange
}

func NewNodePtr(n *SyntaxNode) NodePtr {
	return NodePtr{Kind: n.Kind(), Range: n.TextRange()}
}

// ToNode locates the pointed-to node under root. It descends only into
// children whose range contains the target, so the cost is proportional to
// the depth of the tree.
func (p NodePtr) ToNode(root *SyntaxNode) (*SyntaxNode, error) {
	if node := p.find(root); node != nil {
		return node, nil
	}
	return nil, fmt.Errorf("no %s node at %s", p.Kind, p.Range)
}

func (p NodePtr) find(node *SyntaxNode) *SyntaxNode {
	if node.Kind() == p.Kind && node.TextRange() == p.Range {
		return node
	}
	for child := range node.Children() {
		rng := child.TextRange()
		if rng.Start > p.Range.Start {
			break
		}
		if rng.ContainsRange(p.Range) {
			if found := p.find(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func (p NodePtr) String() string {
	return fmt.Sprintf("%s@%s", p.Kind, p.Range)
}
