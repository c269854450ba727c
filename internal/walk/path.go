package walk

import "strings"

// PathNode is one step of a structural path: a field of an owning type.
type PathNode struct {
	Type  string
	Field string
}

func (n PathNode) String() string {
	return ">[" + n.Type + "][" + n.Field + "]"
}

// Path is the ordered ancestry of fields from a root asset to the field
// being inspected. A Path is never modified after creation; Append returns
// a new Path that shares nothing with the receiver.
type Path struct {
	nodes []PathNode
}

// NewPath returns a path holding nodes in order.
func NewPath(nodes ...PathNode) Path {
	return Path{nodes: append([]PathNode(nil), nodes...)}
}

// Append returns a copy of p extended by n.
func (p Path) Append(n PathNode) Path {
	nodes := make([]PathNode, len(p.nodes)+1)
	copy(nodes, p.nodes)
	nodes[len(p.nodes)] = n
	return Path{nodes: nodes}
}

// Len returns the number of nodes.
func (p Path) Len() int { return len(p.nodes) }

// Last returns the final node. ok is false for the empty path.
func (p Path) Last() (n PathNode, ok bool) {
	if len(p.nodes) == 0 {
		return PathNode{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

// Parent returns p without its final node.
func (p Path) Parent() Path {
	if len(p.nodes) == 0 {
		return p
	}
	return Path{nodes: p.nodes[:len(p.nodes)-1:len(p.nodes)-1]}
}

// Contains reports whether n occurs anywhere in p.
func (p Path) Contains(n PathNode) bool {
	for _, x := range p.nodes {
		if x == n {
			return true
		}
	}
	return false
}

// ContainsType reports whether any node's owning type is in types.
func (p Path) ContainsType(types map[string]bool) bool {
	if len(types) == 0 {
		return false
	}
	for _, x := range p.nodes {
		if types[x.Type] {
			return true
		}
	}
	return false
}

// String renders the path for display. It is never parsed back.
func (p Path) String() string {
	var b strings.Builder
	for _, n := range p.nodes {
		b.WriteString(n.String())
	}
	return b.String()
}
