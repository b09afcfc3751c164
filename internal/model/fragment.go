package model

import "strings"

// Fragment is an immutable sequence of child nodes.
type Fragment struct {
	nodes []*Node
	size  int
}

// EmptyFragment is the fragment without children.
var EmptyFragment = Fragment{}

// FragmentFrom builds a fragment from nodes, skipping nils and joining
// adjacent text nodes that carry the same marks.
func FragmentFrom(nodes ...*Node) Fragment {
	var joined []*Node
	size := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		size += n.NodeSize()
		if last := len(joined) - 1; last >= 0 && n.IsText() && joined[last].SameMarkup(n) {
			joined[last] = joined[last].WithText(joined[last].text + n.text)
			continue
		}
		joined = append(joined, n)
	}
	if len(joined) == 0 {
		return EmptyFragment
	}
	return Fragment{nodes: joined, size: size}
}

// Size returns the total size of the children.
func (f Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f Fragment) ChildCount() int { return len(f.nodes) }

// Child returns the child at index i. It panics when i is out of range.
func (f Fragment) Child(i int) *Node { return f.nodes[i] }

// MaybeChild returns the child at index i, or nil when out of range.
func (f Fragment) MaybeChild(i int) *Node {
	if i < 0 || i >= len(f.nodes) {
		return nil
	}
	return f.nodes[i]
}

// FirstChild returns the first child, or nil.
func (f Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f Fragment) LastChild() *Node { return f.MaybeChild(len(f.nodes) - 1) }

// Nodes returns a copy of the children.
func (f Fragment) Nodes() []*Node { return append([]*Node(nil), f.nodes...) }

// Append returns the concatenation of two fragments.
func (f Fragment) Append(other Fragment) Fragment {
	if other.size == 0 && len(other.nodes) == 0 {
		return f
	}
	if f.size == 0 && len(f.nodes) == 0 {
		return other
	}
	nodes := make([]*Node, 0, len(f.nodes)+len(other.nodes))
	nodes = append(nodes, f.nodes...)
	nodes = append(nodes, other.nodes...)
	return FragmentFrom(nodes...)
}

// Cut returns the part of the fragment between two content offsets.
func (f Fragment) Cut(from, to int) Fragment {
	if from == 0 && to >= f.size {
		return f
	}
	var result []*Node
	if to > from {
		pos := 0
		for i := 0; i < len(f.nodes) && pos < to; i++ {
			child := f.nodes[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.Cut(max(0, from-pos), min(child.textLen(), to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.content.size, to-pos-1))
					}
				}
				result = append(result, child)
			}
			pos = end
		}
	}
	return FragmentFrom(result...)
}

// CutByIndex returns the children in [from, to).
func (f Fragment) CutByIndex(from, to int) Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.nodes) {
		return f
	}
	return FragmentFrom(f.nodes[from:to]...)
}

// ReplaceChild returns a fragment with the child at index i replaced.
func (f Fragment) ReplaceChild(i int, n *Node) Fragment {
	if f.nodes[i] == n {
		return f
	}
	nodes := append([]*Node(nil), f.nodes...)
	size := f.size - nodes[i].NodeSize() + n.NodeSize()
	nodes[i] = n
	return Fragment{nodes: nodes, size: size}
}

// AddToStart returns a fragment with n prepended.
func (f Fragment) AddToStart(n *Node) Fragment {
	return FragmentFrom(append([]*Node{n}, f.nodes...)...)
}

// AddToEnd returns a fragment with n appended.
func (f Fragment) AddToEnd(n *Node) Fragment {
	return FragmentFrom(append(append([]*Node(nil), f.nodes...), n)...)
}

// FindIndex returns the index of the child containing content offset pos
// and the offset where that child starts. With round > 0 a position at a
// child boundary resolves to the following child.
func (f Fragment) FindIndex(pos int, round int) (index, offset int) {
	if pos <= 0 {
		return 0, 0
	}
	if pos >= f.size {
		return len(f.nodes), f.size
	}
	cur := 0
	for i, child := range f.nodes {
		end := cur + child.NodeSize()
		if end >= pos {
			if end == pos || round > 0 {
				return i + 1, end
			}
			return i, cur
		}
		cur = end
	}
	return len(f.nodes), f.size
}

// NodesBetween calls fn for every node overlapping the content range
// [from, to), passing the node, its absolute position, its parent and its
// index. Returning false from fn skips the node's children.
func (f Fragment) NodesBetween(from, to int, fn func(n *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; i < len(f.nodes) && pos < to; i++ {
		child := f.nodes[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.content.size > 0 {
			start := pos + 1
			child.content.NodesBetween(max(0, from-start), min(child.content.size, to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// Eq reports whether two fragments have equal children.
func (f Fragment) Eq(other Fragment) bool {
	if len(f.nodes) != len(other.nodes) {
		return false
	}
	for i, n := range f.nodes {
		if !n.Eq(other.nodes[i]) {
			return false
		}
	}
	return true
}

// String renders the fragment for debugging.
func (f Fragment) String() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (f Fragment) childString() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
