package model

// ResolvedPos is a position annotated with its ancestor chain. It is only
// meaningful for the document it was resolved in.
type ResolvedPos struct {
	// Pos is the resolved offset.
	Pos int
	// Depth is the depth of the immediate parent; the root has depth 0.
	Depth int
	// ParentOffset is the offset into the parent's content.
	ParentOffset int

	path []pathEntry
}

type pathEntry struct {
	node   *Node
	index  int
	offset int // absolute position where the child at index starts
}

// Ancestor is one frame of a resolved position's ancestor chain.
//
// Before is the position just outside the node's opening token, Start just
// inside it, End just inside the closing token and After just outside it.
// For the root, Before equals Start and After equals End.
type Ancestor struct {
	Node   *Node
	Depth  int
	Before int
	Start  int
	End    int
	After  int
}

// Resolve resolves a position in the node's content. The position is
// clamped to [0, content size].
func (n *Node) Resolve(pos int) *ResolvedPos {
	pos = max(0, min(pos, n.content.size))
	var path []pathEntry
	start := 0
	parentOffset := pos
	for node := n; ; {
		index, offset := node.content.FindIndex(parentOffset, -1)
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.content.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}
}

func (r *ResolvedPos) resolveDepth(d int) int {
	if d < 0 {
		return r.Depth + d
	}
	return d
}

// Doc returns the root node.
func (r *ResolvedPos) Doc() *Node { return r.path[0].node }

// Parent returns the immediate parent node.
func (r *ResolvedPos) Parent() *Node { return r.path[r.Depth].node }

// Node returns the ancestor at depth d. Negative depths count up from the parent.
func (r *ResolvedPos) Node(d int) *Node { return r.path[r.resolveDepth(d)].node }

// Index returns the index into the ancestor at depth d.
func (r *ResolvedPos) Index(d int) int { return r.path[r.resolveDepth(d)].index }

// IndexAfter returns the index pointing after this position in the ancestor at depth d.
func (r *ResolvedPos) IndexAfter(d int) int {
	d = r.resolveDepth(d)
	if d == r.Depth && r.TextOffset() == 0 {
		return r.Index(d)
	}
	return r.Index(d) + 1
}

// Start returns the position at the start of the ancestor at depth d.
func (r *ResolvedPos) Start(d int) int {
	d = r.resolveDepth(d)
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns the position at the end of the ancestor at depth d.
func (r *ResolvedPos) End(d int) int {
	d = r.resolveDepth(d)
	return r.Start(d) + r.Node(d).content.size
}

// Before returns the position before the ancestor at depth d.
// At depth 0 this is 0.
func (r *ResolvedPos) Before(d int) int {
	d = r.resolveDepth(d)
	if d == 0 {
		return 0
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset
}

// After returns the position after the ancestor at depth d.
// At depth 0 this is the document content size.
func (r *ResolvedPos) After(d int) int {
	d = r.resolveDepth(d)
	if d == 0 {
		return r.End(0)
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset + r.path[d].node.NodeSize()
}

// TextOffset returns the offset into a text node when the position points
// inside one, and 0 otherwise.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[r.Depth].offset
}

// NodeAfter returns the node directly after the position, cut at the
// position when it is inside text.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.Cut(off, child.textLen())
	}
	return child
}

// NodeBefore returns the node directly before the position, cut at the
// position when it is inside text.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().Child(index).Cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// PosAtIndex returns the position at the start of child index of the
// ancestor at depth d.
func (r *ResolvedPos) PosAtIndex(index, d int) int {
	d = r.resolveDepth(d)
	node := r.path[d].node
	pos := r.Start(d)
	for i := 0; i < index; i++ {
		pos += node.Child(i).NodeSize()
	}
	return pos
}

// Marks returns the marks at this position as seen by content typed here:
// the marks of the content before the position, or after it at the start
// of a parent. Non-inclusive marks are dropped at their end.
func (r *ResolvedPos) Marks() []*Mark {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.content.size == 0 {
		return nil
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).marks
	}
	main, other := parent.MaybeChild(index-1), parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	marks := main.marks
	for i := 0; i < len(marks); i++ {
		m := marks[i]
		if !m.typ.Inclusive() && (other == nil || !m.IsInSet(other.marks)) {
			marks = m.RemoveFromSet(marks)
			i--
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor that contains both
// this position and pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for d := r.Depth; d > 0; d-- {
		if r.Start(d) <= pos && r.End(d) >= pos {
			return d
		}
	}
	return 0
}

// BlockRange returns the range of block nodes around this position and
// other, at the deepest level where pred (if non-nil) accepts the parent.
// It returns nil when no such range exists.
func (r *ResolvedPos) BlockRange(other *ResolvedPos, pred func(*Node) bool) *NodeRange {
	if other == nil {
		other = r
	}
	if other.Pos < r.Pos {
		return other.BlockRange(r, pred)
	}
	d := r.Depth
	if r.Parent().InlineContent() || r.Pos == other.Pos {
		d--
	}
	for ; d >= 0; d-- {
		if other.Pos <= r.End(d) && (pred == nil || pred(r.Node(d))) {
			return NewNodeRange(r, other, d)
		}
	}
	return nil
}

// Ancestors returns the ancestor chain from the root down to the parent.
func (r *ResolvedPos) Ancestors() []Ancestor {
	out := make([]Ancestor, r.Depth+1)
	for d := 0; d <= r.Depth; d++ {
		out[d] = Ancestor{
			Node:   r.Node(d),
			Depth:  d,
			Before: r.Before(d),
			Start:  r.Start(d),
			End:    r.End(d),
			After:  r.After(d),
		}
	}
	return out
}

// NodeRange is a flat range of sibling nodes inside a common parent.
type NodeRange struct {
	From  *ResolvedPos
	To    *ResolvedPos
	Depth int
}

// NewNodeRange creates a node range of the parent at depth.
func NewNodeRange(from, to *ResolvedPos, depth int) *NodeRange {
	return &NodeRange{From: from, To: to, Depth: depth}
}

// Start returns the position at the start of the range.
func (r *NodeRange) Start() int { return r.From.Before(r.Depth + 1) }

// End returns the position at the end of the range.
func (r *NodeRange) End() int { return r.To.After(r.Depth + 1) }

// Parent returns the parent node of the range.
func (r *NodeRange) Parent() *Node { return r.From.Node(r.Depth) }

// StartIndex returns the index of the first node in the range.
func (r *NodeRange) StartIndex() int { return r.From.Index(r.Depth) }

// EndIndex returns the index after the last node in the range.
func (r *NodeRange) EndIndex() int { return r.To.IndexAfter(r.Depth) }
