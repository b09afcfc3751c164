package model

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Node is an immutable document node.
type Node struct {
	typ     *NodeType
	attrs   Attrs
	content Fragment
	marks   []*Mark
	text    string
}

// Type returns the node's type.
func (n *Node) Type() *NodeType { return n.typ }

// Attrs returns the node's attributes. The map must not be modified.
func (n *Node) Attrs() Attrs { return n.attrs }

// Marks returns the node's marks. The slice must not be modified.
func (n *Node) Marks() []*Mark { return n.marks }

// Content returns the node's children.
func (n *Node) Content() Fragment { return n.content }

// Text returns the text of a text node, or "" for other nodes.
func (n *Node) Text() string { return n.text }

// IsText reports whether this is a text node.
func (n *Node) IsText() bool { return n.typ.IsText() }

// IsInline reports whether this is an inline node.
func (n *Node) IsInline() bool { return n.typ.IsInline() }

// IsBlock reports whether this is a block node.
func (n *Node) IsBlock() bool { return n.typ.IsBlock() }

// IsTextblock reports whether this is a block with inline content.
func (n *Node) IsTextblock() bool { return n.typ.IsTextblock() }

// InlineContent reports whether the node's content is inline.
func (n *Node) InlineContent() bool { return n.typ.InlineContent() }

// IsLeaf reports whether the node cannot have content.
func (n *Node) IsLeaf() bool { return n.typ.IsLeaf() }

// IsAtom reports whether the node is edited as a unit.
func (n *Node) IsAtom() bool { return n.typ.IsAtom() }

func (n *Node) textLen() int { return utf8.RuneCountInString(n.text) }

// NodeSize returns the number of positions the node occupies in its parent.
func (n *Node) NodeSize() int {
	switch {
	case n.IsText():
		return n.textLen()
	case n.IsLeaf():
		return 1
	default:
		return n.content.size + 2
	}
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.content.ChildCount() }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.content.Child(i) }

// MaybeChild returns the child at index i, or nil.
func (n *Node) MaybeChild(i int) *Node { return n.content.MaybeChild(i) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.content.LastChild() }

// TextContent concatenates all text in the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	var s []byte
	n.content.NodesBetween(0, n.content.size, func(c *Node, _ int, _ *Node, _ int) bool {
		if c.IsText() {
			s = append(s, c.text...)
		}
		return true
	}, 0, n)
	return string(s)
}

// Copy returns a node with the same markup and the given content.
// Content is not validated.
func (n *Node) Copy(content Fragment) *Node {
	if n.IsText() {
		return n
	}
	return &Node{typ: n.typ, attrs: n.attrs, content: content, marks: n.marks}
}

// WithMarks returns a node with the same content and a different mark set.
func (n *Node) WithMarks(marks []*Mark) *Node {
	if SameMarkSet(marks, n.marks) {
		return n
	}
	c := *n
	c.marks = marks
	return &c
}

// WithText returns a text node with the same marks and different text.
func (n *Node) WithText(text string) *Node {
	if text == n.text {
		return n
	}
	c := *n
	c.text = text
	return &c
}

// Cut returns the part of the node between two content offsets. For text
// nodes offsets count characters.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		r := []rune(n.text)
		from = max(0, min(from, len(r)))
		to = max(from, min(to, len(r)))
		if from == 0 && to == len(r) {
			return n
		}
		return n.WithText(string(r[from:to]))
	}
	if from == 0 && to >= n.content.size {
		return n
	}
	return n.Copy(n.content.Cut(from, to))
}

// Slice returns the content between two positions as a Slice whose open
// depths record how many ancestors were cut through at each side.
func (n *Node) Slice(from, to int) Slice {
	if from >= to {
		return EmptySlice
	}
	rf, rt := n.Resolve(from), n.Resolve(to)
	depth := rf.SharedDepth(to)
	start := rf.Start(depth)
	node := rf.Node(depth)
	content := node.content.Cut(rf.Pos-start, rt.Pos-start)
	return Slice{Content: content, OpenStart: rf.Depth - depth, OpenEnd: rt.Depth - depth}
}

// Replace replaces the range [from, to) with a slice, validating the
// content of every node the replacement closes.
func (n *Node) Replace(from, to int, s Slice) (*Node, error) {
	return replace(n.Resolve(from), n.Resolve(to), s)
}

// NodeAt returns the node starting directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	for node := n; ; {
		index, offset := node.content.FindIndex(pos, -1)
		child := node.content.MaybeChild(index)
		if child == nil {
			return nil
		}
		if offset == pos || child.IsText() {
			return child
		}
		pos -= offset + 1
		node = child
	}
}

// NodesBetween calls fn for every descendant overlapping [from, to).
func (n *Node) NodesBetween(from, to int, fn func(child *Node, pos int, parent *Node, index int) bool) {
	n.content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant.
func (n *Node) Descendants(fn func(child *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.content.size, fn)
}

// HasMarkup reports whether the node has the given type, attributes and marks.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks []*Mark) bool {
	return n.typ == t && n.attrs.Equal(attrs) && SameMarkSet(n.marks, marks)
}

// SameMarkup reports whether two nodes have the same type, attributes and marks.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.typ, other.attrs, other.marks)
}

// Eq reports whether two nodes are structurally equal.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	return n.SameMarkup(other) && n.text == other.text && n.content.Eq(other.content)
}

// ContentMatchAt returns the content automaton state after child index i.
func (n *Node) ContentMatchAt(i int) *ContentMatch {
	m := n.typ.contentMatch.MatchFragment(n.content, 0, i)
	if m == nil {
		// Only reachable for nodes built without validation.
		return &ContentMatch{}
	}
	return m
}

// CanReplace reports whether replacing children [from, to) with the
// replacement fragment yields valid content.
func (n *Node) CanReplace(from, to int, replacement Fragment) bool {
	one := n.ContentMatchAt(from).MatchFragment(replacement, 0, replacement.ChildCount())
	if one == nil {
		return false
	}
	two := one.MatchFragment(n.content, to, n.content.ChildCount())
	if two == nil || !two.validEnd {
		return false
	}
	for _, c := range replacement.nodes {
		if !n.typ.AllowsMarks(c.marks) {
			return false
		}
	}
	return true
}

// CanReplaceWith reports whether children [from, to) can be replaced by a
// single node of the given type.
func (n *Node) CanReplaceWith(from, to int, t *NodeType) bool {
	start := n.ContentMatchAt(from).MatchType(t)
	if start == nil {
		return false
	}
	end := start.MatchFragment(n.content, to, n.content.ChildCount())
	return end != nil && end.validEnd
}

// Check validates the node and all its descendants against the schema.
func (n *Node) Check() error {
	if n.IsText() {
		return nil
	}
	if err := n.typ.CheckContent(n.content); err != nil {
		return err
	}
	for _, c := range n.content.nodes {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

// String renders the node for debugging, e.g. doc(paragraph("a", strong("b"))).
func (n *Node) String() string {
	if n.IsText() {
		s := strconv.Quote(n.text)
		for i := len(n.marks) - 1; i >= 0; i-- {
			s = n.marks[i].typ.name + "(" + s + ")"
		}
		return s
	}
	name := n.typ.name + n.attrs.Format()
	s := name
	if n.content.ChildCount() > 0 {
		s = fmt.Sprintf("%s(%s)", name, n.content.childString())
	}
	for i := len(n.marks) - 1; i >= 0; i-- {
		s = n.marks[i].typ.name + "(" + s + ")"
	}
	return s
}
