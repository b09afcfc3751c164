package query

import (
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// MarksAt returns the marks of the inline node starting at or containing
// pos. Positions between blocks carry no marks.
func MarksAt(doc *model.Node, pos int) []*model.Mark {
	r := doc.Resolve(pos)
	parent := r.Parent()
	index := r.Index(r.Depth)
	if !parent.InlineContent() || index >= parent.ChildCount() {
		return nil
	}
	return parent.Child(index).Marks()
}

// ActiveMarksAt returns the marks new content at the selection would get:
// the stored marks for an empty selection when set, otherwise the marks at
// the selection head.
func ActiveMarksAt(st *state.State) []*model.Mark {
	sel := st.Selection()
	if sel.IsEmpty() && st.StoredMarks() != nil {
		return st.StoredMarks()
	}
	return st.Doc().Resolve(sel.Head).Marks()
}

// MarksInRange returns the union of the marks at every offset in
// [from, to), each distinct mark once, in order of first appearance.
func MarksInRange(doc *model.Node, from, to int) []*model.Mark {
	from, to = normalize(doc, from, to)
	if from == to {
		return append([]*model.Mark(nil), MarksAt(doc, from)...)
	}
	var out []*model.Mark
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		for _, m := range n.Marks() {
			if !m.IsInSet(out) {
				out = append(out, m)
			}
		}
		return false
	})
	return out
}

// MarkMatch is a mark found by FindMarkInRange.
type MarkMatch struct {
	Mark *model.Mark
	Pos  int
}

// FindMarkInRange scans [from, to) in ascending order and returns the
// first offset carrying a mark of the given type. Reversed bounds are
// swapped. An empty range checks the single offset.
func FindMarkInRange(doc *model.Node, from, to int, mt *model.MarkType) (MarkMatch, bool) {
	from, to = normalize(doc, from, to)
	if from == to {
		if m := mt.IsInSet(MarksAt(doc, from)); m != nil {
			return MarkMatch{Mark: m, Pos: from}, true
		}
		return MarkMatch{}, false
	}
	var found MarkMatch
	ok := false
	doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if ok {
			return false
		}
		if !n.IsInline() {
			return true
		}
		if m := mt.IsInSet(n.Marks()); m != nil {
			found, ok = MarkMatch{Mark: m, Pos: max(pos, from)}, true
		}
		return false
	})
	return found, ok
}

// Run is a maximal contiguous run of offsets carrying a mark. Start and
// End are inclusive offsets.
type Run struct {
	Start int
	End   int
	Mark  *model.Mark
}

// From returns the document position where the run starts.
func (r Run) From() int { return r.Start }

// To returns the document position just after the run's last character.
func (r Run) To() int { return r.End + 1 }

// NodeRange returns the range of inline nodes covering the run in the
// deepest node containing all of it.
func (r Run) NodeRange(doc *model.Node) *model.NodeRange {
	from, to := doc.Resolve(r.From()), doc.Resolve(r.To())
	return model.NewNodeRange(from, to, from.SharedDepth(r.To()))
}

// ExpandMark returns the run of offsets around pos carrying a mark equal
// to m. It reports false when pos does not carry the mark.
func ExpandMark(doc *model.Node, pos int, m *model.Mark) (Run, bool) {
	return expand(doc, pos, func(set []*model.Mark) *model.Mark {
		if m.IsInSet(set) {
			return m
		}
		return nil
	})
}

// ExpandMarkType returns the run of offsets around pos carrying a mark of
// the given type, with any attributes. Run.Mark is the mark found at pos.
func ExpandMarkType(doc *model.Node, pos int, mt *model.MarkType) (Run, bool) {
	return expand(doc, pos, mt.IsInSet)
}

func expand(doc *model.Node, pos int, find func([]*model.Mark) *model.Mark) (Run, bool) {
	size := doc.Content().Size()
	if pos < 0 || pos >= size {
		return Run{}, false
	}
	m := find(MarksAt(doc, pos))
	if m == nil {
		return Run{}, false
	}
	carries := func(p int) bool { return find(MarksAt(doc, p)) != nil }
	start, end := pos, pos
	for start > 0 && carries(start-1) {
		start--
	}
	for end+1 < size && carries(end+1) {
		end++
	}
	return Run{Start: start, End: end, Mark: m}, true
}

func normalize(doc *model.Node, from, to int) (int, int) {
	if from > to {
		from, to = to, from
	}
	size := doc.Content().Size()
	return max(0, min(from, size)), max(0, min(to, size))
}
