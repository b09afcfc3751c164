package transform

import (
	"fmt"

	"github.com/dshills/richcore/internal/model"
)

// Wrapper is a node type and attributes used to wrap content.
type Wrapper struct {
	Type  *model.NodeType
	Attrs model.Attrs
}

// FindWrapping returns the wrappers, outermost first, needed to wrap the
// range in a node of the given type, including that node itself. It
// returns nil when the range cannot be wrapped.
func FindWrapping(r *model.NodeRange, typ *model.NodeType, attrs model.Attrs) []Wrapper {
	around := findWrappingOutside(r, typ)
	if around == nil {
		return nil
	}
	inner := findWrappingInside(r, typ)
	if inner == nil {
		return nil
	}
	out := make([]Wrapper, 0, len(around)+1+len(inner))
	for _, t := range around {
		out = append(out, Wrapper{Type: t})
	}
	out = append(out, Wrapper{Type: typ, Attrs: attrs})
	for _, t := range inner {
		out = append(out, Wrapper{Type: t})
	}
	return out
}

func findWrappingOutside(r *model.NodeRange, typ *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	around := parent.ContentMatchAt(r.StartIndex()).FindWrapping(typ)
	if around == nil {
		return nil
	}
	outer := typ
	if len(around) > 0 {
		outer = around[0]
	}
	if !parent.CanReplaceWith(r.StartIndex(), r.EndIndex(), outer) {
		return nil
	}
	return around
}

func findWrappingInside(r *model.NodeRange, typ *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	inner := parent.Child(r.StartIndex())
	inside := typ.ContentMatch().FindWrapping(inner.Type())
	if inside == nil {
		return nil
	}
	last := typ
	if len(inside) > 0 {
		last = inside[len(inside)-1]
	}
	match := last.ContentMatch()
	for i := r.StartIndex(); match != nil && i < r.EndIndex(); i++ {
		match = match.MatchType(parent.Child(i).Type())
	}
	if match == nil || !match.ValidEnd() {
		return nil
	}
	return inside
}

// Wrap wraps the range in the given wrappers, outermost first.
func (t *Transform) Wrap(r *model.NodeRange, wrappers []Wrapper) error {
	content := model.EmptyFragment
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		if content.Size() > 0 {
			m := w.Type.ContentMatch().MatchFragment(content, 0, content.ChildCount())
			if m == nil || !m.ValidEnd() {
				err := fmt.Errorf("%w: %s cannot hold %s", ErrInvalidWrapping, w.Type.Name(), content)
				t.Fail(err)
				return err
			}
		}
		n, err := w.Type.Make(w.Attrs, content, nil)
		if err != nil {
			t.Fail(err)
			return err
		}
		content = model.FragmentFrom(n)
	}
	start, end := r.Start(), r.End()
	return t.Step(NewReplaceAroundStep(start, end, start, end, model.NewSlice(content, 0, 0), len(wrappers), true))
}

func canCut(n *model.Node, start, end int) bool {
	return (start == 0 || n.CanReplace(start, n.ChildCount(), model.EmptyFragment)) &&
		(end == n.ChildCount() || n.CanReplace(0, end, model.EmptyFragment))
}

// LiftTarget returns the depth the range can be lifted to, or false when
// it cannot be lifted.
func LiftTarget(r *model.NodeRange) (int, bool) {
	parent := r.Parent()
	content := parent.Content().CutByIndex(r.StartIndex(), r.EndIndex())
	for depth := r.Depth; ; depth-- {
		node := r.From.Node(depth)
		index, endIndex := r.From.Index(depth), r.To.IndexAfter(depth)
		if depth < r.Depth && node.CanReplace(index, endIndex, content) {
			return depth, true
		}
		if depth == 0 || node.Type().IsIsolating() || !canCut(node, index, endIndex) {
			return 0, false
		}
	}
}

// Lift moves the range out of its ancestors up to the target depth,
// splitting ancestors that have content before or after the range.
func (t *Transform) Lift(r *model.NodeRange, target int) error {
	from, to, depth := r.From, r.To, r.Depth
	gapStart, gapEnd := from.Before(depth+1), to.After(depth+1)
	start, end := gapStart, gapEnd

	before, openStart := model.EmptyFragment, 0
	for d, splitting := depth, false; d > target; d-- {
		if splitting || from.Index(d) > 0 {
			splitting = true
			before = model.FragmentFrom(from.Node(d).Copy(before))
			openStart++
		} else {
			start--
		}
	}
	after, openEnd := model.EmptyFragment, 0
	for d, splitting := depth, false; d > target; d-- {
		if splitting || to.After(d+1) < to.End(d) {
			splitting = true
			after = model.FragmentFrom(to.Node(d).Copy(after))
			openEnd++
		} else {
			end++
		}
	}
	s := model.NewSlice(before.Append(after), openStart, openEnd)
	return t.Step(NewReplaceAroundStep(start, end, gapStart, gapEnd, s, before.Size()-openStart, true))
}

// Unwrap replaces the node at pos with its content. Positions inside the
// node move back by one and positions after it by two.
func (t *Transform) Unwrap(pos int) error {
	node := t.doc.NodeAt(pos)
	if node == nil || node.IsLeaf() || node.IsInline() {
		err := fmt.Errorf("%w: no block node to unwrap at %d", ErrNoTarget, pos)
		t.Fail(err)
		return err
	}
	r := t.doc.Resolve(pos)
	index := r.Index(r.Depth)
	if !r.Parent().CanReplace(index, index+1, node.Content()) {
		err := fmt.Errorf("%w: content of %s does not fit in %s", model.ErrInvalidContent, node.Type().Name(), r.Parent().Type().Name())
		t.Fail(err)
		return err
	}
	end := pos + node.NodeSize()
	return t.Step(NewReplaceAroundStep(pos, end, pos+1, end-1, model.EmptySlice, 0, true))
}

// CanSplit reports whether the node at pos can be split depth levels deep.
// TypesAfter optionally gives the types of the nodes after the split,
// outermost first.
func CanSplit(doc *model.Node, pos, depth int, typesAfter []Wrapper) bool {
	r := doc.Resolve(pos)
	base := r.Depth - depth
	wrapperAt := func(i int) *Wrapper {
		if i >= 0 && i < len(typesAfter) {
			return &typesAfter[i]
		}
		return nil
	}
	innerType := r.Parent().Type()
	if w := wrapperAt(len(typesAfter) - 1); w != nil {
		innerType = w.Type
	}
	parent := r.Parent()
	index := r.Index(r.Depth)
	if base < 0 || parent.Type().IsIsolating() ||
		!parent.CanReplace(index, parent.ChildCount(), model.EmptyFragment) ||
		!innerType.ValidContent(parent.Content().CutByIndex(index, parent.ChildCount())) {
		return false
	}
	for d, i := r.Depth-1, depth-2; d > base; d, i = d-1, i-1 {
		node := r.Node(d)
		index := r.Index(d)
		if node.Type().IsIsolating() {
			return false
		}
		rest := node.Content().CutByIndex(index, node.ChildCount())
		if w := wrapperAt(i + 1); w != nil {
			n, err := w.Type.Make(w.Attrs, model.EmptyFragment, nil)
			if err != nil || rest.ChildCount() == 0 {
				return false
			}
			rest = rest.ReplaceChild(0, n)
		}
		after := node.Type()
		if w := wrapperAt(i); w != nil {
			after = w.Type
		}
		if !node.CanReplace(index+1, node.ChildCount(), model.EmptyFragment) || !after.ValidContent(rest) {
			return false
		}
	}
	index = r.IndexAfter(base)
	baseType := r.Node(base + 1).Type()
	if w := wrapperAt(0); w != nil {
		baseType = w.Type
	}
	return r.Node(base).CanReplaceWith(index, index, baseType)
}

// Split splits the node at pos depth levels deep. TypesAfter optionally
// overrides the types of the nodes after the split, outermost first.
func (t *Transform) Split(pos, depth int, typesAfter []Wrapper) error {
	r := t.doc.Resolve(pos)
	before, after := model.EmptyFragment, model.EmptyFragment
	for d, e, i := r.Depth, r.Depth-depth, depth-1; d > e; d, i = d-1, i-1 {
		before = model.FragmentFrom(r.Node(d).Copy(before))
		if i >= 0 && i < len(typesAfter) {
			n, err := typesAfter[i].Type.Make(typesAfter[i].Attrs, after, nil)
			if err != nil {
				t.Fail(err)
				return err
			}
			after = model.FragmentFrom(n)
		} else {
			after = model.FragmentFrom(r.Node(d).Copy(after))
		}
	}
	return t.Step(NewReplaceStep(pos, pos, model.NewSlice(before.Append(after), depth, depth), true))
}

func joinable(a, b *model.Node) bool {
	if a == nil || b == nil || a.IsLeaf() {
		return false
	}
	if b.Content().Size() > 0 {
		return a.CanReplace(a.ChildCount(), a.ChildCount(), b.Content())
	}
	return a.Type().CompatibleContent(b.Type())
}

// CanJoin reports whether the nodes before and after pos can be joined.
func CanJoin(doc *model.Node, pos int) bool {
	r := doc.Resolve(pos)
	index := r.Index(r.Depth)
	return joinable(r.NodeBefore(), r.NodeAfter()) && r.Parent().CanReplace(index, index+1, model.EmptyFragment)
}

// Join joins the blocks around pos, depth levels deep.
func (t *Transform) Join(pos, depth int) error {
	return t.Step(NewReplaceStep(pos-depth, pos+depth, model.EmptySlice, true))
}
