package list

import (
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/engine/transform"
	"github.com/dshills/richcore/internal/model"
)

func isList(itemType *model.NodeType) func(*model.Node) bool {
	return func(n *model.Node) bool {
		return n.ChildCount() > 0 && n.FirstChild().Type() == itemType
	}
}

// itemRange returns the range of list items covered by the selection.
func itemRange(st *state.State, itemType *model.NodeType) *model.NodeRange {
	sel := st.Selection()
	doc := st.Doc()
	return doc.Resolve(sel.From()).BlockRange(doc.Resolve(sel.To()), isList(itemType))
}

func finish(tr *state.Transaction) (*state.Transaction, bool) {
	if tr.Failed() {
		return nil, false
	}
	if tr.DocChanged() && tr.Doc().Check() != nil {
		return nil, false
	}
	return tr, true
}

// Sink nests the selected items into a sublist of the item before them.
// The sublist has the type of the enclosing list; an existing sublist at
// the end of the previous item is extended instead.
func Sink(st *state.State, itemType *model.NodeType) (*state.Transaction, bool) {
	r := itemRange(st, itemType)
	if r == nil || r.StartIndex() == 0 {
		return nil, false
	}
	parent := r.Parent()
	before := parent.Child(r.StartIndex() - 1)
	if before.Type() != itemType {
		return nil, false
	}
	nested := before.LastChild() != nil && before.LastChild().Type() == parent.Type()

	inner := model.EmptyFragment
	depth := 1
	if nested {
		item, err := itemType.Make(nil, model.EmptyFragment, nil)
		if err != nil {
			return nil, false
		}
		inner = model.FragmentFrom(item)
		depth = 3
	}
	sub, err := parent.Type().Make(nil, inner, nil)
	if err != nil {
		return nil, false
	}
	item, err := itemType.Make(nil, model.FragmentFrom(sub), nil)
	if err != nil {
		return nil, false
	}
	s := model.NewSlice(model.FragmentFrom(item), depth, 0)

	tr := st.Tr()
	start, end := r.Start(), r.End()
	_ = tr.Step(transform.NewReplaceAroundStep(start-depth, end, start, end, s, 1, true))
	return finish(tr)
}

// Lift moves the selected items out of their list into the enclosing
// list, after their parent item. It needs two levels of list nesting.
func Lift(st *state.State, itemType *model.NodeType) (*state.Transaction, bool) {
	r := itemRange(st, itemType)
	if r == nil || r.Depth < 1 || r.From.Node(r.Depth-1).Type() != itemType {
		return nil, false
	}
	tr := st.Tr()
	if !liftToOuterList(tr, r, itemType) {
		return nil, false
	}
	return finish(tr)
}

func liftToOuterList(tr *state.Transaction, r *model.NodeRange, itemType *model.NodeType) bool {
	end := r.End()
	endOfList := r.To.End(r.Depth)
	if end < endOfList {
		// Items after the range become a sublist of the last lifted item.
		item, err := itemType.Make(nil, model.FragmentFrom(r.Parent().Copy(model.EmptyFragment)), nil)
		if err != nil {
			return false
		}
		s := model.NewSlice(model.FragmentFrom(item), 1, 0)
		if tr.Step(transform.NewReplaceAroundStep(end-1, endOfList, end, endOfList, s, 1, true)) != nil {
			return false
		}
		doc := tr.Doc()
		r = model.NewNodeRange(doc.Resolve(r.From.Pos), doc.Resolve(endOfList), r.Depth)
	}
	target, ok := transform.LiftTarget(r)
	if !ok {
		return false
	}
	if tr.Lift(r, target) != nil {
		return false
	}
	after := tr.Doc().Resolve(tr.Mapping().Map(end, -1) - 1)
	if transform.CanJoin(tr.Doc(), after.Pos) {
		if b, a := after.NodeBefore(), after.NodeAfter(); b != nil && a != nil && b.Type() == a.Type() {
			_ = tr.Join(after.Pos, 1)
		}
	}
	return !tr.Failed()
}

// LiftOut removes the list around the selected items, leaving their
// content in the list's parent. Items before and after the range stay in
// lists of their own.
func LiftOut(st *state.State, itemType *model.NodeType) (*state.Transaction, bool) {
	r := itemRange(st, itemType)
	if r == nil || r.Depth < 1 {
		return nil, false
	}
	tr := st.Tr()
	list := r.Parent()

	// Merge the items into one.
	pos := r.End()
	for i := r.EndIndex() - 1; i > r.StartIndex(); i-- {
		pos -= list.Child(i).NodeSize()
		if tr.Delete(pos-1, pos+1) != nil {
			return nil, false
		}
	}
	startPos := tr.Doc().Resolve(r.Start())
	item := startPos.NodeAfter()
	if item == nil || tr.Mapping().Map(r.End(), 1) != r.Start()+item.NodeSize() {
		return nil, false
	}

	atStart := r.StartIndex() == 0
	atEnd := r.EndIndex() == list.ChildCount()
	parent := startPos.Node(-1)
	indexBefore := startPos.Index(-1)
	content := item.Content()
	if !atEnd {
		content = content.Append(model.FragmentFrom(list))
	}
	from := indexBefore
	if !atStart {
		from++
	}
	if !parent.CanReplace(from, indexBefore+1, content) {
		return nil, false
	}

	start, end := startPos.Pos, startPos.Pos+item.NodeSize()
	closed := model.FragmentFrom(list.Copy(model.EmptyFragment))
	wrap := model.EmptyFragment
	openStart, openEnd, insert := 0, 0, 0
	outerFrom, outerTo := start-1, end+1
	if !atStart {
		wrap = wrap.Append(closed)
		openStart, insert, outerFrom = 1, 1, start
	}
	if !atEnd {
		wrap = wrap.Append(closed)
		openEnd, outerTo = 1, end
	}
	s := model.NewSlice(wrap, openStart, openEnd)
	_ = tr.Step(transform.NewReplaceAroundStep(outerFrom, outerTo, start+1, end-1, s, insert, true))
	return finish(tr)
}

// Split splits the item around the cursor, deleting any selected content
// first. At the end of an item the new item starts with the item's default
// first block. In an empty last block of a nested item the item is lifted
// instead.
func Split(st *state.State, itemType *model.NodeType) (*state.Transaction, bool) {
	sel := st.Selection()
	doc := st.Doc()
	from, to := doc.Resolve(sel.From()), doc.Resolve(sel.To())
	if from.Depth < 2 || from.Parent() != to.Parent() || !from.Parent().IsTextblock() {
		return nil, false
	}
	item := from.Node(-1)
	if item.Type() != itemType {
		return nil, false
	}
	if from.Parent().Content().Size() == 0 && item.ChildCount() == from.IndexAfter(-1) {
		return Lift(st, itemType)
	}

	var types []transform.Wrapper
	if to.Pos == from.End(from.Depth) {
		if next := item.ContentMatchAt(0).DefaultType(); next != nil {
			types = []transform.Wrapper{{Type: itemType}, {Type: next}}
		}
	}
	tr := st.Tr()
	if from.Pos != to.Pos && tr.Delete(from.Pos, to.Pos) != nil {
		return nil, false
	}
	if !transform.CanSplit(tr.Doc(), from.Pos, 2, types) {
		return nil, false
	}
	if tr.Split(from.Pos, 2, types) != nil {
		return nil, false
	}
	tr.SetSelection(cursor.NewCursorSelection(tr.Mapping().Map(from.Pos, 1)))
	return finish(tr)
}

// innermostList returns the innermost list enclosing the whole selection.
func innermostList(st *state.State, itemType *model.NodeType) (model.Ancestor, bool) {
	sel := st.Selection()
	from := st.Doc().Resolve(sel.From())
	depth := from.SharedDepth(sel.To())
	pred := isList(itemType)
	for d := depth; d >= 0; d-- {
		if n := from.Node(d); n.Type() != itemType && pred(n) {
			return from.Ancestors()[d], true
		}
	}
	return model.Ancestor{}, false
}

// Convert changes the innermost list around the selection to listType,
// keeping its items. Positions do not move.
func Convert(st *state.State, listType, itemType *model.NodeType) (*state.Transaction, bool) {
	list, ok := innermostList(st, itemType)
	if !ok || list.Node.Type() == listType || !listType.ValidContent(list.Node.Content()) {
		return nil, false
	}
	r := st.Doc().Resolve(list.Before)
	index := r.Index(r.Depth)
	if !r.Parent().CanReplaceWith(index, index+1, listType) {
		return nil, false
	}
	tr := st.Tr()
	if tr.SetNodeMarkup(list.Before, listType, nil, nil) != nil {
		return nil, false
	}
	return finish(tr)
}

// Wrap wraps the selected blocks in a new list of listType, one item per
// block.
func Wrap(st *state.State, listType *model.NodeType, attrs model.Attrs) (*state.Transaction, bool) {
	sel := st.Selection()
	doc := st.Doc()
	from := doc.Resolve(sel.From())
	r := from.BlockRange(doc.Resolve(sel.To()), nil)
	if r == nil {
		return nil, false
	}
	if r.Depth >= 2 && from.Node(r.Depth-1).Type().CompatibleContent(listType) && r.StartIndex() == 0 {
		// Already at the top of an item; nesting is Sink's job.
		return nil, false
	}
	wrappers := transform.FindWrapping(r, listType, attrs)
	if wrappers == nil {
		return nil, false
	}
	tr := st.Tr()
	if tr.Wrap(r, wrappers) != nil {
		return nil, false
	}

	found := 0
	for i, w := range wrappers {
		if w.Type == listType {
			found = i + 1
		}
	}
	splitDepth := len(wrappers) - found
	splitPos := r.Start() + len(wrappers)
	parent := r.Parent()
	for i := r.StartIndex(); i < r.EndIndex(); i++ {
		if i > r.StartIndex() && transform.CanSplit(tr.Doc(), splitPos, splitDepth, nil) {
			if tr.Split(splitPos, splitDepth, nil) != nil {
				return nil, false
			}
			splitPos += 2 * splitDepth
		}
		splitPos += parent.Child(i).NodeSize()
	}
	return finish(tr)
}

// Toggle turns the selection into a list of listType: the list is removed
// when the selection is already in one of that type, converted when it is
// in a list of another type, and created otherwise.
func Toggle(st *state.State, listType, itemType *model.NodeType) (*state.Transaction, bool) {
	if list, ok := innermostList(st, itemType); ok {
		if list.Node.Type() == listType {
			return LiftOut(st, itemType)
		}
		if tr, ok := Convert(st, listType, itemType); ok {
			return tr, true
		}
	}
	return Wrap(st, listType, nil)
}
