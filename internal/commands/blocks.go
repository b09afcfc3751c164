package commands

import (
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/engine/transform"
	"github.com/dshills/richcore/internal/model"
)

// blockTypeApplies reports whether some textblock in [from, to) can be
// changed to nt with attrs.
func blockTypeApplies(doc *model.Node, from, to int, nt *model.NodeType, attrs model.Attrs) bool {
	applicable := false
	doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if applicable {
			return false
		}
		if !n.IsTextblock() || n.HasMarkup(nt, attrs, n.Marks()) {
			return true
		}
		if n.Type() == nt {
			applicable = true
			return false
		}
		r := doc.Resolve(pos)
		index := r.Index(r.Depth)
		applicable = r.Parent().CanReplaceWith(index, index+1, nt)
		return false
	})
	return applicable
}

// textblockRange widens an empty selection so NodesBetween visits the
// textblock around the cursor.
func textblockRange(sel cursor.Selection) (int, int) {
	return sel.From(), max(sel.To(), sel.From()+1)
}

// SetBlockType turns the textblocks in the selection into nodes of type nt.
func SetBlockType(nt *model.NodeType, attrs model.Attrs) Command {
	name := "set_" + nt.Name()
	proto, err := nt.Make(attrs, model.EmptyFragment, nil)
	if err != nil || !nt.IsTextblock() {
		return New(name, func(*state.State, Dispatch, View) bool { return false })
	}
	run := fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		from, to := textblockRange(st.Selection())
		if !blockTypeApplies(st.Doc(), from, to, nt, proto.Attrs()) {
			return nil, false
		}
		tr := st.Tr()
		if tr.SetBlockType(from, to, nt, proto.Attrs()) != nil || !tr.DocChanged() {
			return nil, false
		}
		return tr, true
	})
	return New(name, run).WithActive(func(active query.ActiveElements) bool {
		return active.Within(nt, proto.Attrs())
	})
}

// ToggleBlockType turns the textblocks in the selection into nodes of type
// nt, or back into fallback when they all already are.
func ToggleBlockType(name string, nt *model.NodeType, attrs model.Attrs, fallback *model.NodeType) Command {
	set := SetBlockType(nt, attrs)
	reset := SetBlockType(fallback, nil)
	proto, err := nt.Make(attrs, model.EmptyFragment, nil)
	if err != nil {
		return New(name, func(*state.State, Dispatch, View) bool { return false })
	}
	run := func(st *state.State, dispatch Dispatch, view View) bool {
		if set.Exec(st, dispatch, view) {
			return true
		}
		if !query.ActiveFor(st).Within(nt, proto.Attrs()) {
			return false
		}
		return reset.Exec(st, dispatch, view)
	}
	return Command{Name: name, Run: run, Status: set.Status}
}

// WrapIn wraps the selected blocks in a node of type nt, adding any
// wrappers the schema requires.
func WrapIn(nt *model.NodeType, attrs model.Attrs) Command {
	run := fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		sel := st.Selection()
		doc := st.Doc()
		r := doc.Resolve(sel.From()).BlockRange(doc.Resolve(sel.To()), nil)
		if r == nil {
			return nil, false
		}
		wrappers := transform.FindWrapping(r, nt, attrs)
		if wrappers == nil {
			return nil, false
		}
		tr := st.Tr()
		if tr.Wrap(r, wrappers) != nil {
			return nil, false
		}
		return tr, true
	})
	return New("wrap_"+nt.Name(), run).WithActive(func(active query.ActiveElements) bool {
		return active.Within(nt, nil)
	})
}

// Lift moves the selected blocks out of their parent node, splitting the
// parent when the selection covers only part of it.
func Lift() Command {
	return New("lift", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		sel := st.Selection()
		doc := st.Doc()
		r := doc.Resolve(sel.From()).BlockRange(doc.Resolve(sel.To()), nil)
		if r == nil {
			return nil, false
		}
		target, ok := transform.LiftTarget(r)
		if !ok {
			return nil, false
		}
		// The target only checks the lifted content; the split ancestors
		// are validated by the step itself.
		tr := st.Tr()
		if tr.Lift(r, target) != nil {
			return nil, false
		}
		return tr, true
	}))
}

// SplitBlock splits the textblock at the cursor, deleting any selected
// content first. At the end of a block the new block gets the parent's
// default type, so splitting at the end of a heading starts a paragraph.
func SplitBlock() Command {
	return New("split_block", func(st *state.State, dispatch Dispatch, _ View) bool {
		sel := st.Selection()
		doc := st.Doc()
		from, to := doc.Resolve(sel.From()), doc.Resolve(sel.To())
		if from.Depth == 0 || !from.Parent().IsTextblock() || from.Parent() != to.Parent() {
			return false
		}
		var types []transform.Wrapper
		if to.Pos == to.End(to.Depth) {
			if deflt := to.Node(-1).ContentMatchAt(to.IndexAfter(-1)).DefaultType(); deflt != nil && deflt.IsTextblock() {
				types = []transform.Wrapper{{Type: deflt}}
			}
		}
		tr := st.Tr()
		if !sel.IsEmpty() && tr.Delete(from.Pos, to.Pos) != nil {
			return false
		}
		if !transform.CanSplit(tr.Doc(), from.Pos, 1, types) {
			if types == nil || !transform.CanSplit(tr.Doc(), from.Pos, 1, nil) {
				return false
			}
			types = nil
		}
		if tr.Split(from.Pos, 1, types) != nil {
			return false
		}
		tr.SetSelection(cursor.NewCursorSelection(from.Pos + 2))
		return emit(dispatch, tr)
	})
}
