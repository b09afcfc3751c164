package commands

import (
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// markApplies reports whether some textblock touched by [from, to) allows
// the mark type.
func markApplies(doc *model.Node, from, to int, mt *model.MarkType) bool {
	can := doc.Resolve(from).Depth == 0 && doc.InlineContent() && doc.Type().AllowsMarkType(mt)
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if can {
			return false
		}
		can = n.InlineContent() && n.Type().AllowsMarkType(mt)
		return true
	})
	return can
}

// runAt finds the run of mt around pos, or the run ending just before it.
func runAt(doc *model.Node, pos int, mt *model.MarkType) (query.Run, bool) {
	if run, ok := query.ExpandMarkType(doc, pos, mt); ok {
		return run, true
	}
	if pos > 0 {
		return query.ExpandMarkType(doc, pos-1, mt)
	}
	return query.Run{}, false
}

// ToggleMark adds a mark of type mt to the selection, or removes marks of
// that type when the selection already has one. For a cursor the mark is
// stored for the next typed text instead.
func ToggleMark(mt *model.MarkType, attrs model.Attrs) Command {
	run := func(st *state.State, dispatch Dispatch, _ View) bool {
		sel := st.Selection()
		doc := st.Doc()
		if !markApplies(doc, sel.From(), sel.To(), mt) {
			return false
		}
		m, err := mt.Create(attrs)
		if err != nil {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		if sel.IsEmpty() {
			current := query.ActiveMarksAt(st)
			if mt.IsInSet(current) != nil {
				tr.RemoveStoredMark(mt, current)
			} else {
				tr.AddStoredMark(m, current)
			}
			return emit(dispatch, tr)
		}
		if _, has := query.FindMarkInRange(doc, sel.From(), sel.To(), mt); has {
			_ = tr.RemoveMarkType(sel.From(), sel.To(), mt)
		} else {
			_ = tr.AddMark(sel.From(), sel.To(), m)
		}
		if tr.Failed() {
			return false
		}
		return emit(dispatch, tr)
	}
	return New("toggle_"+mt.Name(), run).WithActive(func(active query.ActiveElements) bool {
		return active.HasMarkType(mt)
	})
}

// SetMark applies a mark with the given attributes, replacing marks of the
// same type. With a cursor inside a run of the type, the whole run gets the
// new attributes; with a cursor elsewhere the mark is stored.
func SetMark(mt *model.MarkType, attrs model.Attrs) Command {
	name := "set_" + mt.Name()
	m, err := mt.Create(attrs)
	if err != nil {
		return New(name, func(*state.State, Dispatch, View) bool { return false })
	}
	run := func(st *state.State, dispatch Dispatch, _ View) bool {
		sel := st.Selection()
		doc := st.Doc()
		if !markApplies(doc, sel.From(), sel.To(), mt) {
			return false
		}
		from, to := sel.From(), sel.To()
		if sel.IsEmpty() {
			r, ok := runAt(doc, sel.Head, mt)
			if !ok {
				if dispatch != nil {
					dispatch(st.Tr().AddStoredMark(m, query.ActiveMarksAt(st)))
				}
				return true
			}
			from, to = r.From(), r.To()
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		_ = tr.RemoveMarkType(from, to, mt)
		_ = tr.AddMark(from, to, m)
		if tr.Failed() {
			return false
		}
		return emit(dispatch, tr)
	}
	return New(name, run).WithActive(func(active query.ActiveElements) bool {
		return active.HasMark(m)
	})
}

// RemoveMark removes marks of type mt from the selection, or from the
// stored marks for a cursor.
func RemoveMark(mt *model.MarkType) Command {
	return New("remove_"+mt.Name(), func(st *state.State, dispatch Dispatch, _ View) bool {
		sel := st.Selection()
		doc := st.Doc()
		if sel.IsEmpty() {
			current := query.ActiveMarksAt(st)
			if mt.IsInSet(current) == nil {
				return false
			}
			if dispatch != nil {
				dispatch(st.Tr().RemoveStoredMark(mt, current))
			}
			return true
		}
		if _, has := query.FindMarkInRange(doc, sel.From(), sel.To(), mt); !has {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		if tr.RemoveMarkType(sel.From(), sel.To(), mt) != nil {
			return false
		}
		return emit(dispatch, tr)
	})
}

// markRunBounds returns the document range covering every run of mt that
// the selection touches. A cursor touches the run around it or the run
// ending just before it.
func markRunBounds(doc *model.Node, sel cursor.Selection, mt *model.MarkType) (from, to int, ok bool) {
	if sel.IsEmpty() {
		r, ok := runAt(doc, sel.Head, mt)
		return r.From(), r.To(), ok
	}
	m, ok := query.FindMarkInRange(doc, sel.From(), sel.To(), mt)
	if !ok {
		return 0, 0, false
	}
	first, _ := query.ExpandMarkType(doc, m.Pos, mt)
	from, to = min(first.From(), sel.From()), max(first.To(), sel.To())
	if last, found := query.ExpandMarkType(doc, sel.To()-1, mt); found {
		to = max(to, last.To())
	}
	return from, to, true
}

// RemoveMarkRun removes mt from the whole run under the cursor, or from
// every run the selection touches, rather than just the selected part.
func RemoveMarkRun(mt *model.MarkType) Command {
	return New("clear_"+mt.Name(), func(st *state.State, dispatch Dispatch, _ View) bool {
		from, to, ok := markRunBounds(st.Doc(), st.Selection(), mt)
		if !ok {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		if tr.RemoveMarkType(from, to, mt) != nil {
			return false
		}
		return emit(dispatch, tr)
	})
}

// SelectMarkRun selects the whole run of mt under the cursor.
func SelectMarkRun(mt *model.MarkType) Command {
	return New("select_"+mt.Name(), func(st *state.State, dispatch Dispatch, _ View) bool {
		r, ok := runAt(st.Doc(), st.Selection().Head, mt)
		if !ok {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		tr.SetSelection(cursor.NewSelection(r.From(), r.To()))
		return emit(dispatch, tr)
	})
}

// ClearFormatting removes every mark from the selection.
func ClearFormatting() Command {
	return New("clear_formatting", func(st *state.State, dispatch Dispatch, _ View) bool {
		sel := st.Selection()
		if sel.IsEmpty() {
			if len(query.ActiveMarksAt(st)) == 0 {
				return false
			}
			if dispatch != nil {
				dispatch(st.Tr().SetStoredMarks([]*model.Mark{}))
			}
			return true
		}
		if len(query.MarksInRange(st.Doc(), sel.From(), sel.To())) == 0 {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		if tr.RemoveAllMarks(sel.From(), sel.To()) != nil {
			return false
		}
		return emit(dispatch, tr)
	})
}
