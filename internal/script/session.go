package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// session is the state a script command edits. Each edit is applied to
// cur and its steps are collected into combined.
type session struct {
	schema   *model.Schema
	stock    *commands.Registry
	view     commands.View
	base     *state.State
	cur      *state.State
	combined *state.Transaction
	failed   bool
}

func newSession(s *model.Schema, stock *commands.Registry, st *state.State, view commands.View) *session {
	return &session{
		schema:   s,
		stock:    stock,
		view:     view,
		base:     st,
		cur:      st,
		combined: st.Tr(),
	}
}

// apply commits tr to cur and records its steps.
func (s *session) apply(tr *state.Transaction) bool {
	next, err := s.cur.Apply(tr)
	if err != nil {
		s.failed = true
		return false
	}
	for _, step := range tr.Steps() {
		if s.combined.Step(step) != nil {
			s.failed = true
			return false
		}
	}
	s.cur = next
	return true
}

// transaction returns the combined transaction carrying the final
// selection and stored marks.
func (s *session) transaction() (*state.Transaction, bool) {
	if s.failed {
		return nil, false
	}
	s.combined.SetSelection(s.cur.Selection())
	if s.cur.StoredMarks() != nil || s.base.StoredMarks() != nil {
		s.combined.SetStoredMarks(s.cur.StoredMarks())
	}
	return s.combined, true
}

// table builds the ed table. Its functions are called with a dot:
// ed.run("toggle_strong").
func (s *session) table(L *lua.LState) *lua.LTable {
	ed := L.NewTable()
	L.SetFuncs(ed, map[string]lua.LGFunction{
		"run":         s.luaRun,
		"can":         s.luaCan,
		"status":      s.luaStatus,
		"has_mark":    s.luaHasMark,
		"in_node":     s.luaInNode,
		"insert_text": s.luaInsertText,
		"select":      s.luaSelect,
		"collapse":    s.luaCollapse,
		"selection":   s.luaSelection,
		"text":        s.luaText,
	})
	return ed
}

func (s *session) lookup(L *lua.LState) commands.Command {
	name := L.CheckString(1)
	c, ok := s.stock.Get(name)
	if !ok {
		L.RaiseError("unknown command %q", name)
	}
	return c
}

// ed.run(name) runs a stock command and reports whether it applied.
func (s *session) luaRun(L *lua.LState) int {
	c := s.lookup(L)
	var sub *state.Transaction
	ok := c.Exec(s.cur, func(tr *state.Transaction) { sub = tr }, s.view)
	if ok && sub != nil {
		ok = s.apply(sub)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// ed.can(name) reports whether a stock command applies.
func (s *session) luaCan(L *lua.LState) int {
	c := s.lookup(L)
	L.Push(lua.LBool(c.Can(s.cur)))
	return 1
}

// ed.status(name) returns a stock command's status as a string.
func (s *session) luaStatus(L *lua.LState) int {
	c := s.lookup(L)
	L.Push(lua.LString(c.StatusOf(s.cur, query.ActiveFor(s.cur)).String()))
	return 1
}

// ed.has_mark(name) reports whether the mark is active at the selection.
func (s *session) luaHasMark(L *lua.LState) int {
	mt := s.schema.MarkType(L.CheckString(1))
	L.Push(lua.LBool(mt != nil && query.ActiveFor(s.cur).HasMarkType(mt)))
	return 1
}

// ed.in_node(name) reports whether the whole selection is inside a node
// of the type.
func (s *session) luaInNode(L *lua.LState) int {
	nt := s.schema.NodeType(L.CheckString(1))
	L.Push(lua.LBool(nt != nil && query.ActiveFor(s.cur).Within(nt, nil)))
	return 1
}

// ed.insert_text(text) replaces the selection with text.
func (s *session) luaInsertText(L *lua.LState) int {
	tr := s.cur.Tr()
	if err := tr.ReplaceSelectionWithText(L.CheckString(1)); err != nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(s.apply(tr)))
	return 1
}

// ed.select(anchor [, head]) sets the selection.
func (s *session) luaSelect(L *lua.LState) int {
	from := L.CheckInt(1)
	to := L.OptInt(2, from)
	size := s.cur.Doc().Content().Size()
	if from < 0 || to < 0 || from > size || to > size {
		L.ArgError(1, "position out of range")
		return 0
	}
	tr := s.cur.Tr()
	tr.SetSelection(cursor.NewCursorSelection(from).Extend(to))
	L.Push(lua.LBool(s.apply(tr)))
	return 1
}

// ed.collapse() collapses the selection to its head.
func (s *session) luaCollapse(L *lua.LState) int {
	tr := s.cur.Tr()
	tr.SetSelection(s.cur.Selection().Collapse())
	L.Push(lua.LBool(s.apply(tr)))
	return 1
}

// ed.selection() returns the selection bounds.
func (s *session) luaSelection(L *lua.LState) int {
	sel := s.cur.Selection()
	L.Push(lua.LNumber(sel.From()))
	L.Push(lua.LNumber(sel.To()))
	return 2
}

// ed.text() returns the selected text.
func (s *session) luaText(L *lua.LState) int {
	sel := s.cur.Selection()
	L.Push(lua.LString(s.cur.Doc().Cut(sel.From(), sel.To()).TextContent()))
	return 1
}
