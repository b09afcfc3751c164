package script

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// command adapts a script definition. The run function receives an ed
// table bound to a session; the command applies when it returns true,
// and every step it made is dispatched as one transaction.
func (h *Host) command(d definition, s *model.Schema, stock *commands.Registry) commands.Command {
	c := commands.New(d.name, func(st *state.State, dispatch commands.Dispatch, view commands.View) bool {
		sess := newSession(s, stock, st, view)
		ok, err := h.call(d.run, sess)
		if err != nil {
			h.log.Warn("script command failed", zap.String("command", d.name), zap.Error(err))
			return false
		}
		if !ok || sess.failed {
			return false
		}
		tr, built := sess.transaction()
		if !built {
			return false
		}
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	})
	if d.active != nil {
		c.Status = func(st *state.State, _ query.ActiveElements) commands.Status {
			ok, err := h.call(d.active, newSession(s, stock, st, nil))
			if err != nil || !ok {
				return commands.Enabled
			}
			return commands.Active
		}
	}
	return c
}

// call invokes fn with a fresh ed table and reports whether it returned
// a true value.
func (h *Host) call(fn *lua.LFunction, sess *session) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false, ErrClosed
	}
	var ret lua.LValue = lua.LNil
	err := h.withContext(func() error {
		ed := sess.table(h.L)
		if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, ed); err != nil {
			return err
		}
		ret = h.L.Get(-1)
		h.L.Pop(1)
		return nil
	})
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}
