package commands

import (
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// Status describes how a command presents itself for a selection.
type Status uint8

const (
	// Disabled means the command does not apply to the selection.
	Disabled Status = iota
	// Enabled means the command can run.
	Enabled
	// Active means the command's target is already in effect.
	Active
	// Hidden means the context the command works in is absent.
	Hidden
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Active:
		return "active"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Dispatch receives the transaction a command built.
type Dispatch func(tr *state.Transaction)

// View is the view a command runs in. Commands never need one to decide
// whether they apply; it is passed through to collaborators that render
// or prompt.
type View interface {
	// Update shows a document and selection.
	Update(doc *model.Node, sel cursor.Selection)
}

// RunFunc checks whether a command applies to st and, when dispatch is
// non-nil, dispatches the transaction performing it.
type RunFunc func(st *state.State, dispatch Dispatch, view View) bool

// StatusFunc computes a command's status. It must not change anything.
type StatusFunc func(st *state.State, active query.ActiveElements) Status

// Command is a named editing command.
type Command struct {
	Name   string
	Run    RunFunc
	Status StatusFunc
}

// New creates a command whose status is Enabled or Disabled depending on
// whether it applies.
func New(name string, run RunFunc) Command {
	return Command{Name: name, Run: run}
}

// WithActive returns a copy of the command reported Active whenever
// isActive accepts the snapshot and the command can run.
func (c Command) WithActive(isActive func(active query.ActiveElements) bool) Command {
	c.Status = func(_ *state.State, active query.ActiveElements) Status {
		if isActive(active) {
			return Active
		}
		return Enabled
	}
	return c
}

// Can reports whether the command applies, without changing anything.
func (c Command) Can(st *state.State) bool {
	if c.Run == nil {
		return false
	}
	return c.Run(st, nil, nil)
}

// Exec runs the command. Dispatch may be nil to only check applicability.
func (c Command) Exec(st *state.State, dispatch Dispatch, view View) bool {
	if c.Run == nil {
		return false
	}
	return c.Run(st, dispatch, view)
}

// StatusOf computes the command's status for a state and its snapshot.
// A status function may claim Active or Enabled; the claim only stands
// when the command can run, otherwise the command is Disabled. Hidden is
// always kept.
func (c Command) StatusOf(st *state.State, active query.ActiveElements) Status {
	claimed := Enabled
	if c.Status != nil {
		claimed = c.Status(st, active)
	}
	switch claimed {
	case Hidden, Disabled:
		return claimed
	}
	if !c.Can(st) {
		return Disabled
	}
	return claimed
}

// Contextual returns a copy of the command that is Hidden, and does not
// run, when present rejects the snapshot.
func Contextual(c Command, present func(active query.ActiveElements) bool) Command {
	status := c.Status
	run := c.Run
	c.Run = func(st *state.State, dispatch Dispatch, view View) bool {
		if !present(query.ActiveFor(st)) {
			return false
		}
		return run(st, dispatch, view)
	}
	c.Status = func(st *state.State, active query.ActiveElements) Status {
		if !present(active) {
			return Hidden
		}
		if status == nil {
			return Enabled
		}
		return status(st, active)
	}
	return c
}

// emit hands a transaction to dispatch when there is one.
func emit(dispatch Dispatch, tr *state.Transaction) bool {
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// fromTransaction adapts an engine operation that returns a checked
// transaction.
func fromTransaction(op func(st *state.State) (*state.Transaction, bool)) RunFunc {
	return func(st *state.State, dispatch Dispatch, _ View) bool {
		tr, ok := op(st)
		if !ok {
			return false
		}
		return emit(dispatch, tr)
	}
}
