package commands

import (
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// TableOp is an operation of an external table editing module. Like a
// RunFunc it only checks applicability when dispatch is nil.
type TableOp func(st *state.State, dispatch Dispatch, view View) bool

// TableEditor is the table editing module. The engine treats tables as
// opaque ancestors; all structural table edits belong to the editor.
type TableEditor interface {
	// Ops returns the module's operations by command name.
	Ops() map[string]TableOp
}

// TableCommand wraps a table operation as a contextual command: it is
// Hidden outside tables of tableType and Disabled inside one when the
// operation does not apply.
func TableCommand(name string, tableType *model.NodeType, op TableOp) Command {
	cmd := New(name, RunFunc(op))
	return Contextual(cmd, func(active query.ActiveElements) bool {
		return active.Within(tableType, nil)
	})
}

// TableCommands wraps every operation of a table editor.
func TableCommands(editor TableEditor, tableType *model.NodeType) []Command {
	ops := editor.Ops()
	out := make([]Command, 0, len(ops))
	for name, op := range ops {
		out = append(out, TableCommand(name, tableType, op))
	}
	return out
}
