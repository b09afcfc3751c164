package commands

import (
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
)

// First combines commands into one that runs the first command that
// applies. Its status is the status of that command.
func First(name string, cmds ...Command) Command {
	return Command{
		Name: name,
		Run: func(st *state.State, dispatch Dispatch, view View) bool {
			for _, c := range cmds {
				if c.Exec(st, dispatch, view) {
					return true
				}
			}
			return false
		},
		Status: func(st *state.State, active query.ActiveElements) Status {
			hidden := len(cmds) > 0
			for _, c := range cmds {
				switch s := c.StatusOf(st, active); s {
				case Active, Enabled:
					return s
				case Disabled:
					hidden = false
				}
			}
			if hidden {
				return Hidden
			}
			return Disabled
		},
	}
}

// Sequence combines commands into one that runs all of them in order,
// each against the state the previous one produced, and dispatches their
// steps as a single transaction. It applies only when every command does.
func Sequence(name string, cmds ...Command) Command {
	return Command{
		Name: name,
		Run: func(st *state.State, dispatch Dispatch, view View) bool {
			cur := st
			combined := st.Tr()
			for _, c := range cmds {
				var sub *state.Transaction
				if !c.Exec(cur, func(tr *state.Transaction) { sub = tr }, view) {
					return false
				}
				if sub == nil {
					continue
				}
				next, err := cur.Apply(sub)
				if err != nil {
					return false
				}
				for _, s := range sub.Steps() {
					if combined.Step(s) != nil {
						return false
					}
				}
				cur = next
			}
			combined.SetSelection(cur.Selection())
			if cur.StoredMarks() != nil || st.StoredMarks() != nil {
				combined.SetStoredMarks(cur.StoredMarks())
			}
			return emit(dispatch, combined)
		},
	}
}
