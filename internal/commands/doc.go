// Package commands implements the command protocol the UI layer drives the
// editing engine through.
//
// A Command is plain data: a name, a run function and a status function.
// Commands keep no state between calls; everything they need arrives as
// arguments.
//
// # Running
//
// Run takes the current state, an optional Dispatch callback and an
// optional View. Without a dispatch callback a command only checks whether
// it applies and changes nothing. With one, a command that applies builds
// exactly one transaction and hands it to dispatch:
//
//	if cmd.Can(st) {
//	    cmd.Exec(st, func(tr *state.Transaction) { st, _ = st.Apply(tr) }, nil)
//	}
//
// Not applying is never an error: Run simply returns false.
//
// # Status
//
// Status reports how a toolbar button for the command should look, given
// the active-elements snapshot of the selection: Active when the command's
// target is already in effect, Enabled when it can run, Disabled when it
// cannot, and Hidden for contextual commands whose surrounding context is
// missing altogether. A command is never reported Active unless it can run.
//
// # Combinators
//
// First tries commands in order and runs the first that applies; it is how
// "indent" nests a list item inside lists and falls back to wrapping
// blocks in an indent container elsewhere. Sequence runs commands one after
// another and dispatches their combined steps as a single transaction.
package commands
