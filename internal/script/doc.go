// Package script defines editor commands in Lua.
//
// A Host runs scripts in a sandboxed gopher-lua state with only the base,
// table, string and math libraries. Scripts declare commands with the
// global command function:
//
//	command("bold_italic", function(ed)
//		return ed.run("toggle_strong") and ed.run("toggle_em")
//	end, function(ed)
//		return ed.has_mark("strong") and ed.has_mark("em")
//	end)
//
// The optional third function marks the command Active. Install registers
// the declared commands with an engine, where they survive schema reloads.
//
// # The ed table
//
//   - run(name): run a stock command, true if it applied
//   - can(name), status(name): query a stock command
//   - has_mark(name), in_node(name): query the active elements
//   - insert_text(text): replace the selection
//   - select(anchor, head), collapse(), selection(), text(): read and move
//     the selection
//
// Edits made through ed are dispatched as one transaction when the run
// function returns true and discarded otherwise. Every call is bounded by
// the host's timeout.
package script
