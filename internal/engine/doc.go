// Package engine provides the editing session for structured documents.
//
// The engine package serves as the facade over the editing core: the
// document model, the transform and state packages that build and commit
// transactions, and the command registry that drives them by name.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - cursor: selections and their remapping through edits
//   - transform: steps, step maps, mappings and structural helpers
//   - state: editor state and transactions with atomic apply
//   - query: mark runs, ancestors and the active-elements snapshot
//   - list: list nesting, splitting and conversion
//   - indent: generic indent containers
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent status queries while serializing edits. The view is
// notified after the lock is released.
//
// # Basic Usage
//
//	e, err := engine.New(engine.WithHTML("<p>Hello, World!</p>"))
//	if err != nil {
//		return err
//	}
//	e.SetSelection(cursor.NewSelection(1, 6))
//	e.Exec("toggle_strong")
//	html, _ := e.HTML() // <p><strong>Hello</strong>, World!</p>
//
// # Command Status
//
// Toolbars query every command at once:
//
//	for name, status := range e.Statuses() {
//		// status is Active, Enabled, Disabled or Hidden
//	}
//
// A command is never Active or Enabled unless executing it would apply.
//
// # Configuration
//
// The schema and the list and indent type names come from a config.Config.
// ApplyConfig switches configuration at runtime and WatchConfig does so
// whenever a file changes. The document is rebound to the new schema by
// type name, keeping positions and the selection.
package engine
