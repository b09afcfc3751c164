// Package cursor provides the selection value used by the editing engine.
//
// Selection Model:
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection is a cursor with no extent. The
// selection may run forward (head > anchor) or backward (head < anchor).
// From and To always return the lower and higher end.
//
// Positions are document offsets as produced by model.Node.Resolve. A
// selection is only meaningful for the document snapshot it was made in;
// after an edit it is carried forward with Map:
//
//	sel := cursor.NewSelection(3, 7)
//	sel = sel.Map(tr.Mapping(), tr.Doc().Content().Size())
package cursor
