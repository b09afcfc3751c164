// Package transform provides the edit steps, position maps and structural
// helpers that changes to a document are built from.
//
// A Step is an atomic change to a document: replacing a range with a slice
// (ReplaceStep), replacing a range around a preserved gap (ReplaceAroundStep),
// or adding or removing a mark over a range (AddMarkStep, RemoveMarkStep).
// Applying a step produces a new document or an error; the input document is
// never modified.
//
// Every step has a StepMap describing how positions move across it. Maps are
// collected in a Mapping, which composes them left to right so that a
// position in the original document can be carried through any number of
// steps:
//
//	tr := transform.New(doc)
//	tr.Delete(3, 5)
//	tr.AddMark(1, 4, strong)
//	pos := tr.Mapping().Map(7, 1)
//
// Transform accumulates steps and stops at the first failure; structural
// helpers such as Wrap, Lift, Unwrap, Split and Join build the steps for
// common restructurings. Functions such as FindWrapping, LiftTarget,
// CanSplit and CanJoin answer whether a restructuring is possible without
// building anything.
package transform
