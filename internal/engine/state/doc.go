// Package state holds editor state and the transactions that move it forward.
//
// A State is an immutable snapshot: the document, the selection and any
// stored marks waiting to be applied to typed text. Changes are built in a
// Transaction, which collects transform steps and an optional explicit
// selection, and are committed with State.Apply:
//
//	tr := st.Tr()
//	tr.Delete(st.Selection().From(), st.Selection().To())
//	next, err := st.Apply(tr)
//
// Apply is atomic. A transaction with a failed step, or one whose final
// document does not pass validation, yields the original state unchanged
// together with an error wrapping ErrTransactionFailed. Unless the
// transaction sets one, the selection is carried across the change through
// the transaction's mapping and clamped to the new document.
package state
