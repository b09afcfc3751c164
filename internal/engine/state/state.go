package state

import (
	"fmt"

	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/model"
)

// State is an immutable editor state.
type State struct {
	doc         *model.Node
	selection   cursor.Selection
	storedMarks []*model.Mark
}

// New creates a state for doc with the selection clamped to the document.
func New(doc *model.Node, sel cursor.Selection) *State {
	return &State{doc: doc, selection: sel.Clamp(doc.Content().Size())}
}

// Schema returns the schema of the document.
func (s *State) Schema() *model.Schema { return s.doc.Type().Schema() }

// Doc returns the document.
func (s *State) Doc() *model.Node { return s.doc }

// Selection returns the selection.
func (s *State) Selection() cursor.Selection { return s.selection }

// StoredMarks returns the marks to apply to the next typed text, or nil
// when none are stored.
func (s *State) StoredMarks() []*model.Mark { return s.storedMarks }

// Tr starts a transaction on this state.
func (s *State) Tr() *Transaction {
	return newTransaction(s)
}

// Apply commits a transaction and returns the new state. On failure the
// receiver is returned unchanged with an error.
func (s *State) Apply(tr *Transaction) (*State, error) {
	if tr.Before() != s.doc {
		return s, fmt.Errorf("%w: transaction %s", ErrMismatchedState, tr.ID())
	}
	if err := tr.Err(); err != nil {
		return s, fmt.Errorf("%w: transaction %s: %w", ErrTransactionFailed, tr.ID(), err)
	}
	doc := tr.Doc()
	if tr.DocChanged() {
		if err := doc.Check(); err != nil {
			return s, fmt.Errorf("%w: transaction %s: %w", ErrTransactionFailed, tr.ID(), err)
		}
	}

	next := &State{doc: doc, selection: tr.Selection()}
	switch {
	case tr.storedSet:
		next.storedMarks = tr.storedMarks
	case !tr.DocChanged() && !tr.selSet:
		next.storedMarks = s.storedMarks
	}
	return next, nil
}

func (s *State) String() string {
	return fmt.Sprintf("State{%s, %s}", s.selection, s.doc)
}
