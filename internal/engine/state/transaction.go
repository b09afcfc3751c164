package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/transform"
	"github.com/dshills/richcore/internal/model"
)

// Transaction is a transform bound to the state it started from. It adds
// an identifier, an optional explicit selection and stored marks.
type Transaction struct {
	*transform.Transform

	id   uuid.UUID
	time time.Time
	base *State

	sel     cursor.Selection
	selStep int
	selSet  bool

	storedMarks []*model.Mark
	storedSet   bool

	meta map[string]any
}

func newTransaction(s *State) *Transaction {
	return &Transaction{
		Transform:   transform.New(s.doc),
		id:          uuid.New(),
		time:        time.Now(),
		base:        s,
		storedMarks: s.storedMarks,
	}
}

// ID returns the transaction identifier.
func (tr *Transaction) ID() uuid.UUID { return tr.id }

// Time returns when the transaction was created.
func (tr *Transaction) Time() time.Time { return tr.time }

// Base returns the state the transaction started from.
func (tr *Transaction) Base() *State { return tr.base }

// Selection returns the selection the transaction will produce: the
// explicitly set selection mapped through later steps, or the starting
// selection mapped through every step.
func (tr *Transaction) Selection() cursor.Selection {
	size := tr.Doc().Content().Size()
	mapping := tr.Mapping()
	if tr.selSet {
		return tr.sel.Map(mapping.Slice(tr.selStep, mapping.Len()), size)
	}
	return tr.base.selection.Map(mapping, size)
}

// SetSelection sets the selection, in terms of the current document.
// Stored marks are cleared unless set explicitly.
func (tr *Transaction) SetSelection(sel cursor.Selection) *Transaction {
	tr.sel = sel.Clamp(tr.Doc().Content().Size())
	tr.selStep = tr.Mapping().Len()
	tr.selSet = true
	return tr
}

// SelectionSet reports whether SetSelection was called.
func (tr *Transaction) SelectionSet() bool { return tr.selSet }

// SetStoredMarks replaces the stored marks. Nil clears them.
func (tr *Transaction) SetStoredMarks(marks []*model.Mark) *Transaction {
	tr.storedMarks = marks
	tr.storedSet = true
	return tr
}

// AddStoredMark adds a mark to the stored marks, starting from the given
// marks when none are stored.
func (tr *Transaction) AddStoredMark(m *model.Mark, current []*model.Mark) *Transaction {
	set := tr.storedMarks
	if set == nil {
		set = current
	}
	return tr.SetStoredMarks(m.AddToSet(set))
}

// RemoveStoredMark removes marks of the given type from the stored marks,
// starting from the given marks when none are stored.
func (tr *Transaction) RemoveStoredMark(mt *model.MarkType, current []*model.Mark) *Transaction {
	set := tr.storedMarks
	if set == nil {
		set = current
	}
	out := mt.RemoveFromSet(set)
	if out == nil {
		out = []*model.Mark{}
	}
	return tr.SetStoredMarks(out)
}

// StoredMarksSet reports whether the stored marks were set.
func (tr *Transaction) StoredMarksSet() bool { return tr.storedSet }

// DeleteSelection deletes the selected content and collapses the selection
// at its start.
func (tr *Transaction) DeleteSelection() error {
	sel := tr.Selection()
	if sel.IsEmpty() {
		return tr.Err()
	}
	start := tr.Mapping().Len()
	if err := tr.Delete(sel.From(), sel.To()); err != nil {
		return err
	}
	tr.SetSelection(cursor.NewCursorSelection(tr.Mapping().Slice(start, tr.Mapping().Len()).Map(sel.From(), -1)))
	return nil
}

// ReplaceSelectionWithText replaces the selection with text carrying the
// stored marks, or the marks at the selection start when none are stored.
func (tr *Transaction) ReplaceSelectionWithText(text string) error {
	sel := tr.Selection()
	marks := tr.storedMarks
	if marks == nil {
		marks = tr.Doc().Resolve(sel.From()).Marks()
	}
	start := tr.Mapping().Len()
	if !sel.IsEmpty() {
		if err := tr.Delete(sel.From(), sel.To()); err != nil {
			return err
		}
	}
	pos := tr.Mapping().Slice(start, tr.Mapping().Len()).Map(sel.From(), -1)
	if err := tr.InsertText(pos, text, marks...); err != nil {
		return err
	}
	tr.SetSelection(cursor.NewCursorSelection(pos + len([]rune(text))))
	return nil
}

// SetMeta stores a value on the transaction.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns a stored value.
func (tr *Transaction) Meta(key string) (any, bool) {
	v, ok := tr.meta[key]
	return v, ok
}
