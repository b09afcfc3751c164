// Package indent wraps block ranges in a generic indent container and
// unwraps them again, independently of lists.
package indent

import (
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/engine/transform"
	"github.com/dshills/richcore/internal/model"
)

// Increase wraps the blocks covered by the selection in a node of
// indentType, adding whatever wrappers the schema requires.
func Increase(st *state.State, indentType *model.NodeType) (*state.Transaction, bool) {
	sel := st.Selection()
	doc := st.Doc()
	r := doc.Resolve(sel.From()).BlockRange(doc.Resolve(sel.To()), nil)
	if r == nil {
		return nil, false
	}
	wrappers := transform.FindWrapping(r, indentType, nil)
	if wrappers == nil {
		return nil, false
	}
	tr := st.Tr()
	if tr.Wrap(r, wrappers) != nil {
		return nil, false
	}
	return checked(tr)
}

// Decrease unwraps the innermost indentType node enclosing the selection.
// Positions inside it move back by one and positions after it by two.
func Decrease(st *state.State, indentType *model.NodeType) (*state.Transaction, bool) {
	pos, ok := Enclosing(st, indentType)
	if !ok {
		return nil, false
	}
	tr := st.Tr()
	if tr.Unwrap(pos) != nil {
		return nil, false
	}
	return checked(tr)
}

// Enclosing returns the position before the innermost indentType node
// enclosing the whole selection.
func Enclosing(st *state.State, indentType *model.NodeType) (int, bool) {
	sel := st.Selection()
	from := st.Doc().Resolve(sel.From())
	for d := from.SharedDepth(sel.To()); d > 0; d-- {
		if from.Node(d).Type() == indentType {
			return from.Before(d), true
		}
	}
	return 0, false
}

func checked(tr *state.Transaction) (*state.Transaction, bool) {
	if tr.Failed() || tr.Doc().Check() != nil {
		return nil, false
	}
	return tr, true
}
