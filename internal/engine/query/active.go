package query

import (
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

// ActiveElements is the formatting context of a selection.
type ActiveElements struct {
	// Marks is the union of marks over the selection.
	Marks []*model.Mark
	// Ancestors is the union of ancestor chains over the selection.
	Ancestors []model.Ancestor
	// Shared holds the ancestors enclosing the whole selection.
	Shared []model.Ancestor
}

// Active computes the active elements of a selection in doc. An empty
// selection uses the marks at the cursor.
func Active(doc *model.Node, sel cursor.Selection) ActiveElements {
	if sel.IsEmpty() {
		chain := AncestorsAt(doc, sel.Head)
		return ActiveElements{
			Marks:     doc.Resolve(sel.Head).Marks(),
			Ancestors: chain,
			Shared:    chain,
		}
	}
	return ActiveElements{
		Marks:     MarksInRange(doc, sel.From(), sel.To()),
		Ancestors: AncestorsInRange(doc, sel.From(), sel.To()),
		Shared:    SharedAncestors(doc, sel.From(), sel.To()),
	}
}

// ActiveFor computes the active elements of a state, using stored marks
// for an empty selection when set.
func ActiveFor(st *state.State) ActiveElements {
	active := Active(st.Doc(), st.Selection())
	if st.Selection().IsEmpty() {
		active.Marks = ActiveMarksAt(st)
	}
	return active
}

// HasMark reports whether the mark is active.
func (a ActiveElements) HasMark(m *model.Mark) bool {
	return m.IsInSet(a.Marks)
}

// HasMarkType reports whether a mark of the type is active.
func (a ActiveElements) HasMarkType(mt *model.MarkType) bool {
	return mt.IsInSet(a.Marks) != nil
}

// Within reports whether a node of the type, with matching attributes when
// attrs is non-nil, encloses the whole selection.
func (a ActiveElements) Within(nt *model.NodeType, attrs model.Attrs) bool {
	_, ok := findMatching(a.Shared, nt, attrs)
	return ok
}

// Touches reports whether a node of the type encloses any part of the
// selection.
func (a ActiveElements) Touches(nt *model.NodeType) bool {
	_, ok := findMatching(a.Ancestors, nt, nil)
	return ok
}

// Innermost returns the innermost shared ancestor accepted by pred.
func (a ActiveElements) Innermost(pred func(*model.Node) bool) (model.Ancestor, bool) {
	return FindAncestor(a.Shared, pred)
}

func findMatching(set []model.Ancestor, nt *model.NodeType, attrs model.Attrs) (model.Ancestor, bool) {
	return FindAncestor(set, func(n *model.Node) bool {
		if n.Type() != nt {
			return false
		}
		if attrs == nil {
			return true
		}
		for k, v := range attrs {
			if got, ok := n.Attrs().Get(k); !ok || got != v {
				return false
			}
		}
		return true
	})
}
