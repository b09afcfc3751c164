package transform

import (
	"fmt"

	"github.com/dshills/richcore/internal/model"
)

// Replace replaces [from, to) with a slice. Nothing happens for an empty
// replacement of an empty range.
func (t *Transform) Replace(from, to int, s model.Slice) error {
	if from == to && s.Size() == 0 {
		return t.err
	}
	return t.Step(NewReplaceStep(from, to, s, false))
}

// Delete deletes [from, to), joining the nodes cut at both ends. It fails
// when those nodes cannot be joined.
func (t *Transform) Delete(from, to int) error {
	return t.Replace(from, to, model.EmptySlice)
}

// Insert inserts nodes at pos.
func (t *Transform) Insert(pos int, nodes ...*model.Node) error {
	return t.Replace(pos, pos, model.NewSlice(model.FragmentFrom(nodes...), 0, 0))
}

// InsertText inserts text with the given marks at pos.
func (t *Transform) InsertText(pos int, text string, marks ...*model.Mark) error {
	n := t.doc.Type().Schema().Text(text, marks...)
	if n == nil {
		return t.err
	}
	return t.Insert(pos, n)
}

// SetNodeMarkup changes the type, attributes and marks of the node at pos,
// keeping its content. A nil type keeps the current type.
func (t *Transform) SetNodeMarkup(pos int, typ *model.NodeType, attrs model.Attrs, marks []*model.Mark) error {
	node := t.doc.NodeAt(pos)
	if node == nil {
		err := fmt.Errorf("%w: no node at position %d", ErrNoTarget, pos)
		t.Fail(err)
		return err
	}
	if typ == nil {
		typ = node.Type()
	}
	if marks == nil {
		marks = node.Marks()
	}
	if node.IsLeaf() {
		replacement, err := typ.Make(attrs, model.EmptyFragment, marks)
		if err != nil {
			t.Fail(err)
			return err
		}
		return t.Replace(pos, pos+node.NodeSize(), model.NewSlice(model.FragmentFrom(replacement), 0, 0))
	}
	if !typ.ValidContent(node.Content()) {
		err := fmt.Errorf("%w: invalid content for node type %s", model.ErrInvalidContent, typ.Name())
		t.Fail(err)
		return err
	}
	wrapper, err := typ.Make(attrs, model.EmptyFragment, marks)
	if err != nil {
		t.Fail(err)
		return err
	}
	end := pos + node.NodeSize()
	return t.Step(NewReplaceAroundStep(pos, end, pos+1, end-1, model.NewSlice(model.FragmentFrom(wrapper), 0, 0), 1, true))
}

// SetBlockType changes every textblock in [from, to) that can take the
// given type to that type. Marks the new type does not allow are removed
// first.
func (t *Transform) SetBlockType(from, to int, typ *model.NodeType, attrs model.Attrs) error {
	if !typ.IsTextblock() {
		err := fmt.Errorf("%w: %s is not a textblock type", ErrNoTarget, typ.Name())
		t.Fail(err)
		return err
	}
	proto, err := typ.Make(attrs, model.EmptyFragment, nil)
	if err != nil {
		t.Fail(err)
		return err
	}
	mapFrom := t.mapping.Len()
	var blocks []int
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if n.IsTextblock() && !n.HasMarkup(typ, proto.Attrs(), n.Marks()) {
			blocks = append(blocks, pos)
			return false
		}
		return true
	})
	for _, pos := range blocks {
		mapping := t.mapping.Slice(mapFrom, t.mapping.Len())
		start := mapping.Map(pos, 1)
		if !canChangeType(t.doc, start, typ) {
			continue
		}
		t.clearIncompatible(start, typ)
		node := t.doc.NodeAt(start)
		if node == nil || !typ.ValidContent(node.Content()) {
			continue
		}
		if err := t.SetNodeMarkup(start, typ, proto.Attrs(), node.Marks()); err != nil {
			return err
		}
	}
	return t.err
}

func canChangeType(doc *model.Node, pos int, typ *model.NodeType) bool {
	r := doc.Resolve(pos)
	index := r.Index(r.Depth)
	return r.Parent().CanReplaceWith(index, index+1, typ)
}

// clearIncompatible removes marks from the content of the node at pos that
// the given type would not allow.
func (t *Transform) clearIncompatible(pos int, typ *model.NodeType) {
	node := t.doc.NodeAt(pos)
	if node == nil {
		return
	}
	cur := pos + 1
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		end := cur + child.NodeSize()
		for _, m := range child.Marks() {
			if !typ.AllowsMarkType(m.Type()) {
				_ = t.Step(&RemoveMarkStep{From: cur, To: end, Mark: m})
			}
		}
		cur = end
	}
}
