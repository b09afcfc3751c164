package transform

import (
	"fmt"

	"github.com/dshills/richcore/internal/model"
)

// AddMarkStep adds a mark to all inline content in [From, To).
type AddMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// Apply implements Step.
func (s *AddMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	old := doc.Slice(s.From, s.To)
	rf := doc.Resolve(s.From)
	parent := rf.Node(rf.SharedDepth(s.To))
	content := mapFragment(old.Content, func(n, parent *model.Node) *model.Node {
		if !n.IsAtom() || !parent.Type().AllowsMarkType(s.Mark.Type()) {
			return n
		}
		return n.WithMarks(s.Mark.AddToSet(n.Marks()))
	}, parent)
	return replaceWith(doc, s.From, s.To, model.NewSlice(content, old.OpenStart, old.OpenEnd))
}

// Map implements Step.
func (s *AddMarkStep) Map() StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *AddMarkStep) Invert(*model.Node) (Step, error) {
	return &RemoveMarkStep{From: s.From, To: s.To, Mark: s.Mark}, nil
}

func (s *AddMarkStep) String() string {
	return fmt.Sprintf("addMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

// RemoveMarkStep removes a mark from all inline content in [From, To).
type RemoveMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// Apply implements Step.
func (s *RemoveMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	old := doc.Slice(s.From, s.To)
	content := mapFragment(old.Content, func(n, _ *model.Node) *model.Node {
		return n.WithMarks(s.Mark.RemoveFromSet(n.Marks()))
	}, doc)
	return replaceWith(doc, s.From, s.To, model.NewSlice(content, old.OpenStart, old.OpenEnd))
}

// Map implements Step.
func (s *RemoveMarkStep) Map() StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *RemoveMarkStep) Invert(*model.Node) (Step, error) {
	return &AddMarkStep{From: s.From, To: s.To, Mark: s.Mark}, nil
}

func (s *RemoveMarkStep) String() string {
	return fmt.Sprintf("removeMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

// mapFragment rebuilds a fragment bottom-up, passing every inline node and
// its parent to fn.
func mapFragment(f model.Fragment, fn func(n, parent *model.Node) *model.Node, parent *model.Node) model.Fragment {
	mapped := make([]*model.Node, 0, f.ChildCount())
	for i := 0; i < f.ChildCount(); i++ {
		child := f.Child(i)
		if child.Content().Size() > 0 {
			child = child.Copy(mapFragment(child.Content(), fn, child))
		}
		if child.IsInline() {
			child = fn(child, parent)
		}
		mapped = append(mapped, child)
	}
	return model.FragmentFrom(mapped...)
}
