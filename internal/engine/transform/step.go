package transform

import (
	"fmt"

	"github.com/dshills/richcore/internal/model"
)

// Step is an atomic change to a document.
type Step interface {
	// Apply applies the step to doc, returning the new document.
	Apply(doc *model.Node) (*model.Node, error)

	// Map returns the position map of the step.
	Map() StepMap

	// Invert returns a step that undoes this one, given the document the
	// step was applied to.
	Invert(doc *model.Node) (Step, error)

	// String describes the step for logging.
	String() string
}

func stepFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStepFailed, fmt.Sprintf(format, args...))
}

func replaceWith(doc *model.Node, from, to int, s model.Slice) (*model.Node, error) {
	out, err := doc.Replace(from, to, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStepFailed, err)
	}
	return out, nil
}

// ReplaceStep replaces [From, To) with a slice. When Structure is set the
// step fails if the replaced range contains content rather than only node
// boundaries.
type ReplaceStep struct {
	From, To  int
	Slice     model.Slice
	Structure bool
}

// NewReplaceStep creates a replace step.
func NewReplaceStep(from, to int, s model.Slice, structure bool) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: s, Structure: structure}
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && contentBetween(doc, s.From, s.To) {
		return nil, stepFailed("structure replace would overwrite content")
	}
	return replaceWith(doc, s.From, s.To, s.Slice)
}

// Map implements Step.
func (s *ReplaceStep) Map() StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) (Step, error) {
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), doc.Slice(s.From, s.To), false), nil
}

func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Slice)
}

// ReplaceAroundStep replaces [From, To) with a slice while keeping the
// content of the gap [GapFrom, GapTo), which is inserted into the slice at
// offset Insert. Wrapping and lifting are expressed with this step.
type ReplaceAroundStep struct {
	From, To       int
	GapFrom, GapTo int
	Slice          model.Slice
	Insert         int
	Structure      bool
}

// NewReplaceAroundStep creates a replace-around step.
func NewReplaceAroundStep(from, to, gapFrom, gapTo int, s model.Slice, insert int, structure bool) *ReplaceAroundStep {
	return &ReplaceAroundStep{
		From:      from,
		To:        to,
		GapFrom:   gapFrom,
		GapTo:     gapTo,
		Slice:     s,
		Insert:    insert,
		Structure: structure,
	}
}

// Apply implements Step.
func (s *ReplaceAroundStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && (contentBetween(doc, s.From, s.GapFrom) || contentBetween(doc, s.GapTo, s.To)) {
		return nil, stepFailed("structure gap-replace would overwrite content")
	}
	gap := doc.Slice(s.GapFrom, s.GapTo)
	if gap.OpenStart != 0 || gap.OpenEnd != 0 {
		return nil, stepFailed("gap is not a flat range")
	}
	inserted, ok := s.Slice.InsertAt(s.Insert, gap.Content)
	if !ok {
		return nil, stepFailed("content does not fit in gap")
	}
	return replaceWith(doc, s.From, s.To, inserted)
}

// Map implements Step.
func (s *ReplaceAroundStep) Map() StepMap {
	return NewStepMap(
		s.From, s.GapFrom-s.From, s.Insert,
		s.GapTo, s.To-s.GapTo, s.Slice.Size()-s.Insert,
	)
}

// Invert implements Step.
func (s *ReplaceAroundStep) Invert(doc *model.Node) (Step, error) {
	gap := s.GapTo - s.GapFrom
	removed, err := doc.Slice(s.From, s.To).RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStepFailed, err)
	}
	return NewReplaceAroundStep(
		s.From, s.From+s.Slice.Size()+gap,
		s.From+s.Insert, s.From+s.Insert+gap,
		removed, s.GapFrom-s.From, s.Structure,
	), nil
}

func (s *ReplaceAroundStep) String() string {
	return fmt.Sprintf("replaceAround(%d, %d, gap %d-%d, %s @%d)", s.From, s.To, s.GapFrom, s.GapTo, s.Slice, s.Insert)
}

// contentBetween reports whether [from, to) holds anything other than the
// closing and opening tokens of nodes.
func contentBetween(doc *model.Node, from, to int) bool {
	rf := doc.Resolve(from)
	dist := to - from
	depth := rf.Depth
	for dist > 0 && depth > 0 && rf.IndexAfter(depth) == rf.Node(depth).ChildCount() {
		depth--
		dist--
	}
	if dist > 0 {
		next := rf.Node(depth).MaybeChild(rf.IndexAfter(depth))
		for dist > 0 {
			if next == nil || next.IsLeaf() {
				return true
			}
			next = next.FirstChild()
			dist--
		}
	}
	return false
}
