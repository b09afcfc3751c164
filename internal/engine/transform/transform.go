package transform

import (
	"github.com/dshills/richcore/internal/model"
)

// Transform accumulates steps against a document. After the first failing
// step the transform is failed: Err returns the failure and further steps
// are ignored, so a failed transform never describes a partial change.
type Transform struct {
	before  *model.Node
	doc     *model.Node
	steps   []Step
	docs    []*model.Node
	mapping Mapping
	err     error
}

// New creates a transform starting at doc.
func New(doc *model.Node) *Transform {
	return &Transform{before: doc, doc: doc}
}

// Doc returns the current document.
func (t *Transform) Doc() *model.Node { return t.doc }

// Before returns the starting document.
func (t *Transform) Before() *model.Node { return t.before }

// Steps returns the applied steps.
func (t *Transform) Steps() []Step { return append([]Step(nil), t.steps...) }

// Docs returns the document before each step.
func (t *Transform) Docs() []*model.Node { return append([]*model.Node(nil), t.docs...) }

// Mapping returns the mapping of all applied steps.
func (t *Transform) Mapping() *Mapping { return &t.mapping }

// DocChanged reports whether any step was applied.
func (t *Transform) DocChanged() bool { return len(t.steps) > 0 }

// Err returns the first step failure, or nil.
func (t *Transform) Err() error { return t.err }

// Failed reports whether a step has failed.
func (t *Transform) Failed() bool { return t.err != nil }

// Step applies a step. On failure the transform is marked failed and the
// error returned.
func (t *Transform) Step(s Step) error {
	if t.err != nil {
		return t.err
	}
	doc, err := s.Apply(t.doc)
	if err != nil {
		t.err = err
		return err
	}
	t.addStep(s, doc)
	return nil
}

// MaybeStep applies a step and reports the failure without marking the
// transform failed.
func (t *Transform) MaybeStep(s Step) error {
	if t.err != nil {
		return t.err
	}
	doc, err := s.Apply(t.doc)
	if err != nil {
		return err
	}
	t.addStep(s, doc)
	return nil
}

// Fail marks the transform failed with err.
func (t *Transform) Fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

func (t *Transform) addStep(s Step, doc *model.Node) {
	t.docs = append(t.docs, t.doc)
	t.steps = append(t.steps, s)
	t.mapping.AppendMap(s.Map())
	t.doc = doc
}
