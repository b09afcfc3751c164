package transform

import (
	"github.com/dshills/richcore/internal/model"
)

// AddMark adds a mark to the inline content in [from, to). Marks the new
// mark excludes are removed from the same content.
func (t *Transform) AddMark(from, to int, mark *model.Mark) error {
	var removed []*RemoveMarkStep
	var adding []*AddMarkStep
	var removing *RemoveMarkStep
	var last *AddMarkStep
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, parent *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		marks := n.Marks()
		if mark.IsInSet(marks) || !parent.Type().AllowsMarkType(mark.Type()) {
			return true
		}
		start, end := max(pos, from), min(pos+n.NodeSize(), to)
		newSet := mark.AddToSet(marks)
		for _, m := range marks {
			if m.IsInSet(newSet) {
				continue
			}
			if removing != nil && removing.To == start && removing.Mark.Eq(m) {
				removing.To = end
			} else {
				removing = &RemoveMarkStep{From: start, To: end, Mark: m}
				removed = append(removed, removing)
			}
		}
		if last != nil && last.To == start {
			last.To = end
		} else {
			last = &AddMarkStep{From: start, To: end, Mark: mark}
			adding = append(adding, last)
		}
		return true
	})
	for _, s := range removed {
		if err := t.Step(s); err != nil {
			return err
		}
	}
	for _, s := range adding {
		if err := t.Step(s); err != nil {
			return err
		}
	}
	return t.err
}

// RemoveMark removes a mark from the inline content in [from, to).
func (t *Transform) RemoveMark(from, to int, mark *model.Mark) error {
	return t.removeMarks(from, to, func(set []*model.Mark) []*model.Mark {
		if mark.IsInSet(set) {
			return []*model.Mark{mark}
		}
		return nil
	})
}

// RemoveMarkType removes every mark of the given type from the inline
// content in [from, to).
func (t *Transform) RemoveMarkType(from, to int, mt *model.MarkType) error {
	return t.removeMarks(from, to, func(set []*model.Mark) []*model.Mark {
		var found []*model.Mark
		for _, m := range set {
			if m.Type() == mt {
				found = append(found, m)
			}
		}
		return found
	})
}

// RemoveAllMarks removes all marks from the inline content in [from, to).
func (t *Transform) RemoveAllMarks(from, to int) error {
	return t.removeMarks(from, to, func(set []*model.Mark) []*model.Mark { return set })
}

type markRun struct {
	mark     *model.Mark
	from, to int
	step     int
}

func (t *Transform) removeMarks(from, to int, pick func([]*model.Mark) []*model.Mark) error {
	var matched []*markRun
	step := 0
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		step++
		toRemove := pick(n.Marks())
		end := min(pos+n.NodeSize(), to)
		for _, m := range toRemove {
			var found *markRun
			for _, run := range matched {
				if run.step == step-1 && m.Eq(run.mark) {
					found = run
				}
			}
			if found != nil {
				found.to = end
				found.step = step
			} else {
				matched = append(matched, &markRun{mark: m, from: max(pos, from), to: end, step: step})
			}
		}
		return true
	})
	for _, run := range matched {
		if err := t.Step(&RemoveMarkStep{From: run.from, To: run.to, Mark: run.mark}); err != nil {
			return err
		}
	}
	return t.err
}
