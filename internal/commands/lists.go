package commands

import (
	"github.com/dshills/richcore/internal/engine/indent"
	"github.com/dshills/richcore/internal/engine/list"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
)

func isListOf(itemType *model.NodeType) func(*model.Node) bool {
	return func(n *model.Node) bool {
		return n.ChildCount() > 0 && n.FirstChild().Type() == itemType
	}
}

// inList reports whether the innermost list around the selection has type listType.
func inList(active query.ActiveElements, listType, itemType *model.NodeType) bool {
	a, ok := active.Innermost(isListOf(itemType))
	return ok && a.Node.Type() == listType
}

// SinkListItem nests the selected list items one level deeper.
func SinkListItem(itemType *model.NodeType) Command {
	return New("sink_list_item", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Sink(st, itemType)
	}))
}

// LiftListItem moves the selected list items one level up. It does not
// apply to items in a top-level list.
func LiftListItem(itemType *model.NodeType) Command {
	return New("lift_list_item", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Lift(st, itemType)
	}))
}

// SplitListItem splits the list item at the cursor into two items.
func SplitListItem(itemType *model.NodeType) Command {
	return New("split_list_item", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Split(st, itemType)
	}))
}

// ToggleList wraps the selection in a list of listType, converts the list
// around it to listType, or removes the list when it already has that type.
func ToggleList(listType, itemType *model.NodeType) Command {
	run := fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Toggle(st, listType, itemType)
	})
	return New("toggle_"+listType.Name(), run).WithActive(func(active query.ActiveElements) bool {
		return inList(active, listType, itemType)
	})
}

// ConvertList changes the list around the selection to listType.
func ConvertList(listType, itemType *model.NodeType) Command {
	return New("convert_to_"+listType.Name(), fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Convert(st, listType, itemType)
	}))
}

// WrapInList wraps the selected blocks in a new list of listType.
func WrapInList(listType *model.NodeType, attrs model.Attrs) Command {
	return New("wrap_in_"+listType.Name(), fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return list.Wrap(st, listType, attrs)
	}))
}

// IndentBlock wraps the selected blocks in an indent container.
func IndentBlock(indentType *model.NodeType) Command {
	return New("indent_block", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return indent.Increase(st, indentType)
	}))
}

// OutdentBlock unwraps the innermost indent container around the selection.
func OutdentBlock(indentType *model.NodeType) Command {
	return New("outdent_block", fromTransaction(func(st *state.State) (*state.Transaction, bool) {
		return indent.Decrease(st, indentType)
	}))
}

// IncreaseIndent nests list items inside lists and wraps blocks in an
// indent container everywhere else.
func IncreaseIndent(itemType, indentType *model.NodeType) Command {
	return First("indent", SinkListItem(itemType), IndentBlock(indentType))
}

// DecreaseIndent lifts nested list items and unwraps indent containers.
func DecreaseIndent(itemType, indentType *model.NodeType) Command {
	return First("outdent", LiftListItem(itemType), OutdentBlock(indentType))
}
