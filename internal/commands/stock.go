package commands

import (
	"fmt"

	"github.com/dshills/richcore/internal/model"
)

// Types names the node types the stock commands work with. Nil entries
// disable the commands that need them.
type Types struct {
	Paragraph *model.NodeType
	Heading   *model.NodeType
	Quote     *model.NodeType
	Bullet    *model.NodeType
	Ordered   *model.NodeType
	Item      *model.NodeType
	Indent    *model.NodeType
	Table     *model.NodeType
}

// DefaultTypes looks up the conventional type names in a schema.
func DefaultTypes(s *model.Schema) Types {
	return Types{
		Paragraph: s.NodeType("paragraph"),
		Heading:   s.NodeType("heading"),
		Quote:     s.NodeType("blockquote"),
		Bullet:    s.NodeType("bullet_list"),
		Ordered:   s.NodeType("ordered_list"),
		Item:      s.NodeType("list_item"),
		Indent:    s.NodeType("indent"),
		Table:     s.NodeType("table"),
	}
}

// HeadingLevels is the number of heading_N commands registered.
const HeadingLevels = 6

// Stock builds a registry holding the standard toolbar and keyboard
// commands for a schema.
func Stock(s *model.Schema, types Types) *Registry {
	r := NewRegistry(ClearFormatting(), Lift(), SplitBlock())

	for _, mt := range s.MarkTypes() {
		if !hasRequiredAttrs(mt.Spec().Attrs) {
			r.Register(ToggleMark(mt, nil))
		}
		r.Register(RemoveMark(mt))
		r.Register(RemoveMarkRun(mt))
		r.Register(SelectMarkRun(mt))
	}

	if types.Paragraph != nil {
		r.Register(SetBlockType(types.Paragraph, nil))
		if types.Heading != nil {
			for level := 1; level <= HeadingLevels; level++ {
				r.Register(ToggleBlockType(fmt.Sprintf("heading_%d", level), types.Heading,
					model.Attrs{"level": level}, types.Paragraph))
			}
		}
	}
	if types.Quote != nil {
		r.Register(WrapIn(types.Quote, nil))
	}

	if types.Item != nil {
		r.Register(SinkListItem(types.Item))
		r.Register(LiftListItem(types.Item))
		r.Register(SplitListItem(types.Item))
		for _, lt := range []*model.NodeType{types.Bullet, types.Ordered} {
			if lt == nil {
				continue
			}
			r.Register(ToggleList(lt, types.Item))
			r.Register(ConvertList(lt, types.Item))
			r.Register(WrapInList(lt, nil))
		}
		r.Register(First("enter", SplitListItem(types.Item), SplitBlock()))
	} else {
		r.Register(First("enter", SplitBlock()))
	}

	if types.Indent != nil {
		r.Register(IndentBlock(types.Indent))
		r.Register(OutdentBlock(types.Indent))
		if types.Item != nil {
			r.Register(IncreaseIndent(types.Item, types.Indent))
			r.Register(DecreaseIndent(types.Item, types.Indent))
		}
	}
	return r
}

func hasRequiredAttrs(specs map[string]model.AttributeSpec) bool {
	for _, spec := range specs {
		if !spec.HasDefault {
			return true
		}
	}
	return false
}
