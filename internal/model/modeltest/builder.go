// Package modeltest builds documents over the default schema for tests.
//
// Text arguments may contain tags such as "<a>" marking positions:
//
//	d := modeltest.Doc(modeltest.P("he<a>llo"))
//	d.Tag("a") // 3
//
// Tag positions are absolute for documents and relative to the node's
// content start for other nodes.
package modeltest

import (
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/dshills/richcore/internal/config"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/model"
)

var (
	schemaOnce sync.Once
	schema     *model.Schema
	schemaErr  error
)

// Schema returns the default schema.
func Schema() *model.Schema {
	schemaOnce.Do(func() {
		cfg, err := config.Default()
		if err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = cfg.BuildSchema()
	})
	if schemaErr != nil {
		panic(fmt.Sprintf("modeltest: default schema: %v", schemaErr))
	}
	return schema
}

// Built is a node or a run of marked inline nodes together with the tags
// found in its text.
type Built struct {
	nodes []*model.Node
	tags  map[string]int
	flat  bool
}

// Node returns the built node, or the first node of a marked run.
func (b *Built) Node() *model.Node {
	return b.nodes[0]
}

// Nodes returns every built node.
func (b *Built) Nodes() []*model.Node {
	return b.nodes
}

// Tag returns the position of a tag. It panics when the tag is missing.
func (b *Built) Tag(name string) int {
	pos, ok := b.tags[name]
	if !ok {
		panic(fmt.Sprintf("modeltest: no tag %q", name))
	}
	return pos
}

// HasTag reports whether the tag was set.
func (b *Built) HasTag(name string) bool {
	_, ok := b.tags[name]
	return ok
}

// Sel returns the selection described by the "a" and "b" tags: anchor at
// "a" and head at "b", or a cursor at "a" when "b" is absent.
func (b *Built) Sel() cursor.Selection {
	a := b.Tag("a")
	if head, ok := b.tags["b"]; ok {
		return cursor.NewSelection(a, head)
	}
	return cursor.NewCursorSelection(a)
}

var tagPattern = regexp.MustCompile(`<(\w+)>`)

// parseTags strips tags from s and returns their rune offsets.
func parseTags(s string) (string, map[string]int) {
	tags := map[string]int{}
	var out []byte
	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, s[last:m[0]]...)
		tags[s[m[2]:m[3]]] = utf8.RuneCount(out)
		last = m[1]
	}
	out = append(out, s[last:]...)
	return string(out), tags
}

func flatten(children []any) ([]*model.Node, map[string]int) {
	s := Schema()
	tags := map[string]int{}
	var nodes []*model.Node
	pos := 0
	for _, c := range children {
		switch c := c.(type) {
		case string:
			text, found := parseTags(c)
			for k, v := range found {
				tags[k] = pos + v
			}
			if n := s.Text(text); n != nil {
				nodes = append(nodes, n)
				pos += n.NodeSize()
			}
		case *Built:
			shift := pos
			if !c.flat {
				shift++
			}
			for k, v := range c.tags {
				tags[k] = shift + v
			}
			for _, n := range c.nodes {
				nodes = append(nodes, n)
				pos += n.NodeSize()
			}
		case *model.Node:
			nodes = append(nodes, c)
			pos += c.NodeSize()
		default:
			panic(fmt.Sprintf("modeltest: unsupported child %T", c))
		}
	}
	return nodes, tags
}

// Block builds a node of the named type.
func Block(name string, attrs model.Attrs, children ...any) *Built {
	nt := Schema().NodeType(name)
	if nt == nil {
		panic(fmt.Sprintf("modeltest: unknown node type %q", name))
	}
	nodes, tags := flatten(children)
	n, err := nt.Create(attrs, model.FragmentFrom(nodes...), nil)
	if err != nil {
		panic(fmt.Sprintf("modeltest: %s: %v", name, err))
	}
	return &Built{nodes: []*model.Node{n}, tags: tags}
}

// Marked applies the named mark to every node built from children.
func Marked(name string, attrs model.Attrs, children ...any) *Built {
	m, err := Schema().Mark(name, attrs)
	if err != nil {
		panic(fmt.Sprintf("modeltest: %s: %v", name, err))
	}
	nodes, tags := flatten(children)
	for i, n := range nodes {
		nodes[i] = n.WithMarks(m.AddToSet(n.Marks()))
	}
	return &Built{nodes: nodes, tags: tags, flat: true}
}

func Doc(children ...any) *Built { return Block("doc", nil, children...) }
func P(children ...any) *Built { return Block("paragraph", nil, children...) }
func Blockquote(children ...any) *Built { return Block("blockquote", nil, children...) }
func Indent(children ...any) *Built { return Block("indent", nil, children...) }
func Pre(children ...any) *Built { return Block("code_block", nil, children...) }
func UL(children ...any) *Built { return Block("bullet_list", nil, children...) }
func OL(children ...any) *Built { return Block("ordered_list", nil, children...) }
func LI(children ...any) *Built { return Block("list_item", nil, children...) }
func Table(children ...any) *Built { return Block("table", nil, children...) }
func Tr(children ...any) *Built { return Block("table_row", nil, children...) }
func Td(children ...any) *Built { return Block("table_cell", nil, children...) }
func HR() *Built { return Block("horizontal_rule", nil) }
func Br() *Built { return Block("hard_break", nil) }

func H(level int, children ...any) *Built {
	return Block("heading", model.Attrs{"level": level}, children...)
}

func Img(src string) *Built {
	return Block("image", model.Attrs{"src": src})
}

func Strong(children ...any) *Built { return Marked("strong", nil, children...) }
func Em(children ...any) *Built { return Marked("em", nil, children...) }
func U(children ...any) *Built { return Marked("underline", nil, children...) }
func Code(children ...any) *Built { return Marked("code", nil, children...) }
func Sub(children ...any) *Built { return Marked("subscript", nil, children...) }
func Sup(children ...any) *Built { return Marked("superscript", nil, children...) }

func Link(href string, children ...any) *Built {
	return Marked("link", model.Attrs{"href": href}, children...)
}
