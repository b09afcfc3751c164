package htmldoc

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richcore/internal/model"
)

// ErrUnfillable is returned when required content has no default type.
var ErrUnfillable = errors.New("required content cannot be filled")

const maxFillDepth = 32

var spaces = regexp.MustCompile(`[ \t\r\n\f]+`)

// item is an intermediate node: a block with unfitted children, or an
// inline leaf with its marks.
type item struct {
	typ      *model.NodeType
	attrs    model.Attrs
	marks    []*model.Mark
	text     string
	pre      bool
	children []item
}

func (it item) inline() bool { return it.typ.IsInline() }

func (it item) blank() bool {
	return it.typ.IsText() && strings.TrimSpace(it.text) == ""
}

type parser struct {
	schema *model.Schema
}

// Parse reads HTML markup and builds a document of the schema's top node
// type.
func Parse(s *model.Schema, r io.Reader) (*model.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: atom.Body.String(), DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	p := &parser{schema: s}
	var items []item
	for _, n := range nodes {
		items = append(items, p.convert(n, nil, false)...)
	}
	top := s.TopNodeType()
	content, err := p.fit(top, items, false, 0)
	if err != nil {
		return nil, err
	}
	return top.Create(nil, content, nil)
}

// ParseString parses HTML markup held in a string.
func ParseString(s *model.Schema, markup string) (*model.Node, error) {
	return Parse(s, strings.NewReader(markup))
}

func (p *parser) collect(n *html.Node, marks []*model.Mark, pre bool) []item {
	var out []item
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, p.convert(c, marks, pre)...)
	}
	return out
}

func (p *parser) convert(n *html.Node, marks []*model.Mark, pre bool) []item {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !pre {
			text = spaces.ReplaceAllString(text, " ")
		}
		if text == "" {
			return nil
		}
		return []item{{typ: p.schema.NodeType("text"), text: text, marks: marks}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Head, atom.Title:
		return nil
	}

	if nt, attrs, ok := p.nodeRule(n); ok {
		if nt.IsInline() {
			if nt.IsLeaf() {
				return []item{{typ: nt, attrs: attrs, marks: marks}}
			}
		} else {
			inPre := pre || n.DataAtom == atom.Pre
			return []item{{typ: nt, attrs: attrs, pre: inPre, children: p.collect(n, marks, inPre)}}
		}
	}
	if m, ok := p.markRule(n); ok {
		marks = m.AddToSet(marks)
	}
	return p.collect(n, marks, pre || n.DataAtom == atom.Pre)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (p *parser) nodeRule(n *html.Node) (*model.NodeType, model.Attrs, bool) {
	if name := attr(n, "data-type"); name != "" {
		if nt := p.schema.NodeType(name); nt != nil && !nt.IsText() {
			return nt, nil, true
		}
	}
	var name string
	var attrs model.Attrs
	switch n.DataAtom {
	case atom.P:
		name = "paragraph"
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		name, attrs = "heading", model.Attrs{"level": int(n.Data[1] - '0')}
	case atom.Blockquote:
		name = "blockquote"
	case atom.Pre:
		name = "code_block"
	case atom.Hr:
		name = "horizontal_rule"
	case atom.Ul:
		name = "bullet_list"
	case atom.Ol:
		name, attrs = "ordered_list", model.Attrs{}
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			attrs["order"] = start
		}
	case atom.Li:
		name = "list_item"
	case atom.Table:
		name = "table"
	case atom.Tr:
		name = "table_row"
	case atom.Td, atom.Th:
		name = "table_cell"
	case atom.Img:
		src := attr(n, "src")
		if src == "" {
			return nil, nil, false
		}
		name, attrs = "image", model.Attrs{"src": src, "alt": attr(n, "alt")}
	case atom.Br:
		name = "hard_break"
	default:
		return nil, nil, false
	}
	nt := p.schema.NodeType(name)
	return nt, attrs, nt != nil
}

func (p *parser) markRule(n *html.Node) (*model.Mark, bool) {
	var name string
	var attrs model.Attrs
	if dm := attr(n, "data-mark"); dm != "" {
		name = dm
	} else {
		switch n.DataAtom {
		case atom.Strong, atom.B:
			name = "strong"
		case atom.Em, atom.I:
			name = "em"
		case atom.U:
			name = "underline"
		case atom.S, atom.Strike, atom.Del:
			name = "strike"
		case atom.Code:
			name = "code"
		case atom.Sub:
			name = "subscript"
		case atom.Sup:
			name = "superscript"
		case atom.A:
			href := attr(n, "href")
			if href == "" {
				return nil, false
			}
			name, attrs = "link", model.Attrs{"href": href, "title": attr(n, "title")}
		default:
			return nil, false
		}
	}
	m, err := p.schema.Mark(name, attrs)
	if err != nil {
		return nil, false
	}
	return m, true
}

// fit places items into a node of type nt, wrapping, unwrapping and
// filling as needed to produce valid content.
func (p *parser) fit(nt *model.NodeType, items []item, pre bool, depth int) (model.Fragment, error) {
	if depth > maxFillDepth {
		return model.EmptyFragment, fmt.Errorf("%w: nesting too deep in %s", ErrUnfillable, nt.Name())
	}
	match := nt.ContentMatch()
	var out []*model.Node
	for len(items) > 0 {
		it := items[0]
		if it.inline() && nt.InlineContent() {
			items = items[1:]
			n := p.leaf(it, nt, out, pre)
			if n == nil {
				continue
			}
			if next := match.MatchType(n.Type()); next != nil {
				out, match = append(out, n), next
			}
			continue
		}
		if it.blank() {
			items = items[1:]
			continue
		}
		if next := match.MatchType(it.typ); next != nil && !it.inline() {
			n, err := p.block(it, depth+1)
			if err != nil {
				return model.EmptyFragment, err
			}
			out, match, items = append(out, n), next, items[1:]
			continue
		}
		wraps := match.FindWrapping(it.typ)
		if len(wraps) == 0 {
			if dt := match.DefaultType(); dt != nil && !match.ValidEnd() && match.MatchType(dt).FindWrapping(it.typ) != nil {
				n, err := p.filled(dt, depth+1)
				if err != nil {
					return model.EmptyFragment, err
				}
				out, match = append(out, n), match.MatchType(dt)
				continue
			}
			if it.inline() {
				items = items[1:]
			} else {
				items = append(slices.Clone(it.children), items[1:]...)
			}
			continue
		}
		j := 1
		for j < len(items) && (items[j].blank() || slices.Equal(match.FindWrapping(items[j].typ), wraps)) {
			j++
		}
		wrapped := item{typ: wraps[len(wraps)-1], pre: pre, children: items[:j]}
		for k := len(wraps) - 2; k >= 0; k-- {
			wrapped = item{typ: wraps[k], pre: pre, children: []item{wrapped}}
		}
		n, err := p.block(wrapped, depth+1)
		if err != nil {
			return model.EmptyFragment, err
		}
		out, match, items = append(out, n), match.MatchType(wraps[0]), items[j:]
	}
	if nt.InlineContent() && !pre {
		out = trimTrailing(out)
	}
	for !match.ValidEnd() {
		dt := match.DefaultType()
		if dt == nil {
			return model.EmptyFragment, fmt.Errorf("%w: %s at %s", ErrUnfillable, nt.Name(), match)
		}
		n, err := p.filled(dt, depth+1)
		if err != nil {
			return model.EmptyFragment, err
		}
		out, match = append(out, n), match.MatchType(dt)
	}
	return model.FragmentFrom(out...), nil
}

func (p *parser) block(it item, depth int) (*model.Node, error) {
	content, err := p.fit(it.typ, it.children, it.pre, depth)
	if err != nil {
		return nil, err
	}
	return it.typ.Create(it.attrs, content, nil)
}

// filled creates a node of type nt with its required content.
func (p *parser) filled(nt *model.NodeType, depth int) (*model.Node, error) {
	return p.block(item{typ: nt}, depth)
}

// leaf builds an inline node for parent, dropping marks the parent does not
// allow and collapsing spaces across node boundaries.
func (p *parser) leaf(it item, parent *model.NodeType, prev []*model.Node, pre bool) *model.Node {
	marks := parent.AllowedMarks(it.marks)
	if !it.typ.IsText() {
		n, err := it.typ.Create(it.attrs, model.EmptyFragment, marks)
		if err != nil {
			return nil
		}
		return n
	}
	text := it.text
	if !pre && strings.HasPrefix(text, " ") && endsInSpace(prev) {
		text = text[1:]
	}
	return p.schema.Text(text, marks...)
}

// endsInSpace reports whether a leading space after prev is redundant.
func endsInSpace(prev []*model.Node) bool {
	if len(prev) == 0 {
		return true
	}
	last := prev[len(prev)-1]
	if !last.IsText() {
		return last.Type().Name() == "hard_break"
	}
	return strings.HasSuffix(last.Text(), " ")
}

func trimTrailing(out []*model.Node) []*model.Node {
	if len(out) == 0 {
		return out
	}
	last := out[len(out)-1]
	if !last.IsText() || !strings.HasSuffix(last.Text(), " ") {
		return out
	}
	text := strings.TrimRight(last.Text(), " ")
	if text == "" {
		return out[:len(out)-1]
	}
	out[len(out)-1] = last.WithText(text)
	return out
}
