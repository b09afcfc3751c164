package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richcore/internal/model"
)

// Render writes the content of n as HTML.
func Render(w io.Writer, n *model.Node) error {
	root := element(atom.Body)
	renderContent(root, n)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders the content of n to a string.
func RenderString(n *model.Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func custom(a atom.Atom, key, name string) *html.Node {
	return element(a, html.Attribute{Key: key, Val: name})
}

func renderContent(parent *html.Node, n *model.Node) {
	if n.InlineContent() {
		renderInline(parent, n.Content())
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		parent.AppendChild(renderNode(n.Child(i)))
	}
}

type openMark struct {
	mark *model.Mark
	el   *html.Node
}

// renderInline keeps marks shared by neighbouring nodes open so a run of
// differently formatted text nests inside one element.
func renderInline(parent *html.Node, f model.Fragment) {
	var stack []openMark
	top := func() *html.Node {
		if len(stack) == 0 {
			return parent
		}
		return stack[len(stack)-1].el
	}
	for i := 0; i < f.ChildCount(); i++ {
		child := f.Child(i)
		marks := child.Marks()
		keep := 0
		for keep < len(stack) && keep < len(marks) && stack[keep].mark.Eq(marks[keep]) {
			keep++
		}
		stack = stack[:keep]
		for _, m := range marks[keep:] {
			el := renderMark(m)
			top().AppendChild(el)
			stack = append(stack, openMark{mark: m, el: el})
		}
		top().AppendChild(renderNode(child))
	}
}

func renderNode(n *model.Node) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text()}
	}
	attrs := n.Attrs()
	var el *html.Node
	switch n.Type().Name() {
	case "paragraph":
		el = element(atom.P)
	case "heading":
		level := min(max(attrs.Int("level"), 1), 6)
		el = element(atom.Lookup([]byte(fmt.Sprintf("h%d", level))))
	case "blockquote":
		el = element(atom.Blockquote)
	case "code_block":
		el = element(atom.Pre)
	case "horizontal_rule":
		el = element(atom.Hr)
	case "bullet_list":
		el = element(atom.Ul)
	case "ordered_list":
		el = element(atom.Ol)
		if order := attrs.Int("order"); order != 1 {
			el.Attr = append(el.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(order)})
		}
	case "list_item":
		el = element(atom.Li)
	case "table":
		el = element(atom.Table)
	case "table_row":
		el = element(atom.Tr)
	case "table_cell":
		el = element(atom.Td)
	case "image":
		el = element(atom.Img, html.Attribute{Key: "src", Val: attrs.String("src")})
		if alt := attrs.String("alt"); alt != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "alt", Val: alt})
		}
	case "hard_break":
		el = element(atom.Br)
	default:
		if n.IsInline() {
			el = custom(atom.Span, "data-type", n.Type().Name())
		} else {
			el = custom(atom.Div, "data-type", n.Type().Name())
		}
	}
	if !n.IsLeaf() {
		renderContent(el, n)
	}
	return el
}

func renderMark(m *model.Mark) *html.Node {
	switch m.Type().Name() {
	case "strong":
		return element(atom.Strong)
	case "em":
		return element(atom.Em)
	case "underline":
		return element(atom.U)
	case "strike":
		return element(atom.S)
	case "code":
		return element(atom.Code)
	case "subscript":
		return element(atom.Sub)
	case "superscript":
		return element(atom.Sup)
	case "link":
		el := element(atom.A, html.Attribute{Key: "href", Val: m.Attrs().String("href")})
		if title := m.Attrs().String("title"); title != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "title", Val: title})
		}
		return el
	}
	return custom(atom.Span, "data-mark", m.Type().Name())
}
