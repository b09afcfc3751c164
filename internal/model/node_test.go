package model_test

import (
	"errors"
	"testing"

	"github.com/dshills/richcore/internal/model"
	. "github.com/dshills/richcore/internal/model/modeltest"
)

func TestNodeSize(t *testing.T) {
	tests := []struct {
		name string
		node *model.Node
		want int
	}{
		{"text counts runes", Schema().Text("héllo"), 5},
		{"leaf", HR().Node(), 1},
		{"empty paragraph", P().Node(), 2},
		{"paragraph", P("abc").Node(), 5},
		{"nested", UL(LI(P("x"))).Node(), 7},
	}
	for _, tt := range tests {
		if got := tt.node.NodeSize(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestFragmentFrom_JoinsText(t *testing.T) {
	s := Schema()
	f := model.FragmentFrom(s.Text("ab"), s.Text("cd"), nil, Strong("ef").Node())
	if f.ChildCount() != 2 {
		t.Fatalf("expected 2 children, got %d: %s", f.ChildCount(), f)
	}
	if f.Child(0).Text() != "abcd" {
		t.Errorf("expected joined text, got %q", f.Child(0).Text())
	}
	if f.Size() != 6 {
		t.Errorf("expected size 6, got %d", f.Size())
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name  string
		doc   *Built
		slice func(b *Built) model.Slice
		want  *model.Node
	}{
		{
			name:  "delete inside text",
			doc:   Doc(P("a<a>bc<b>d")),
			slice: func(*Built) model.Slice { return model.EmptySlice },
			want:  Doc(P("ad")).Node(),
		},
		{
			name:  "join paragraphs",
			doc:   Doc(P("a<a>b"), P("c<b>d")),
			slice: func(*Built) model.Slice { return model.EmptySlice },
			want:  Doc(P("ad")).Node(),
		},
		{
			name: "insert text",
			doc:  Doc(P("a<a><b>b")),
			slice: func(*Built) model.Slice {
				return model.NewSlice(model.FragmentFrom(Schema().Text("XY")), 0, 0)
			},
			want: Doc(P("aXYb")).Node(),
		},
		{
			name: "insert open slice",
			doc:  Doc(P("a<a><b>b")),
			slice: func(*Built) model.Slice {
				return Doc(P("x"), P("y")).Node().Slice(1, 5)
			},
			want: Doc(P("ax"), P("yb")).Node(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc.Node()
			got, err := doc.Replace(tt.doc.Tag("a"), tt.doc.Tag("b"), tt.slice(tt.doc))
			if err != nil {
				t.Fatalf("Replace() error = %v", err)
			}
			if !got.Eq(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestReplace_Invalid(t *testing.T) {
	b := Doc(UL(LI(P("x"))))
	doc := b.Node()
	_, err := doc.Replace(1, 6, model.EmptySlice)
	if !errors.Is(err, model.ErrReplace) {
		t.Fatalf("expected ErrReplace, got %v", err)
	}
	var rerr *model.ReplaceError
	if !errors.As(err, &rerr) {
		t.Errorf("expected *ReplaceError, got %T", err)
	}
}

func TestReplace_SharesUnchangedNodes(t *testing.T) {
	b := Doc(P("keep"), P("ed<a>it"))
	doc := b.Node()
	got, err := doc.Replace(b.Tag("a"), b.Tag("a")+1, model.EmptySlice)
	if err != nil {
		t.Fatal(err)
	}
	if got.Child(0) != doc.Child(0) {
		t.Error("expected untouched paragraph to be shared")
	}
	if doc.TextContent() != "keepedit" {
		t.Errorf("original document changed: %s", doc)
	}
}

func TestSlice(t *testing.T) {
	doc := Doc(P("ab"), P("cd")).Node()
	s := doc.Slice(2, 6)
	if s.OpenStart != 1 || s.OpenEnd != 1 {
		t.Errorf("expected open depths 1/1, got %d/%d", s.OpenStart, s.OpenEnd)
	}
	if s.Size() != 4 {
		t.Errorf("expected size 4, got %d", s.Size())
	}
	if got := doc.Slice(3, 3); !got.Eq(model.EmptySlice) {
		t.Errorf("expected empty slice, got %s", got)
	}
}

func TestNodeAt(t *testing.T) {
	doc := Doc(P("ab"), UL(LI(P("c")))).Node()
	if got := doc.NodeAt(0); got.Type().Name() != "paragraph" {
		t.Errorf("expected paragraph at 0, got %s", got)
	}
	if got := doc.NodeAt(4); got.Type().Name() != "bullet_list" {
		t.Errorf("expected bullet_list at 4, got %s", got)
	}
	if got := doc.NodeAt(5); got.Type().Name() != "list_item" {
		t.Errorf("expected list_item at 5, got %s", got)
	}
	if got := doc.NodeAt(1); !got.IsText() {
		t.Errorf("expected text at 1, got %s", got)
	}
}

func TestNodesBetween(t *testing.T) {
	doc := Doc(P("ab"), P("cd"), P("ef")).Node()
	var seen []int
	doc.NodesBetween(5, 7, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		seen = append(seen, pos)
		return true
	})
	if len(seen) != 2 || seen[0] != 4 || seen[1] != 5 {
		t.Errorf("expected paragraph at 4 and text at 5, got %v", seen)
	}
}

func TestCheck(t *testing.T) {
	doc := Doc(P("ok")).Node()
	if err := doc.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	empty, err := Schema().NodeType("bullet_list").Make(nil, model.EmptyFragment, nil)
	if err != nil {
		t.Fatal(err)
	}
	bad := doc.Copy(model.FragmentFrom(empty))
	if err := bad.Check(); !errors.Is(err, model.ErrInvalidContent) {
		t.Errorf("expected ErrInvalidContent, got %v", err)
	}
}

func TestEq(t *testing.T) {
	a := Doc(P("x", Strong("y"))).Node()
	b := Doc(P("x", Strong("y"))).Node()
	c := Doc(P("x", Em("y"))).Node()
	if !a.Eq(b) {
		t.Error("expected structurally equal documents")
	}
	if a.Eq(c) {
		t.Error("expected documents with different marks to differ")
	}
}

func TestString(t *testing.T) {
	got := Doc(P("a", Strong("b"))).Node().String()
	want := `doc(paragraph("a", strong("b")))`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
