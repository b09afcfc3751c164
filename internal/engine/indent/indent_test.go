package indent_test

import (
	"testing"

	"github.com/dshills/richcore/internal/engine/indent"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
	. "github.com/dshills/richcore/internal/model/modeltest"
)

func indentType() *model.NodeType { return Schema().NodeType("indent") }

func TestIncrease(t *testing.T) {
	tests := []struct {
		name string
		doc  *Built
		want *Built
	}{
		{"cursor in paragraph", Doc(P("a<a>b")), Doc(Indent(P("a<a>b")))},
		{"several blocks", Doc(P("<a>a"), H(2, "b<b>"), P("c")), Doc(Indent(P("<a>a"), H(2, "b<b>")), P("c"))},
		{"nested indent", Doc(Indent(P("<a>a"))), Doc(Indent(Indent(P("<a>a"))))},
		{"inside blockquote", Doc(Blockquote(P("x"), P("<a>y"))), Doc(Blockquote(P("x"), Indent(P("<a>y"))))},
		{"first block of list item", Doc(UL(LI(P("<a>a")))), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.New(tt.doc.Node(), tt.doc.Sel())
			tr, ok := indent.Increase(st, indentType())
			if tt.want == nil {
				if ok {
					t.Fatalf("expected not applicable, got %s", tr.Doc())
				}
				return
			}
			if !ok {
				t.Fatal("expected increase to apply")
			}
			next, err := st.Apply(tr)
			if err != nil {
				t.Fatal(err)
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
			if !next.Selection().Equals(tt.want.Sel()) {
				t.Errorf("expected selection %s, got %s", tt.want.Sel(), next.Selection())
			}
		})
	}
}

func TestDecrease(t *testing.T) {
	tests := []struct {
		name string
		doc  *Built
		want *Built
	}{
		{"single indent", Doc(Indent(P("a<a>b")), P("c")), Doc(P("a<a>b"), P("c"))},
		{"innermost first", Doc(Indent(Indent(P("<a>a")), P("b"))), Doc(Indent(P("<a>a"), P("b")))},
		{"range inside indent", Doc(Indent(P("<a>a"), P("b<b>"))), Doc(P("<a>a"), P("b<b>"))},
		{"no indent", Doc(P("<a>a")), nil},
		{"range leaves indent", Doc(Indent(P("<a>a")), P("b<b>")), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := state.New(tt.doc.Node(), tt.doc.Sel())
			tr, ok := indent.Decrease(st, indentType())
			if tt.want == nil {
				if ok {
					t.Fatalf("expected not applicable, got %s", tr.Doc())
				}
				return
			}
			if !ok {
				t.Fatal("expected decrease to apply")
			}
			next, err := st.Apply(tr)
			if err != nil {
				t.Fatal(err)
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
			if !next.Selection().Equals(tt.want.Sel()) {
				t.Errorf("expected selection %s, got %s", tt.want.Sel(), next.Selection())
			}
		})
	}
}

func TestDecrease_ShiftsPositions(t *testing.T) {
	doc := Doc(P("x"), Indent(P("ab"), P("cd")), P("ef")).Node()
	st := state.New(doc, Doc(P("x"), Indent(P("a<a>b"), P("cd")), P("ef")).Sel())
	tr, ok := indent.Decrease(st, indentType())
	if !ok {
		t.Fatal("expected decrease to apply")
	}
	before, start := 3, 4
	end, after := start+doc.Child(1).Content().Size(), 3+doc.Child(1).NodeSize()
	tests := []struct {
		name      string
		pos, want int
	}{
		{"before node", before, before},
		{"start", start, start - 1},
		{"inside", start + 2, start + 1},
		{"end", end, end - 1},
		{"after", after, after - 2},
		{"later", after + 2, after},
	}
	for _, tt := range tests {
		if got := tr.Mapping().Map(tt.pos, 1); got != tt.want {
			t.Errorf("%s: expected %d to map to %d, got %d", tt.name, tt.pos, tt.want, got)
		}
	}
}

func TestIncreaseDecrease_Inverse(t *testing.T) {
	docs := []*Built{
		Doc(P("a<a>b")),
		Doc(P("<a>a"), P("b<b>"), P("c")),
		Doc(Blockquote(P("x"), P("y<a>"))),
	}
	for _, b := range docs {
		st := state.New(b.Node(), b.Sel())
		tr, ok := indent.Increase(st, indentType())
		if !ok {
			t.Fatalf("expected increase in %s", b.Node())
		}
		up, err := st.Apply(tr)
		if err != nil {
			t.Fatal(err)
		}
		tr, ok = indent.Decrease(up, indentType())
		if !ok {
			t.Fatalf("expected decrease in %s", up.Doc())
		}
		down, err := up.Apply(tr)
		if err != nil {
			t.Fatal(err)
		}
		if !down.Doc().Eq(b.Node()) {
			t.Errorf("expected %s back, got %s", b.Node(), down.Doc())
		}
		if !down.Selection().Equals(b.Sel()) {
			t.Errorf("expected selection %s back, got %s", b.Sel(), down.Selection())
		}
	}
}
