package commands_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
	. "github.com/dshills/richcore/internal/model/modeltest"
)

func stock() *commands.Registry {
	return commands.Stock(Schema(), commands.DefaultTypes(Schema()))
}

func command(t *testing.T, name string) commands.Command {
	t.Helper()
	c, ok := stock().Get(name)
	if !ok {
		t.Fatalf("command %q not registered", name)
	}
	return c
}

// run executes c and applies the single transaction it dispatches.
func run(t *testing.T, c commands.Command, st *state.State) (*state.State, bool) {
	t.Helper()
	var trs []*state.Transaction
	if !c.Exec(st, func(tr *state.Transaction) { trs = append(trs, tr) }, nil) {
		if len(trs) != 0 {
			t.Fatalf("%s: dispatched %d transactions but reported not applicable", c.Name, len(trs))
		}
		return st, false
	}
	if len(trs) != 1 {
		t.Fatalf("%s: expected one dispatched transaction, got %d", c.Name, len(trs))
	}
	next, err := st.Apply(trs[0])
	if err != nil {
		t.Fatalf("%s: Apply() error = %v", c.Name, err)
	}
	return next, true
}

func status(c commands.Command, st *state.State) commands.Status {
	return c.StatusOf(st, query.ActiveFor(st))
}

func newState(b *Built) *state.State {
	return state.New(b.Node(), b.Sel())
}

func TestStatusString(t *testing.T) {
	want := map[commands.Status]string{
		commands.Disabled: "disabled",
		commands.Enabled:  "enabled",
		commands.Active:   "active",
		commands.Hidden:   "hidden",
		commands.Status(9): "unknown",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("Status(%d).String() = %q, want %q", s, s.String(), w)
		}
	}
}

func TestToggleMark(t *testing.T) {
	tests := []struct {
		name string
		doc  *Built
		want *Built
	}{
		{"adds to range", Doc(P("<a>ab<b>c")), Doc(P(Strong("ab"), "c"))},
		{"removes from range", Doc(P(Strong("<a>ab<b>"), "c")), Doc(P("abc"))},
		{"removes when partly marked", Doc(P(Strong("<a>a"), "b<b>")), Doc(P("ab"))},
		{"not in code block", Doc(Pre("<a>ab<b>")), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := run(t, command(t, "toggle_strong"), newState(tt.doc))
			if tt.want == nil {
				if ok {
					t.Fatalf("expected not applicable, got %s", next.Doc())
				}
				return
			}
			if !ok {
				t.Fatal("expected toggle to apply")
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
		})
	}
}

func TestToggleMark_CursorStoresMark(t *testing.T) {
	c := command(t, "toggle_strong")
	st := newState(Doc(P("a<a>b")))

	next, ok := run(t, c, st)
	if !ok {
		t.Fatal("expected toggle to apply")
	}
	if !next.Doc().Eq(st.Doc()) {
		t.Errorf("expected document unchanged, got %s", next.Doc())
	}
	if got := model.FormatMarks(next.StoredMarks()); got != "[strong]" {
		t.Errorf("expected stored marks [strong], got %q", got)
	}
	if s := status(c, next); s != commands.Active {
		t.Errorf("expected active after storing, got %s", s)
	}

	again, _ := run(t, c, next)
	if len(again.StoredMarks()) != 0 {
		t.Errorf("expected stored mark removed, got %s", model.FormatMarks(again.StoredMarks()))
	}
}

func TestMarkStatus(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		doc  *Built
		want commands.Status
	}{
		{"inside strong", "toggle_strong", Doc(P(Strong("a<a>b"))), commands.Active},
		{"plain text", "toggle_strong", Doc(P("a<a>b")), commands.Enabled},
		{"other mark", "toggle_em", Doc(P(Strong("a<a>b"))), commands.Enabled},
		{"code block", "toggle_strong", Doc(Pre("a<a>b")), commands.Disabled},
		{"remove without mark", "remove_em", Doc(P("a<a>b")), commands.Disabled},
		{"clear formatting plain", "clear_formatting", Doc(P("<a>ab<b>")), commands.Disabled},
		{"clear formatting marked", "clear_formatting", Doc(P(Em("<a>ab<b>"))), commands.Enabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status(command(t, tt.cmd), newState(tt.doc)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRemoveMarkRun(t *testing.T) {
	tests := []struct {
		name string
		doc  *Built
		want *Built
	}{
		{"cursor inside link", Doc(P("x", Link("http://a", "ab<a>cd"), "y")), Doc(P("xabcdy"))},
		{"cursor after link", Doc(P("x", Link("http://a", "abcd<a>"), "y")), Doc(P("xabcdy"))},
		{"selection inside link", Doc(P("x", Link("http://a", "a<a>b<b>cd"), "y")), Doc(P("xabcdy"))},
		{"no link", Doc(P("x<a>y")), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := run(t, command(t, "clear_link"), newState(tt.doc))
			if tt.want == nil {
				if ok {
					t.Fatalf("expected not applicable, got %s", next.Doc())
				}
				return
			}
			if !ok {
				t.Fatal("expected clear to apply")
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
		})
	}
}

func TestSelectMarkRun(t *testing.T) {
	next, ok := run(t, command(t, "select_link"), newState(Doc(P("x", Link("http://a", "ab<a>cd"), "y"))))
	if !ok {
		t.Fatal("expected select to apply")
	}
	want := cursor.NewSelection(2, 6)
	if !next.Selection().Equals(want) {
		t.Errorf("expected %s, got %s", want, next.Selection())
	}
}

func TestSetMark_ReplacesRunAttrs(t *testing.T) {
	link := Schema().MarkType("link")
	c := commands.SetMark(link, model.Attrs{"href": "http://b"})
	next, ok := run(t, c, newState(Doc(P("x", Link("http://a", "a<a>b"), "y"))))
	if !ok {
		t.Fatal("expected set to apply")
	}
	want := Doc(P("x", Link("http://b", "ab"), "y"))
	if !next.Doc().Eq(want.Node()) {
		t.Errorf("expected %s, got %s", want.Node(), next.Doc())
	}
	if s := status(c, next); s != commands.Active {
		t.Errorf("expected active, got %s", s)
	}
}

func TestHeadingToggle(t *testing.T) {
	c := command(t, "heading_2")
	st := newState(Doc(P("a<a>b")))
	if s := status(c, st); s != commands.Enabled {
		t.Fatalf("expected enabled, got %s", s)
	}

	heading, ok := run(t, c, st)
	if !ok {
		t.Fatal("expected heading to apply")
	}
	if want := Doc(H(2, "ab")); !heading.Doc().Eq(want.Node()) {
		t.Fatalf("expected %s, got %s", want.Node(), heading.Doc())
	}
	if s := status(c, heading); s != commands.Active {
		t.Errorf("expected active, got %s", s)
	}
	if s := status(command(t, "heading_1"), heading); s != commands.Enabled {
		t.Errorf("expected heading_1 enabled, got %s", s)
	}

	back, ok := run(t, c, heading)
	if !ok {
		t.Fatal("expected second toggle to apply")
	}
	if want := Doc(P("ab")); !back.Doc().Eq(want.Node()) {
		t.Errorf("expected %s, got %s", want.Node(), back.Doc())
	}
}

func TestIndentFallback(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		doc  *Built
		want *Built
	}{
		{"indent outside list wraps block", "indent", Doc(P("a<a>b")), Doc(Indent(P("ab")))},
		{"indent in list sinks item", "indent", Doc(UL(LI(P("A")), LI(P("<a>B")))), Doc(UL(LI(P("A"), UL(LI(P("B"))))))},
		{"outdent nested item", "outdent", Doc(UL(LI(P("A"), UL(LI(P("<a>B")))))), Doc(UL(LI(P("A")), LI(P("B"))))},
		{"outdent indent container", "outdent", Doc(Indent(P("<a>x"))), Doc(P("x"))},
		{"outdent top level", "outdent", Doc(P("<a>x")), nil},
		{"outdent top level list", "outdent", Doc(UL(LI(P("<a>x")))), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := command(t, tt.cmd)
			st := newState(tt.doc)
			next, ok := run(t, c, st)
			if tt.want == nil {
				if ok {
					t.Fatalf("expected not applicable, got %s", next.Doc())
				}
				if s := status(c, st); s != commands.Disabled {
					t.Errorf("expected disabled, got %s", s)
				}
				return
			}
			if !ok {
				t.Fatal("expected command to apply")
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
		})
	}
}

func TestToggleList_Status(t *testing.T) {
	bullet := command(t, "toggle_bullet_list")
	ordered := command(t, "toggle_ordered_list")
	st := newState(Doc(UL(LI(P("<a>x")))))
	if s := status(bullet, st); s != commands.Active {
		t.Errorf("expected bullet active, got %s", s)
	}
	if s := status(ordered, st); s != commands.Enabled {
		t.Errorf("expected ordered enabled, got %s", s)
	}
}

func TestEnter(t *testing.T) {
	tests := []struct {
		name string
		doc  *Built
		want *Built
	}{
		{"paragraph", Doc(P("a<a>b")), Doc(P("a"), P("b"))},
		{"end of heading", Doc(H(1, "ab<a>")), Doc(H(1, "ab"), P())},
		{"list item", Doc(UL(LI(P("a<a>b")))), Doc(UL(LI(P("a")), LI(P("b"))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := run(t, command(t, "enter"), newState(tt.doc))
			if !ok {
				t.Fatal("expected enter to apply")
			}
			if !next.Doc().Eq(tt.want.Node()) {
				t.Errorf("expected %s, got %s", tt.want.Node(), next.Doc())
			}
		})
	}
}

func TestFirst_Status(t *testing.T) {
	never := commands.New("never", func(*state.State, commands.Dispatch, commands.View) bool { return false })
	always := commands.New("always", func(*state.State, commands.Dispatch, commands.View) bool { return true }).
		WithActive(func(query.ActiveElements) bool { return true })
	hidden := commands.Contextual(always, func(query.ActiveElements) bool { return false })
	st := newState(Doc(P("<a>x")))

	tests := []struct {
		name string
		cmds []commands.Command
		want commands.Status
	}{
		{"first applicable wins", []commands.Command{never, always}, commands.Active},
		{"none applicable", []commands.Command{never, never}, commands.Disabled},
		{"all hidden", []commands.Command{hidden, hidden}, commands.Hidden},
		{"hidden and disabled", []commands.Command{hidden, never}, commands.Disabled},
		{"empty", nil, commands.Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status(commands.First("f", tt.cmds...), st); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSequence(t *testing.T) {
	seq := commands.Sequence("bold_heading", command(t, "heading_1"), command(t, "toggle_strong"))
	st := newState(Doc(P("<a>ab<b>")))

	if !seq.Can(st) {
		t.Fatal("expected sequence to apply")
	}
	next, ok := run(t, seq, st)
	if !ok {
		t.Fatal("expected sequence to apply")
	}
	want := Doc(H(1, Strong("ab")))
	if !next.Doc().Eq(want.Node()) {
		t.Errorf("expected %s, got %s", want.Node(), next.Doc())
	}
	if !next.Selection().Equals(cursor.NewSelection(1, 3)) {
		t.Errorf("expected selection kept, got %s", next.Selection())
	}
}

func TestSequence_StopsOnFailure(t *testing.T) {
	seq := commands.Sequence("s", command(t, "heading_1"), command(t, "outdent_block"))
	st := newState(Doc(P("<a>ab")))
	if _, ok := run(t, seq, st); ok {
		t.Error("expected sequence not to apply")
	}
	if s := status(seq, st); s != commands.Disabled {
		t.Errorf("expected disabled, got %s", s)
	}
}

type fakeTables struct{ calls int }

func (f *fakeTables) Ops() map[string]commands.TableOp {
	return map[string]commands.TableOp{
		"add_row": func(st *state.State, dispatch commands.Dispatch, _ commands.View) bool {
			if dispatch != nil {
				f.calls++
				dispatch(st.Tr())
			}
			return true
		},
	}
}

func TestTableCommand(t *testing.T) {
	tables := &fakeTables{}
	cmds := commands.TableCommands(tables, Schema().NodeType("table"))
	if len(cmds) != 1 {
		t.Fatalf("expected one table command, got %d", len(cmds))
	}
	c := cmds[0]

	outside := newState(Doc(P("<a>x"), Table(Tr(Td(P("y"))))))
	if s := status(c, outside); s != commands.Hidden {
		t.Errorf("expected hidden outside table, got %s", s)
	}
	if _, ok := run(t, c, outside); ok {
		t.Error("expected table command not to run outside table")
	}

	inside := newState(Doc(Table(Tr(Td(P("<a>x"))))))
	if s := status(c, inside); s != commands.Enabled {
		t.Errorf("expected enabled inside table, got %s", s)
	}
	if _, ok := run(t, c, inside); !ok {
		t.Error("expected table command to run inside table")
	}
	if tables.calls != 1 {
		t.Errorf("expected one call, got %d", tables.calls)
	}
}

func TestStock_Names(t *testing.T) {
	r := stock()
	for _, name := range []string{
		"toggle_strong", "toggle_em", "clear_link", "select_link", "heading_1", "heading_6",
		"set_paragraph", "wrap_blockquote", "toggle_bullet_list", "toggle_ordered_list",
		"indent", "outdent", "enter", "lift", "clear_formatting",
	} {
		if !r.Has(name) {
			t.Errorf("expected %q registered", name)
		}
	}
	if r.Has("toggle_link") {
		t.Error("expected no toggle for a mark with required attributes")
	}
}

// Every command reports Active or Enabled exactly when it can run.
func TestStatuses_MatchApplicability(t *testing.T) {
	r := stock()
	docs := []*Built{
		Doc(P("a<a>b")),
		Doc(P(Strong("<a>ab"), "c<b>")),
		Doc(H(3, "x<a>y")),
		Doc(Pre("co<a>de")),
		Doc(UL(LI(P("A")), LI(P("<a>B")))),
		Doc(OL(LI(P("A"), UL(LI(P("<a>B")))))),
		Doc(Indent(P("<a>x")), Blockquote(P("y<b>"))),
		Doc(Table(Tr(Td(P("<a>x"))))),
		Doc(P("x", Link("http://a", "l<a>ink"))),
	}
	var states []*state.State
	for _, d := range docs {
		states = append(states, newState(d))
	}
	// Every cursor position of a nested list, including the ones between
	// items where no textblock holds the cursor.
	nested := Doc(UL(LI(P("A")), LI(P("B"), UL(LI(P("C")), LI(P("D")))), LI(P("E")))).Node()
	for pos := 0; pos <= nested.Content().Size(); pos++ {
		states = append(states, state.New(nested, cursor.NewCursorSelection(pos)))
	}

	for _, st := range states {
		statuses := r.Statuses(st)
		if len(statuses) != r.Count() {
			t.Fatalf("expected %d statuses, got %d", r.Count(), len(statuses))
		}
		for name, s := range statuses {
			c, _ := r.Get(name)
			can := c.Can(st)
			runnable := s == commands.Active || s == commands.Enabled
			if runnable != can {
				t.Errorf("%s in %s at %s: status %s but Can() = %v", name, st.Doc(), st.Selection(), s, can)
			}
			if _, ran := run(t, c, st); ran != can {
				t.Errorf("%s in %s at %s: Can() = %v but Exec() = %v", name, st.Doc(), st.Selection(), can, ran)
			}
		}
	}
}

func TestLift_BetweenNestedItems(t *testing.T) {
	doc := Doc(UL(LI(P("A")), LI(P("B"), UL(LI(P("C")), LI(P("D")))), LI(P("E")))).Node()
	c := command(t, "lift")
	for _, pos := range []int{12, 15} {
		st := state.New(doc, cursor.NewCursorSelection(pos))
		if c.Can(st) {
			t.Errorf("expected lift not applicable at %d", pos)
		}
		if got := status(c, st); got != commands.Disabled {
			t.Errorf("expected Disabled at %d, got %s", pos, got)
		}
		if _, ran := run(t, c, st); ran {
			t.Errorf("expected lift not to run at %d", pos)
		}
	}
}

func TestRegistry(t *testing.T) {
	noop := func(*state.State, commands.Dispatch, commands.View) bool { return false }
	r := commands.NewRegistry(commands.New("b", noop), commands.New("a", noop))
	r.Register(commands.New("c", noop))
	r.Unregister("b")

	if diff := cmp.Diff([]string{"a", "c"}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 commands, got %d", r.Count())
	}
	if _, ok := r.Get("b"); ok {
		t.Error("expected b unregistered")
	}
}
