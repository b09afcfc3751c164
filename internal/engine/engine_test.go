package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/config"
	"github.com/dshills/richcore/internal/config/watcher"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/model"
	. "github.com/dshills/richcore/internal/model/modeltest"
)

type recordingView struct {
	mu      sync.Mutex
	updates []string
	ch      chan struct{}
}

func newRecordingView() *recordingView {
	return &recordingView{ch: make(chan struct{}, 16)}
}

func (v *recordingView) Update(doc *model.Node, sel cursor.Selection) {
	v.mu.Lock()
	v.updates = append(v.updates, doc.String()+" "+sel.String())
	v.mu.Unlock()
	select {
	case v.ch <- struct{}{}:
	default:
	}
}

func (v *recordingView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.updates)
}

func mustNew(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func html(t *testing.T, e *Engine) string {
	t.Helper()
	out, err := e.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return out
}

// ============================================================================
// Creation
// ============================================================================

func TestNew(t *testing.T) {
	e := mustNew(t)
	if got := html(t, e); got != "<p></p>" {
		t.Errorf("expected empty paragraph, got %q", got)
	}
	if !e.Selection().Equals(cursor.NewCursorSelection(1)) {
		t.Errorf("expected cursor at 1, got %s", e.Selection())
	}
	if e.ID().String() == "" {
		t.Error("expected session ID")
	}
}

func TestNewWithHTML(t *testing.T) {
	e := mustNew(t, WithHTML("<ul><li>a</li></ul>"))
	if got := html(t, e); got != "<ul><li><p>a</p></li></ul>" {
		t.Errorf("unexpected document %q", got)
	}
	if !e.Selection().Equals(cursor.NewCursorSelection(3)) {
		t.Errorf("expected cursor in first textblock, got %s", e.Selection())
	}
}

func TestNewWithDocument_Rebinds(t *testing.T) {
	b := Doc(P("a<a>b"), Blockquote(P(Strong("c"))))
	e := mustNew(t, WithDocument(b.Node()), WithSelection(b.Sel()))
	if e.Doc().String() != b.Node().String() {
		t.Errorf("expected %s, got %s", b.Node(), e.Doc())
	}
	if e.Doc().Type().Schema() != e.Schema() {
		t.Error("expected document rebound to the engine schema")
	}
	if !e.Selection().Equals(b.Sel()) {
		t.Errorf("expected selection %s, got %s", b.Sel(), e.Selection())
	}
}

// ============================================================================
// Commands
// ============================================================================

func TestExec(t *testing.T) {
	view := newRecordingView()
	e := mustNew(t, WithHTML("<p>Hello, World!</p>"), WithView(view))
	if err := e.SetSelection(cursor.NewSelection(1, 6)); err != nil {
		t.Fatal(err)
	}

	ok, err := e.Exec("toggle_strong")
	if err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	if got := html(t, e); got != "<p><strong>Hello</strong>, World!</p>" {
		t.Errorf("unexpected document %q", got)
	}
	if s, _ := e.Status("toggle_strong"); s != commands.Active {
		t.Errorf("expected toggle_strong active, got %s", s)
	}
	if view.count() != 2 {
		t.Errorf("expected 2 view updates, got %d", view.count())
	}
}

func TestExec_NotApplicable(t *testing.T) {
	view := newRecordingView()
	e := mustNew(t, WithHTML("<p>x</p>"), WithView(view))
	before := e.State()

	ok, err := e.Exec("outdent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected outdent not to apply")
	}
	if e.State() != before {
		t.Error("expected state unchanged")
	}
	if view.count() != 0 {
		t.Errorf("expected no view updates, got %d", view.count())
	}
}

func TestExec_UnknownCommand(t *testing.T) {
	e := mustNew(t)
	if _, err := e.Exec("nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if _, err := e.Status("nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestIndentFallback(t *testing.T) {
	e := mustNew(t, WithHTML("<p>x</p>"))
	if ok, err := e.Exec("indent"); err != nil || !ok {
		t.Fatalf("Exec(indent) = %v, %v", ok, err)
	}
	if got := html(t, e); got != `<div data-type="indent"><p>x</p></div>` {
		t.Errorf("unexpected document %q", got)
	}
	if ok, err := e.Exec("outdent"); err != nil || !ok {
		t.Fatalf("Exec(outdent) = %v, %v", ok, err)
	}
	if got := html(t, e); got != "<p>x</p>" {
		t.Errorf("unexpected document %q", got)
	}
}

func TestStatuses(t *testing.T) {
	e := mustNew(t, WithHTML("<h2>title</h2>"))
	statuses := e.Statuses()
	if statuses["heading_2"] != commands.Active {
		t.Errorf("expected heading_2 active, got %s", statuses["heading_2"])
	}
	if statuses["heading_1"] != commands.Enabled {
		t.Errorf("expected heading_1 enabled, got %s", statuses["heading_1"])
	}
	if statuses["outdent"] != commands.Disabled {
		t.Errorf("expected outdent disabled, got %s", statuses["outdent"])
	}
	if len(statuses) != len(e.Commands()) {
		t.Errorf("expected a status per command, got %d of %d", len(statuses), len(e.Commands()))
	}
}

func TestInsertText(t *testing.T) {
	e := mustNew(t, WithHTML("<p>ab</p>"), WithSelection(cursor.NewCursorSelection(2)))
	if _, err := e.Exec("toggle_em"); err != nil {
		t.Fatal(err)
	}
	if err := e.InsertText("X"); err != nil {
		t.Fatal(err)
	}
	if got := html(t, e); got != "<p>a<em>X</em>b</p>" {
		t.Errorf("unexpected document %q", got)
	}
	if !e.Selection().Equals(cursor.NewCursorSelection(3)) {
		t.Errorf("expected cursor after insertion, got %s", e.Selection())
	}
}

func TestRegister_SurvivesReload(t *testing.T) {
	e := mustNew(t, WithHTML("<p>x</p>"))
	e.Register(func(s *model.Schema, types commands.Types) commands.Command {
		return commands.Sequence("quote_heading",
			commands.ToggleBlockType("h", types.Heading, model.Attrs{"level": 1}, types.Paragraph),
			commands.WrapIn(types.Quote, nil))
	})

	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyConfig(cfg); err != nil {
		t.Fatalf("ApplyConfig() error = %v", err)
	}
	if ok, err := e.Exec("quote_heading"); err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	if got := html(t, e); got != "<blockquote><h1>x</h1></blockquote>" {
		t.Errorf("unexpected document %q", got)
	}
}

func TestReadOnly(t *testing.T) {
	e := mustNew(t, WithHTML("<p>x</p>"), WithReadOnly())
	if _, err := e.Exec("toggle_strong"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.InsertText("y"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if s, err := e.Status("toggle_strong"); err != nil || s != commands.Enabled {
		t.Errorf("Status() = %s, %v", s, err)
	}
}

type tables struct{}

func (tables) Ops() map[string]commands.TableOp {
	return map[string]commands.TableOp{
		"delete_table": func(*state.State, commands.Dispatch, commands.View) bool { return true },
	}
}

func TestTables(t *testing.T) {
	e := mustNew(t, WithHTML("<p>x</p><table><tr><td>y</td></tr></table>"), WithTables(tables{}))
	if s, _ := e.Status("delete_table"); s != commands.Hidden {
		t.Errorf("expected hidden outside table, got %s", s)
	}
	if err := e.SetSelection(cursor.NewCursorSelection(7)); err != nil {
		t.Fatal(err)
	}
	if s, _ := e.Status("delete_table"); s != commands.Enabled {
		t.Errorf("expected enabled inside table, got %s", s)
	}
}

// ============================================================================
// Transactions
// ============================================================================

func TestApply_RejectsStaleTransaction(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := NewLogger("debug", &buf)
	if err != nil {
		t.Fatal(err)
	}
	e := mustNew(t, WithHTML("<p>x</p>"), WithLogger(log))
	stale := e.State().Tr()
	if err := e.InsertText("y"); err != nil {
		t.Fatal(err)
	}
	if err := stale.InsertText(1, "z"); err != nil {
		t.Fatal(err)
	}
	if err := e.Apply(stale); !errors.Is(err, state.ErrMismatchedState) {
		t.Errorf("expected ErrMismatchedState, got %v", err)
	}
	if got := html(t, e); got != "<p>yx</p>" {
		t.Errorf("unexpected document %q", got)
	}
	if !strings.Contains(buf.String(), "transaction rejected") {
		t.Errorf("expected rejection logged, got %q", buf.String())
	}
}

// ============================================================================
// Configuration
// ============================================================================

func TestApplyConfig_RejectsUnfittingSchema(t *testing.T) {
	e := mustNew(t, WithHTML("<blockquote><p>q</p></blockquote>"))
	before := e.State()

	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Schema.Nodes = slices.DeleteFunc(cfg.Schema.Nodes, func(n config.NodeDef) bool {
		return n.Name == "blockquote"
	})
	if err := e.ApplyConfig(cfg); !errors.Is(err, ErrRebind) {
		t.Fatalf("expected ErrRebind, got %v", err)
	}
	if e.State() != before {
		t.Error("expected state unchanged")
	}
	if e.Schema().NodeType("blockquote") == nil {
		t.Error("expected previous schema kept")
	}
}

func TestApplyConfig_SetsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, level, err := NewLogger("info", &buf)
	if err != nil {
		t.Fatal(err)
	}
	e := mustNew(t, WithLogger(log), WithLevel(level))
	cfg, _ := config.Default()
	cfg.LogLevel = "error"
	if err := e.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if level.Level().String() != "error" {
		t.Errorf("expected level error, got %s", level.Level())
	}
}

const plainConfig = `
log_level = "debug"

[schema]
top_node = "doc"

[[schema.nodes]]
name = "doc"
content = "paragraph+"

[[schema.nodes]]
name = "paragraph"
content = "text*"

[[schema.nodes]]
name = "text"
`

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	if err := os.WriteFile(path, []byte("# placeholder\n"), 0644); err != nil {
		t.Fatal(err)
	}

	view := newRecordingView()
	e := mustNew(t, WithHTML("<p>ab</p>"), WithView(view))
	defer e.Close()
	if err := e.WatchConfig(path, watcher.WithDebounce(10*time.Millisecond)); err != nil {
		t.Fatalf("WatchConfig() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(plainConfig), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for e.Schema().MarkType("strong") != nil {
		select {
		case <-view.ch:
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
	if _, err := e.Command("toggle_strong"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected mark commands gone, got %v", err)
	}
	if got := html(t, e); got != "<p>ab</p>" {
		t.Errorf("unexpected document %q", got)
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	e := mustNew(t)
	if err := e.WatchConfig(filepath.Join(t.TempDir(), "missing", "cfg.toml")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestClose(t *testing.T) {
	e := mustNew(t, WithHTML("<p>hello</p>"))
	tr := e.State().Tr()
	if err := tr.InsertText(1, "x"); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	tests := []struct {
		name string
		op   func() error
	}{
		{"Exec", func() error { _, err := e.Exec("toggle_strong"); return err }},
		{"Apply", func() error { return e.Apply(tr) }},
		{"SetSelection", func() error { return e.SetSelection(cursor.NewCursorSelection(3)) }},
		{"InsertText", func() error { return e.InsertText("x") }},
		{"SetHTML", func() error { return e.SetHTML("<p>other</p>") }},
		{"ApplyConfig", func() error { return e.ApplyConfig(e.Config()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		})
	}
	if got := html(t, e); got != "<p>hello</p>" {
		t.Errorf("expected document unchanged, got %q", got)
	}
	if !e.Selection().Equals(cursor.NewCursorSelection(1)) {
		t.Errorf("expected selection unchanged, got %s", e.Selection())
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, _, err := NewLogger("loud", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentExecAndStatus(t *testing.T) {
	e := mustNew(t, WithHTML("<p>abc</p><p>def</p>"))
	if err := e.SetSelection(cursor.NewSelection(1, 4)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := e.Exec("toggle_strong"); err != nil {
					t.Errorf("Exec() error = %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = e.Statuses()
				_ = e.Active()
			}
		}()
	}
	wg.Wait()

	if err := e.Doc().Check(); err != nil {
		t.Errorf("document invalid after concurrent edits: %v", err)
	}
}
