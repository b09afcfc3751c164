package script

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/engine"
	"github.com/dshills/richcore/internal/engine/cursor"
)

func newHost(t *testing.T, code string, opts ...Option) *Host {
	t.Helper()
	h := NewHost(opts...)
	t.Cleanup(func() { h.Close() })
	if code != "" {
		if err := h.DoString(code); err != nil {
			t.Fatalf("DoString() error = %v", err)
		}
	}
	return h
}

func newEngine(t *testing.T, h *Host, markup string, sel cursor.Selection) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.WithHTML(markup), engine.WithSelection(sel))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	if err := h.Install(e); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	return e
}

func html(t *testing.T, e *engine.Engine) string {
	t.Helper()
	out, err := e.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return out
}

// ============================================================================
// Sandbox
// ============================================================================

func TestSandbox(t *testing.T) {
	h := newHost(t, "")
	for _, name := range []string{"io", "os", "debug", "package", "require", "dofile", "loadfile", "load", "loadstring"} {
		t.Run(name, func(t *testing.T) {
			if err := h.DoString("assert(" + name + " == nil)"); err != nil {
				t.Errorf("expected %s to be unavailable: %v", name, err)
			}
		})
	}
	if err := h.DoString(`assert(string.upper("a") == "A" and math.max(1, 2) == 2 and #table.concat({"x"}) == 1)`); err != nil {
		t.Errorf("expected safe libraries: %v", err)
	}
}

func TestPrintIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newHost(t, `print("hello", 42)`, WithLogger(zap.New(core)))
	_ = h
	entries := logs.FilterMessage("hello\t42").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %v", logs.All())
	}
}

func TestDoString_SyntaxError(t *testing.T) {
	h := newHost(t, "")
	if err := h.DoString(`command("a", function() end) invalid !!!`); err == nil {
		t.Fatal("expected syntax error")
	}
	if names := h.Names(); len(names) != 0 {
		t.Errorf("expected no commands, got %v", names)
	}
}

func TestDoString_Timeout(t *testing.T) {
	h := newHost(t, "", WithTimeout(50*time.Millisecond))
	err := h.DoString(`while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if err := h.DoString(`x = 1`); err != nil {
		t.Errorf("expected host usable after timeout, got %v", err)
	}
}

func TestDeclare(t *testing.T) {
	h := newHost(t, `
		command("a", function(ed) return true end)
		command("b", function(ed) return true end)
		command("a", function(ed) return false end)
	`)
	if got := strings.Join(h.Names(), ","); got != "a,b" {
		t.Errorf("expected a,b, got %s", got)
	}

	if err := h.DoString(`command("", function() end)`); err == nil {
		t.Error("expected error for empty name")
	}
	if err := h.DoString(`command("c", 1)`); err == nil {
		t.Error("expected error for missing function")
	}
}

func TestClose(t *testing.T) {
	h := NewHost()
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("expected second Close to succeed, got %v", err)
	}
	if err := h.DoString("x = 1"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// ============================================================================
// Commands
// ============================================================================

func TestCommand_CombinesEdits(t *testing.T) {
	h := newHost(t, `
		command("bold_italic", function(ed)
			return ed.run("toggle_strong") and ed.run("toggle_em")
		end, function(ed)
			return ed.has_mark("strong") and ed.has_mark("em")
		end)
	`)
	e := newEngine(t, h, "<p>hello world</p>", cursor.NewSelection(1, 6))

	if s, _ := e.Status("bold_italic"); s != commands.Enabled {
		t.Errorf("expected Enabled, got %s", s)
	}
	ok, err := e.Exec("bold_italic")
	if err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	active := e.Active()
	for _, name := range []string{"strong", "em"} {
		if !active.HasMarkType(e.Schema().MarkType(name)) {
			t.Errorf("expected %s active", name)
		}
	}
	if s, _ := e.Status("bold_italic"); s != commands.Active {
		t.Errorf("expected Active, got %s", s)
	}
	if !e.Selection().Equals(cursor.NewSelection(1, 6)) {
		t.Errorf("expected selection kept, got %s", e.Selection())
	}
}

func TestCommand_NotApplicable(t *testing.T) {
	h := newHost(t, `
		command("strong_then_fail", function(ed)
			ed.run("toggle_strong")
			return false
		end)
	`)
	e := newEngine(t, h, "<p>hello</p>", cursor.NewSelection(1, 6))
	before := html(t, e)

	ok, err := e.Exec("strong_then_fail")
	if err != nil || ok {
		t.Fatalf("Exec() = %v, %v; expected not applicable", ok, err)
	}
	if got := html(t, e); got != before {
		t.Errorf("expected document unchanged, got %q", got)
	}
	if s, _ := e.Status("strong_then_fail"); s != commands.Disabled {
		t.Errorf("expected Disabled, got %s", s)
	}
}

func TestCommand_ScriptErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := newHost(t, `
		command("broken", function(ed) return ed.run("no_such_command") end)
	`, WithLogger(zap.New(core)))
	e := newEngine(t, h, "<p>hello</p>", cursor.NewCursorSelection(1))

	ok, err := e.Exec("broken")
	if err != nil || ok {
		t.Fatalf("Exec() = %v, %v; expected not applicable", ok, err)
	}
	if logs.FilterMessage("script command failed").Len() == 0 {
		t.Error("expected failure to be logged")
	}
}

func TestCommand_InsertAndSelect(t *testing.T) {
	h := newHost(t, `
		command("stamp", function(ed)
			if not ed.in_node("paragraph") then return false end
			local from = ed.selection()
			ed.insert_text("done")
			ed.select(from, from + 4)
			return ed.text() == "done" and ed.run("toggle_code")
		end)
	`)
	e := newEngine(t, h, "<p>a</p>", cursor.NewCursorSelection(2))

	ok, err := e.Exec("stamp")
	if err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	if got := html(t, e); got != "<p>a<code>done</code></p>" {
		t.Errorf("unexpected document %q", got)
	}
	if !e.Selection().Equals(cursor.NewSelection(2, 6)) {
		t.Errorf("expected selection 2-6, got %s", e.Selection())
	}
}

func TestCommand_ContextQueries(t *testing.T) {
	h := newHost(t, `
		command("list_only", function(ed)
			return ed.in_node("list_item") and ed.can("sink_list_item") == false
				and ed.status("toggle_bullet_list") == "active"
		end)
	`)
	e := newEngine(t, h, "<ul><li><p>a</p></li></ul>", cursor.NewCursorSelection(3))
	if ok, err := e.Can("list_only"); err != nil || !ok {
		t.Errorf("expected list_only to apply, got %v, %v", ok, err)
	}
	if err := e.SetHTML("<p>a</p>"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Can("list_only"); ok {
		t.Error("expected list_only not to apply outside a list")
	}
}

func TestCommand_SurvivesReload(t *testing.T) {
	h := newHost(t, `command("noop", function(ed) return true end)`)
	e := newEngine(t, h, "<p>a</p>", cursor.NewCursorSelection(1))
	if err := e.ApplyConfig(e.Config()); err != nil {
		t.Fatal(err)
	}
	if ok, err := e.Exec("noop"); err != nil || !ok {
		t.Errorf("expected noop after reload, got %v, %v", ok, err)
	}
}

func TestCommand_ClosedHost(t *testing.T) {
	h := NewHost()
	if err := h.DoString(`command("noop", function(ed) return true end)`); err != nil {
		t.Fatal(err)
	}
	e := newEngine(t, h, "<p>a</p>", cursor.NewCursorSelection(1))
	h.Close()
	if ok, _ := e.Can("noop"); ok {
		t.Error("expected commands of a closed host not to apply")
	}
	if err := h.Install(e); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestCommand_SelectBackwardAndCollapse(t *testing.T) {
	h := newHost(t, `
		command("to_start", function(ed)
			ed.select(6, 2)
			local from, to = ed.selection()
			if from ~= 2 or to ~= 6 or ed.text() ~= "ello" then return false end
			return ed.collapse()
		end)
	`)
	e := newEngine(t, h, "<p>hello</p>", cursor.NewCursorSelection(1))

	ok, err := e.Exec("to_start")
	if err != nil || !ok {
		t.Fatalf("Exec() = %v, %v", ok, err)
	}
	if !e.Selection().Equals(cursor.NewCursorSelection(2)) {
		t.Errorf("expected cursor at 2, got %s", e.Selection())
	}
}
