package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/config"
	"github.com/dshills/richcore/internal/config/watcher"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/engine/query"
	"github.com/dshills/richcore/internal/engine/state"
	"github.com/dshills/richcore/internal/htmldoc"
	"github.com/dshills/richcore/internal/model"
)

// CommandFactory builds a command for a schema. Factories are invoked
// again when a configuration reload replaces the schema, so the commands
// they build never refer to node or mark types of an older schema.
type CommandFactory func(s *model.Schema, types commands.Types) commands.Command

// Engine is the editing session facade. It owns the schema, the current
// state and the command registry, applies the transactions commands
// dispatch, and notifies the view after each accepted one.
//
// All operations are thread-safe. The view is notified after the engine
// lock is released, so it may call back into the engine.
type Engine struct {
	mu sync.RWMutex

	id     uuid.UUID
	cfg    *config.Config
	schema *model.Schema
	types  commands.Types
	st     *state.State
	cmds   *commands.Registry
	custom []CommandFactory

	view     commands.View
	tables   commands.TableEditor
	log      *zap.Logger
	level    *zap.AtomicLevel
	readOnly bool

	watcher *watcher.Watcher
	closed  bool

	// Initialization
	initDoc  *model.Node
	initHTML string
	hasHTML  bool
	initSel  *cursor.Selection
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		id:  uuid.New(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("engine", e.id.String()))

	if e.cfg == nil {
		cfg, err := config.Default()
		if err != nil {
			return nil, err
		}
		e.cfg = cfg
	}
	schema, err := e.cfg.BuildSchema()
	if err != nil {
		return nil, err
	}

	var doc *model.Node
	switch {
	case e.hasHTML:
		doc, err = htmldoc.ParseString(schema, e.initHTML)
	case e.initDoc == nil:
		doc, err = htmldoc.ParseString(schema, "")
	case e.initDoc.Type().Schema() != schema:
		doc, err = rebind(e.initDoc, schema)
	default:
		doc, err = e.initDoc, e.initDoc.Check()
	}
	if err != nil {
		return nil, err
	}

	sel := startSelection(doc)
	if e.initSel != nil {
		sel = *e.initSel
	}
	e.bind(e.cfg, schema, state.New(doc, sel))
	e.initDoc, e.initSel = nil, nil
	return e, nil
}

// bind installs a configuration, schema and state and rebuilds the
// command registry.
func (e *Engine) bind(cfg *config.Config, schema *model.Schema, st *state.State) {
	e.cfg = cfg
	e.schema = schema
	e.types = typesFor(schema, cfg)
	e.st = st

	reg := commands.Stock(schema, e.types)
	if e.tables != nil && e.types.Table != nil {
		for _, c := range commands.TableCommands(e.tables, e.types.Table) {
			reg.Register(c)
		}
	}
	for _, f := range e.custom {
		reg.Register(f(schema, e.types))
	}
	e.cmds = reg
}

// typesFor resolves the types the stock commands use, honoring the list
// and indent names of the configuration.
func typesFor(s *model.Schema, cfg *config.Config) commands.Types {
	types := commands.DefaultTypes(s)
	lookup := func(name string, dflt *model.NodeType) *model.NodeType {
		if name == "" {
			return dflt
		}
		return s.NodeType(name)
	}
	types.Bullet = lookup(cfg.Lists.Bullet, types.Bullet)
	types.Ordered = lookup(cfg.Lists.Ordered, types.Ordered)
	types.Item = lookup(cfg.Lists.Item, types.Item)
	types.Indent = lookup(cfg.Indent.Container, types.Indent)
	return types
}

// startSelection places a cursor at the start of the first textblock.
func startSelection(doc *model.Node) cursor.Selection {
	pos := 0
	found := false
	doc.Descendants(func(n *model.Node, p int, _ *model.Node, _ int) bool {
		if found {
			return false
		}
		if n.InlineContent() {
			pos, found = p+1, true
			return false
		}
		return true
	})
	return cursor.NewCursorSelection(pos)
}

// ID returns the engine's session identifier.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// ============================================================================
// Read Operations
// ============================================================================

// State returns the current editor state.
func (e *Engine) State() *state.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st
}

// Doc returns the current document.
func (e *Engine) Doc() *model.Node {
	return e.State().Doc()
}

// Selection returns the current selection.
func (e *Engine) Selection() cursor.Selection {
	return e.State().Selection()
}

// Schema returns the current schema.
func (e *Engine) Schema() *model.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema
}

// Config returns the current configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Active returns the active-elements snapshot of the current selection.
func (e *Engine) Active() query.ActiveElements {
	return query.ActiveFor(e.State())
}

// HTML renders the current document as HTML.
func (e *Engine) HTML() (string, error) {
	return htmldoc.RenderString(e.Doc())
}

// ============================================================================
// Commands
// ============================================================================

// Commands returns the names of all registered commands, sorted.
func (e *Engine) Commands() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cmds.List()
}

// Register adds a command built by f, now and after every schema reload.
func (e *Engine) Register(f CommandFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.custom = append(e.custom, f)
	e.cmds.Register(f(e.schema, e.types))
}

// Command returns the registered command with the given name.
func (e *Engine) Command(name string) (commands.Command, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookup(name)
}

func (e *Engine) lookup(name string) (commands.Command, error) {
	c, ok := e.cmds.Get(name)
	if !ok {
		return commands.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Can reports whether the named command applies to the current state.
func (e *Engine) Can(name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	return c.Can(e.st), nil
}

// Status returns the status of the named command.
func (e *Engine) Status(name string) (commands.Status, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, err := e.lookup(name)
	if err != nil {
		return commands.Disabled, err
	}
	return c.StatusOf(e.st, query.ActiveFor(e.st)), nil
}

// Statuses returns the status of every registered command.
func (e *Engine) Statuses() map[string]commands.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cmds.Statuses(e.st)
}

// Exec runs the named command. It returns false without error when the
// command does not apply, and an error when the command is unknown or the
// transaction it dispatched was rejected.
func (e *Engine) Exec(name string) (bool, error) {
	e.mu.Lock()
	c, err := e.lookup(name)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	return e.runAndNotify(c)
}

// Run runs a command that need not be registered.
func (e *Engine) Run(c commands.Command) (bool, error) {
	e.mu.Lock()
	return e.runAndNotify(c)
}

// runAndNotify runs c with the lock held, releases it and notifies the view.
func (e *Engine) runAndNotify(c commands.Command) (bool, error) {
	ok, changed, err := e.runLocked(c)
	st := e.st
	e.mu.Unlock()
	if changed {
		e.notify(st)
	}
	return ok, err
}

func (e *Engine) runLocked(c commands.Command) (ok, changed bool, err error) {
	if e.closed {
		return false, false, ErrClosed
	}
	if e.readOnly {
		return false, false, fmt.Errorf("%w: %s", ErrReadOnly, c.Name)
	}
	var applyErr error
	ok = c.Exec(e.st, func(tr *state.Transaction) {
		if applyErr != nil {
			return
		}
		if applyErr = e.applyLocked(tr); applyErr == nil {
			changed = true
		}
	}, e.view)
	e.log.Debug("command executed", zap.String("command", c.Name), zap.Bool("applied", ok))
	if applyErr != nil {
		return false, changed, applyErr
	}
	return ok, changed, nil
}

// ============================================================================
// Transactions
// ============================================================================

// Apply applies a transaction built from the current state. A rejected
// transaction leaves the state unchanged.
func (e *Engine) Apply(tr *state.Transaction) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	err := e.applyLocked(tr)
	st := e.st
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(st)
	return nil
}

// editableLocked reports why the document cannot be edited, if it cannot.
func (e *Engine) editableLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (e *Engine) applyLocked(tr *state.Transaction) error {
	next, err := e.st.Apply(tr)
	if err != nil {
		e.log.Warn("transaction rejected", zap.String("tx", tr.ID().String()), zap.Error(err))
		return err
	}
	e.st = next
	e.log.Debug("transaction applied",
		zap.String("tx", tr.ID().String()),
		zap.Int("steps", len(tr.Steps())),
		zap.Stringer("selection", next.Selection()))
	return nil
}

func (e *Engine) notify(st *state.State) {
	if e.view != nil {
		e.view.Update(st.Doc(), st.Selection())
	}
}

// SetSelection moves the selection. Positions are clamped to the document.
func (e *Engine) SetSelection(sel cursor.Selection) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	err := e.applyLocked(e.st.Tr().SetSelection(sel))
	st := e.st
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(st)
	return nil
}

// InsertText replaces the selection with text carrying the active marks.
func (e *Engine) InsertText(text string) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	tr := e.st.Tr()
	err := tr.ReplaceSelectionWithText(text)
	if err == nil {
		err = e.applyLocked(tr)
	}
	st := e.st
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(st)
	return nil
}

// SetHTML replaces the document with parsed markup and puts the cursor at
// its start.
func (e *Engine) SetHTML(markup string) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	doc, err := htmldoc.ParseString(e.schema, markup)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.st = state.New(doc, startSelection(doc))
	st := e.st
	e.mu.Unlock()
	e.notify(st)
	return nil
}

// ============================================================================
// Configuration
// ============================================================================

// ApplyConfig switches to a new configuration. The document is rebound to
// the new schema by type name; when it does not fit, the engine keeps its
// previous configuration and returns an error wrapping ErrRebind.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	schema, err := cfg.BuildSchema()
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	doc, err := rebind(e.st.Doc(), schema)
	if err != nil {
		e.mu.Unlock()
		e.log.Warn("config rejected", zap.Error(err))
		return err
	}
	e.bind(cfg, schema, state.New(doc, e.st.Selection()))
	if e.level != nil {
		if lvl, err := parseLevel(cfg.LogLevel); err == nil {
			e.level.SetLevel(lvl)
		}
	}
	st := e.st
	e.mu.Unlock()

	e.log.Info("config applied", zap.Int("commands", len(e.Commands())))
	e.notify(st)
	return nil
}

// WatchConfig reloads the configuration whenever the file at path
// changes. A previous watch is replaced.
func (e *Engine) WatchConfig(path string, opts ...watcher.Option) error {
	w, err := watcher.New(path, func(cfg *config.Config, err error) {
		if err != nil {
			e.log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		switch err := e.ApplyConfig(cfg); {
		case err == nil:
			e.log.Info("config reloaded", zap.String("path", path))
		case errors.Is(err, ErrClosed):
			e.log.Debug("config reload after close ignored", zap.String("path", path))
		}
	}, opts...)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		_ = w.Close()
		return ErrClosed
	}
	if e.watcher != nil {
		_ = e.watcher.Close()
	}
	e.watcher = w
	return nil
}

// Close stops watching the configuration. Later edits, selection changes
// and configuration changes return ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	if e.watcher != nil {
		return e.watcher.Close()
	}
	return nil
}

// rebind rebuilds a node with the types of another schema, matched by name.
func rebind(n *model.Node, s *model.Schema) (*model.Node, error) {
	marks := make([]*model.Mark, 0, len(n.Marks()))
	for _, m := range n.Marks() {
		mt := s.MarkType(m.Type().Name())
		if mt == nil {
			return nil, fmt.Errorf("%w: no mark type %q", ErrRebind, m.Type().Name())
		}
		nm, err := mt.Create(m.Attrs())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRebind, err)
		}
		marks = append(marks, nm)
	}
	if n.IsText() {
		return s.Text(n.Text(), marks...), nil
	}

	nt := s.NodeType(n.Type().Name())
	if nt == nil {
		return nil, fmt.Errorf("%w: no node type %q", ErrRebind, n.Type().Name())
	}
	children := make([]*model.Node, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		c, err := rebind(n.Child(i), s)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	out, err := nt.Create(n.Attrs(), model.FragmentFrom(children...), marks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRebind, err)
	}
	if n.Type().Schema().TopNodeType() == n.Type() {
		if err := out.Check(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRebind, err)
		}
	}
	return out, nil
}
