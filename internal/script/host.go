package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/engine"
	"github.com/dshills/richcore/internal/model"
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = time.Second

// Host owns a sandboxed Lua state and the commands its scripts define.
//
// gopher-lua's LState is not goroutine-safe; every call into it holds mu.
type Host struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	log     *zap.Logger
	defs    []definition
	closed  bool
}

// definition is a command declared by a script.
type definition struct {
	name   string
	run    *lua.LFunction
	active *lua.LFunction
}

// Option configures a Host.
type Option func(*Host)

// WithTimeout sets the time limit for each script call.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithLogger sets the logger used for print and for failing commands.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHost creates a sandboxed host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	installSandbox(h.L, h.log)
	h.L.SetGlobal("command", h.L.NewFunction(h.declare))
	return h
}

// declare implements command(name, run [, active]).
func (h *Host) declare(L *lua.LState) int {
	name := L.CheckString(1)
	run := L.CheckFunction(2)
	active := L.OptFunction(3, nil)
	if name == "" {
		L.ArgError(1, "command name is empty")
		return 0
	}
	for i, d := range h.defs {
		if d.name == name {
			h.defs[i] = definition{name: name, run: run, active: active}
			return 0
		}
	}
	h.defs = append(h.defs, definition{name: name, run: run, active: active})
	return 0
}

// DoString runs a script.
func (h *Host) DoString(code string) error {
	return h.load(func() error { return h.L.DoString(code) })
}

// DoFile runs a script file.
func (h *Host) DoFile(path string) error {
	return h.load(func() error { return h.L.DoFile(path) })
}

func (h *Host) load(do func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	before := len(h.defs)
	err := h.withContext(do)
	if err != nil {
		h.defs = h.defs[:before]
		return err
	}
	return nil
}

// withContext runs do under the host's time limit.
func (h *Host) withContext(do func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("lua panic: %v", r)
			}
		}()
		return do()
	}()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// Names returns the names of the defined commands in definition order.
func (h *Host) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.defs))
	for i, d := range h.defs {
		names[i] = d.name
	}
	return names
}

// Install registers every defined command with the engine.
func (h *Host) Install(e *engine.Engine) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	defs := append([]definition(nil), h.defs...)
	h.mu.Unlock()

	// The engine lock is taken after releasing mu; status queries hold
	// the engine lock while calling into the host.
	for _, d := range defs {
		e.Register(h.factory(d))
	}
	return nil
}

// factory builds the command for d against a schema. Scripts run the
// stock commands of that schema by name.
func (h *Host) factory(d definition) engine.CommandFactory {
	return func(s *model.Schema, types commands.Types) commands.Command {
		return h.command(d, s, commands.Stock(s, types))
	}
}

// Close releases the Lua state. Commands already installed stop applying.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}
