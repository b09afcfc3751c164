package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/richcore/internal/commands"
	"github.com/dshills/richcore/internal/config"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/model"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithConfig sets the configuration the schema and stock commands are
// built from. The embedded default configuration is used otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithDocument sets the initial document. It must be built with the
// engine's schema.
func WithDocument(doc *model.Node) Option {
	return func(e *Engine) {
		e.initDoc = doc
	}
}

// WithHTML sets the initial document from HTML markup.
func WithHTML(markup string) Option {
	return func(e *Engine) {
		e.initHTML = markup
		e.hasHTML = true
	}
}

// WithSelection sets the initial selection. It defaults to the start of
// the first textblock.
func WithSelection(sel cursor.Selection) Option {
	return func(e *Engine) {
		e.initSel = &sel
	}
}

// WithView sets the view notified after every accepted transaction.
func WithView(v commands.View) Option {
	return func(e *Engine) {
		e.view = v
	}
}

// WithLogger sets the logger. Engines log nothing by default.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTables registers the commands of a table editing module.
func WithTables(t commands.TableEditor) Option {
	return func(e *Engine) {
		e.tables = t
	}
}

// WithReadOnly creates a read-only engine. Commands can be queried but
// executing one returns ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
