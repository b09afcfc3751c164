package config

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/dshills/richcore/internal/model"
)

//go:embed default.toml
var defaultTOML []byte

// Config is the editor configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string    `toml:"log_level" yaml:"log_level"`
	Lists    Lists     `toml:"lists" yaml:"lists"`
	Indent   Indent    `toml:"indent" yaml:"indent"`
	Schema   SchemaDef `toml:"schema" yaml:"schema"`
}

// Lists names the node types used by list commands.
type Lists struct {
	Bullet  string `toml:"bullet" yaml:"bullet"`
	Ordered string `toml:"ordered" yaml:"ordered"`
	Item    string `toml:"item" yaml:"item"`
}

// Indent names the generic indent container type.
type Indent struct {
	Container string `toml:"container" yaml:"container"`
}

// SchemaDef is the serialized form of a document schema.
type SchemaDef struct {
	TopNode string    `toml:"top_node" yaml:"top_node"`
	Nodes   []NodeDef `toml:"nodes" yaml:"nodes"`
	Marks   []MarkDef `toml:"marks" yaml:"marks"`
}

// AttrDef describes one attribute. A missing "default" key makes the
// attribute required.
type AttrDef map[string]any

// NodeDef is the serialized form of a node type.
type NodeDef struct {
	Name      string             `toml:"name" yaml:"name"`
	Content   string             `toml:"content" yaml:"content"`
	Group     string             `toml:"group" yaml:"group"`
	Marks     *string            `toml:"marks" yaml:"marks"`
	Inline    bool               `toml:"inline" yaml:"inline"`
	Atom      bool               `toml:"atom" yaml:"atom"`
	Isolating bool               `toml:"isolating" yaml:"isolating"`
	Attrs     map[string]AttrDef `toml:"attrs" yaml:"attrs"`
}

// MarkDef is the serialized form of a mark type.
type MarkDef struct {
	Name      string             `toml:"name" yaml:"name"`
	Group     string             `toml:"group" yaml:"group"`
	Inclusive *bool              `toml:"inclusive" yaml:"inclusive"`
	Excludes  *string            `toml:"excludes" yaml:"excludes"`
	Attrs     map[string]AttrDef `toml:"attrs" yaml:"attrs"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return Decode(defaultTOML, FormatTOML, "<default>")
}

// Validate checks the values that decoding cannot check.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level %q (must be debug, info, warn, or error)", ErrValidationFailed, c.LogLevel)
	}
	if len(c.Schema.Nodes) == 0 {
		return fmt.Errorf("%w: schema defines no node types", ErrValidationFailed)
	}
	return nil
}

// SchemaSpec converts the schema definition into a model.SchemaSpec.
func (d SchemaDef) SchemaSpec() model.SchemaSpec {
	spec := model.SchemaSpec{TopNode: d.TopNode}
	for _, n := range d.Nodes {
		spec.Nodes = append(spec.Nodes, model.NodeSpec{
			Name:      n.Name,
			Content:   n.Content,
			Group:     n.Group,
			Marks:     n.Marks,
			Inline:    n.Inline,
			Atom:      n.Atom,
			Isolating: n.Isolating,
			Attrs:     attrSpecs(n.Attrs),
		})
	}
	for _, m := range d.Marks {
		spec.Marks = append(spec.Marks, model.MarkSpec{
			Name:      m.Name,
			Group:     m.Group,
			Inclusive: m.Inclusive,
			Excludes:  m.Excludes,
			Attrs:     attrSpecs(m.Attrs),
		})
	}
	return spec
}

func attrSpecs(defs map[string]AttrDef) map[string]model.AttributeSpec {
	if len(defs) == 0 {
		return nil
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	specs := make(map[string]model.AttributeSpec, len(defs))
	for _, name := range names {
		def, has := defs[name]["default"]
		specs[name] = model.AttributeSpec{Default: def, HasDefault: has}
	}
	return specs
}

// BuildSchema builds the configured schema and checks that the list and
// indent type names it refers to exist.
func (c *Config) BuildSchema() (*model.Schema, error) {
	s, err := model.NewSchema(c.Schema.SchemaSpec())
	if err != nil {
		return nil, err
	}
	for _, name := range []string{c.Lists.Bullet, c.Lists.Ordered, c.Lists.Item, c.Indent.Container} {
		if name != "" && s.NodeType(name) == nil {
			return nil, fmt.Errorf("%w: node type %q is not in the schema", ErrValidationFailed, name)
		}
	}
	return s, nil
}
