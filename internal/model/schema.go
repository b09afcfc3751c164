package model

import (
	"fmt"
	"strings"
)

// NodeSpec describes a node type.
type NodeSpec struct {
	// Name is the type name, e.g. "paragraph".
	Name string
	// Content is the content expression, e.g. "inline*" or "list_item+".
	// Empty means the node is a leaf.
	Content string
	// Marks lists the marks allowed in this node's content: "_" for all,
	// "" for none, or space-separated mark and group names. Nil applies the
	// default: all marks for inline content, none otherwise.
	Marks *string
	// Group is a space-separated list of groups the type belongs to.
	Group string
	// Inline marks the type as inline content. Text is always inline.
	Inline bool
	// Atom marks a non-leaf node that is edited as a single unit.
	Atom bool
	// Isolating nodes stop lifting and joining at their boundaries.
	Isolating bool
	// Attrs describes the type's attributes.
	Attrs map[string]AttributeSpec
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Name  string
	Attrs map[string]AttributeSpec
	// Inclusive controls whether the mark extends to content typed at its end.
	// Nil means true.
	Inclusive *bool
	// Excludes lists the marks that cannot coexist with this one: "_" for
	// all, "" for none, or space-separated names and groups. Nil means the
	// mark only excludes itself.
	Excludes *string
	Group    string
}

// SchemaSpec describes a schema. The order of Nodes and Marks is significant:
// mark order defines mark set ordering and node order defines group order.
type SchemaSpec struct {
	Nodes []NodeSpec
	Marks []MarkSpec
	// TopNode names the root type. Defaults to "doc".
	TopNode string
}

// Schema is a set of node and mark types. A Schema is immutable once built
// and may be shared by any number of documents.
type Schema struct {
	spec      SchemaSpec
	nodes     map[string]*NodeType
	nodeOrder []*NodeType
	marks     map[string]*MarkType
	markOrder []*MarkType
	top       *NodeType
	text      *NodeType
}

// NewSchema builds a schema from its specification.
func NewSchema(spec SchemaSpec) (*Schema, error) {
	s := &Schema{
		spec:  spec,
		nodes: make(map[string]*NodeType, len(spec.Nodes)),
		marks: make(map[string]*MarkType, len(spec.Marks)),
	}

	for _, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, fmt.Errorf("%w: node type without name", ErrSchema)
		}
		if _, dup := s.nodes[ns.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate node type %q", ErrSchema, ns.Name)
		}
		nt := newNodeType(s, ns)
		s.nodes[ns.Name] = nt
		s.nodeOrder = append(s.nodeOrder, nt)
	}
	for i, ms := range spec.Marks {
		if ms.Name == "" {
			return nil, fmt.Errorf("%w: mark type without name", ErrSchema)
		}
		if _, dup := s.marks[ms.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate mark type %q", ErrSchema, ms.Name)
		}
		mt := newMarkType(s, ms, i)
		s.marks[ms.Name] = mt
		s.markOrder = append(s.markOrder, mt)
	}

	topName := spec.TopNode
	if topName == "" {
		topName = "doc"
	}
	s.top = s.nodes[topName]
	if s.top == nil {
		return nil, fmt.Errorf("%w: top node type %q is not defined", ErrSchema, topName)
	}
	s.text = s.nodes["text"]
	if s.text == nil {
		return nil, fmt.Errorf("%w: every schema needs a text type", ErrSchema)
	}
	if len(s.text.attrs) > 0 {
		return nil, fmt.Errorf("%w: the text node type cannot have attributes", ErrSchema)
	}

	for _, nt := range s.nodeOrder {
		match, err := compileContent(nt.spec.Content, s)
		if err != nil {
			return nil, fmt.Errorf("%w: content of %s: %v", ErrSchema, nt.name, err)
		}
		nt.contentMatch = match
		nt.inlineContent = match.InlineContent()
	}
	for _, nt := range s.nodeOrder {
		if err := nt.resolveMarks(); err != nil {
			return nil, err
		}
	}
	for _, mt := range s.markOrder {
		if err := mt.resolveExcludes(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Spec returns the specification the schema was built from.
func (s *Schema) Spec() SchemaSpec { return s.spec }

// NodeType returns the node type with the given name, or nil.
func (s *Schema) NodeType(name string) *NodeType { return s.nodes[name] }

// MarkType returns the mark type with the given name, or nil.
func (s *Schema) MarkType(name string) *MarkType { return s.marks[name] }

// NodeTypes returns all node types in declaration order.
func (s *Schema) NodeTypes() []*NodeType {
	return append([]*NodeType(nil), s.nodeOrder...)
}

// MarkTypes returns all mark types in declaration order.
func (s *Schema) MarkTypes() []*MarkType {
	return append([]*MarkType(nil), s.markOrder...)
}

// TopNodeType returns the type of document roots.
func (s *Schema) TopNodeType() *NodeType { return s.top }

// NodesInGroup returns the node types belonging to a group, in declaration order.
func (s *Schema) NodesInGroup(group string) []*NodeType {
	var out []*NodeType
	for _, nt := range s.nodeOrder {
		if nt.InGroup(group) {
			out = append(out, nt)
		}
	}
	return out
}

// Node creates a node of the named type with validated attributes and content.
func (s *Schema) Node(name string, attrs Attrs, children ...*Node) (*Node, error) {
	nt := s.nodes[name]
	if nt == nil {
		return nil, fmt.Errorf("%w: node %q", ErrUnknownType, name)
	}
	return nt.Create(attrs, FragmentFrom(children...), nil)
}

// Text creates a text node. It returns nil for an empty string because
// empty text nodes are not allowed.
func (s *Schema) Text(text string, marks ...*Mark) *Node {
	if text == "" {
		return nil
	}
	return &Node{typ: s.text, text: text, marks: normalizeMarkSet(marks), content: EmptyFragment}
}

// Mark creates a mark of the named type.
func (s *Schema) Mark(name string, attrs Attrs) (*Mark, error) {
	mt := s.marks[name]
	if mt == nil {
		return nil, fmt.Errorf("%w: mark %q", ErrUnknownType, name)
	}
	return mt.Create(attrs)
}

// NodeType is a kind of node in a schema.
type NodeType struct {
	name          string
	schema        *Schema
	spec          NodeSpec
	groups        []string
	attrs         map[string]AttributeSpec
	contentMatch  *ContentMatch
	inlineContent bool
	markSet       []*MarkType
	allMarks      bool
}

func newNodeType(s *Schema, spec NodeSpec) *NodeType {
	return &NodeType{
		name:   spec.Name,
		schema: s,
		spec:   spec,
		groups: strings.Fields(spec.Group),
		attrs:  spec.Attrs,
	}
}

func (t *NodeType) resolveMarks() error {
	switch {
	case t.spec.Marks != nil && *t.spec.Marks == "_":
		t.allMarks = true
	case t.spec.Marks != nil && *t.spec.Marks != "":
		set, err := t.schema.gatherMarks(strings.Fields(*t.spec.Marks))
		if err != nil {
			return err
		}
		t.markSet = set
	case t.spec.Marks == nil && t.inlineContent:
		t.allMarks = true
	}
	return nil
}

// Name returns the type name.
func (t *NodeType) Name() string { return t.name }

// Schema returns the schema the type belongs to.
func (t *NodeType) Schema() *Schema { return t.schema }

// Spec returns the type's specification.
func (t *NodeType) Spec() NodeSpec { return t.spec }

// String implements fmt.Stringer.
func (t *NodeType) String() string { return t.name }

// IsText reports whether this is the text type.
func (t *NodeType) IsText() bool { return t == t.schema.text }

// IsInline reports whether nodes of this type are inline.
func (t *NodeType) IsInline() bool { return t.spec.Inline || t.IsText() || t.InGroup("inline") }

// IsBlock reports whether nodes of this type are blocks.
func (t *NodeType) IsBlock() bool { return !t.IsInline() }

// InlineContent reports whether the type's content is inline.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// IsTextblock reports whether this is a block type with inline content.
func (t *NodeType) IsTextblock() bool { return t.IsBlock() && t.inlineContent }

// IsLeaf reports whether the type allows no content.
func (t *NodeType) IsLeaf() bool { return t.contentMatch == emptyMatch }

// IsAtom reports whether nodes of this type are edited as a unit.
func (t *NodeType) IsAtom() bool { return t.IsLeaf() || t.spec.Atom }

// IsIsolating reports whether edits stop at this type's boundaries.
func (t *NodeType) IsIsolating() bool { return t.spec.Isolating }

// InGroup reports whether the type belongs to the named group.
func (t *NodeType) InGroup(group string) bool {
	for _, g := range t.groups {
		if g == group {
			return true
		}
	}
	return false
}

// Groups returns the groups the type belongs to.
func (t *NodeType) Groups() []string { return append([]string(nil), t.groups...) }

// HasRequiredAttrs reports whether the type has attributes without defaults.
func (t *NodeType) HasRequiredAttrs() bool {
	for _, a := range t.attrs {
		if !a.HasDefault {
			return true
		}
	}
	return false
}

// ContentMatch returns the start state of the type's content automaton.
func (t *NodeType) ContentMatch() *ContentMatch { return t.contentMatch }

// CompatibleContent reports whether content of this type may be joined with
// content of the other.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	return t == other || t.contentMatch.Compatible(other.contentMatch)
}

// ValidContent reports whether the fragment is valid content for this type.
func (t *NodeType) ValidContent(content Fragment) bool {
	return t.CheckContent(content) == nil
}

// CheckContent returns an error describing why content is not valid for this type.
func (t *NodeType) CheckContent(content Fragment) error {
	m := t.contentMatch.MatchFragment(content, 0, content.ChildCount())
	if m == nil || !m.ValidEnd() {
		return fmt.Errorf("%w for %s: %s", ErrInvalidContent, t.name, content.String())
	}
	for _, child := range content.nodes {
		if !t.AllowsMarks(child.marks) {
			return fmt.Errorf("%w for %s: marks not allowed on %s", ErrInvalidContent, t.name, child.typ.name)
		}
	}
	return nil
}

// AllowsMarkType reports whether the given mark type may appear in this type's content.
func (t *NodeType) AllowsMarkType(mt *MarkType) bool {
	if t.allMarks {
		return true
	}
	for _, m := range t.markSet {
		if m == mt {
			return true
		}
	}
	return false
}

// AllowsMarks reports whether every mark in the set may appear in this type's content.
func (t *NodeType) AllowsMarks(marks []*Mark) bool {
	for _, m := range marks {
		if !t.AllowsMarkType(m.typ) {
			return false
		}
	}
	return true
}

// AllowedMarks filters a mark set down to the marks this type allows.
func (t *NodeType) AllowedMarks(marks []*Mark) []*Mark {
	if t.allMarks {
		return marks
	}
	var out []*Mark
	for _, m := range marks {
		if t.AllowsMarkType(m.typ) {
			out = append(out, m)
		}
	}
	return out
}

// Make creates a node with computed attributes without validating content.
// Structural edits use it to build wrappers that are filled afterwards.
func (t *NodeType) Make(attrs Attrs, content Fragment, marks []*Mark) (*Node, error) {
	if t.IsText() {
		return nil, fmt.Errorf("%w: text nodes are created with Schema.Text", ErrInvalidContent)
	}
	built, err := computeAttrs(t.name, t.attrs, attrs)
	if err != nil {
		return nil, err
	}
	return &Node{typ: t, attrs: built, content: content, marks: normalizeMarkSet(marks)}, nil
}

// Create creates a node and validates its content.
func (t *NodeType) Create(attrs Attrs, content Fragment, marks []*Mark) (*Node, error) {
	n, err := t.Make(attrs, content, marks)
	if err != nil {
		return nil, err
	}
	if err := t.CheckContent(n.content); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkType is a kind of mark in a schema.
type MarkType struct {
	name     string
	rank     int
	schema   *Schema
	spec     MarkSpec
	groups   []string
	excluded []*MarkType
	instance *Mark
}

func newMarkType(s *Schema, spec MarkSpec, rank int) *MarkType {
	mt := &MarkType{
		name:   spec.Name,
		rank:   rank,
		schema: s,
		spec:   spec,
		groups: strings.Fields(spec.Group),
	}
	if attrs, ok := defaultAttrs(spec.Attrs); ok {
		mt.instance = &Mark{typ: mt, attrs: attrs}
	}
	return mt
}

func (t *MarkType) resolveExcludes() error {
	if t.spec.Excludes == nil {
		t.excluded = []*MarkType{t}
		return nil
	}
	ex := *t.spec.Excludes
	if ex == "" {
		return nil
	}
	set, err := t.schema.gatherMarks(strings.Fields(ex))
	if err != nil {
		return err
	}
	t.excluded = set
	return nil
}

// Name returns the type name.
func (t *MarkType) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *MarkType) String() string { return t.name }

// Schema returns the schema the type belongs to.
func (t *MarkType) Schema() *Schema { return t.schema }

// Spec returns the type's specification.
func (t *MarkType) Spec() MarkSpec { return t.spec }

// Inclusive reports whether the mark extends over content inserted at its end.
func (t *MarkType) Inclusive() bool { return t.spec.Inclusive == nil || *t.spec.Inclusive }

// Excludes reports whether this mark type excludes the other.
func (t *MarkType) Excludes(other *MarkType) bool {
	for _, e := range t.excluded {
		if e == other {
			return true
		}
	}
	return false
}

// Create creates a mark of this type.
func (t *MarkType) Create(attrs Attrs) (*Mark, error) {
	if len(attrs) == 0 && t.instance != nil {
		return t.instance, nil
	}
	built, err := computeAttrs(t.name, t.spec.Attrs, attrs)
	if err != nil {
		return nil, err
	}
	return &Mark{typ: t, attrs: built}, nil
}

// IsInSet returns the mark of this type in the set, or nil.
func (t *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.typ == t {
			return m
		}
	}
	return nil
}

// RemoveFromSet returns the set without marks of this type.
func (t *MarkType) RemoveFromSet(set []*Mark) []*Mark {
	var out []*Mark
	for _, m := range set {
		if m.typ != t {
			out = append(out, m)
		}
	}
	return out
}

func (s *Schema) gatherMarks(names []string) ([]*MarkType, error) {
	var found []*MarkType
	for _, name := range names {
		if name == "_" {
			return append([]*MarkType(nil), s.markOrder...), nil
		}
		if mt := s.marks[name]; mt != nil {
			found = append(found, mt)
			continue
		}
		ok := false
		for _, mt := range s.markOrder {
			for _, g := range mt.groups {
				if g == name {
					found = append(found, mt)
					ok = true
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: unknown mark type %q", ErrSchema, name)
		}
	}
	return found, nil
}
