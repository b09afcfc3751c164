package model

import (
	"fmt"
	"sort"
	"strings"
)

// Attrs is the attribute map of a node or mark.
// Values are scalars: string, bool, int, float64 or nil.
// An Attrs value is never modified after it is attached to a node or mark.
type Attrs map[string]any

// AttributeSpec describes one attribute of a node or mark type.
type AttributeSpec struct {
	// Default is used when the attribute is not supplied.
	Default any
	// HasDefault reports whether Default applies. Attributes without a
	// default are required.
	HasDefault bool
}

// Get returns the raw value of an attribute.
func (a Attrs) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns an attribute as a string, or "" when absent or not a string.
func (a Attrs) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns an attribute as an int, or 0 when absent or not numeric.
func (a Attrs) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns an attribute as a bool, or false when absent or not a bool.
func (a Attrs) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Equal reports whether two attribute maps hold the same keys and values.
// Key order is irrelevant; nil and empty maps are equal.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Format renders the attributes with sorted keys, e.g. {href="x" level=2}.
func (a Attrs) Format() string {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch v := a[k].(type) {
		case string:
			fmt.Fprintf(&b, "%s=%q", k, v)
		default:
			fmt.Fprintf(&b, "%s=%v", k, v)
		}
	}
	b.WriteByte('}')
	return b.String()
}

// normalizeValue converts decoded numeric values to int or float64 and
// rejects non-scalar values.
func normalizeValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil, string, bool, int, float64:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	case float32:
		return float64(x), true
	}
	return nil, false
}

// computeAttrs fills defaults for a type's attributes and checks that
// required attributes are present. Unknown attributes are dropped.
func computeAttrs(typeName string, specs map[string]AttributeSpec, given Attrs) (Attrs, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	built := make(Attrs, len(specs))
	for name, spec := range specs {
		v, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				return nil, fmt.Errorf("%w: no value supplied for attribute %q of %s", ErrInvalidAttrs, name, typeName)
			}
			v = spec.Default
		}
		nv, ok := normalizeValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: attribute %q of %s has non-scalar value %T", ErrInvalidAttrs, name, typeName, v)
		}
		built[name] = nv
	}
	return built, nil
}

func defaultAttrs(specs map[string]AttributeSpec) (Attrs, bool) {
	attrs := make(Attrs, len(specs))
	for name, spec := range specs {
		if !spec.HasDefault {
			return nil, false
		}
		v, _ := normalizeValue(spec.Default)
		attrs[name] = v
	}
	return attrs, true
}
