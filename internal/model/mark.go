package model

import "strings"

// Mark is a piece of information attached to inline content, such as
// emphasis or a link. Marks are immutable values; two marks are equal when
// they have the same type and equal attributes.
type Mark struct {
	typ   *MarkType
	attrs Attrs
}

// Type returns the mark's type.
func (m *Mark) Type() *MarkType { return m.typ }

// Attrs returns the mark's attributes. The map must not be modified.
func (m *Mark) Attrs() Attrs { return m.attrs }

// Eq reports whether two marks have the same type and attributes.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	return m.typ == other.typ && m.attrs.Equal(other.attrs)
}

// String renders the mark, e.g. link{href="x"}.
func (m *Mark) String() string {
	return m.typ.name + m.attrs.Format()
}

// AddToSet returns a copy of the sorted set with this mark added. Marks the
// new mark excludes are removed; if a mark in the set excludes this one, the
// set is returned unchanged.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	var out []*Mark
	copied, placed := false, false
	for i, other := range set {
		if m.Eq(other) {
			return set
		}
		if m.typ.Excludes(other.typ) {
			if !copied {
				out, copied = append([]*Mark(nil), set[:i]...), true
			}
			continue
		}
		if other.typ.Excludes(m.typ) {
			return set
		}
		if !placed && other.typ.rank > m.typ.rank {
			if !copied {
				out, copied = append([]*Mark(nil), set[:i]...), true
			}
			out = append(out, m)
			placed = true
		}
		if copied {
			out = append(out, other)
		}
	}
	if !copied {
		out = append([]*Mark(nil), set...)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns the set without this mark.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	for i, other := range set {
		if m.Eq(other) {
			out := append([]*Mark(nil), set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

// IsInSet reports whether an equal mark is in the set.
func (m *Mark) IsInSet(set []*Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// SameMarkSet reports whether two mark sets hold equal marks in the same order.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// FormatMarks renders a mark set for debugging.
func FormatMarks(set []*Mark) string {
	parts := make([]string, len(set))
	for i, m := range set {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// normalizeMarkSet sorts marks into schema order, dropping duplicates and nils.
func normalizeMarkSet(marks []*Mark) []*Mark {
	var set []*Mark
	for _, m := range marks {
		if m != nil {
			set = m.AddToSet(set)
		}
	}
	return set
}
