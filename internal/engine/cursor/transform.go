package cursor

// Mapper maps a position in an old document to a position in a new one.
// Assoc decides which side a position sticks to when content is inserted
// exactly at it: negative keeps it before the insertion, positive moves it
// past the insertion.
type Mapper interface {
	Map(pos, assoc int) int
}

// TransformOffset maps a single position. Positions stick to the content
// after them, so a cursor sitting where content is inserted ends up after
// the insertion.
func TransformOffset(pos int, m Mapper) int {
	return m.Map(pos, 1)
}

// Map carries the selection through an edit and clamps it to the new
// document size. A cursor maps forward; for ranges the lower end maps
// forward and the upper end backward so text inserted at the edges stays
// outside the selection.
func (s Selection) Map(m Mapper, size int) Selection {
	if s.IsEmpty() {
		pos := TransformOffset(s.Head, m)
		return NewCursorSelection(pos).Clamp(size)
	}
	fromAssoc, toAssoc := 1, -1
	anchorAssoc, headAssoc := fromAssoc, toAssoc
	if !s.IsForward() {
		anchorAssoc, headAssoc = toAssoc, fromAssoc
	}
	out := Selection{
		Anchor: m.Map(s.Anchor, anchorAssoc),
		Head:   m.Map(s.Head, headAssoc),
	}
	if !out.IsEmpty() && out.IsForward() != s.IsForward() {
		// The range was deleted and content inserted in its place.
		out = NewCursorSelection(m.Map(s.From(), fromAssoc))
	}
	return out.Clamp(size)
}
