package model

import "fmt"

// Slice is a piece of a document. OpenStart and OpenEnd count how many
// levels of ancestors were cut through at the start and the end, so a slice
// of two paragraphs taken from the middle of the first to the middle of the
// second has both depths set to 1.
type Slice struct {
	Content   Fragment
	OpenStart int
	OpenEnd   int
}

// EmptySlice is the slice without content.
var EmptySlice = Slice{}

// NewSlice creates a slice.
func NewSlice(content Fragment, openStart, openEnd int) Slice {
	return Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// Size returns the number of positions the slice inserts.
func (s Slice) Size() int {
	return s.Content.Size() - s.OpenStart - s.OpenEnd
}

// Eq reports whether two slices are equal.
func (s Slice) Eq(other Slice) bool {
	return s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd && s.Content.Eq(other.Content)
}

// InsertAt inserts a fragment at a position relative to the slice's
// content start. It returns false when the fragment does not fit.
func (s Slice) InsertAt(pos int, f Fragment) (Slice, bool) {
	content, ok := insertInto(s.Content, pos+s.OpenStart, f, nil)
	if !ok {
		return Slice{}, false
	}
	return Slice{Content: content, OpenStart: s.OpenStart, OpenEnd: s.OpenEnd}, true
}

// String renders the slice for debugging.
func (s Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content.String(), s.OpenStart, s.OpenEnd)
}

func insertInto(content Fragment, dist int, insert Fragment, parent *Node) (Fragment, bool) {
	index, offset := content.FindIndex(dist, -1)
	child := content.MaybeChild(index)
	if offset == dist || child == nil || child.IsText() {
		if parent != nil && !parent.CanReplace(index, index, insert) {
			return Fragment{}, false
		}
		return content.Cut(0, dist).Append(insert).Append(content.Cut(dist, content.Size())), true
	}
	inner, ok := insertInto(child.content, dist-offset-1, insert, nil)
	if !ok {
		return Fragment{}, false
	}
	return content.ReplaceChild(index, child.Copy(inner)), true
}

// RemoveBetween removes the flat range [from, to) of the slice, positions
// relative to the slice's content start.
func (s Slice) RemoveBetween(from, to int) (Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return Slice{}, err
	}
	return Slice{Content: content, OpenStart: s.OpenStart, OpenEnd: s.OpenEnd}, nil
}

func removeRange(content Fragment, from, to int) (Fragment, error) {
	index, offset := content.FindIndex(from, -1)
	child := content.MaybeChild(index)
	indexTo, offsetTo := content.FindIndex(to, -1)
	if offset == from || child == nil || child.IsText() {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return Fragment{}, replaceErrorf("removing non-flat range")
		}
		return content.Cut(0, from).Append(content.Cut(to, content.Size())), nil
	}
	if index != indexTo {
		return Fragment{}, replaceErrorf("removing non-flat range")
	}
	inner, err := removeRange(child.content, from-offset-1, to-offset-1)
	if err != nil {
		return Fragment{}, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}
