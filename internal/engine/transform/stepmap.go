package transform

import "fmt"

// Flags describing what happened around a mapped position.
const (
	delBefore = 1 << iota
	delAfter
	delAcross
	delSide
)

// MapResult is the result of mapping a position, with information about
// content deleted around it.
type MapResult struct {
	// Pos is the mapped position.
	Pos     int
	delInfo int
}

// Deleted reports whether the content on the side the position was
// associated with was deleted.
func (r MapResult) Deleted() bool { return r.delInfo&delSide > 0 }

// DeletedBefore reports whether the token before the position was deleted.
func (r MapResult) DeletedBefore() bool { return r.delInfo&(delBefore|delAcross) > 0 }

// DeletedAfter reports whether the token after the position was deleted.
func (r MapResult) DeletedAfter() bool { return r.delInfo&(delAfter|delAcross) > 0 }

// DeletedAcross reports whether the position sat inside a deleted range.
func (r MapResult) DeletedAcross() bool { return r.delInfo&delAcross > 0 }

// StepMap describes the position changes made by one step as a list of
// [start, oldSize, newSize] triples in ascending order.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyStepMap is the map of a step that moves no positions.
var EmptyStepMap = StepMap{}

// NewStepMap creates a map from [start, oldSize, newSize] triples.
func NewStepMap(ranges ...int) StepMap {
	if len(ranges) == 0 {
		return EmptyStepMap
	}
	return StepMap{ranges: ranges}
}

// Map maps a position. Assoc decides which side the position sticks to when
// content is inserted at it: negative for before, positive for after.
func (m StepMap) Map(pos, assoc int) int {
	return m.mapPos(pos, assoc).Pos
}

// MapResult maps a position and reports deletions around it.
func (m StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc)
}

func (m StepMap) indexes() (oldIndex, newIndex int) {
	if m.inverted {
		return 2, 1
	}
	return 1, 2
}

func (m StepMap) mapPos(pos, assoc int) MapResult {
	diff := 0
	oldIndex, newIndex := m.indexes()
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize > 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			var del int
			switch pos {
			case start:
				del = delAfter
			case end:
				del = delBefore
			default:
				del = delAcross
			}
			if (assoc < 0 && pos != start) || (assoc >= 0 && pos != end) {
				del |= delSide
			}
			return MapResult{Pos: result, delInfo: del}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// ForEach calls fn for each changed range, giving its old and new extent.
func (m StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := m.indexes()
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart := start
		if m.inverted {
			oldStart = start - diff
		}
		newStart := start
		if !m.inverted {
			newStart = start + diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert returns the map that undoes this one.
func (m StepMap) Invert() StepMap {
	return StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// String renders the map for debugging.
func (m StepMap) String() string {
	prefix := ""
	if m.inverted {
		prefix = "-"
	}
	return fmt.Sprintf("%s%v", prefix, m.ranges)
}

// Mapping is a sequence of step maps applied in order.
type Mapping struct {
	maps []StepMap
}

// NewMapping creates a mapping from maps.
func NewMapping(maps ...StepMap) *Mapping {
	return &Mapping{maps: maps}
}

// Maps returns the step maps in order.
func (m *Mapping) Maps() []StepMap {
	return append([]StepMap(nil), m.maps...)
}

// Len returns the number of maps.
func (m *Mapping) Len() int {
	return len(m.maps)
}

// AppendMap adds a step map to the end of the mapping.
func (m *Mapping) AppendMap(sm StepMap) {
	m.maps = append(m.maps, sm)
}

// AppendMapping adds all maps of another mapping.
func (m *Mapping) AppendMapping(other *Mapping) {
	m.maps = append(m.maps, other.maps...)
}

// Slice returns a mapping of the maps in [from, to).
func (m *Mapping) Slice(from, to int) *Mapping {
	return &Mapping{maps: append([]StepMap(nil), m.maps[from:to]...)}
}

// Map maps a position through every map in order.
func (m *Mapping) Map(pos, assoc int) int {
	for _, sm := range m.maps {
		pos = sm.Map(pos, assoc)
	}
	return pos
}

// MapResult maps a position and reports whether it was deleted by any map.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	del := 0
	for _, sm := range m.maps {
		r := sm.MapResult(pos, assoc)
		pos = r.Pos
		del |= r.delInfo
	}
	return MapResult{Pos: pos, delInfo: del}
}
