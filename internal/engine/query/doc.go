// Package query answers questions about formatting at a position or over a
// range: which marks apply, how far a mark run extends, and which nodes
// enclose the content.
//
// Offsets address the character that starts at them, so a mark is "at" an
// offset when the inline node beginning at or containing that offset
// carries it. Range queries cover [from, to); an empty range falls back to
// the point rule.
//
// ActiveElements gathers marks and ancestors for a selection into the
// snapshot command status is computed from.
package query
