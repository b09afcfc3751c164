// Package list restructures list nesting: sinking items into a sublist,
// lifting them back out, splitting items, and converting, wrapping or
// toggling lists.
//
// Every operation takes a state and the schema types it works with and
// returns the transaction that performs it, or false when it does not
// apply. Lists are recognized by content: a node is a list when its first
// child is of the item type, so any list-like node types work. Returned
// transactions have been checked; a false result never leaves anything
// half-built for the caller to apply.
package list
