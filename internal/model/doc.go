// Package model provides the immutable document tree used by the editing
// engine.
//
// A document is a tree of Node values. Every node has a NodeType drawn from
// an explicitly constructed Schema, an attribute map, a set of marks, and
// either text (for text nodes) or a Fragment of children. Nodes are never
// mutated: every edit produces a new tree that shares unchanged subtrees with
// the old one.
//
// # Positions
//
// Positions are integer offsets into the flattened token stream of the
// document content. Each non-leaf node contributes an opening and a closing
// token around its content, each character of text contributes one token and
// each leaf node contributes one token:
//
//	doc(paragraph("ab"), paragraph("c"))
//	   0 <p> 1 a 2 b 3 </p> 4 <p> 5 c 6 </p> 7
//
// Resolve converts an offset into a ResolvedPos, the chain of ancestors from
// the root down to the immediate parent of the offset. Offsets are clamped
// into the document, never rejected.
//
// # Schema
//
// A Schema is built from a SchemaSpec. Node specs name a content expression
// such as "paragraph block*" or "list_item+", which is compiled into a
// deterministic ContentMatch automaton. The automaton validates content and
// finds wrapping chains (ContentMatch.FindWrapping) used by structural edits.
//
// # Replacing
//
// Node.Replace replaces a range of the document with a Slice, joining open
// nodes at both sides and validating the content of every node it closes.
// Failures are reported as *ReplaceError values wrapping ErrReplace.
package model
