package query

import (
	"github.com/dshills/richcore/internal/model"
)

// AncestorsAt returns the ancestor chain at pos, outermost first.
func AncestorsAt(doc *model.Node, pos int) []model.Ancestor {
	return doc.Resolve(pos).Ancestors()
}

// AncestorsInRange returns the union of the ancestor chains at every
// offset in [from, to]. Nodes with the same type and attributes count
// once. The chain at from comes first, outermost first, followed by nodes
// entered later in document order.
func AncestorsInRange(doc *model.Node, from, to int) []model.Ancestor {
	from, to = normalize(doc, from, to)
	out := dedupe(AncestorsAt(doc, from))
	if from == to {
		return out
	}
	doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if n.IsLeaf() {
			return false
		}
		start, end := pos+1, pos+n.NodeSize()-1
		if start > to || end < from || containsEquivalent(out, n) {
			return true
		}
		out = append(out, model.Ancestor{
			Node:   n,
			Depth:  doc.Resolve(start).Depth,
			Before: pos,
			Start:  start,
			End:    end,
			After:  pos + n.NodeSize(),
		})
		return true
	})
	return out
}

// SharedAncestors returns the ancestors present at every offset in
// [from, to], outermost first.
func SharedAncestors(doc *model.Node, from, to int) []model.Ancestor {
	from, to = normalize(doc, from, to)
	chain := AncestorsAt(doc, from)
	out := chain[:0:0]
	for _, a := range chain {
		if a.End >= to {
			out = append(out, a)
		}
	}
	return out
}

// FindAncestor returns the innermost ancestor accepted by pred.
func FindAncestor(ancestors []model.Ancestor, pred func(*model.Node) bool) (model.Ancestor, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if pred(ancestors[i].Node) {
			return ancestors[i], true
		}
	}
	return model.Ancestor{}, false
}

// FindAncestorAt returns the innermost ancestor of pos accepted by pred.
func FindAncestorAt(doc *model.Node, pos int, pred func(*model.Node) bool) (model.Ancestor, bool) {
	return FindAncestor(AncestorsAt(doc, pos), pred)
}

// IsType matches nodes of the given type.
func IsType(nt *model.NodeType) func(*model.Node) bool {
	return func(n *model.Node) bool { return n.Type() == nt }
}

// InGroup matches nodes whose type belongs to the group.
func InGroup(group string) func(*model.Node) bool {
	return func(n *model.Node) bool { return n.Type().InGroup(group) }
}

func equivalent(a, b *model.Node) bool {
	return a.Type() == b.Type() && a.Attrs().Equal(b.Attrs())
}

func containsEquivalent(set []model.Ancestor, n *model.Node) bool {
	for _, a := range set {
		if equivalent(a.Node, n) {
			return true
		}
	}
	return false
}

func dedupe(chain []model.Ancestor) []model.Ancestor {
	out := chain[:0:0]
	for _, a := range chain {
		if !containsEquivalent(out, a.Node) {
			out = append(out, a)
		}
	}
	return out
}
