package model

// replace implements Node.Replace. The slice's open start must not be
// deeper than the start position, and both sides must agree on the depth
// at which the slice's content lands.
func replace(from, to *ResolvedPos, s Slice) (*Node, error) {
	if s.OpenStart > from.Depth {
		return nil, replaceErrorf("inserted content deeper than insertion position")
	}
	if from.Depth-s.OpenStart != to.Depth-s.OpenEnd {
		return nil, replaceErrorf("inconsistent open depths")
	}
	return replaceOuter(from, to, s, 0)
}

func replaceOuter(from, to *ResolvedPos, s Slice, depth int) (*Node, error) {
	index := from.Index(depth)
	node := from.Node(depth)
	switch {
	case index == to.Index(depth) && depth < from.Depth-s.OpenStart:
		inner, err := replaceOuter(from, to, s, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.content.ReplaceChild(index, inner)), nil
	case s.Content.Size() == 0:
		content, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	case s.OpenStart == 0 && s.OpenEnd == 0 && from.Depth == depth && to.Depth == depth:
		parent := from.Parent()
		content := parent.content
		return closeNode(parent, content.Cut(0, from.ParentOffset).Append(s.Content).Append(content.Cut(to.ParentOffset, content.Size())))
	default:
		start, end := prepareSliceForReplace(s, from)
		content, err := replaceThreeWay(from, start, end, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	}
}

func checkJoin(main, sub *Node) error {
	if !sub.typ.CompatibleContent(main.typ) {
		return replaceErrorf("cannot join " + sub.typ.name + " onto " + main.typ.name)
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

func addNode(child *Node, target []*Node) []*Node {
	last := len(target) - 1
	if last >= 0 && child.IsText() && child.SameMarkup(target[last]) {
		target[last] = child.WithText(target[last].text + child.text)
		return target
	}
	return append(target, child)
}

// addRange appends the children of the node at depth between start and
// end. A nil start means from the node's beginning, a nil end to its end.
func addRange(start, end *ResolvedPos, depth int, target []*Node) []*Node {
	ref := end
	if ref == nil {
		ref = start
	}
	node := ref.Node(depth)
	startIndex, endIndex := 0, node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			target = addNode(start.NodeAfter(), target)
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		target = addNode(node.Child(i), target)
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		target = addNode(end.NodeBefore(), target)
	}
	return target
}

func closeNode(node *Node, content Fragment) (*Node, error) {
	if err := node.typ.CheckContent(content); err != nil {
		return nil, &ReplaceError{Message: err.Error()}
	}
	return node.Copy(content), nil
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.Depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return Fragment{}, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return Fragment{}, err
		}
	}

	content := addRange(nil, from, depth, nil)
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return Fragment{}, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(closed, content)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := closeNode(openStart, inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(closed, content)
		}
		content = addRange(start, end, depth, content)
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := closeNode(openEnd, inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(closed, content)
		}
	}
	content = addRange(to, nil, depth, content)
	return FragmentFrom(content...), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (Fragment, error) {
	content := addRange(nil, from, depth, nil)
	if from.Depth > depth {
		typ, err := joinable(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := closeNode(typ, inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(closed, content)
	}
	content = addRange(to, nil, depth, content)
	return FragmentFrom(content...), nil
}

// prepareSliceForReplace wraps the slice content in copies of the
// ancestors of along so it can be resolved like a document.
func prepareSliceForReplace(s Slice, along *ResolvedPos) (start, end *ResolvedPos) {
	extra := along.Depth - s.OpenStart
	parent := along.Node(extra)
	node := parent.Copy(s.Content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(FragmentFrom(node))
	}
	return node.Resolve(s.OpenStart + extra), node.Resolve(node.content.Size() - s.OpenEnd - extra)
}
