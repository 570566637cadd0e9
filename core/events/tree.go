package events

// Special Node.Item values.
const (
	// Root marks the synthetic root node.
	Root = -1

	// Gap marks a leaf covering positions no item is open over at that depth.
	Gap = -2
)

// Node is one node of a nesting tree.
type Node struct {
	// Item is the item index, Root or Gap.
	Item int

	// Start and End delimit the positions the node covers.
	Start int
	End   int

	Children []*Node
}

// IsGap returns true for plain leaves.
func (n *Node) IsGap() bool {
	return n.Item == Gap
}

// Walk calls fn for n and every descendant in depth-first pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Nest builds the nesting tree for items over [0, length).
func Nest(items []Item, length int) *Node {
	return BuildNestedTree(ToEvents(items), length)
}

// BuildNestedTree folds an event stream into a tree covering [0, length).
//
// Positions between events become Gap leaves under the innermost open item.
// A close for an item that is not innermost closes the items opened after it
// and re-opens them as new fragments at the same position, so the result is
// always well-nested; a partially overlapping item may therefore appear as
// more than one node. Items still open at length are closed there. Events
// past length are clamped.
func BuildNestedTree(evs []Event, length int) *Node {
	root := &Node{Item: Root, Start: 0, End: length}
	stack := []*Node{root}
	cur := 0

	gap := func(to int) {
		to = min(to, length)
		if to > cur {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, &Node{Item: Gap, Start: cur, End: to})
			cur = to
		}
	}

	open := func(item, pos int) {
		top := stack[len(stack)-1]
		n := &Node{Item: item, Start: pos}
		top.Children = append(top.Children, n)
		stack = append(stack, n)
	}

	pop := func(pos int) *Node {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.End = pos
		if n.Start >= n.End && len(n.Children) == 0 {
			parent := stack[len(stack)-1]
			parent.Children = parent.Children[:len(parent.Children)-1]
		}
		return n
	}

	for _, ev := range evs {
		pos := min(max(ev.Pos, cur), length)
		gap(pos)

		switch ev.Kind {
		case Open:
			open(ev.Item, pos)
		case Close:
			at := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Item == ev.Item {
					at = i
					break
				}
			}
			if at < 0 {
				continue
			}
			var reopen []int
			for len(stack)-1 > at {
				reopen = append(reopen, pop(pos).Item)
			}
			pop(pos)
			for i := len(reopen) - 1; i >= 0; i-- {
				open(reopen[i], pos)
			}
		}
	}

	gap(length)
	for len(stack) > 1 {
		pop(length)
	}
	return root
}
