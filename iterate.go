package quadtree

// Walk visits every non-empty leaf of n in depth-first pre-order, calling
// f once per leaf with its reconstructed position.
//
// Position tracking relies on a single invariant: entering a branch
// pushes a 0, and finishing any node (leaf, empty, or an entire branch
// subtree) advances the position by one step at whatever level that node
// sits at. advance() already implements the cascade on its own — it
// increments the current slot, or pops and increments the parent's slot
// if the current one just overflowed past 3 — so only the true terminals
// (leaves and empties) need to call it explicitly; a branch's own
// "slot" is advanced as a side effect of its last child's terminal
// advancing, which is exactly the position Walk needs when it moves on
// to the branch's next sibling.
func Walk(n Node, f func(Leaf)) {
	var pos Position
	var rec func(Node)
	rec = func(n Node) {
		switch t := n.(type) {
		case EmptyNode:
			pos.Advance()
		case *LeafNode:
			f(Leaf{Data: t.Data, Pos: pos})
			pos.Advance()
		case *BranchNode:
			pos.Push(0)
			for _, c := range t.Children {
				rec(c)
			}
		}
	}
	rec(n)
}

// Leaves collects the result of Walk into a slice, for callers that don't
// need streaming/callback style.
func Leaves(n Node) []Leaf {
	var out []Leaf
	Walk(n, func(l Leaf) { out = append(out, l) })
	return out
}

// Diff computes the tree of changes needed to turn old into newTree: a
// region is Empty wherever newTree and old agree (same leaf data, or both
// empty), and carries a verbatim copy of newTree's subtree wherever they
// disagree, including wherever the two trees have a different shape at
// that node (a leaf in one, a branch in the other) — in that case the
// whole subtree is considered changed, since there's nothing finer to
// compare against.
//
// A branch all of whose diffed children collapse to Empty is itself
// collapsed to a single Empty, so that an unchanged subtree costs one
// step in the resulting walk rather than one step per former leaf.
func Diff(newTree, old Node) Node {
	switch n := newTree.(type) {
	case EmptyNode:
		return EmptyNode{}
	case *LeafNode:
		if o, ok := old.(*LeafNode); ok && o.Data == n.Data {
			return EmptyNode{}
		}
		return n
	case *BranchNode:
		o, ok := old.(*BranchNode)
		if !ok {
			return n
		}
		var children [4]Node
		allEmpty := true
		for i := 0; i < 4; i++ {
			c := Diff(n.Children[i], o.Children[i])
			children[i] = c
			if _, empty := c.(EmptyNode); !empty {
				allEmpty = false
			}
		}
		if allEmpty {
			return EmptyNode{}
		}
		return &BranchNode{Children: children}
	default:
		return EmptyNode{}
	}
}
