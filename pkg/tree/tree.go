package tree

// Visitor is called once per node during a pre-order Walk.
type Visitor func(*TreeNode)

// Walk traverses the tree in pre-order, visiting every Chance, Player, and
// Terminal node exactly once, recursing only through owned children.
func Walk(n *TreeNode, visit Visitor) {
	if n == nil {
		return
	}
	visit(n)
	switch n.Kind {
	case Chance:
		for _, e := range n.Edges {
			Walk(e.Child, visit)
		}
	case Player:
		for _, c := range n.Children {
			Walk(c, visit)
		}
	case Terminal:
	}
}

// Stats counts nodes of each kind in a tree (diagnostic / CLI reporting).
type Stats struct {
	TotalNodes    int
	ChanceNodes   int
	PlayerNodes   int
	TerminalNodes int
	MaxDepth      int
}

// ComputeStats walks the tree once and tallies node counts by kind.
func ComputeStats(root *TreeNode) Stats {
	var s Stats
	walkDepth(root, 0, &s)
	return s
}

func walkDepth(n *TreeNode, depth int, s *Stats) {
	if n == nil {
		return
	}
	s.TotalNodes++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	switch n.Kind {
	case Chance:
		s.ChanceNodes++
		for _, e := range n.Edges {
			walkDepth(e.Child, depth+1, s)
		}
	case Player:
		s.PlayerNodes++
		for _, c := range n.Children {
			walkDepth(c, depth+1, s)
		}
	case Terminal:
		s.TerminalNodes++
	}
}
