package tree

import (
	"fmt"

	"github.com/behrlich/qre-solver/pkg/action"
)

// Kind is the tag of the GameNode discriminated union: a node is exactly
// one of Chance, Player, or Terminal.
type Kind uint8

const (
	Chance Kind = iota
	Player
	Terminal
)

// NoCard marks an absent private/public card identifier.
const NoCard = -1

// ChanceEdge is one outgoing edge of a Chance node: a dealt card and the
// probability nature assigns to it. Edge probabilities at a single Chance
// node sum to 1.
type ChanceEdge struct {
	Card        int
	Probability float64
	Child       *TreeNode
}

// TreeNode is the tagged-variant game node. It strictly owns
// its children: no parent pointers, no cycles, navigated only by
// recursion downward.
type TreeNode struct {
	Kind Kind

	Pot        int
	History    string
	P0Card     int
	P1Card     int
	PublicCard int

	// Chance-only.
	Edges []ChanceEdge

	// Player-only. Children is parallel to Actions: Children[i] is reached
	// by playing Actions[i].
	ActingPlayer int
	InfoSetID    string
	Actions      []action.Action
	Children     []*TreeNode

	// Terminal-only. Payoff is P0's signed payoff; zero-sum means P1's
	// payoff is its negation.
	Payoff float64
}

// NewChanceNode creates a chance node with no edges; callers append via
// AddEdge while building the tree.
func NewChanceNode(pot int, history string, p0Card, p1Card, publicCard int) *TreeNode {
	return &TreeNode{
		Kind:       Chance,
		Pot:        pot,
		History:    history,
		P0Card:     p0Card,
		P1Card:     p1Card,
		PublicCard: publicCard,
	}
}

// AddEdge appends a dealt-card edge to a Chance node.
func (n *TreeNode) AddEdge(card int, prob float64, child *TreeNode) {
	n.Edges = append(n.Edges, ChanceEdge{Card: card, Probability: prob, Child: child})
}

// NewPlayerNode creates a decision node for actingPlayer with the given
// legal actions. Children must be appended (via AddChild) in the same
// order as actions.
func NewPlayerNode(infoSetID string, actingPlayer, pot int, history string, p0Card, p1Card, publicCard int, actions []action.Action) *TreeNode {
	return &TreeNode{
		Kind:         Player,
		Pot:          pot,
		History:      history,
		P0Card:       p0Card,
		P1Card:       p1Card,
		PublicCard:   publicCard,
		ActingPlayer: actingPlayer,
		InfoSetID:    infoSetID,
		Actions:      actions,
		Children:     make([]*TreeNode, 0, len(actions)),
	}
}

// AddChild appends the next child in action order.
func (n *TreeNode) AddChild(child *TreeNode) {
	n.Children = append(n.Children, child)
}

// NewTerminalNode creates a terminal node carrying P0's signed payoff.
func NewTerminalNode(pot int, history string, p0Card, p1Card, publicCard int, payoffP0 float64) *TreeNode {
	return &TreeNode{
		Kind:       Terminal,
		Pot:        pot,
		History:    history,
		P0Card:     p0Card,
		P1Card:     p1Card,
		PublicCard: publicCard,
		Payoff:     payoffP0,
	}
}

func (n *TreeNode) String() string {
	switch n.Kind {
	case Terminal:
		return fmt.Sprintf("Terminal{pot=%d, payoff0=%.2f, history=%q}", n.Pot, n.Payoff, n.History)
	case Chance:
		return fmt.Sprintf("Chance{pot=%d, edges=%d, history=%q}", n.Pot, len(n.Edges), n.History)
	default:
		return fmt.Sprintf("Player{player=%d, pot=%d, actions=%d, infoset=%s}", n.ActingPlayer, n.Pot, len(n.Actions), n.InfoSetID)
	}
}
