package tree

import (
	"testing"

	"github.com/behrlich/qre-solver/pkg/action"
)

func TestNewChanceNode_NoEdgesUntilAdded(t *testing.T) {
	n := NewChanceNode(10, "", NoCard, NoCard, NoCard)
	if n.Kind != Chance {
		t.Fatalf("expected Kind=Chance, got %v", n.Kind)
	}
	if len(n.Edges) != 0 {
		t.Fatalf("expected no edges on a freshly built chance node, got %d", len(n.Edges))
	}
}

func TestAddEdge_SumsToOne(t *testing.T) {
	n := NewChanceNode(10, "", NoCard, NoCard, NoCard)
	leaf := NewTerminalNode(10, "", 0, 1, NoCard, 0)

	n.AddEdge(0, 0.5, leaf)
	n.AddEdge(1, 0.5, leaf)

	var sum float64
	for _, e := range n.Edges {
		sum += e.Probability
	}
	if sum != 1.0 {
		t.Errorf("expected edge probabilities to sum to 1, got %v", sum)
	}
}

func TestNewPlayerNode_ChildrenParallelToActions(t *testing.T) {
	actions := []action.Action{{Type: action.Check}, {Type: action.Bet, Amount: 1}}
	n := NewPlayerNode("P0:J:", 0, 2, "", 0, 1, NoCard, actions)

	if n.Kind != Player {
		t.Fatalf("expected Kind=Player, got %v", n.Kind)
	}

	n.AddChild(NewTerminalNode(2, "c", 0, 1, NoCard, 0))
	n.AddChild(NewTerminalNode(3, "b", 0, 1, NoCard, 1))

	if len(n.Children) != len(n.Actions) {
		t.Fatalf("expected one child per action, got %d children for %d actions", len(n.Children), len(n.Actions))
	}
}

func TestNewTerminalNode_CarriesSignedPayoff(t *testing.T) {
	n := NewTerminalNode(4, "bc", 2, 0, NoCard, -1.5)
	if n.Kind != Terminal {
		t.Fatalf("expected Kind=Terminal, got %v", n.Kind)
	}
	if n.Payoff != -1.5 {
		t.Errorf("expected payoff -1.5, got %v", n.Payoff)
	}
}

func TestString_DoesNotPanicForAnyKind(t *testing.T) {
	nodes := []*TreeNode{
		NewChanceNode(2, "", NoCard, NoCard, NoCard),
		NewPlayerNode("P0:J:", 0, 2, "", 0, 1, NoCard, []action.Action{{Type: action.Check}}),
		NewTerminalNode(2, "cc", 0, 1, NoCard, 1),
	}
	for _, n := range nodes {
		if n.String() == "" {
			t.Errorf("expected non-empty String() for kind %v", n.Kind)
		}
	}
}
