package tree

import (
	"fmt"

	"github.com/behrlich/qre-solver/pkg/action"
)

const kuhnAnte = 1

// kuhnCardName returns the display name of a Kuhn card: 0=J, 1=Q, 2=K.
func kuhnCardName(c int) string {
	switch c {
	case 0:
		return "J"
	case 1:
		return "Q"
	case 2:
		return "K"
	default:
		return "?"
	}
}

func kuhnInfoSetID(player, card int, history string) string {
	return fmt.Sprintf("P%d:%s:%s", player, kuhnCardName(card), history)
}

// BuildKuhnTree constructs the standard 3-card Kuhn poker game tree: both
// players ante 1, root deals each of the 6 ordered private-card pairs with
// probability 1/6, and betting follows check/bet/call/fold. There are
// exactly 12 information sets.
func BuildKuhnTree() *TreeNode {
	root := NewChanceNode(2*kuhnAnte, "", NoCard, NoCard, NoCard)

	dealProb := 1.0 / 6.0
	for p0 := 0; p0 < 3; p0++ {
		for p1 := 0; p1 < 3; p1++ {
			if p0 == p1 {
				continue
			}
			actions := kuhnActions(action.Check, action.Bet)
			child := NewPlayerNode(kuhnInfoSetID(0, p0, ""), 0, 2*kuhnAnte, "", p0, p1, NoCard, actions)
			kuhnBuildSubtree(child, "", p0, p1, 2*kuhnAnte)
			root.AddEdge(p0*10+p1, dealProb, child)
		}
	}
	return root
}

func kuhnActions(types ...action.Type) []action.Action {
	actions := make([]action.Action, len(types))
	for i, t := range types {
		actions[i] = action.Action{Type: t}
	}
	return actions
}

// kuhnBuildSubtree appends node's children, one per node.Actions entry, in
// order. node.ActingPlayer is the player choosing among those actions.
func kuhnBuildSubtree(node *TreeNode, history string, p0Card, p1Card, pot int) {
	toAct := node.ActingPlayer
	for _, a := range node.Actions {
		newHistory := history + string(a.Type.Char())

		var child *TreeNode
		switch {
		case toAct == 0 && a.Type == action.Check:
			// P0 checks; P1 acts next with check/bet.
			child = kuhnPlayerChild(1, newHistory, p0Card, p1Card, pot, action.Check, action.Bet)
			kuhnBuildSubtree(child, newHistory, p0Card, p1Card, pot)
		case toAct == 0 && a.Type == action.Bet:
			// P0 bets 1; P1 must respond with call/fold.
			child = kuhnPlayerChild(1, newHistory, p0Card, p1Card, pot+1, action.Call, action.Fold)
			kuhnBuildSubtree(child, newHistory, p0Card, p1Card, pot+1)
		case toAct == 1 && a.Type == action.Check:
			// P1 checks after P0 checked: showdown.
			child = kuhnMakeShowdown(p0Card, p1Card, pot, newHistory)
		case toAct == 1 && a.Type == action.Bet:
			// P1 bets 1 after P0 checked; P0 must respond with call/fold.
			child = kuhnPlayerChild(0, newHistory, p0Card, p1Card, pot+1, action.Call, action.Fold)
			kuhnBuildSubtree(child, newHistory, p0Card, p1Card, pot+1)
		case a.Type == action.Call:
			// Call of the outstanding bet: showdown.
			child = kuhnMakeShowdown(p0Card, p1Card, pot+1, newHistory)
		case a.Type == action.Fold:
			// toAct folds to the outstanding bet.
			child = kuhnMakeFold(toAct, pot, newHistory, p0Card, p1Card)
		}

		node.AddChild(child)
	}
}

func kuhnPlayerChild(player int, history string, p0Card, p1Card, pot int, types ...action.Type) *TreeNode {
	card := p0Card
	if player == 1 {
		card = p1Card
	}
	return NewPlayerNode(kuhnInfoSetID(player, card, history), player, pot, history, p0Card, p1Card, NoCard, kuhnActions(types...))
}

func kuhnMakeShowdown(p0Card, p1Card, pot int, history string) *TreeNode {
	var payoff float64
	switch {
	case p0Card > p1Card:
		payoff = float64(pot) / 2.0
	case p0Card < p1Card:
		payoff = -float64(pot) / 2.0
	}
	return NewTerminalNode(pot, history, p0Card, p1Card, NoCard, payoff)
}

// kuhnMakeFold pays +-1 to the non-folder regardless of whether the fold
// follows a single bet (pot 3) or a check-then-bet line (pot also 3): the
// payoff ignores the pot size, matching the source convention.
func kuhnMakeFold(folder, pot int, history string, p0Card, p1Card int) *TreeNode {
	payoff := 1.0
	if folder == 0 {
		payoff = -1.0
	}
	return NewTerminalNode(pot, history, p0Card, p1Card, NoCard, payoff)
}
