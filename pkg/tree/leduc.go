package tree

import (
	"fmt"

	"github.com/behrlich/qre-solver/pkg/action"
)

const (
	leducAnte      = 1
	leducSmallBet  = 2
	leducBigBet    = 4
	leducMaxRaises = 2
	leducNumCards  = 6 // 3 ranks x 2 suits
)

func leducCardRank(c int) int { return c / 2 }
func leducCardSuit(c int) int { return c % 2 }

func leducRankName(rank int) string {
	switch rank {
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

// leducInfoSetID elides suit: only the card rank distinguishes strategy.
// publicCard == NoCard renders as "-".
func leducInfoSetID(player, privateCard, publicCard int, history string, round int) string {
	pub := "-"
	if publicCard != NoCard {
		pub = leducRankName(leducCardRank(publicCard))
	}
	return fmt.Sprintf("P%d:%s:%s:R%d:%s", player, leducRankName(leducCardRank(privateCard)), pub, round, history)
}

// BuildLeducTree constructs the 6-card Leduc poker game tree: ante 1,
// round 1 small-bet betting (max 2 raises), a public-card deal, then
// round 2 big-bet betting (max 2 raises). Showdowns favor a pair over no
// pair, then the higher private rank; ties split the pot. Fold terminals
// pay the non-folder pot/2.
func BuildLeducTree() *TreeNode {
	root := NewChanceNode(2*leducAnte, "", NoCard, NoCard, NoCard)

	dealProb := 1.0 / 30.0
	for p0 := 0; p0 < leducNumCards; p0++ {
		for p1 := 0; p1 < leducNumCards; p1++ {
			if p0 == p1 {
				continue
			}
			actions := leducActions(action.Check, action.Bet)
			child := NewPlayerNode(leducInfoSetID(0, p0, NoCard, "", 1), 0, 2*leducAnte, "", p0, p1, NoCard, actions)
			leducBuildBettingRound(child, "", p0, p1, NoCard, 2*leducAnte, 0, leducMaxRaises, 1, leducSmallBet, true)
			root.AddEdge(p0*10+p1, dealProb, child)
		}
	}
	return root
}

func leducActions(types ...action.Type) []action.Action {
	actions := make([]action.Action, len(types))
	for i, t := range types {
		actions[i] = action.Action{Type: t}
	}
	return actions
}

func leducOpponent(player int) int {
	if player == 0 {
		return 1
	}
	return 0
}

func leducCardFor(player, p0Card, p1Card int) int {
	if player == 0 {
		return p0Card
	}
	return p1Card
}

// leducBuildBettingRound appends node's children, one per node.Actions
// entry. firstOfRound marks that node is the first decision of this
// betting round: a Check from here passes to the opponent's matching
// decision, rather than ending the round, mirroring the first-to-act
// check in the source's betting-round construction.
func leducBuildBettingRound(
	node *TreeNode,
	history string,
	p0Card, p1Card, publicCard int,
	pot, toCall, raisesLeft, round, betSize int,
	firstOfRound bool,
) {
	current := node.ActingPlayer
	opponent := leducOpponent(current)

	for _, a := range node.Actions {
		newHistory := history + string(a.Type.Char())

		var child *TreeNode
		switch a.Type {
		case action.Fold:
			child = leducMakeFold(current, pot, newHistory, p0Card, p1Card, publicCard)

		case action.Check:
			if firstOfRound {
				// Opponent faces the same check/bet choice.
				child = leducPlayerChild(opponent, newHistory, p0Card, p1Card, publicCard, pot, round, leducCardFor(opponent, p0Card, p1Card), action.Check, action.Bet)
				leducBuildBettingRound(child, newHistory, p0Card, p1Card, publicCard, pot, 0, raisesLeft, round, betSize, false)
			} else if round == 1 {
				child = leducDealPublicCard(p0Card, p1Card, pot, newHistory)
			} else {
				child = leducMakeShowdown(p0Card, p1Card, publicCard, pot, newHistory)
			}

		case action.Bet:
			newPot := pot + betSize
			types := []action.Type{action.Fold, action.Call}
			if raisesLeft > 0 {
				types = append(types, action.Raise)
			}
			child = leducPlayerChild(opponent, newHistory, p0Card, p1Card, publicCard, newPot, round, leducCardFor(opponent, p0Card, p1Card), types...)
			leducBuildBettingRound(child, newHistory, p0Card, p1Card, publicCard, newPot, betSize, raisesLeft, round, betSize, false)

		case action.Call:
			newPot := pot + toCall
			if round == 1 {
				child = leducDealPublicCard(p0Card, p1Card, newPot, newHistory)
			} else {
				child = leducMakeShowdown(p0Card, p1Card, publicCard, newPot, newHistory)
			}

		case action.Raise:
			newPot := pot + toCall + betSize
			newRaises := raisesLeft - 1
			types := []action.Type{action.Fold, action.Call}
			if newRaises > 0 {
				types = append(types, action.Raise)
			}
			child = leducPlayerChild(opponent, newHistory, p0Card, p1Card, publicCard, newPot, round, leducCardFor(opponent, p0Card, p1Card), types...)
			leducBuildBettingRound(child, newHistory, p0Card, p1Card, publicCard, newPot, betSize, newRaises, round, betSize, false)
		}

		node.AddChild(child)
	}
}

func leducPlayerChild(player int, history string, p0Card, p1Card, publicCard, pot, round, card int, types ...action.Type) *TreeNode {
	return NewPlayerNode(leducInfoSetID(player, card, publicCard, history, round), player, pot, history, p0Card, p1Card, publicCard, leducActions(types...))
}

// leducDealPublicCard inserts a chance node dealing one of the 4 remaining
// cards uniformly, then builds round-2 betting under each, with P0 acting
// first.
func leducDealPublicCard(p0Card, p1Card, pot int, history string) *TreeNode {
	chance := NewChanceNode(pot, history, p0Card, p1Card, NoCard)

	remaining := leducNumCards - 2
	dealProb := 1.0 / float64(remaining)

	for pub := 0; pub < leducNumCards; pub++ {
		if pub == p0Card || pub == p1Card {
			continue
		}
		roundHistory := history + "|"
		actions := leducActions(action.Check, action.Bet)
		child := NewPlayerNode(leducInfoSetID(0, p0Card, pub, roundHistory, 2), 0, pot, roundHistory, p0Card, p1Card, pub, actions)
		leducBuildBettingRound(child, roundHistory, p0Card, p1Card, pub, pot, 0, leducMaxRaises, 2, leducBigBet, true)
		chance.AddEdge(pub, dealProb, child)
	}
	return chance
}

func leducCompareHands(p0Card, p1Card, publicCard int) int {
	p0Rank, p1Rank, pubRank := leducCardRank(p0Card), leducCardRank(p1Card), leducCardRank(publicCard)
	p0Pair, p1Pair := p0Rank == pubRank, p1Rank == pubRank

	switch {
	case p0Pair && !p1Pair:
		return 1
	case !p0Pair && p1Pair:
		return -1
	case p0Rank > p1Rank:
		return 1
	case p0Rank < p1Rank:
		return -1
	default:
		return 0
	}
}

func leducMakeShowdown(p0Card, p1Card, publicCard, pot int, history string) *TreeNode {
	var payoff float64
	switch leducCompareHands(p0Card, p1Card, publicCard) {
	case 1:
		payoff = float64(pot) / 2.0
	case -1:
		payoff = -float64(pot) / 2.0
	}
	return NewTerminalNode(pot, history, p0Card, p1Card, publicCard, payoff)
}

func leducMakeFold(folder, pot int, history string, p0Card, p1Card, publicCard int) *TreeNode {
	payoff := float64(pot) / 2.0
	if folder == 0 {
		payoff = -payoff
	}
	return NewTerminalNode(pot, history, p0Card, p1Card, publicCard, payoff)
}
