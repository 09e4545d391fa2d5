package solver

import (
	"math"

	"github.com/behrlich/qre-solver/pkg/action"
	"github.com/behrlich/qre-solver/pkg/strategy"
	"github.com/behrlich/qre-solver/pkg/tree"
)

// override pins a single information set to a deterministic action,
// replacing sigma's distribution there for the duration of one traversal.
type override struct {
	infoSetID string
	action    action.Action
}

// ExpectedValue computes player 0's expected payoff under sigma by a
// single recursive traversal that accumulates reach probability as three
// independent factors: P0's actions, P1's actions, and chance.
func ExpectedValue(root *tree.TreeNode, sigma *strategy.Strategy) (float64, error) {
	return evRecursive(root, sigma, 1.0, 1.0, 1.0, nil)
}

// ExpectedValueWithOverride is ExpectedValue except that at every node whose
// info-set id equals infoSetID, sigma's distribution is replaced by a
// degenerate one putting mass 1 on a.
func ExpectedValueWithOverride(root *tree.TreeNode, sigma *strategy.Strategy, infoSetID string, a action.Action) (float64, error) {
	return evRecursive(root, sigma, 1.0, 1.0, 1.0, &override{infoSetID: infoSetID, action: a})
}

func evRecursive(node *tree.TreeNode, sigma *strategy.Strategy, reachP0, reachP1, reachChance float64, ov *override) (float64, error) {
	if node == nil {
		return 0, nil
	}

	switch node.Kind {
	case tree.Terminal:
		return reachP0 * reachP1 * reachChance * node.Payoff, nil

	case tree.Chance:
		total := 0.0
		for _, edge := range node.Edges {
			v, err := evRecursive(edge.Child, sigma, reachP0, reachP1, reachChance*edge.Probability, ov)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil

	default: // Player
		actionProbs, err := playerActionProbs(node, sigma, ov)
		if err != nil {
			return 0, err
		}

		total := 0.0
		for i, child := range node.Children {
			p := actionProbs[i]
			newReachP0, newReachP1 := reachP0, reachP1
			if node.ActingPlayer == 0 {
				newReachP0 *= p
			} else {
				newReachP1 *= p
			}
			v, err := evRecursive(child, sigma, newReachP0, newReachP1, reachChance, ov)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	}
}

// playerActionProbs returns sigma's probabilities at node, or a
// degenerate distribution on ov.action if ov pins this node's info set.
func playerActionProbs(node *tree.TreeNode, sigma *strategy.Strategy, ov *override) ([]float64, error) {
	if ov != nil && ov.infoSetID == node.InfoSetID {
		probs := make([]float64, len(node.Actions))
		for i, a := range node.Actions {
			if a.Type == ov.action.Type {
				probs[i] = 1.0
				break
			}
		}
		return probs, nil
	}
	return sigma.Probs(node.InfoSetID)
}

// ExpectedUtility computes EU(I, a): the signed expected payoff to the
// acting player at info set I when they deterministically play a and all
// other decisions follow sigma. Negated for player 1 under the zero-sum
// convention.
func ExpectedUtility(root *tree.TreeNode, sigma *strategy.Strategy, infoSetID string, a action.Action, actingPlayer int) (float64, error) {
	ev, err := ExpectedValueWithOverride(root, sigma, infoSetID, a)
	if err != nil {
		return 0, err
	}
	if actingPlayer == 1 {
		ev = -ev
	}
	return ev, nil
}

// AllExpectedUtilities produces EU(I, a) for every legal action at every
// information set in index, one traversal per (info set, action) pair.
func AllExpectedUtilities(root *tree.TreeNode, sigma *strategy.Strategy, index *tree.InfoSetIndex) (map[string]map[action.Type]float64, error) {
	result := make(map[string]map[action.Type]float64, index.NumInfoSets())
	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSetAt(i)
		row := make(map[action.Type]float64, len(is.Actions))
		for _, a := range is.Actions {
			eu, err := ExpectedUtility(root, sigma, is.ID, a, is.Player)
			if err != nil {
				return nil, err
			}
			row[a.Type] = eu
		}
		result[is.ID] = row
	}
	return result, nil
}

// BestResponseValue returns brPlayer's reach-weighted value when, at
// brPlayer's nodes, the child maximum is taken and, at opponent nodes,
// sigma weights the children. The maximum is taken node by node, not per
// information set, so the chosen action may depend on cards brPlayer
// cannot see; the result can exceed what any strategy over brPlayer's
// information sets secures against sigma.
func BestResponseValue(root *tree.TreeNode, sigma *strategy.Strategy, brPlayer int) (float64, error) {
	return brRecursive(root, sigma, brPlayer, 1.0, 1.0)
}

func brRecursive(node *tree.TreeNode, sigma *strategy.Strategy, brPlayer int, reachOpponent, reachChance float64) (float64, error) {
	if node == nil {
		return 0, nil
	}

	switch node.Kind {
	case tree.Terminal:
		payoff := node.Payoff
		if brPlayer == 1 {
			payoff = -payoff
		}
		return reachOpponent * reachChance * payoff, nil

	case tree.Chance:
		total := 0.0
		for _, edge := range node.Edges {
			v, err := brRecursive(edge.Child, sigma, brPlayer, reachOpponent, reachChance*edge.Probability)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil

	default: // Player
		if node.ActingPlayer == brPlayer {
			best := math.Inf(-1)
			for _, child := range node.Children {
				v, err := brRecursive(child, sigma, brPlayer, reachOpponent, reachChance)
				if err != nil {
					return 0, err
				}
				if v > best {
					best = v
				}
			}
			return best, nil
		}

		probs, err := sigma.Probs(node.InfoSetID)
		if err != nil {
			return 0, err
		}
		total := 0.0
		for i, child := range node.Children {
			v, err := brRecursive(child, sigma, brPlayer, reachOpponent*probs[i], reachChance)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	}
}

// Exploitability is (BR_value_P0 + BR_value_P1) / 2, using the node-by-node
// maximum of BestResponseValue. It does not fall to zero at a Nash
// equilibrium: for Kuhn poker it is about 0.28 there.
func Exploitability(root *tree.TreeNode, sigma *strategy.Strategy) (float64, error) {
	br0, err := BestResponseValue(root, sigma, 0)
	if err != nil {
		return 0, err
	}
	br1, err := BestResponseValue(root, sigma, 1)
	if err != nil {
		return 0, err
	}
	return (br0 + br1) / 2.0, nil
}
