package solver

import (
	"github.com/behrlich/qre-solver/pkg/tree"
)

// CFR implements vanilla Counterfactual Regret Minimization over the
// tagged-variant game tree, used as a cross-validation oracle for the
// Newton/QRE solver.
type CFR struct {
	profile *StrategyProfile
}

// NewCFR creates a new CFR solver.
func NewCFR() *CFR {
	return &CFR{
		profile: NewStrategyProfile(),
	}
}

// Train runs CFR for the specified number of iterations and returns the
// resulting strategy profile.
func (c *CFR) Train(root *tree.TreeNode, iterations int) *StrategyProfile {
	for i := 0; i < iterations; i++ {
		c.Iterate(root)
	}
	return c.profile
}

// Iterate runs a single CFR iteration.
func (c *CFR) Iterate(root *tree.TreeNode) {
	c.cfr(root, 1.0, 1.0)
}

// cfr recursively traverses the game tree and updates regrets. Returns
// the expected value to each player at node under the current
// regret-matching strategy.
func (c *CFR) cfr(node *tree.TreeNode, reachProb0, reachProb1 float64) [2]float64 {
	switch node.Kind {
	case tree.Terminal:
		return [2]float64{node.Payoff, -node.Payoff}

	case tree.Chance:
		nodeValue := [2]float64{0, 0}
		for _, edge := range node.Edges {
			childValue := c.cfr(edge.Child, reachProb0*edge.Probability, reachProb1*edge.Probability)
			nodeValue[0] += edge.Probability * childValue[0]
			nodeValue[1] += edge.Probability * childValue[1]
		}
		return nodeValue
	}

	player := node.ActingPlayer
	strat := c.profile.GetOrCreate(node.InfoSetID, node.Actions)
	currentStrategy := strat.GetStrategy()

	numActions := len(node.Actions)
	actionValues := make([][2]float64, numActions)
	nodeValue := [2]float64{0, 0}

	for i, child := range node.Children {
		var childValue [2]float64
		if player == 0 {
			childValue = c.cfr(child, reachProb0*currentStrategy[i], reachProb1)
		} else {
			childValue = c.cfr(child, reachProb0, reachProb1*currentStrategy[i])
		}

		actionValues[i] = childValue
		nodeValue[0] += currentStrategy[i] * childValue[0]
		nodeValue[1] += currentStrategy[i] * childValue[1]
	}

	regrets := make([]float64, numActions)
	cfValue := nodeValue[player]
	for i := 0; i < numActions; i++ {
		regrets[i] = actionValues[i][player] - cfValue
	}

	// Regret is scaled by the counterfactual reach probability: the
	// probability of reaching this node excluding the acting player's
	// own contribution.
	cfReachProb := reachProb1
	ownReachProb := reachProb0
	if player == 1 {
		cfReachProb = reachProb0
		ownReachProb = reachProb1
	}

	scaledRegrets := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		scaledRegrets[i] = regrets[i] * cfReachProb
	}
	strat.UpdateRegrets(scaledRegrets)
	strat.UpdateStrategy(currentStrategy, ownReachProb)

	return nodeValue
}

// GetProfile returns the current strategy profile.
func (c *CFR) GetProfile() *StrategyProfile {
	return c.profile
}
