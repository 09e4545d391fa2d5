package solver

import (
	"math"

	"github.com/behrlich/qre-solver/pkg/strategy"
	"github.com/behrlich/qre-solver/pkg/tree"
)

// QREResidual computes R(w) = sigma(w) - LogitBR_beta(sigma(w)) for a
// fixed game tree: the root-finding problem Newton solves to locate a
// Quantal Response Equilibrium. Beta lives on the residual,
// not on any process-wide state.
type QREResidual struct {
	Root  *tree.TreeNode
	Index *tree.InfoSetIndex
	Beta  float64
}

// NewQREResidual builds the residual for root at temperature beta,
// deriving the info-set index from root once.
func NewQREResidual(root *tree.TreeNode, beta float64) *QREResidual {
	infoSets := tree.GetInfoSets(root)
	return &QREResidual{
		Root:  root,
		Index: tree.NewInfoSetIndex(infoSets),
		Beta:  beta,
	}
}

// Dim is the total strategy dimension D = sum of k_i.
func (q *QREResidual) Dim() int { return q.Index.TotalDim() }

// LogitBestResponse returns LogitBR_beta(sigma): per info set,
// softmax(beta * EU(I, .)), flattened to the index's layout.
func (q *QREResidual) LogitBestResponse(sigma *strategy.Strategy) ([]float64, error) {
	allEU, err := AllExpectedUtilities(q.Root, sigma, q.Index)
	if err != nil {
		return nil, err
	}

	br := make([]float64, q.Index.TotalDim())
	for i := 0; i < q.Index.NumInfoSets(); i++ {
		is := q.Index.InfoSetAt(i)
		start := q.Index.Start(i)
		eu := allEU[is.ID]

		scaled := make([]float64, len(is.Actions))
		maxEU := math.Inf(-1)
		for j, a := range is.Actions {
			scaled[j] = q.Beta * eu[a.Type]
			if scaled[j] > maxEU {
				maxEU = scaled[j]
			}
		}
		z := 0.0
		exp := make([]float64, len(scaled))
		for j, v := range scaled {
			exp[j] = math.Exp(v - maxEU)
			z += exp[j]
		}
		for j := range exp {
			br[start+j] = exp[j] / z
		}
	}
	return br, nil
}

// Eval implements Func: the residual sigma(w) - LogitBR_beta(sigma(w)).
func (q *QREResidual) Eval(w []float64) ([]float64, error) {
	sigma := strategy.FromLogits(w, q.Index)

	br, err := q.LogitBestResponse(sigma)
	if err != nil {
		return nil, err
	}

	sigmaFlat := make([]float64, q.Index.TotalDim())
	for i := 0; i < q.Index.NumInfoSets(); i++ {
		is := q.Index.InfoSetAt(i)
		start := q.Index.Start(i)
		probs, err := sigma.Probs(is.ID)
		if err != nil {
			return nil, err
		}
		copy(sigmaFlat[start:start+len(is.Actions)], probs)
	}

	r := make([]float64, len(sigmaFlat))
	for i := range r {
		r[i] = sigmaFlat[i] - br[i]
	}
	return r, nil
}
