package solver

import (
	"math"
	"testing"

	"github.com/behrlich/qre-solver/pkg/strategy"
	"github.com/behrlich/qre-solver/pkg/tree"
)

func TestQREResidual_LowBetaNearZeroAtUniform(t *testing.T) {
	root := tree.BuildKuhnTree()
	q := NewQREResidual(root, 0.001)

	w := make([]float64, q.Dim())
	r, err := q.Eval(w)
	if err != nil {
		t.Fatal(err)
	}
	if norm(r) >= 0.1 {
		t.Errorf("||R(0)|| at beta=0.001 = %v, want < 0.1", norm(r))
	}
}

func TestLogitBestResponse_ProbabilitiesSumToOne(t *testing.T) {
	root := tree.BuildKuhnTree()
	q := NewQREResidual(root, 2.0)
	idx := q.Index

	sigma := strategy.Uniform(idx)
	br, err := q.LogitBestResponse(sigma)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < idx.NumInfoSets(); i++ {
		is := idx.InfoSetAt(i)
		start := idx.Start(i)
		sum := 0.0
		for j := range is.Actions {
			if br[start+j] < 0 {
				t.Errorf("negative logit-BR probability at %s", is.ID)
			}
			sum += br[start+j]
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("logit-BR at %s sums to %v, want 1", is.ID, sum)
		}
	}
}

func TestLogitBestResponse_HigherBetaLowersEntropy(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	sigma := strategy.Uniform(idx)

	lowBeta := NewQREResidual(root, 0.1)
	lowBeta.Index = idx
	highBeta := NewQREResidual(root, 10.0)
	highBeta.Index = idx

	brLow, err := lowBeta.LogitBestResponse(sigma)
	if err != nil {
		t.Fatal(err)
	}
	brHigh, err := highBeta.LogitBestResponse(sigma)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < idx.NumInfoSets(); i++ {
		is := idx.InfoSetAt(i)
		start := idx.Start(i)
		n := len(is.Actions)
		entLow := entropy(brLow[start : start+n])
		entHigh := entropy(brHigh[start : start+n])
		if entHigh > entLow+1e-9 {
			t.Errorf("%s: high-beta entropy %v > low-beta entropy %v", is.ID, entHigh, entLow)
		}
	}
}

func entropy(p []float64) float64 {
	h := 0.0
	for _, v := range p {
		if v > 0 {
			h -= v * math.Log(v)
		}
	}
	return h
}
