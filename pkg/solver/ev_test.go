package solver

import (
	"math"
	"testing"

	"github.com/behrlich/qre-solver/pkg/strategy"
	"github.com/behrlich/qre-solver/pkg/tree"
)

func TestExpectedValue_UniformKuhn_WithinBounds(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	sigma := strategy.Uniform(idx)

	ev, err := ExpectedValue(root, sigma)
	if err != nil {
		t.Fatal(err)
	}
	if ev < -0.2 || ev > 0.2 {
		t.Errorf("uniform Kuhn EV_P0 = %v, want in [-0.2, 0.2]", ev)
	}
}

func TestExploitability_UniformKuhn_IsPositive(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	sigma := strategy.Uniform(idx)

	exploit, err := Exploitability(root, sigma)
	if err != nil {
		t.Fatal(err)
	}
	if exploit < -1e-9 {
		t.Errorf("exploitability = %v, want >= 0 (within tolerance)", exploit)
	}
}

func TestBestResponseValue_NeverWorseThanExpectedValue(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))

	w := make([]float64, idx.TotalDim())
	for i := range w {
		w[i] = 0.3 * float64(i%3-1)
	}
	sigma := strategy.FromLogits(w, idx)

	ev, err := ExpectedValue(root, sigma)
	if err != nil {
		t.Fatal(err)
	}
	br0, err := BestResponseValue(root, sigma, 0)
	if err != nil {
		t.Fatal(err)
	}
	if br0 < ev-1e-9 {
		t.Errorf("best_response_value(P0) = %v is worse than EV = %v", br0, ev)
	}

	br1, err := BestResponseValue(root, sigma, 1)
	if err != nil {
		t.Fatal(err)
	}
	if br1 < -ev-1e-9 {
		t.Errorf("best_response_value(P1) = %v is worse than EV_P1 = %v", br1, -ev)
	}
}

func TestAllExpectedUtilities_CoversEveryInfoSetAndAction(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	sigma := strategy.Uniform(idx)

	allEU, err := AllExpectedUtilities(root, sigma, idx)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < idx.NumInfoSets(); i++ {
		is := idx.InfoSetAt(i)
		row, ok := allEU[is.ID]
		if !ok {
			t.Fatalf("missing EU row for info set %s", is.ID)
		}
		for _, a := range is.Actions {
			eu := row[a.Type]
			if math.IsNaN(eu) || math.IsInf(eu, 0) {
				t.Errorf("EU(%s, %v) = %v is not finite", is.ID, a, eu)
			}
		}
	}
}
