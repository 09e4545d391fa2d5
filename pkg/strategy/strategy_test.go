package strategy

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/behrlich/qre-solver/pkg/action"
	"github.com/behrlich/qre-solver/pkg/tree"
)

func TestUniform_ProbsSumToOneAndNonNegative(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	s := Uniform(idx)

	for i := 0; i < idx.NumInfoSets(); i++ {
		is := idx.InfoSetAt(i)
		probs, err := s.Probs(is.ID)
		if err != nil {
			t.Fatalf("Probs(%s): %v", is.ID, err)
		}
		sum := 0.0
		for _, p := range probs {
			if p < 0 {
				t.Errorf("negative probability %v at %s", p, is.ID)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("probs at %s sum to %v, want 1", is.ID, sum)
		}
	}
}

func TestUniform_EachActionEquallyLikely(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	s := Uniform(idx)

	is := idx.InfoSetAt(0)
	probs, err := s.Probs(is.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := 1.0 / float64(len(is.Actions))
	for _, p := range probs {
		if math.Abs(p-want) > 1e-12 {
			t.Errorf("uniform probability %v, want %v", p, want)
		}
	}
}

func TestFromLogits_ToFlatLogits_RoundTrip(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))

	w := make([]float64, idx.TotalDim())
	for i := range w {
		w[i] = float64(i) * 0.37
	}

	s := FromLogits(w, idx)
	got := s.ToFlatLogits(idx)

	for i := range w {
		if math.Abs(got[i]-w[i]) > 1e-12 {
			t.Errorf("flat logit %d: got %v, want %v", i, got[i], w[i])
		}
	}
}

func TestProb_UnknownInfoSetWrapsSentinel(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	s := Uniform(idx)

	_, err := s.Probs("not-a-real-id")
	if errors.Cause(err) != ErrUnknownInfoSet {
		t.Errorf("expected ErrUnknownInfoSet, got %v", err)
	}
}

func TestProb_IllegalActionWrapsSentinel(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	s := Uniform(idx)

	is := idx.InfoSetAt(0)
	_, err := s.Prob(is.ID, action.Action{Type: action.Raise})
	if errors.Cause(err) != ErrActionNotLegal {
		t.Errorf("expected ErrActionNotLegal, got %v", err)
	}
}

func TestFromProbs_MissingInfoSetDefaultsToUniform(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))

	s := FromProbs(map[string][]float64{}, idx)
	is := idx.InfoSetAt(0)
	probs, err := s.Probs(is.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := 1.0 / float64(len(is.Actions))
	for _, p := range probs {
		if math.Abs(p-want) > 1e-9 {
			t.Errorf("expected uniform fallback %v, got %v", want, p)
		}
	}
}

func TestFromProbs_RoundTripsThroughLogits(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	is := idx.InfoSetAt(0)

	input := map[string][]float64{is.ID: {0.9, 0.1}}
	s := FromProbs(input, idx)
	probs, err := s.Probs(is.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range input[is.ID] {
		if math.Abs(probs[i]-want) > 1e-6 {
			t.Errorf("action %d: got %v, want %v", i, probs[i], want)
		}
	}
}

func TestToJSON_KeysByActionName(t *testing.T) {
	root := tree.BuildKuhnTree()
	idx := tree.NewInfoSetIndex(tree.GetInfoSets(root))
	s := Uniform(idx)

	out := s.ToJSON()
	is := idx.InfoSetAt(0)
	row, ok := out[is.ID]
	if !ok {
		t.Fatalf("missing info set %s in ToJSON output", is.ID)
	}
	for _, a := range is.Actions {
		if _, ok := row[a.Type.String()]; !ok {
			t.Errorf("missing action %s in ToJSON row for %s", a.Type.String(), is.ID)
		}
	}
}
