// Package strategy implements the softmax-parameterized strategy
// representation consumed by the QRE residual and Newton solver.
package strategy

import (
	"math"

	"github.com/pkg/errors"

	"github.com/behrlich/qre-solver/pkg/action"
	"github.com/behrlich/qre-solver/pkg/tree"
)

// ErrUnknownInfoSet is returned when a Strategy is queried for an
// information-set id it does not hold.
var ErrUnknownInfoSet = errors.New("unknown information set")

// ErrActionNotLegal is returned when Prob is asked about an action that is
// not in the info set's legal-action list.
var ErrActionNotLegal = errors.New("action not legal at information set")

// probFloor bounds probabilities away from zero when inverting via log.
const probFloor = 1e-10

// Strategy maps each information-set id to an unconstrained logit vector.
// Probabilities are derived on demand by stable softmax: strictly
// positive and summing to 1 within floating tolerance.
type Strategy struct {
	logits  map[string][]float64
	actions map[string][]action.Action
}

// stableSoftmax subtracts the per-row maximum before exponentiating to
// avoid overflow.
func stableSoftmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	exp := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		exp[i] = math.Exp(v - maxLogit)
		sum += exp[i]
	}
	for i := range exp {
		exp[i] /= sum
	}
	return exp
}

// FromLogits builds a Strategy by slicing w into the contiguous blocks
// index describes, one per information set.
func FromLogits(w []float64, index *tree.InfoSetIndex) *Strategy {
	s := &Strategy{
		logits:  make(map[string][]float64, index.NumInfoSets()),
		actions: make(map[string][]action.Action, index.NumInfoSets()),
	}
	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSetAt(i)
		start := index.Start(i)
		block := make([]float64, len(is.Actions))
		copy(block, w[start:start+len(is.Actions)])
		s.logits[is.ID] = block
		s.actions[is.ID] = is.Actions
	}
	return s
}

// Uniform returns the strategy with all logits zero, which softmax maps
// to the uniform distribution at every information set.
func Uniform(index *tree.InfoSetIndex) *Strategy {
	return FromLogits(make([]float64, index.TotalDim()), index)
}

// Probs returns the probability distribution at infoSetID.
func (s *Strategy) Probs(infoSetID string) ([]float64, error) {
	logits, ok := s.logits[infoSetID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInfoSet, "info set %q", infoSetID)
	}
	return stableSoftmax(logits), nil
}

// Prob returns the probability of a single action at infoSetID.
func (s *Strategy) Prob(infoSetID string, a action.Action) (float64, error) {
	probs, err := s.Probs(infoSetID)
	if err != nil {
		return 0, err
	}
	actions := s.actions[infoSetID]
	for i, la := range actions {
		if la.Type == a.Type {
			return probs[i], nil
		}
	}
	return 0, errors.Wrapf(ErrActionNotLegal, "action %v at info set %q", a, infoSetID)
}

// Logits returns the raw logit vector at infoSetID.
func (s *Strategy) Logits(infoSetID string) ([]float64, error) {
	logits, ok := s.logits[infoSetID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInfoSet, "info set %q", infoSetID)
	}
	return logits, nil
}

// SetLogits overwrites the logit vector at infoSetID, recording actions
// for subsequent Prob/Probs lookups if infoSetID is new.
func (s *Strategy) SetLogits(infoSetID string, logits []float64, actions []action.Action) {
	s.logits[infoSetID] = logits
	s.actions[infoSetID] = actions
}

// HasInfoSet reports whether id is present in the strategy.
func (s *Strategy) HasInfoSet(id string) bool {
	_, ok := s.logits[id]
	return ok
}

// InfoSetIDs returns the ids held by the strategy, in no particular order.
func (s *Strategy) InfoSetIDs() []string {
	ids := make([]string, 0, len(s.logits))
	for id := range s.logits {
		ids = append(ids, id)
	}
	return ids
}

// Size returns the number of information sets held by the strategy.
func (s *Strategy) Size() int { return len(s.logits) }

// ToFlatLogits writes the strategy's logits back into index's flat
// layout. Info sets in index but absent from s default to zero logits
// (uniform), matching the source's fallback.
func (s *Strategy) ToFlatLogits(index *tree.InfoSetIndex) []float64 {
	w := make([]float64, index.TotalDim())
	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSetAt(i)
		start := index.Start(i)
		logits, ok := s.logits[is.ID]
		if !ok {
			continue // leave zeros
		}
		copy(w[start:start+len(is.Actions)], logits)
	}
	return w
}

// FromProbs inverts a probability vector into logits by log(max(p, floor)),
// the canonical (non-unique) inverse for an externally produced average
// strategy, e.g. a CFR oracle's output. Info sets absent from probs get
// zero logits (uniform).
func FromProbs(probs map[string][]float64, index *tree.InfoSetIndex) *Strategy {
	s := &Strategy{
		logits:  make(map[string][]float64, index.NumInfoSets()),
		actions: make(map[string][]action.Action, index.NumInfoSets()),
	}
	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSetAt(i)
		p, ok := probs[is.ID]
		if !ok {
			s.logits[is.ID] = make([]float64, len(is.Actions))
			s.actions[is.ID] = is.Actions
			continue
		}
		logits := make([]float64, len(p))
		for j, pv := range p {
			logits[j] = math.Log(math.Max(pv, probFloor))
		}
		s.logits[is.ID] = logits
		s.actions[is.ID] = is.Actions
	}
	return s
}

// ToJSON renders the strategy as the telemetry "strategy" map: info-set
// id -> {action name -> probability}.
func (s *Strategy) ToJSON() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(s.logits))
	for id, logits := range s.logits {
		probs := stableSoftmax(logits)
		actions := s.actions[id]
		row := make(map[string]float64, len(actions))
		for i, a := range actions {
			row[a.Type.String()] = probs[i]
		}
		out[id] = row
	}
	return out
}
