package solver

import (
	"encoding/json"
	"os"

	"github.com/behrlich/qre-solver/pkg/action"
)

// SerializableStrategy is a JSON-friendly representation of a Strategy
type SerializableStrategy struct {
	InfoSet     string               `json:"infoset"`
	Actions     []SerializableAction `json:"actions"`
	RegretSum   []float64            `json:"regret_sum"`
	StrategySum []float64            `json:"strategy_sum"`
}

// SerializableAction is a JSON-friendly representation of an Action
type SerializableAction struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

// SerializableProfile is a JSON-friendly representation of a StrategyProfile
type SerializableProfile struct {
	Strategies []SerializableStrategy `json:"strategies"`
	Version    string                 `json:"version"` // For future compatibility
}

// stringToActionType converts string to action.Type from JSON
func stringToActionType(s string) action.Type {
	switch s {
	case "check":
		return action.Check
	case "call":
		return action.Call
	case "bet":
		return action.Bet
	case "raise":
		return action.Raise
	case "fold":
		return action.Fold
	default:
		return action.Check // default fallback
	}
}

// ToJSON serializes the StrategyProfile to JSON bytes
func (sp *StrategyProfile) ToJSON() ([]byte, error) {
	profile := SerializableProfile{
		Version:    "1.0",
		Strategies: make([]SerializableStrategy, 0, len(sp.strategies)),
	}

	for infoSet, strat := range sp.strategies {
		// Convert actions
		actions := make([]SerializableAction, len(strat.Actions))
		for i, a := range strat.Actions {
			actions[i] = SerializableAction{
				Type:   a.Type.String(),
				Amount: a.Amount,
			}
		}

		// Add strategy
		profile.Strategies = append(profile.Strategies, SerializableStrategy{
			InfoSet:     infoSet,
			Actions:     actions,
			RegretSum:   strat.RegretSum,
			StrategySum: strat.StrategySum,
		})
	}

	return json.MarshalIndent(profile, "", "  ")
}

// FromJSON deserializes JSON bytes into a StrategyProfile
func FromJSON(data []byte) (*StrategyProfile, error) {
	var profile SerializableProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	sp := NewStrategyProfile()

	for _, serStrat := range profile.Strategies {
		// Convert actions back
		actions := make([]action.Action, len(serStrat.Actions))
		for i, serAction := range serStrat.Actions {
			actions[i] = action.Action{
				Type:   stringToActionType(serAction.Type),
				Amount: serAction.Amount,
			}
		}

		// Create strategy
		strat := NewStrategy(serStrat.InfoSet, actions)
		strat.RegretSum = serStrat.RegretSum
		strat.StrategySum = serStrat.StrategySum

		sp.strategies[serStrat.InfoSet] = strat
	}

	return sp, nil
}

// SaveToFile saves the StrategyProfile to a JSON file
func (sp *StrategyProfile) SaveToFile(filename string) error {
	data, err := sp.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// LoadFromFile loads a StrategyProfile from a JSON file
func LoadFromFile(filename string) (*StrategyProfile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return FromJSON(data)
}
