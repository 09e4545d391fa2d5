package solver

import "github.com/behrlich/qre-solver/pkg/tree"

// MakeBetaSchedule produces an increasing continuation schedule starting
// near 0, at least doubling each step, always ending at targetBeta.
func MakeBetaSchedule(targetBeta float64) []float64 {
	schedule := []float64{0.01}

	beta := 0.05
	for 2*beta <= targetBeta {
		schedule = append(schedule, beta)
		beta *= 2.0
	}
	schedule = append(schedule, targetBeta)
	return schedule
}

// StepCallback receives the beta level active during this iteration
// alongside the usual diagnostic record and solution vector.
type StepCallback func(beta float64, stats IterationStats, w []float64) error

// ContinuationDriver runs the Newton solver across a beta schedule,
// warm-starting each level from the previous level's solution.
type ContinuationDriver struct {
	Config NewtonConfig
}

// NewContinuationDriver constructs a driver with the given per-beta
// Newton configuration.
func NewContinuationDriver(config NewtonConfig) *ContinuationDriver {
	return &ContinuationDriver{Config: config}
}

// Run solves the QRE fixed point over root's game tree at an increasing
// beta schedule up to targetBeta, starting from the zero vector and
// warm-starting each level from the prior level's solution. callback, if
// non-nil, is invoked once per Newton iteration with the active beta.
// Returns the final level's result and the full per-level trace.
func (d *ContinuationDriver) Run(root *tree.TreeNode, targetBeta float64, callback StepCallback) (NewtonResult, []NewtonResult, error) {
	schedule := MakeBetaSchedule(targetBeta)
	residual := NewQREResidual(root, schedule[0])

	w := make([]float64, residual.Dim())
	var levelResults []NewtonResult
	var final NewtonResult

	for _, beta := range schedule {
		residual.Beta = beta

		newton := NewNewtonSolver(d.Config)
		if callback != nil {
			newton.Callback = func(stats IterationStats, w []float64) error {
				return callback(beta, stats, w)
			}
		}

		result, err := newton.Solve(residual.Eval, w)
		if err != nil {
			return final, levelResults, err
		}

		w = result.X
		levelResults = append(levelResults, result)
		final = result
	}

	return final, levelResults, nil
}
