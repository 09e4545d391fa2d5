package solver

// IterationStats is a per-Newton-iteration diagnostic record.
type IterationStats struct {
	Iteration     int     `json:"iteration"`
	ResidualNorm  float64 `json:"residual_norm"`
	StepNorm      float64 `json:"step_norm"`
	Alpha         float64 `json:"alpha"`
	Lambda        float64 `json:"lambda"`
	JacobianCond  float64 `json:"jacobian_cond"`
	Converged     bool    `json:"converged"`
	Status        string  `json:"status"`
}

// SolverTrace is the append-only record of a single Newton solve.
type SolverTrace struct {
	Iterations        []IterationStats `json:"iterations"`
	Success           bool             `json:"success"`
	TotalIterations   int              `json:"total_iterations"`
	FinalResidual     float64          `json:"final_residual"`
	TerminationReason string           `json:"termination_reason"`
}

// AddIteration appends stats and updates the trace's running totals.
func (t *SolverTrace) AddIteration(stats IterationStats) {
	t.Iterations = append(t.Iterations, stats)
	t.TotalIterations = len(t.Iterations)
	t.FinalResidual = stats.ResidualNorm
}

// IterationCallback receives the diagnostic record and the updated
// solution vector after every Newton iteration, including the terminal
// converged emission. A non-nil error aborts the
// solve.
type IterationCallback func(stats IterationStats, w []float64) error
