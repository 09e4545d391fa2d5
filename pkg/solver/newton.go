package solver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch is returned when a residual's output dimension
// differs from its input dimension, or an initial vector has the wrong
// length.
var ErrDimensionMismatch = errors.New("residual dimension mismatch")

// NewtonConfig configures a damped Newton solve.
type NewtonConfig struct {
	Tol            float64 // Convergence tolerance on ||R||.
	MaxIters       int
	FDStep         float64 // Finite-difference step h.
	CentralDiff    bool
	LambdaInit     float64
	LambdaMax      float64
	LambdaFactor   float64
	ArmijoC        float64
	ArmijoRho      float64
	MaxBacktracks  int
	UseLineSearch  bool
	Verbose        bool
}

// DefaultNewtonConfig returns sane default tolerances for a damped Newton solve.
func DefaultNewtonConfig() NewtonConfig {
	return NewtonConfig{
		Tol:           1e-8,
		MaxIters:      100,
		FDStep:        1e-7,
		CentralDiff:   true,
		LambdaInit:    1e-6,
		LambdaMax:     1e6,
		LambdaFactor:  10.0,
		ArmijoC:       1e-4,
		ArmijoRho:     0.5,
		MaxBacktracks: 20,
		UseLineSearch: true,
	}
}

// NewtonResult is the outcome of a Newton solve.
type NewtonResult struct {
	X             []float64
	Trace         SolverTrace
	Converged     bool
	Iterations    int
	FinalResidual float64
	Status        string // "Converged", "MaxIterations", "Singular", "Stalled".
}

// NewtonSolver drives a damped-Newton iteration: finite-difference
// Jacobian, Levenberg-Marquardt regularization, Armijo backtracking.
type NewtonSolver struct {
	Config   NewtonConfig
	Callback IterationCallback
}

// NewNewtonSolver constructs a solver with the given configuration.
func NewNewtonSolver(config NewtonConfig) *NewtonSolver {
	return &NewtonSolver{Config: config}
}

// Solve finds x such that F(x) = 0 starting from x0, mutating neither x0
// nor F's captured state.
func (s *NewtonSolver) Solve(F Func, x0 []float64) (NewtonResult, error) {
	result := NewtonResult{X: append([]float64(nil), x0...)}
	n := len(result.X)

	r, err := F(result.X)
	if err != nil {
		return result, err
	}
	if len(r) != n {
		return result, errors.Wrapf(ErrDimensionMismatch, "input dim %d, output dim %d", n, len(r))
	}

	lambda := s.Config.LambdaInit
	residualNorm := norm(r)

	for iter := 0; iter < s.Config.MaxIters; iter++ {
		stats := IterationStats{Iteration: iter, ResidualNorm: residualNorm, Lambda: lambda}

		if residualNorm < s.Config.Tol {
			stats.Converged = true
			stats.Status = "Converged"
			result.Trace.AddIteration(stats)
			if err := s.emit(stats, result.X); err != nil {
				return result, err
			}
			result.Converged = true
			result.Iterations = iter
			result.FinalResidual = residualNorm
			result.Status = "Converged"
			result.Trace.Success = true
			result.Trace.TerminationReason = "Converged: residual below tolerance"
			return result, nil
		}

		J, err := ComputeJacobian(F, result.X, s.Config.FDStep, s.Config.CentralDiff)
		if err != nil {
			return result, err
		}
		stats.JacobianCond = conditionNumber(J)

		d, newLambda, solved := regularizedSolve(J, r, lambda, s.Config.LambdaFactor, s.Config.LambdaMax, n)
		lambda = newLambda
		if !solved {
			stats.Status = "Failed: Jacobian singular"
			result.Trace.AddIteration(stats)
			if err := s.emit(stats, result.X); err != nil {
				return result, err
			}
			result.Converged = false
			result.Iterations = iter
			result.FinalResidual = residualNorm
			result.Status = "Singular"
			result.Trace.Success = false
			result.Trace.TerminationReason = "Failed: Jacobian singular"
			return result, nil
		}
		stats.StepNorm = norm(d)

		var alpha float64
		var xNew, rNew []float64
		var newResidualNorm float64

		if s.Config.UseLineSearch {
			ls, err := ArmijoBacktrack(F, result.X, d, J, s.Config.ArmijoC, s.Config.ArmijoRho, s.Config.MaxBacktracks)
			if err != nil {
				return result, err
			}
			alpha = ls.Alpha

			if alpha == 0 && !ls.Success {
				// d is not a descent direction: stay put, raise lambda.
				lambda = min(s.Config.LambdaMax, lambda*s.Config.LambdaFactor)
				if lambda >= s.Config.LambdaMax {
					stats.Status = "Stalled"
					result.Trace.AddIteration(stats)
					if err := s.emit(stats, result.X); err != nil {
						return result, err
					}
					result.Converged = false
					result.Iterations = iter
					result.FinalResidual = residualNorm
					result.Status = "Stalled"
					result.Trace.Success = false
					result.Trace.TerminationReason = "Stalled: no descent direction at saturated lambda"
					return result, nil
				}
				stats.Alpha = 0
				stats.Status = "NonDescent"
				result.Trace.AddIteration(stats)
				if err := s.emit(stats, result.X); err != nil {
					return result, err
				}
				continue
			}

			xNew = addScaled(result.X, d, alpha)
			rNew, err = F(xNew)
			if err != nil {
				return result, err
			}
			newResidualNorm = norm(rNew)

			if newResidualNorm < residualNorm {
				lambda = max(s.Config.LambdaInit, lambda/s.Config.LambdaFactor)
			} else {
				lambda = min(s.Config.LambdaMax, lambda*s.Config.LambdaFactor)
			}
		} else {
			alpha = 1.0
			xNew = addScaled(result.X, d, alpha)
			rNew, err = F(xNew)
			if err != nil {
				return result, err
			}
			newResidualNorm = norm(rNew)
		}

		stats.Alpha = alpha
		stats.Status = "Iteration complete"

		result.X = xNew
		r = rNew
		residualNorm = newResidualNorm

		result.Trace.AddIteration(stats)
		if err := s.emit(stats, result.X); err != nil {
			return result, err
		}
	}

	result.Converged = false
	result.Iterations = s.Config.MaxIters
	result.FinalResidual = residualNorm
	result.Status = "MaxIterations"
	result.Trace.Success = false
	result.Trace.TerminationReason = "Max iterations reached"
	return result, nil
}

func (s *NewtonSolver) emit(stats IterationStats, w []float64) error {
	if s.Callback == nil {
		return nil
	}
	return s.Callback(stats, w)
}

// regularizedSolve solves (J'J + lambda*I) d = -J'r, raising lambda by
// factor after each failure, for at most 10 attempts in all, if the system
// is not invertible.
// Returns the possibly-raised lambda alongside the step so the caller's
// LM state stays consistent with what was tried.
func regularizedSolve(J *mat.Dense, r []float64, lambda, factor, lambdaMax float64, n int) ([]float64, float64, bool) {
	var Jt mat.Dense
	Jt.CloneFrom(J.T())

	var JtJ mat.Dense
	JtJ.Mul(&Jt, J)

	rv := mat.NewVecDense(len(r), r)
	var Jtr mat.VecDense
	Jtr.MulVec(&Jt, rv)

	for attempt := 0; attempt < 10; attempt++ {
		var A mat.Dense
		A.CloneFrom(&JtJ)
		for i := 0; i < n; i++ {
			A.Set(i, i, A.At(i, i)+lambda)
		}

		negJtr := mat.NewVecDense(n, nil)
		negJtr.ScaleVec(-1, &Jtr)

		var d mat.VecDense
		if err := d.SolveVec(&A, negJtr); err == nil {
			out := make([]float64, n)
			for i := 0; i < n; i++ {
				out[i] = d.AtVec(i)
			}
			return out, lambda, true
		}
		lambda = min(lambdaMax, lambda*factor)
	}
	return nil, lambda, false
}
