package solver

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// JacobianMetrics records benchmarking data for ComputeJacobianParallel,
// mirroring the source's thread-pool variant.
type JacobianMetrics struct {
	FunctionEvaluations int
	NumWorkers          int
}

// ComputeJacobianParallel distributes the 2D central-difference residual
// evaluations across an errgroup of goroutines, one per logical CPU,
// each writing disjoint columns of J before a single join barrier. F must
// be re-entrant: free of mutable state shared across calls.
func ComputeJacobianParallel(F Func, x []float64, h float64, metrics *JacobianMetrics) (*mat.Dense, error) {
	n := len(x)

	f0, err := F(x)
	if err != nil {
		return nil, err
	}
	m := len(f0)

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	colsPerWorker := (n + numWorkers - 1) / numWorkers

	J := mat.NewDense(m, n, nil)

	var g errgroup.Group
	for w := 0; w < numWorkers; w++ {
		start := w * colsPerWorker
		end := start + colsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			continue
		}

		g.Go(func() error {
			for j := start; j < end; j++ {
				xPlus := append([]float64(nil), x...)
				xMinus := append([]float64(nil), x...)
				xPlus[j] += h
				xMinus[j] -= h

				fPlus, err := F(xPlus)
				if err != nil {
					return err
				}
				fMinus, err := F(xMinus)
				if err != nil {
					return err
				}
				for i := 0; i < m; i++ {
					J.Set(i, j, (fPlus[i]-fMinus[i])/(2.0*h))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if metrics != nil {
		metrics.FunctionEvaluations = 1 + 2*n
		metrics.NumWorkers = numWorkers
	}

	return J, nil
}
