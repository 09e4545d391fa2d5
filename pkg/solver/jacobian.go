package solver

import (
	"gonum.org/v1/gonum/mat"
)

// Func is the polymorphic residual the Newton solver consumes: any
// "given vector, return vector" callable. Implementations must be free of mutable process-wide
// state so the optional parallel Jacobian variant can call them
// concurrently on disjoint inputs.
type Func func(x []float64) ([]float64, error)

// ComputeJacobian estimates J ∈ R^{m×n} by finite differences on F at x,
// column j = d F / d x_j. central selects central differences (2n
// evaluations, O(h^2) truncation) over forward differences (n
// evaluations, O(h) truncation).
func ComputeJacobian(F Func, x []float64, h float64, central bool) (*mat.Dense, error) {
	n := len(x)

	f0, err := F(x)
	if err != nil {
		return nil, err
	}
	m := len(f0)

	J := mat.NewDense(m, n, nil)

	if central {
		for j := 0; j < n; j++ {
			xPlus := append([]float64(nil), x...)
			xMinus := append([]float64(nil), x...)
			xPlus[j] += h
			xMinus[j] -= h

			fPlus, err := F(xPlus)
			if err != nil {
				return nil, err
			}
			fMinus, err := F(xMinus)
			if err != nil {
				return nil, err
			}
			for i := 0; i < m; i++ {
				J.Set(i, j, (fPlus[i]-fMinus[i])/(2.0*h))
			}
		}
	} else {
		for j := 0; j < n; j++ {
			xPlus := append([]float64(nil), x...)
			xPlus[j] += h

			fPlus, err := F(xPlus)
			if err != nil {
				return nil, err
			}
			for i := 0; i < m; i++ {
				J.Set(i, j, (fPlus[i]-f0[i])/h)
			}
		}
	}

	return J, nil
}

// conditionNumber returns the ratio of J's largest to smallest singular
// value via SVD; informational only, does not gate solver behavior.
func conditionNumber(J *mat.Dense) float64 {
	var svd mat.SVD
	ok := svd.Factorize(J, mat.SVDNone)
	if !ok {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 || values[len(values)-1] == 0 {
		return 0
	}
	return values[0] / values[len(values)-1]
}
