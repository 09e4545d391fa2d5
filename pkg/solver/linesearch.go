package solver

import "gonum.org/v1/gonum/mat"

// LineSearchResult is the outcome of an Armijo backtracking search.
type LineSearchResult struct {
	Alpha       float64 // Accepted step length (0 if d is not a descent direction).
	Merit       float64 // phi(x + alpha*d).
	Evaluations int
	Success     bool
}

// meritFunction computes phi(x) = 1/2 ||F(x)||^2.
func meritFunction(F Func, x []float64) (float64, error) {
	r, err := F(x)
	if err != nil {
		return 0, err
	}
	return 0.5 * squaredNorm(r), nil
}

func squaredNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func norm(v []float64) float64 {
	return mat.Norm(mat.NewVecDense(len(v), v), 2)
}

func addScaled(x, d []float64, alpha float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + alpha*d[i]
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// matVec returns J*d.
func matVec(J *mat.Dense, d []float64) []float64 {
	rows, _ := J.Dims()
	out := make([]float64, rows)
	dv := mat.NewVecDense(len(d), d)
	ov := mat.NewVecDense(rows, out)
	ov.MulVec(J, dv)
	return out
}

// ArmijoBacktrack finds alpha such that phi(x+alpha*d) <= phi(x) +
// c*alpha*phi'(x), phi'(x) = r(x)·(J·d), backtracking by rho each failed
// try up to maxIters times.
func ArmijoBacktrack(F Func, x, d []float64, J *mat.Dense, c, rho float64, maxIters int) (LineSearchResult, error) {
	var result LineSearchResult

	r0, err := F(x)
	if err != nil {
		return result, err
	}
	phi0 := 0.5 * squaredNorm(r0)
	result.Evaluations = 1

	dphi0 := dot(r0, matVec(J, d))

	if dphi0 >= 0 {
		// d is not a descent direction for phi; accept no move.
		result.Alpha = 0.0
		result.Merit = phi0
		result.Success = false
		return result, nil
	}

	alpha := 1.0
	for i := 0; i < maxIters; i++ {
		xNew := addScaled(x, d, alpha)
		rNew, err := F(xNew)
		if err != nil {
			return result, err
		}
		phiNew := 0.5 * squaredNorm(rNew)
		result.Evaluations++

		if phiNew <= phi0+c*alpha*dphi0 {
			result.Alpha = alpha
			result.Merit = phiNew
			result.Success = true
			return result, nil
		}

		alpha *= rho
	}

	merit, err := meritFunction(F, addScaled(x, d, alpha))
	if err != nil {
		return result, err
	}
	result.Alpha = alpha
	result.Merit = merit
	result.Evaluations++
	result.Success = false
	return result, nil
}
