package LR2D

// One dimensional B-spline basis evaluation over a local knot vector. A
// basis function of order k (polynomial degree k-1) is defined by k+1
// consecutive knots, which is all the recursion below ever needs. uend
// closes the right end of the parametric domain so that the last basis
// function evaluates to 1 there instead of 0.

func oneBasis(t []float64, u, uend float64) float64 {
	var (
		p = len(t) - 2 // polynomial degree at this recursion level
	)
	if p == 0 {
		if t[0] == t[1] {
			return 0 // zero knot span
		}
		if t[0] <= u && (u < t[1] || (u == t[1] && t[1] == uend)) {
			return 1
		}
		return 0
	}
	var left, right float64
	if t[p] > t[0] {
		left = (u - t[0]) / (t[p] - t[0]) * oneBasis(t[:p+1], u, uend)
	}
	if t[p+1] > t[1] {
		right = (t[p+1] - u) / (t[p+1] - t[1]) * oneBasis(t[1:], u, uend)
	}
	return left + right
}

func oneBasisDeriv(t []float64, u, uend float64) float64 {
	var (
		p = len(t) - 2
	)
	if p == 0 {
		return 0
	}
	var left, right float64
	if t[p] > t[0] {
		left = float64(p) / (t[p] - t[0]) * oneBasis(t[:p+1], u, uend)
	}
	if t[p+1] > t[1] {
		right = float64(p) / (t[p+1] - t[1]) * oneBasis(t[1:], u, uend)
	}
	return left - right
}
