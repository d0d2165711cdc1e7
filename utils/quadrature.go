package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewSymTriDiagonal builds the symmetric tridiagonal matrix with main
// diagonal d0 and first off diagonal d1.
func NewSymTriDiagonal(d0, d1 []float64) (J *mat.SymBandDense) {
	var (
		n    = len(d0)
		data = make([]float64, 2*n)
	)
	for i := 0; i < n; i++ {
		data[2*i] = d0[i]
		if i < n-1 {
			data[2*i+1] = d1[i]
		}
	}
	J = mat.NewSymBandDense(n, 1, data)
	return
}

// GaussLegendre returns the N point Gauss-Legendre rule on [-1,1] from the
// eigen decomposition of the Jacobi matrix (Golub-Welsch).
func GaussLegendre(N int) (X, W Vector, err error) {
	if N < 1 {
		err = fmt.Errorf("invalid Gauss rule order: N = %v", N)
		return
	}
	if N == 1 {
		X = NewVector(1, []float64{0})
		W = NewVector(1, []float64{2})
		return
	}
	var (
		d0 = make([]float64, N)
		d1 = make([]float64, N-1)
	)
	for i := 1; i < N; i++ {
		fi := float64(i)
		d1[i-1] = fi / math.Sqrt(4*fi*fi-1)
	}
	JJ := NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		err = fmt.Errorf("eigenvalue decomposition failed for Gauss rule N = %v", N)
		return
	}
	x := eig.Values(nil)
	X = NewVector(N, x)

	VVr := mat.NewDense(N, N, nil)
	eig.VectorsTo(VVr)
	W = NewVector(N, VVr.RawRowView(0)).POW(2).Scale(2)
	return
}
