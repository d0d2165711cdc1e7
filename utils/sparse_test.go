package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseCG(t *testing.T) {
	// SPD tridiagonal system with two RHS columns
	{
		n := 8
		A := NewDOK(n, n)
		for i := 0; i < n; i++ {
			A.AddAt(i, i, 2)
			if i > 0 {
				A.AddAt(i, i-1, -1)
				A.AddAt(i-1, i, -1)
			}
		}
		// Construct B = A*X for a known X
		X := NewMatrix(n, 2)
		for i := 0; i < n; i++ {
			X.Set(i, 0, float64(i+1))
			X.Set(i, 1, 1)
		}
		B := NewMatrix(n, 2)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				B.AddAt(i, 0, A.At(i, j)*X.At(j, 0))
				B.AddAt(i, 1, A.At(i, j)*X.At(j, 1))
			}
		}
		XS, err := A.ToCSR().SolveCG(B)
		assert.NoError(t, err)
		assert.InDeltaSlice(t, X.RawMatrix().Data, XS.RawMatrix().Data, 1.e-10)
	}
	// Indefinite matrix is rejected
	{
		A := NewDOK(2, 2)
		A.AddAt(0, 0, 1)
		A.AddAt(1, 1, -1)
		B := NewMatrix(2, 1, []float64{1, 1})
		_, err := A.ToCSR().SolveCG(B)
		assert.Error(t, err)
	}
}

func TestGaussLegendre(t *testing.T) {
	// N=1 is the midpoint rule
	{
		X, W, err := GaussLegendre(1)
		assert.NoError(t, err)
		assert.Equal(t, 0., X.AtVec(0))
		assert.Equal(t, 2., W.AtVec(0))
	}
	// N point rule integrates monomials up to degree 2N-1 exactly
	for _, N := range []int{2, 3, 4, 5} {
		X, W, err := GaussLegendre(N)
		assert.NoError(t, err)
		for p := 0; p <= 2*N-1; p++ {
			var sum float64
			for i := 0; i < N; i++ {
				sum += W.AtVec(i) * POW(X.AtVec(i), p)
			}
			exact := 0.
			if p%2 == 0 {
				exact = 2. / float64(p+1)
			}
			assert.InDelta(t, exact, sum, 1.e-12)
		}
	}
	// Invalid order
	{
		_, _, err := GaussLegendre(0)
		assert.Error(t, err)
	}
}
