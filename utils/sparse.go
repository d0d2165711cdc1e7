package utils

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

// AddAt accumulates val into entry (i,j), the primitive used by
// element-loop assembly.
func (m DOK) AddAt(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

// MulVec computes y = A*x without densifying A.
func (m CSR) MulVec(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}

// SolveCG solves A*X = B by conjugate gradients for each column of B, for
// a symmetric positive definite receiver. The factorization-free iteration
// keeps the matrix sparse throughout.
func (m CSR) SolveCG(B Matrix) (X Matrix, err error) {
	var (
		n, nc   = m.Dims()
		_, ncB  = B.Dims()
		tol     = 1.e-13
		maxIter = 20 * n
	)
	if n != nc {
		err = fmt.Errorf("matrix must be square for CG solve: dims = %v,%v", n, nc)
		return
	}
	X = NewMatrix(n, ncB)
	for col := 0; col < ncB; col++ {
		var (
			x  = make([]float64, n)
			r  = make([]float64, n)
			p  = make([]float64, n)
			ap = make([]float64, n)
		)
		for i := 0; i < n; i++ {
			r[i] = B.At(i, col)
		}
		bNorm := norm2(r)
		if bNorm == 0. {
			continue // zero RHS, zero solution
		}
		copy(p, r)
		rr := dot(r, r)
		var iter int
		for iter = 0; iter < maxIter; iter++ {
			if math.Sqrt(rr) <= tol*bNorm {
				break
			}
			m.MulVec(p, ap)
			pAp := dot(p, ap)
			if pAp <= 0. {
				err = fmt.Errorf("CG breakdown on column %v: matrix \"%v\" is not positive definite", col, m.name)
				return Matrix{}, err
			}
			alpha := rr / pAp
			for i := 0; i < n; i++ {
				x[i] += alpha * p[i]
				r[i] -= alpha * ap[i]
			}
			rrNew := dot(r, r)
			beta := rrNew / rr
			rr = rrNew
			for i := 0; i < n; i++ {
				p[i] = r[i] + beta*p[i]
			}
		}
		if iter == maxIter && math.Sqrt(rr) > tol*bNorm {
			err = fmt.Errorf("CG did not converge on column %v after %v iterations, residual = %v", col, maxIter, math.Sqrt(rr)/bNorm)
			return Matrix{}, err
		}
		for i := 0; i < n; i++ {
			X.Set(i, col, x[i])
		}
	}
	return
}

func dot(a, b []float64) (d float64) {
	for i, val := range a {
		d += val * b[i]
	}
	return
}

func norm2(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}
