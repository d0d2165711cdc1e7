package recovery

import (
	"fmt"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
)

// RecoverSPR performs superconvergent patch recovery: for each basis
// function a local polynomial expansion about its Greville anchor is
// fitted, in the least squares sense, to the raw field sampled at reduced
// order Gauss points over the (extended) support. The recovered anchor
// values are then collocated into control points.
func RecoverSPR(m *LR2D.Mesh, f FieldSource) (ans *LR2D.Mesh, err error) {
	if m.Rational() {
		err = fmt.Errorf("SPR recovery: rational (weighted) bases are not supported")
		return
	}
	var (
		mOrd   = f.DerivativeOrder()
		k1, k2 = m.Order(0), m.Order(1)
	)

	// Reduced (superconvergent) quadrature point coordinates
	ng1, ng2 := k1-mOrd, k2-mOrd
	xg, _, err := utils.GaussLegendre(ng1)
	if err != nil {
		err = fmt.Errorf("no reduced quadrature rule for order %v, derivative order %v: %v", k1, mOrd, err)
		return
	}
	yg, _, err := utils.GaussLegendre(ng2)
	if err != nil {
		err = fmt.Errorf("no reduced quadrature rule for order %v, derivative order %v: %v", k2, mOrd, err)
		return
	}

	// Parameter values of the Greville points
	var gpar [2][]float64
	for dir := 0; dir < 2; dir++ {
		if gpar[dir], err = m.GrevilleParameters(dir); err != nil {
			return
		}
	}

	var (
		n1, n2  = k1 - mOrd + 1, k2 - mOrd + 1 // patch size per parameter direction
		nPol    = n1 * n2                      // terms in the polynomial expansion
		nCmp    = f.NumFields()
		sValues = utils.NewMatrix(nCmp, m.NumBasis())
	)

	// Loop over all Greville points (one for each basis function)
	for ip, b := range m.Basis {
		support := chooseSupport(m, b, ng1*ng2, nPol)

		// Physical coordinates of current Greville point
		gx, gy, errP := m.Point(gpar[0][ip], gpar[1][ip])
		if errP != nil {
			err = fmt.Errorf("SPR recovery: anchor of basis function %v: %v", b.Id, errP)
			return
		}

		// Set up the local projection matrices
		A := utils.NewMatrix(nPol, nPol)
		B := utils.NewMatrix(nPol, nCmp)

		// Loop over all non-zero knot spans in the chosen support of the
		// basis function associated with current Greville point
		for _, iel := range support {
			var gaussPt [2][]float64
			gaussPt[0] = m.GaussPointParameters(0, iel, xg.Data())
			gaussPt[1] = m.GaussPointParameters(1, iel, yg.Data())
			unstrGauss := ExpandTensorGrid(gaussPt)

			// Evaluate the secondary solution at all Gauss points
			var sF utils.Matrix
			if sF, err = f.EvalAt(unstrGauss[0], unstrGauss[1]); err != nil {
				return nil, err
			}

			// Loop over the Gauss points in current knot span
			ig := 0
			for j := 0; j < ng2; j++ {
				for i := 0; i < ng1; i++ {
					// Evaluate the polynomial expansion at current point
					x, y, errP := m.Point(gaussPt[0][i], gaussPt[1][j])
					if errP != nil {
						return nil, errP
					}
					P := evalMonomials(n1, n2, x-gx, y-gy)

					for k := 0; k < nPol; k++ {
						// Accumulate the projection matrix, A += P * P^t
						for l := 0; l < nPol; l++ {
							A.AddAt(k, l, P[k]*P[l])
						}
						// Accumulate the right-hand-side, B += P * sigma
						for l := 0; l < nCmp; l++ {
							B.AddAt(k, l, P[k]*sF.At(l, ig))
						}
					}
					ig++
				}
			}
		}

		// Solve the local equation system
		C, errS := A.LUSolve(B)
		if errS != nil {
			err = fmt.Errorf("SPR recovery: local solve failed for basis function %v: %v", b.Id, errS)
			return nil, err
		}

		// The recovered value is the constant term of the expansion, the
		// local polynomial evaluated at its own center
		for l := 0; l < nCmp; l++ {
			sValues.Set(l, ip, C.At(0, l))
		}
	}

	// Project the Greville point results onto the spline basis to find
	// the control point values
	return Interpolate(m, gpar[0], gpar[1], sValues)
}

// chooseSupport selects the element set for the local fit around basis
// function b. The direct support under-determines the local system for
// basis functions with too few distinct reduced-order samples, as happens
// near extraordinary regions of adaptively refined meshes, so the extended
// support is used unconditionally. Selecting the direct support whenever
// nSamplesPerElement*len(b.Support) >= nPol is a documented alternative
// that has not been validated for derivative orders above 1.
func chooseSupport(m *LR2D.Mesh, b *LR2D.BasisFunction, nSamplesPerElement, nPol int) utils.Index {
	return m.ExtendedSupport(b.Id)
}

// evalMonomials evaluates the centered 2D monomial basis x^i*y^j for
// i < n1, j < n2, ordered with i running fastest.
func evalMonomials(n1, n2 int, x, y float64) (P []float64) {
	P = make([]float64, n1*n2)
	ip := 0
	for j := 0; j < n2; j++ {
		for i := 0; i < n1; i++ {
			P[ip] = utils.POW(x, i) * utils.POW(y, j)
			ip++
		}
	}
	return
}
