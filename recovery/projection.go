package recovery

import (
	"fmt"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
)

// ProjectL2 assembles and solves the patch-global least squares system
// for all field components simultaneously, returning the control point
// coefficient table (one row per component, one column per basis function).
//
// In continuous mode the mass matrix and right hand side are integrated
// with an nGauss point rule per direction, weighted by the parametric
// Jacobian; integration points with a zero Jacobian determinant are skipped
// as negligible-measure singularities. In discrete mode the system is a
// reduced collocation at (order-1) Gauss points per direction with unit
// weights.
func ProjectL2(m *LR2D.Mesh, f FieldSource, continuous bool, nGauss int) (sField utils.Matrix, err error) {
	if m.Rational() {
		err = fmt.Errorf("global projection: rational (weighted) bases are not supported")
		return
	}
	var (
		k1, k2   = m.Order(0), m.Order(1)
		ng1, ng2 = nGauss, nGauss
	)
	if !continuous {
		ng1, ng2 = k1-1, k2-1
	}
	xg, wg1, err := utils.GaussLegendre(ng1)
	if err != nil {
		return
	}
	yg, wg2, err := utils.GaussLegendre(ng2)
	if err != nil {
		return
	}

	// Set up the projection matrices
	var (
		nnod  = m.NumBasis()
		ncomp = f.NumFields()
		A     = utils.NewDOK(nnod, nnod)
		B     = utils.NewMatrix(nnod, ncomp)
	)

	// === Assembly loop over all elements in the patch ====================
	for _, el := range m.Elements {
		var dA float64
		if continuous {
			if dA = 0.25 * m.ParametricArea(el.Id); dA < 0 {
				err = fmt.Errorf("topology error: negative parametric area on element %v", el.Id)
				return
			}
		}

		// Parameter values of the integration points over this element,
		// expanded to the unstructured representation
		var gpar [2][]float64
		gpar[0] = m.GaussPointParameters(0, el.Id, xg.Data())
		gpar[1] = m.GaussPointParameters(1, el.Id, yg.Data())
		unstrGpar := ExpandTensorGrid(gpar)

		// Evaluate the secondary solution at all integration points
		var sF utils.Matrix
		if sF, err = f.EvalAt(unstrGpar[0], unstrGpar[1]); err != nil {
			return
		}

		// --- Integration loop over all Gauss points in each direction ---
		ip := 0
		for j := 0; j < ng2; j++ {
			for i := 0; i < ng1; i++ {
				var (
					u, v = gpar[0][i], gpar[1][j]
					phi  = m.EvalBasisElement(el.Id, u, v)
					dJw  = 1.0
				)
				if continuous {
					dJw = dA * wg1.AtVec(i) * wg2.AtVec(j) * m.Jacobian(el.Id, u, v)
					if dJw == 0 {
						ip++
						continue // skip singular points
					}
				}

				// Integrate the linear system A*x=B
				for ii, inod := range el.Nodes {
					for jj, jnod := range el.Nodes {
						A.AddAt(inod, jnod, phi[ii]*phi[jj]*dJw)
					}
					for r := 0; r < ncomp; r++ {
						B.AddAt(inod, r, phi[ii]*sF.At(r, ip)*dJw)
					}
				}
				ip++
			}
		}
	}

	// Solve the patch-global equation system, all components at once
	X, err := A.ToCSR().SolveCG(B)
	if err != nil {
		err = fmt.Errorf("global projection solve failed: %v", err)
		return
	}

	// Store the control-point values of the projected field
	sField = utils.NewMatrix(ncomp, nnod)
	for i := 0; i < nnod; i++ {
		for r := 0; r < ncomp; r++ {
			sField.Set(r, i, X.At(i, r))
		}
	}
	return
}

// ProjectL2Field runs ProjectL2 and scatters the result into a copy of the
// mesh, the artifact consumed by downstream post-processing.
func ProjectL2Field(m *LR2D.Mesh, f FieldSource, continuous bool, nGauss int) (ans *LR2D.Mesh, err error) {
	sField, err := ProjectL2(m, f, continuous, nGauss)
	if err != nil {
		return
	}
	ans = m.Clone()
	applyCoefficients(ans, sField)
	return
}

// ProjectAtGreville evaluates the raw field at the Greville anchors and
// collocates, the cheapest of the recovery strategies. The anchor count
// equals the basis function count by construction.
func ProjectAtGreville(m *LR2D.Mesh, f FieldSource) (ans *LR2D.Mesh, err error) {
	var gpar [2][]float64
	for dir := 0; dir < 2; dir++ {
		if gpar[dir], err = m.GrevilleParameters(dir); err != nil {
			return
		}
	}
	sValues, err := f.EvalAt(gpar[0], gpar[1])
	if err != nil {
		return
	}
	return Interpolate(m, gpar[0], gpar[1], sValues)
}

func applyCoefficients(m *LR2D.Mesh, sField utils.Matrix) {
	ncomp, _ := sField.Dims()
	m.RebuildDimension(ncomp)
	for i, b := range m.Basis {
		for r := 0; r < ncomp; r++ {
			b.Cp[r] = sField.At(r, i)
		}
	}
}
