package recovery

import (
	"fmt"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
)

// Interpolate produces a copy of the mesh whose spline field passes
// exactly through the given values at the given parameters. The sample
// count must equal the basis function count; a single factorization is
// shared across all field components.
func Interpolate(m *LR2D.Mesh, upar, vpar []float64, points utils.Matrix) (ans *LR2D.Mesh, err error) {
	if m.Rational() {
		err = fmt.Errorf("interpolation: rational (weighted) bases are not supported")
		return
	}

	// Sanity check on input parameters
	var (
		nBasis      = m.NumBasis()
		ncomp, npts = points.Dims()
	)
	if len(upar) != nBasis || len(vpar) != nBasis || npts != nBasis {
		err = fmt.Errorf("interpolation: mismatching input array sizes: size(upar)=%v size(vpar)=%v size(points)=%v nBasis=%v",
			len(upar), len(vpar), npts, nBasis)
		return
	}

	// Evaluate all basis functions at all points, stored in the A-matrix
	// (same row = same evaluation point)
	A := utils.NewMatrix(nBasis, nBasis)
	for i := 0; i < nBasis; i++ {
		phi := m.EvalBasisAll(upar[i], vpar[i])
		for j := 0; j < nBasis; j++ {
			A.Set(i, j, phi[j])
		}
	}

	// Solve for all solution components - one right-hand-side for each
	X, err := A.LUSolve(points.Transpose())
	if err != nil {
		err = fmt.Errorf("interpolation solve failed: %v", err)
		return
	}

	// Copy the mesh and swap in the new control point values
	ans = m.Clone()
	ans.RebuildDimension(ncomp)
	for i, b := range ans.Basis {
		for r := 0; r < ncomp; r++ {
			b.Cp[r] = X.At(i, r)
		}
	}
	return
}
