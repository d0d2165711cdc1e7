package Elasticity2D

import (
	"fmt"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
)

// Material is a plane strain, isotropic linear elastic material.
type Material struct {
	E  float64 // Young's modulus
	Nu float64 // Poisson's ratio
}

// Stress maps engineering strains (eps_xx, eps_yy, gamma_xy) to Cauchy
// stresses (sigma_xx, sigma_yy, sigma_xy).
func (mt Material) Stress(eps [3]float64) (sigma [3]float64) {
	var (
		c = mt.E / ((1 + mt.Nu) * (1 - 2*mt.Nu))
	)
	sigma[0] = c * ((1-mt.Nu)*eps[0] + mt.Nu*eps[1])
	sigma[1] = c * (mt.Nu*eps[0] + (1-mt.Nu)*eps[1])
	sigma[2] = c * (1 - 2*mt.Nu) / 2 * eps[2]
	return
}

// StressField exposes the stress of a primary displacement solution as a
// raw field source for recovery. The raw stresses are derivatives of the
// piecewise polynomial displacement and hence discontinuous across element
// boundaries, which is exactly what the recovery strategies smooth out.
type StressField struct {
	Mesh *LR2D.Mesh // primary solution, 2 displacement components
	Mat  Material
}

func NewStressField(m *LR2D.Mesh, mat Material) (sf *StressField, err error) {
	if m.NumComponents() != 2 {
		err = fmt.Errorf("stress field needs a 2 component displacement solution, mesh has %v", m.NumComponents())
		return
	}
	sf = &StressField{Mesh: m, Mat: mat}
	return
}

func (sf *StressField) NumFields() int       { return 3 }
func (sf *StressField) DerivativeOrder() int { return 1 }

func (sf *StressField) EvalAt(u, v []float64) (sField utils.Matrix, err error) {
	if len(u) != len(v) {
		err = fmt.Errorf("sample coordinate counts disagree: len(u)=%v len(v)=%v", len(u), len(v))
		return
	}
	sField = utils.NewMatrix(3, len(u))
	for ip := range u {
		var sigma [3]float64
		if sigma, err = sf.stressAt(u[ip], v[ip]); err != nil {
			err = fmt.Errorf("stress evaluation failed at sample %v: %v", ip, err)
			return
		}
		for r := 0; r < 3; r++ {
			sField.Set(r, ip, sigma[r])
		}
	}
	return
}

func (sf *StressField) stressAt(u, v float64) (sigma [3]float64, err error) {
	var (
		m = sf.Mesh
	)
	iel, err := m.ElementContaining(u, v)
	if err != nil {
		return
	}
	grad, err := m.EvalFieldGrad(u, v)
	if err != nil {
		return
	}
	var (
		J    = m.JacobianMatrix(iel, u, v)
		detJ = J[0][0]*J[1][1] - J[0][1]*J[1][0]
	)
	if detJ == 0 {
		err = fmt.Errorf("singular Jacobian at (%v,%v)", u, v)
		return
	}
	// Parametric to physical gradients through the inverse Jacobian
	var ddx, ddy [2]float64
	for r := 0; r < 2; r++ {
		ddx[r] = (grad[r][0]*J[1][1] - grad[r][1]*J[1][0]) / detJ
		ddy[r] = (grad[r][1]*J[0][0] - grad[r][0]*J[0][1]) / detJ
	}
	eps := [3]float64{
		ddx[0],          // eps_xx
		ddy[1],          // eps_yy
		ddy[0] + ddx[1], // gamma_xy
	}
	sigma = sf.Mat.Stress(eps)
	return
}
