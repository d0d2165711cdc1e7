package recovery

import (
	"fmt"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
)

// FieldSource is the single capability the recovery engine needs from a
// secondary solution: raw (possibly discontinuous) field values at an
// ordered batch of parametric sample points. Any constitutive model or
// post-processed quantity can sit behind this interface.
type FieldSource interface {
	// NumFields reports the number of field components.
	NumFields() int
	// DerivativeOrder reports the derivative order the source consumes
	// from the primary solution; it drives superconvergent patch sizing.
	DerivativeOrder() int
	// EvalAt returns the component-major value table for the given batch,
	// one column per sample point. Evaluation failure at any point fails
	// the whole batch.
	EvalAt(u, v []float64) (utils.Matrix, error)
}

// AnalyticField adapts a closed-form function of the physical coordinates
// to a FieldSource, mapping parametric samples through the mesh geometry.
type AnalyticField struct {
	Mesh  *LR2D.Mesh
	NComp int
	Order int // consumed derivative order
	F     func(x, y float64) []float64
}

func (a *AnalyticField) NumFields() int       { return a.NComp }
func (a *AnalyticField) DerivativeOrder() int { return a.Order }

func (a *AnalyticField) EvalAt(u, v []float64) (sField utils.Matrix, err error) {
	if len(u) != len(v) {
		err = fmt.Errorf("sample coordinate counts disagree: len(u)=%v len(v)=%v", len(u), len(v))
		return
	}
	sField = utils.NewMatrix(a.NComp, len(u))
	for ip := range u {
		x, y, errP := a.Mesh.Point(u[ip], v[ip])
		if errP != nil {
			err = fmt.Errorf("field evaluation failed at sample %v: %v", ip, errP)
			return
		}
		vals := a.F(x, y)
		if len(vals) != a.NComp {
			err = fmt.Errorf("field returned %v components, expected %v", len(vals), a.NComp)
			return
		}
		for r := 0; r < a.NComp; r++ {
			sField.Set(r, ip, vals[r])
		}
	}
	return
}
