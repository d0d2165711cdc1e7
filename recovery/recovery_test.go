package recovery

import (
	"fmt"
	"testing"

	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantField(m *LR2D.Mesh, vals ...float64) *AnalyticField {
	return &AnalyticField{
		Mesh:  m,
		NComp: len(vals),
		Order: 1,
		F: func(x, y float64) []float64 {
			return append([]float64{}, vals...)
		},
	}
}

func TestProjectL2Constant(t *testing.T) {
	// Single element, bilinear order, constant field: all control points
	// must come out as exactly the sampled constant
	{
		m, err := LR2D.NewMesh(2, 2, []float64{0, 0, 1, 1}, []float64{0, 0, 1, 1})
		require.NoError(t, err)
		sField, err := ProjectL2(m, constantField(m, 3), true, 2)
		require.NoError(t, err)
		nc, nb := sField.Dims()
		assert.Equal(t, 1, nc)
		assert.Equal(t, 4, nb)
		for i := 0; i < nb; i++ {
			assert.InDelta(t, 3., sField.At(0, i), 1.e-10)
		}
	}
	// Refined cubic mesh, two components, continuous and discrete modes
	for _, continuous := range []bool{true, false} {
		m, err := LR2D.NewUniformMesh(3, 3, 4, 4)
		require.NoError(t, err)
		sField, err := ProjectL2(m, constantField(m, 3, -2), continuous, 3)
		require.NoError(t, err, "continuous=%v", continuous)
		_, nb := sField.Dims()
		for i := 0; i < nb; i++ {
			assert.InDelta(t, 3., sField.At(0, i), 1.e-9)
			assert.InDelta(t, -2., sField.At(1, i), 1.e-9)
		}
	}
}

func TestProjectL2LinearContinuous(t *testing.T) {
	// A linear field lies in the spline space, so continuous projection
	// reproduces it everywhere
	m, err := LR2D.NewUniformMesh(3, 3, 3, 3)
	require.NoError(t, err)
	f := &AnalyticField{
		Mesh: m, NComp: 1, Order: 1,
		F: func(x, y float64) []float64 { return []float64{2*x - 3*y + 1} },
	}
	ans, err := ProjectL2Field(m, f, true, 4)
	require.NoError(t, err)
	for _, u := range []float64{0, 0.3, 0.65, 1} {
		for _, v := range []float64{0, 0.45, 0.8, 1} {
			vals, err := ans.EvalField(u, v)
			require.NoError(t, err)
			assert.InDelta(t, 2*u-3*v+1, vals[0], 1.e-8)
		}
	}
}

func TestProjectL2SkipsSingularPoints(t *testing.T) {
	// Geometry collapsed over the middle knot span: every integration
	// point there has a zero Jacobian determinant and must be skipped
	// without failing the assembly
	m, err := LR2D.NewMesh(2, 2,
		[]float64{0, 0, 1. / 3., 2. / 3., 1, 1},
		[]float64{0, 0, 1, 1})
	require.NoError(t, err)
	var (
		gx   = []float64{0, 0.5, 0.5, 1}
		geom = make([][2]float64, m.NumBasis())
	)
	for ib, b := range m.Basis {
		geom[ib] = [2]float64{gx[ib%4], b.Greville[1]}
	}
	require.NoError(t, m.SetGeometry(geom))

	midEl, err := m.ElementContaining(0.5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0., m.Jacobian(midEl, 0.5, 0.5))

	sField, err := ProjectL2(m, constantField(m, 3), true, 2)
	require.NoError(t, err)
	_, nb := sField.Dims()
	for i := 0; i < nb; i++ {
		assert.InDelta(t, 3., sField.At(0, i), 1.e-9)
	}
}

func TestProjectL2RejectsRational(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetWeights(utils.ConstArray(m.NumBasis(), 1)))
	_, err = ProjectL2(m, constantField(m, 1), true, 2)
	assert.ErrorContains(t, err, "rational")
}

func TestProjectL2EvaluationFailure(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 2, 2)
	require.NoError(t, err)
	_, err = ProjectL2(m, &failingField{}, true, 2)
	assert.ErrorContains(t, err, "no value")
}

type failingField struct{}

func (f *failingField) NumFields() int       { return 1 }
func (f *failingField) DerivativeOrder() int { return 1 }
func (f *failingField) EvalAt(u, v []float64) (utils.Matrix, error) {
	return utils.Matrix{}, fmt.Errorf("no value at sample 0")
}

func TestSPRConstant(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 4, 4)
	require.NoError(t, err)
	ans, err := RecoverSPR(m, constantField(m, 3, 0.5))
	require.NoError(t, err)
	for _, b := range ans.Basis {
		assert.InDelta(t, 3., b.Cp[0], 1.e-9)
		assert.InDelta(t, 0.5, b.Cp[1], 1.e-9)
	}
}

func TestSPRSuperconvergence(t *testing.T) {
	// Raw fields of polynomial degree <= order-m are recovered exactly
	// Bilinear basis, m=1: linear fields
	{
		m, err := LR2D.NewUniformMesh(2, 2, 4, 4)
		require.NoError(t, err)
		f := &AnalyticField{
			Mesh: m, NComp: 1, Order: 1,
			F: func(x, y float64) []float64 { return []float64{2*x - 3*y + 1} },
		}
		ans, err := RecoverSPR(m, f)
		require.NoError(t, err)
		for _, u := range []float64{0, 0.2, 0.55, 1} {
			for _, v := range []float64{0, 0.35, 0.7, 1} {
				vals, err := ans.EvalField(u, v)
				require.NoError(t, err)
				assert.InDelta(t, 2*u-3*v+1, vals[0], 1.e-9)
			}
		}
	}
	// Quadratic basis, m=1: quadratic fields
	{
		m, err := LR2D.NewUniformMesh(3, 3, 3, 3)
		require.NoError(t, err)
		f := &AnalyticField{
			Mesh: m, NComp: 1, Order: 1,
			F: func(x, y float64) []float64 { return []float64{x*x + x*y - y + 2} },
		}
		ans, err := RecoverSPR(m, f)
		require.NoError(t, err)
		for _, u := range []float64{0, 0.25, 0.6, 1} {
			for _, v := range []float64{0, 0.4, 0.85, 1} {
				vals, err := ans.EvalField(u, v)
				require.NoError(t, err)
				assert.InDelta(t, u*u+u*v-v+2, vals[0], 1.e-8)
			}
		}
	}
}

func TestSPRUnderdeterminedFails(t *testing.T) {
	// A single element yields one reduced-order sample against four
	// polynomial terms: the local system is singular and the whole
	// recovery must abort, naming the basis function
	m, err := LR2D.NewMesh(2, 2, []float64{0, 0, 1, 1}, []float64{0, 0, 1, 1})
	require.NoError(t, err)
	_, err = RecoverSPR(m, constantField(m, 1))
	assert.ErrorContains(t, err, "basis function 0")
}

func TestSPRRejectsRational(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 3, 3)
	require.NoError(t, err)
	require.NoError(t, m.SetWeights(utils.ConstArray(m.NumBasis(), 1)))
	_, err = RecoverSPR(m, constantField(m, 1))
	assert.ErrorContains(t, err, "rational")
}

func TestInterpolateRoundTrip(t *testing.T) {
	// Sampling the mesh's own field at the Greville anchors and
	// collocating must reproduce the original control points
	m, err := LR2D.NewUniformMesh(3, 3, 3, 3)
	require.NoError(t, err)
	m.RebuildDimension(2)
	for i, b := range m.Basis {
		b.Cp[0] = float64(i%5) - 2.
		b.Cp[1] = 0.1 * float64(i)
	}
	var gpar [2][]float64
	for dir := 0; dir < 2; dir++ {
		gpar[dir], err = m.GrevilleParameters(dir)
		require.NoError(t, err)
	}
	points := utils.NewMatrix(2, m.NumBasis())
	for ip := 0; ip < m.NumBasis(); ip++ {
		vals, err := m.EvalField(gpar[0][ip], gpar[1][ip])
		require.NoError(t, err)
		points.Set(0, ip, vals[0])
		points.Set(1, ip, vals[1])
	}
	ans, err := Interpolate(m, gpar[0], gpar[1], points)
	require.NoError(t, err)
	for i, b := range ans.Basis {
		assert.InDelta(t, m.Basis[i].Cp[0], b.Cp[0], 1.e-9)
		assert.InDelta(t, m.Basis[i].Cp[1], b.Cp[1], 1.e-9)
	}
}

func TestInterpolateSizeMismatch(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 2, 2)
	require.NoError(t, err)
	var (
		n      = m.NumBasis()
		good   = make([]float64, n)
		short  = make([]float64, n-1)
		points = utils.NewMatrix(1, n)
	)
	_, err = Interpolate(m, short, good, points)
	assert.ErrorContains(t, err, "mismatching input array sizes")
	assert.ErrorContains(t, err, fmt.Sprintf("nBasis=%v", n))

	_, err = Interpolate(m, good, good, utils.NewMatrix(1, n-2))
	assert.ErrorContains(t, err, fmt.Sprintf("size(points)=%v", n-2))
}

func TestInterpolateRejectsRational(t *testing.T) {
	m, err := LR2D.NewUniformMesh(2, 2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetWeights(utils.ConstArray(m.NumBasis(), 1)))
	n := m.NumBasis()
	_, err = Interpolate(m, make([]float64, n), make([]float64, n), utils.NewMatrix(1, n))
	assert.ErrorContains(t, err, "rational")
}

func TestProjectAtGreville(t *testing.T) {
	m, err := LR2D.NewUniformMesh(3, 2, 3, 2)
	require.NoError(t, err)
	f := &AnalyticField{
		Mesh: m, NComp: 1, Order: 0,
		F: func(x, y float64) []float64 { return []float64{x - y} },
	}
	ans, err := ProjectAtGreville(m, f)
	require.NoError(t, err)
	for _, u := range []float64{0, 0.4, 1} {
		for _, v := range []float64{0, 0.75, 1} {
			vals, err := ans.EvalField(u, v)
			require.NoError(t, err)
			assert.InDelta(t, u-v, vals[0], 1.e-9)
		}
	}
}

func TestExpandTensorGrid(t *testing.T) {
	out := ExpandTensorGrid([2][]float64{{0, 1, 2}, {2, 3, 5}})
	assert.Equal(t, []float64{0, 1, 2, 0, 1, 2, 0, 1, 2}, out[0])
	assert.Equal(t, []float64{2, 2, 2, 3, 3, 3, 5, 5, 5}, out[1])
}
