package LR2D

import (
	"fmt"
	"sort"

	"github.com/OpenSim-Technology/IFEM/utils"
)

// BasisFunction is one unit of the spline representation. Each function
// carries its own local knot windows, which keeps the data model valid for
// hierarchically refined meshes where no global tensor structure exists.
type BasisFunction struct {
	Id             int
	KnotsU, KnotsV []float64  // local knot windows, order+1 knots each
	Greville       [2]float64 // anchor parameter coordinates
	Support        utils.Index
	Cp             []float64 // control point value, one scalar per field component
}

// Element is a non zero knot span rectangle. Immutable during recovery.
type Element struct {
	Id                     int
	UMin, UMax, VMin, VMax float64
	Nodes                  utils.Index // local index -> global basis function id
}

// Mesh is a two dimensional spline patch: an arena of elements plus per
// basis function element index sets.
type Mesh struct {
	K1, K2     int // basis orders (polynomial degree + 1) per direction
	Basis      []*BasisFunction
	Elements   []*Element
	Geom       [][2]float64 // geometry control points, one per basis function
	Weights    []float64    // non-nil marks a rational basis
	UEnd, VEnd float64
}

// NewMesh builds a patch from open knot vectors. Order k requires the first
// and last k knots repeated; the basis count per direction is
// len(knots) - k.
func NewMesh(k1, k2 int, knotsU, knotsV []float64) (m *Mesh, err error) {
	if k1 < 2 || k2 < 2 {
		err = fmt.Errorf("unsupported basis order: k1,k2 = %v,%v, need at least 2", k1, k2)
		return
	}
	if err = checkOpenKnots(knotsU, k1); err != nil {
		return
	}
	if err = checkOpenKnots(knotsV, k2); err != nil {
		return
	}
	var (
		nU = len(knotsU) - k1
		nV = len(knotsV) - k2
	)
	m = &Mesh{
		K1:   k1,
		K2:   k2,
		UEnd: knotsU[len(knotsU)-1],
		VEnd: knotsV[len(knotsV)-1],
	}
	// Basis functions with local knot windows and Greville anchors
	for j := 0; j < nV; j++ {
		for i := 0; i < nU; i++ {
			b := &BasisFunction{
				Id:     len(m.Basis),
				KnotsU: knotsU[i : i+k1+1],
				KnotsV: knotsV[j : j+k2+1],
			}
			b.Greville[0] = greville(b.KnotsU)
			b.Greville[1] = greville(b.KnotsV)
			m.Basis = append(m.Basis, b)
		}
	}
	// Elements from non zero knot spans
	spansU := distinctSpans(knotsU)
	spansV := distinctSpans(knotsV)
	for _, sv := range spansV {
		for _, su := range spansU {
			el := &Element{
				Id:   len(m.Elements),
				UMin: su[0], UMax: su[1],
				VMin: sv[0], VMax: sv[1],
			}
			for _, b := range m.Basis {
				if b.KnotsU[0] <= el.UMin && el.UMax <= b.KnotsU[k1] &&
					b.KnotsV[0] <= el.VMin && el.VMax <= b.KnotsV[k2] {
					el.Nodes = append(el.Nodes, b.Id)
					b.Support = append(b.Support, el.Id)
				}
			}
			m.Elements = append(m.Elements, el)
		}
	}
	// Default geometry interpolates the parametric domain (Greville
	// abscissae reproduce linear functions)
	m.Geom = make([][2]float64, len(m.Basis))
	for i, b := range m.Basis {
		m.Geom[i] = b.Greville
	}
	return
}

// NewUniformMesh builds a patch on [0,1]x[0,1] with nel1 x nel2 equal
// elements.
func NewUniformMesh(k1, k2, nel1, nel2 int) (m *Mesh, err error) {
	if nel1 < 1 || nel2 < 1 {
		err = fmt.Errorf("invalid element counts: nel1,nel2 = %v,%v", nel1, nel2)
		return
	}
	return NewMesh(k1, k2, uniformOpenKnots(k1, nel1), uniformOpenKnots(k2, nel2))
}

func uniformOpenKnots(k, nel int) (t []float64) {
	for i := 0; i < k; i++ {
		t = append(t, 0)
	}
	for i := 1; i < nel; i++ {
		t = append(t, float64(i)/float64(nel))
	}
	for i := 0; i < k; i++ {
		t = append(t, 1)
	}
	return
}

func checkOpenKnots(t []float64, k int) error {
	if len(t) < 2*k {
		return fmt.Errorf("knot vector too short for order %v: len = %v", k, len(t))
	}
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] {
			return fmt.Errorf("knot vector not non-decreasing at index %v", i)
		}
	}
	if t[0] != t[k-1] || t[len(t)-1] != t[len(t)-k] {
		return fmt.Errorf("knot vector is not open for order %v", k)
	}
	return nil
}

func greville(t []float64) (g float64) {
	// Mean of the interior degree knots of the local window
	var (
		k = len(t) - 1 // order
		d = k - 1
	)
	for i := 1; i <= d; i++ {
		g += t[i]
	}
	return g / float64(d)
}

func distinctSpans(t []float64) (spans [][2]float64) {
	for i := 1; i < len(t); i++ {
		if t[i] > t[i-1] {
			spans = append(spans, [2]float64{t[i-1], t[i]})
		}
	}
	return
}

func (m *Mesh) NumBasis() int { return len(m.Basis) }

func (m *Mesh) Order(dir int) int {
	if dir == 0 {
		return m.K1
	}
	return m.K2
}

func (m *Mesh) Rational() bool { return m.Weights != nil }

// SetWeights attaches rational weights to the basis. Recovery operations
// reject rational meshes; the flag exists so callers fail early instead of
// silently producing an unweighted projection.
func (m *Mesh) SetWeights(w []float64) error {
	if len(w) != len(m.Basis) {
		return fmt.Errorf("weight count %v does not match basis count %v", len(w), len(m.Basis))
	}
	m.Weights = w
	return nil
}

// SetGeometry replaces the geometry control points.
func (m *Mesh) SetGeometry(g [][2]float64) error {
	if len(g) != len(m.Basis) {
		return fmt.Errorf("geometry control point count %v does not match basis count %v", len(g), len(m.Basis))
	}
	m.Geom = g
	return nil
}

// GrevilleParameters returns the anchor coordinates of all basis functions
// in the given parametric direction.
func (m *Mesh) GrevilleParameters(dir int) (prm []float64, err error) {
	if dir < 0 || dir > 1 {
		err = fmt.Errorf("invalid parametric direction: %v", dir)
		return
	}
	prm = make([]float64, len(m.Basis))
	for i, b := range m.Basis {
		prm[i] = b.Greville[dir]
	}
	return
}

// ExtendedSupport returns the union of the supports of every basis function
// sharing at least one element with basis function ib. The result is a
// superset of the direct support, large enough to keep local fitting well
// posed on meshes where the direct support has too few non degenerate knot
// spans.
func (m *Mesh) ExtendedSupport(ib int) (ext utils.Index) {
	var (
		b       = m.Basis[ib]
		inExt   = make(map[int]bool)
		sharing = make(map[int]bool)
	)
	for _, iel := range b.Support {
		for _, jb := range m.Elements[iel].Nodes {
			sharing[jb] = true
		}
	}
	for jb := range sharing {
		for _, iel := range m.Basis[jb].Support {
			inExt[iel] = true
		}
	}
	for iel := range inExt {
		ext = append(ext, iel)
	}
	sort.Ints(ext)
	return
}

// ElementContaining locates an element whose parametric domain contains
// (u,v). Points on inter-element boundaries may belong to either neighbor.
func (m *Mesh) ElementContaining(u, v float64) (iel int, err error) {
	for _, el := range m.Elements {
		if u >= el.UMin && (u < el.UMax || el.UMax == m.UEnd && u <= el.UMax) &&
			v >= el.VMin && (v < el.VMax || el.VMax == m.VEnd && v <= el.VMax) {
			return el.Id, nil
		}
	}
	err = fmt.Errorf("parametric point (%v,%v) is outside the patch domain", u, v)
	return
}

func (m *Mesh) basisValue(b *BasisFunction, u, v float64) float64 {
	return oneBasis(b.KnotsU, u, m.UEnd) * oneBasis(b.KnotsV, v, m.VEnd)
}

// EvalBasisElement evaluates the element-local basis functions at (u,v),
// ordered as el.Nodes.
func (m *Mesh) EvalBasisElement(iel int, u, v float64) (phi []float64) {
	var (
		el = m.Elements[iel]
	)
	phi = make([]float64, len(el.Nodes))
	for loc, ib := range el.Nodes {
		phi[loc] = m.basisValue(m.Basis[ib], u, v)
	}
	return
}

// EvalBasisDerivElement evaluates values and first parametric derivatives
// of the element-local basis functions at (u,v).
func (m *Mesh) EvalBasisDerivElement(iel int, u, v float64) (phi, dphidu, dphidv []float64) {
	var (
		el = m.Elements[iel]
		n  = len(el.Nodes)
	)
	phi = make([]float64, n)
	dphidu = make([]float64, n)
	dphidv = make([]float64, n)
	for loc, ib := range el.Nodes {
		b := m.Basis[ib]
		nu := oneBasis(b.KnotsU, u, m.UEnd)
		nv := oneBasis(b.KnotsV, v, m.VEnd)
		phi[loc] = nu * nv
		dphidu[loc] = oneBasisDeriv(b.KnotsU, u, m.UEnd) * nv
		dphidv[loc] = nu * oneBasisDeriv(b.KnotsV, v, m.VEnd)
	}
	return
}

// EvalBasisAll evaluates every basis function at (u,v) as a dense vector,
// used to fill collocation matrix rows.
func (m *Mesh) EvalBasisAll(u, v float64) (phi []float64) {
	phi = make([]float64, len(m.Basis))
	for i, b := range m.Basis {
		phi[i] = m.basisValue(b, u, v)
	}
	return
}

// Point maps a parametric point to physical coordinates through the
// geometry control points.
func (m *Mesh) Point(u, v float64) (x, y float64, err error) {
	iel, err := m.ElementContaining(u, v)
	if err != nil {
		return
	}
	phi := m.EvalBasisElement(iel, u, v)
	for loc, ib := range m.Elements[iel].Nodes {
		x += phi[loc] * m.Geom[ib][0]
		y += phi[loc] * m.Geom[ib][1]
	}
	return
}

// Jacobian returns the determinant of the parametric-to-physical Jacobian
// at (u,v) within element iel. A zero determinant flags a degenerate
// (singular) point.
func (m *Mesh) Jacobian(iel int, u, v float64) (detJ float64) {
	var (
		_, dphidu, dphidv      = m.EvalBasisDerivElement(iel, u, v)
		dxdu, dxdv, dydu, dydv float64
	)
	for loc, ib := range m.Elements[iel].Nodes {
		dxdu += dphidu[loc] * m.Geom[ib][0]
		dxdv += dphidv[loc] * m.Geom[ib][0]
		dydu += dphidu[loc] * m.Geom[ib][1]
		dydv += dphidv[loc] * m.Geom[ib][1]
	}
	detJ = dxdu*dydv - dxdv*dydu
	return
}

// JacobianMatrix returns the entries [dxdu dxdv; dydu dydv] at (u,v).
func (m *Mesh) JacobianMatrix(iel int, u, v float64) (J [2][2]float64) {
	var (
		_, dphidu, dphidv = m.EvalBasisDerivElement(iel, u, v)
	)
	for loc, ib := range m.Elements[iel].Nodes {
		J[0][0] += dphidu[loc] * m.Geom[ib][0]
		J[0][1] += dphidv[loc] * m.Geom[ib][0]
		J[1][0] += dphidu[loc] * m.Geom[ib][1]
		J[1][1] += dphidv[loc] * m.Geom[ib][1]
	}
	return
}

// ParametricArea returns the parametric measure of element iel.
func (m *Mesh) ParametricArea(iel int) float64 {
	el := m.Elements[iel]
	return (el.UMax - el.UMin) * (el.VMax - el.VMin)
}

// GaussPointParameters maps reference rule coordinates xg on [-1,1] into
// the knot span of element iel in the given direction.
func (m *Mesh) GaussPointParameters(dir, iel int, xg []float64) (prm []float64) {
	var (
		el      = m.Elements[iel]
		lo, hi  float64
		mid, h2 float64
	)
	if dir == 0 {
		lo, hi = el.UMin, el.UMax
	} else {
		lo, hi = el.VMin, el.VMax
	}
	mid, h2 = 0.5*(lo+hi), 0.5*(hi-lo)
	prm = make([]float64, len(xg))
	for i, x := range xg {
		prm[i] = mid + h2*x
	}
	return
}

// RebuildDimension resizes the control point storage to ncomp field
// components per basis function.
func (m *Mesh) RebuildDimension(ncomp int) {
	for _, b := range m.Basis {
		b.Cp = make([]float64, ncomp)
	}
}

// NumComponents reports the current control point dimension.
func (m *Mesh) NumComponents() int {
	if len(m.Basis) == 0 || m.Basis[0].Cp == nil {
		return 0
	}
	return len(m.Basis[0].Cp)
}

// EvalField evaluates the control point field at (u,v), one value per
// component.
func (m *Mesh) EvalField(u, v float64) (vals []float64, err error) {
	var (
		ncomp = m.NumComponents()
	)
	if ncomp == 0 {
		err = fmt.Errorf("mesh carries no control point values")
		return
	}
	iel, err := m.ElementContaining(u, v)
	if err != nil {
		return
	}
	phi := m.EvalBasisElement(iel, u, v)
	vals = make([]float64, ncomp)
	for loc, ib := range m.Elements[iel].Nodes {
		for r := 0; r < ncomp; r++ {
			vals[r] += phi[loc] * m.Basis[ib].Cp[r]
		}
	}
	return
}

// EvalFieldGrad evaluates the parametric gradient of the control point
// field at (u,v): one [d/du, d/dv] pair per component.
func (m *Mesh) EvalFieldGrad(u, v float64) (grad [][2]float64, err error) {
	var (
		ncomp = m.NumComponents()
	)
	if ncomp == 0 {
		err = fmt.Errorf("mesh carries no control point values")
		return
	}
	iel, err := m.ElementContaining(u, v)
	if err != nil {
		return
	}
	_, dphidu, dphidv := m.EvalBasisDerivElement(iel, u, v)
	grad = make([][2]float64, ncomp)
	for loc, ib := range m.Elements[iel].Nodes {
		for r := 0; r < ncomp; r++ {
			grad[r][0] += dphidu[loc] * m.Basis[ib].Cp[r]
			grad[r][1] += dphidv[loc] * m.Basis[ib].Cp[r]
		}
	}
	return
}

// Clone copies the full topology, geometry and control point storage.
func (m *Mesh) Clone() (c *Mesh) {
	c = &Mesh{
		K1: m.K1, K2: m.K2,
		UEnd: m.UEnd, VEnd: m.VEnd,
	}
	for _, b := range m.Basis {
		nb := &BasisFunction{
			Id:       b.Id,
			KnotsU:   b.KnotsU,
			KnotsV:   b.KnotsV,
			Greville: b.Greville,
			Support:  append(utils.Index{}, b.Support...),
		}
		if b.Cp != nil {
			nb.Cp = append([]float64{}, b.Cp...)
		}
		c.Basis = append(c.Basis, nb)
	}
	for _, el := range m.Elements {
		c.Elements = append(c.Elements, &Element{
			Id:   el.Id,
			UMin: el.UMin, UMax: el.UMax,
			VMin: el.VMin, VMax: el.VMax,
			Nodes: append(utils.Index{}, el.Nodes...),
		})
	}
	c.Geom = append([][2]float64{}, m.Geom...)
	if m.Weights != nil {
		c.Weights = append([]float64{}, m.Weights...)
	}
	return
}
