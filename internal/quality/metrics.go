// Package quality implements the lane-batched candidate quality metrics:
// separations, opening-angle cosines, impact-parameter and vertex chi-squares,
// decay length with its significance, and the topological selection
// quantities. Every metric is deterministic, side-effect free, and reports a
// finite sentinel instead of NaN or Inf when the input geometry degenerates,
// so downstream cuts operate on finite numbers only.
package quality

import (
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

const (
	// minCovDeterminant floors covariance determinants before inversion.
	// Position covariance sums below it are numerically rank deficient.
	minCovDeterminant = 1e-30

	// SingularChi2 is the finite rejection value reported when a covariance
	// sum cannot be inverted or a significance denominator vanishes. It
	// exceeds every sensible chi-square cut.
	SingularChi2 = 1e9

	// degenerateCos is reported when an opening or pointing angle is
	// undefined because one of the vectors has vanishing magnitude. It fails
	// every enabled minimum-cosine cut.
	degenerateCos = -1.0

	// minVecNorm guards angle denominators.
	minVecNorm = 1e-12
)

// PromptLdL is the decay-length significance below which a candidate is
// flagged as consistent with the primary vertex.
const PromptLdL = 3.0

// Distance returns the spatial separation of the two batches per lane.
// Meaningful after both have been expressed at their closest approach.
func Distance(a, b *geom.ParamLanes) lane.F64 {
	dx := a.X.Sub(b.X)
	dy := a.Y.Sub(b.Y)
	dz := a.Z.Sub(b.Z)
	return dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz)).SqrtGuard(SingularChi2)
}

// DistanceToPoint returns the separation between each lane and the target
// point.
func DistanceToPoint(p *geom.ParamLanes, pt geom.Point) lane.F64 {
	dx := p.X.Sub(pt.X)
	dy := p.Y.Sub(pt.Y)
	dz := p.Z.Sub(pt.Z)
	return dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz)).SqrtGuard(SingularChi2)
}

// cosAgainst returns cos(p, (sx,sy,sz)) per lane with degenerate lanes set to
// degenerateCos and the result clamped to [-1, 1].
func cosAgainst(p *geom.ParamLanes, sx, sy, sz lane.F64) lane.F64 {
	dot := p.Px.Mul(sx).Add(p.Py.Mul(sy)).Add(p.Pz.Mul(sz))
	n2 := sx.Mul(sx).Add(sy.Mul(sy)).Add(sz.Mul(sz))
	den := p.P2().Mul(n2).SqrtGuard(0)
	cos := dot.DivGuard(den, minVecNorm, degenerateCos)
	return cos.Min(lane.Splat(1)).Max(lane.Splat(-1))
}

// CosOpen returns the opening consistency of a two-track combination: the
// smaller of the two cosines between a daughter momentum and the summed
// momentum. Values near one mean both daughters point along the candidate.
func CosOpen(a, b *geom.ParamLanes) lane.F64 {
	sx := a.Px.Add(b.Px)
	sy := a.Py.Add(b.Py)
	sz := a.Pz.Add(b.Pz)
	return cosAgainst(a, sx, sy, sz).Min(cosAgainst(b, sx, sy, sz))
}

// CosOpenThree extends CosOpen to three daughters against their full
// momentum sum.
func CosOpenThree(a, b, c *geom.ParamLanes) lane.F64 {
	sx := a.Px.Add(b.Px).Add(c.Px)
	sy := a.Py.Add(b.Py).Add(c.Py)
	sz := a.Pz.Add(b.Pz).Add(c.Pz)
	cos := cosAgainst(a, sx, sy, sz).Min(cosAgainst(b, sx, sy, sz))
	return cos.Min(cosAgainst(c, sx, sy, sz))
}

// chi2Sym3 evaluates d^T C^{-1} d per lane for the packed symmetric matrix
// C = [[xx, xy, xz], [xy, yy, yz], [xz, yz, zz]] via the adjugate, reporting
// SingularChi2 where |C| < minCovDeterminant or the form is not finite.
func chi2Sym3(d0, d1, d2, xx, xy, yy, xz, yz, zz lane.F64) lane.F64 {
	a00 := yy.Mul(zz).Sub(yz.Mul(yz))
	a01 := xz.Mul(yz).Sub(xy.Mul(zz))
	a02 := xy.Mul(yz).Sub(xz.Mul(yy))
	a11 := xx.Mul(zz).Sub(xz.Mul(xz))
	a12 := xy.Mul(xz).Sub(xx.Mul(yz))
	a22 := xx.Mul(yy).Sub(xy.Mul(xy))

	det := xx.Mul(a00).Add(xy.Mul(a01)).Add(xz.Mul(a02))

	num := d0.Mul(d0).Mul(a00).
		Add(d1.Mul(d1).Mul(a11)).
		Add(d2.Mul(d2).Mul(a22)).
		Add(d0.Mul(d1).Mul(a01).Scale(2)).
		Add(d0.Mul(d2).Mul(a02).Scale(2)).
		Add(d1.Mul(d2).Mul(a12).Scale(2))

	chi2 := num.DivGuard(det, minCovDeterminant, SingularChi2)
	// A positive-definite form cannot be negative; tiny negative values are
	// inversion roundoff.
	return chi2.Max(lane.Splat(0))
}

// quadSym3 evaluates d^T C d per lane for the packed symmetric matrix C.
func quadSym3(d0, d1, d2, xx, xy, yy, xz, yz, zz lane.F64) lane.F64 {
	return d0.Mul(d0).Mul(xx).
		Add(d1.Mul(d1).Mul(yy)).
		Add(d2.Mul(d2).Mul(zz)).
		Add(d0.Mul(d1).Mul(xy).Scale(2)).
		Add(d0.Mul(d2).Mul(xz).Scale(2)).
		Add(d1.Mul(d2).Mul(yz).Scale(2))
}

// chi2ToPoint weighs the separation between each lane position and a point
// carrying its own packed covariance.
func chi2ToPoint(p *geom.ParamLanes, pt geom.Point, ptCov [particle.VertexCovSize]float64) lane.F64 {
	d0 := p.X.Sub(pt.X)
	d1 := p.Y.Sub(pt.Y)
	d2 := p.Z.Sub(pt.Z)
	return chi2Sym3(d0, d1, d2,
		p.Cov[0].Add(lane.Splat(ptCov[0])),
		p.Cov[1].Add(lane.Splat(ptCov[1])),
		p.Cov[2].Add(lane.Splat(ptCov[2])),
		p.Cov[3].Add(lane.Splat(ptCov[3])),
		p.Cov[4].Add(lane.Splat(ptCov[4])),
		p.Cov[5].Add(lane.Splat(ptCov[5])),
	)
}

// Chi2ToVertex transports every lane to its closest approach to the vertex
// and returns the impact-parameter chi-square there, weighted by the summed
// track and vertex position covariances. Large values mean the track cannot
// come from the vertex.
func Chi2ToVertex(p geom.ParamLanes, v *particle.Vertex, bz float64) lane.F64 {
	pt := geom.PointFromVertex(v)
	at := geom.PropagateToPoint(p, pt, bz)
	return chi2ToPoint(&at, pt, v.Cov)
}

// Chi2Geo weighs the residual separation of two batches at their closest
// approach by their combined position covariances. Well-fitted pairs from a
// common vertex give values near their degrees of freedom.
func Chi2Geo(a, b *geom.ParamLanes) lane.F64 {
	d0 := a.X.Sub(b.X)
	d1 := a.Y.Sub(b.Y)
	d2 := a.Z.Sub(b.Z)
	return chi2Sym3(d0, d1, d2,
		a.Cov[0].Add(b.Cov[0]),
		a.Cov[1].Add(b.Cov[1]),
		a.Cov[2].Add(b.Cov[2]),
		a.Cov[3].Add(b.Cov[3]),
		a.Cov[4].Add(b.Cov[4]),
		a.Cov[5].Add(b.Cov[5]),
	)
}

// Chi2ToMother weighs the separation between each lane and the mother decay
// vertex by the track and mother position covariances. Used to test a third
// daughter against an already-formed pair vertex.
func Chi2ToMother(p *geom.ParamLanes, m *MotherLanes) lane.F64 {
	d0 := p.X.Sub(m.Par.X)
	d1 := p.Y.Sub(m.Par.Y)
	d2 := p.Z.Sub(m.Par.Z)
	return chi2Sym3(d0, d1, d2,
		p.Cov[0].Add(m.Par.Cov[0]),
		p.Cov[1].Add(m.Par.Cov[1]),
		p.Cov[2].Add(m.Par.Cov[2]),
		p.Cov[3].Add(m.Par.Cov[3]),
		p.Cov[4].Add(m.Par.Cov[4]),
		p.Cov[5].Add(m.Par.Cov[5]),
	)
}
