package geom

import (
	"github.com/viktorklochkov/PFSimple/internal/lane"
)

const (
	// parallelTolerance is the relative floor on the closest-approach
	// denominator |p1|^2*|p2|^2 - (p1.p2)^2. Below it the trajectories are
	// treated as parallel and a bounded single-track projection is used.
	parallelTolerance = 1e-12

	// minMomentumSq guards path-parameter divisions against zero-momentum
	// states, which validation rejects upstream but masked lanes may carry.
	minMomentumSq = 1e-20

	// pcaIterations is the number of helix relinearization passes applied on
	// top of the straight-line solution when the field is non-zero.
	pcaIterations = 2
)

// straightPathParams solves the closest approach of two straight-line
// extrapolations. With d = r1 - r2 the stationarity conditions give
//
//	s1 = ((p1.p2)(d.p2) - |p2|^2 (d.p1)) / den
//	s2 = (|p1|^2 (d.p2) - (p1.p2)(d.p1)) / den
//	den = |p1|^2 |p2|^2 - (p1.p2)^2
//
// Near-parallel lanes fall back to projecting d onto the first trajectory
// with s2 = 0, which is bounded and exact for truly parallel tracks.
func straightPathParams(a, b *ParamLanes) (s1, s2 lane.F64) {
	dx := a.X.Sub(b.X)
	dy := a.Y.Sub(b.Y)
	dz := a.Z.Sub(b.Z)

	paa := a.P2()
	pbb := b.P2()
	pab := a.Px.Mul(b.Px).Add(a.Py.Mul(b.Py)).Add(a.Pz.Mul(b.Pz))
	dpa := dx.Mul(a.Px).Add(dy.Mul(a.Py)).Add(dz.Mul(a.Pz))
	dpb := dx.Mul(b.Px).Add(dy.Mul(b.Py)).Add(dz.Mul(b.Pz))

	den := paa.Mul(pbb).Sub(pab.Mul(pab))
	parallel := den.Less(paa.Mul(pbb).Scale(parallelTolerance))

	s1 = pab.Mul(dpb).Sub(pbb.Mul(dpa)).DivGuard(den, 0, 0)
	s2 = paa.Mul(dpb).Sub(pab.Mul(dpa)).DivGuard(den, 0, 0)

	fall1 := dpa.Neg().DivGuard(paa, minMomentumSq, 0)
	s1 = lane.Blend(parallel, fall1, s1)
	s2 = lane.Blend(parallel, lane.Splat(0), s2)
	return s1, s2
}

// ClosestApproach re-expresses both track batches at their mutual point of
// closest approach. In a non-zero field the straight-line solution seeds a
// fixed number of relinearization passes; the final transport from the
// original states carries the covariances exactly once.
func ClosestApproach(a, b ParamLanes, bz float64) (ParamLanes, ParamLanes) {
	s1, s2 := straightPathParams(&a, &b)
	if bz != 0 {
		for i := 0; i < pcaIterations; i++ {
			ta := transportShallow(a, s1, bz)
			tb := transportShallow(b, s2, bz)
			d1, d2 := straightPathParams(&ta, &tb)
			s1 = s1.Add(d1)
			s2 = s2.Add(d2)
		}
	}
	return Transport(a, s1, bz), Transport(b, s2, bz)
}

// pathParamToPoint returns the straight-line path parameter that brings each
// lane closest to the target point: s = ((pt - r).p) / |p|^2.
func pathParamToPoint(p *ParamLanes, pt Point) lane.F64 {
	dx := pt.X.Sub(p.X)
	dy := pt.Y.Sub(p.Y)
	dz := pt.Z.Sub(p.Z)
	num := dx.Mul(p.Px).Add(dy.Mul(p.Py)).Add(dz.Mul(p.Pz))
	return num.DivGuard(p.P2(), minMomentumSq, 0)
}

// PropagateToPoint re-expresses every lane at its closest approach to the
// target point, refining the straight-line estimate in a non-zero field.
func PropagateToPoint(p ParamLanes, pt Point, bz float64) ParamLanes {
	s := pathParamToPoint(&p, pt)
	if bz != 0 {
		for i := 0; i < pcaIterations; i++ {
			tp := transportShallow(p, s, bz)
			s = s.Add(pathParamToPoint(&tp, pt))
		}
	}
	return Transport(p, s, bz)
}

// SecondaryVertex estimates the decay vertex from two daughters already
// expressed at their closest approach: the position-precision weighted mean
// of the two lane positions. The second return value is the weight fraction
// of the first daughter, needed to combine covariances downstream. Lanes with
// degenerate weights fall back to the plain midpoint.
func SecondaryVertex(a, b *ParamLanes) (Point, lane.F64) {
	axx, ayy, azz := a.PosCov()
	bxx, byy, bzz := b.PosCov()
	ta := axx.Add(ayy).Add(azz)
	tb := bxx.Add(byy).Add(bzz)

	// w1frac = tb / (ta + tb): larger position variance means less weight.
	sum := ta.Add(tb)
	w1 := tb.DivGuard(sum, minMomentumSq, 0.5)

	usable := ta.Greater(lane.Splat(0)).
		And(tb.Greater(lane.Splat(0))).
		And(ta.IsFinite()).
		And(tb.IsFinite())
	w1 = lane.Blend(usable, w1, lane.Splat(0.5))
	w2 := lane.Splat(1).Sub(w1)

	sv := Point{
		X: w1.Mul(a.X).Add(w2.Mul(b.X)),
		Y: w1.Mul(a.Y).Add(w2.Mul(b.Y)),
		Z: w1.Mul(a.Z).Add(w2.Mul(b.Z)),
	}
	return sv, w1
}
