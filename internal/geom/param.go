// Package geom implements the lane-batched track geometry kernel: helix
// transport in a uniform solenoid field, two-track closest approach, the
// secondary decay vertex estimate, and propagation of a track to a fixed
// point. Every operation works on batches of lane.Width tracks at once and
// is strictly elementwise across lanes.
package geom

import (
	"math"

	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// cLight converts field times charge times path to a momentum rotation:
// kilogauss * e * cm -> GeV/c. Positions are cm, momenta GeV/c throughout.
const cLight = 0.000299792458

// smallArc bounds |q*Bz*cLight*s| below which the helix advance switches to
// its series expansion. Keeps the Bz -> 0 limit exact.
const smallArc = 1e-8

// ParamLanes carries the full state of one track per lane: position, momentum,
// signed charge and the packed 6x6 covariance in the particle.Track layout.
type ParamLanes struct {
	X, Y, Z    lane.F64
	Px, Py, Pz lane.F64
	Q          lane.F64
	Cov        [particle.CovSize]lane.F64
}

// SetTrack loads track tr into lane l.
func (p *ParamLanes) SetTrack(l int, tr *particle.Track) {
	p.X[l] = tr.X
	p.Y[l] = tr.Y
	p.Z[l] = tr.Z
	p.Px[l] = tr.Px
	p.Py[l] = tr.Py
	p.Pz[l] = tr.Pz
	p.Q[l] = float64(tr.Charge)
	for k := 0; k < particle.CovSize; k++ {
		p.Cov[k][l] = tr.Cov[k]
	}
}

// Broadcast returns a batch whose every lane is a copy of lane l.
func (p *ParamLanes) Broadcast(l int) ParamLanes {
	var out ParamLanes
	out.X = lane.Splat(p.X[l])
	out.Y = lane.Splat(p.Y[l])
	out.Z = lane.Splat(p.Z[l])
	out.Px = lane.Splat(p.Px[l])
	out.Py = lane.Splat(p.Py[l])
	out.Pz = lane.Splat(p.Pz[l])
	out.Q = lane.Splat(p.Q[l])
	for k := 0; k < particle.CovSize; k++ {
		out.Cov[k] = lane.Splat(p.Cov[k][l])
	}
	return out
}

// StateAt returns the six state components of lane l.
func (p *ParamLanes) StateAt(l int) (x, y, z, px, py, pz float64) {
	return p.X[l], p.Y[l], p.Z[l], p.Px[l], p.Py[l], p.Pz[l]
}

// CovAt returns the packed covariance of lane l.
func (p *ParamLanes) CovAt(l int) [particle.CovSize]float64 {
	var out [particle.CovSize]float64
	for k := 0; k < particle.CovSize; k++ {
		out[k] = p.Cov[k][l]
	}
	return out
}

// PosCov returns the three diagonal position variances of the batch.
func (p *ParamLanes) PosCov() (cxx, cyy, czz lane.F64) {
	return p.Cov[0], p.Cov[2], p.Cov[5]
}

// P2 returns |p|^2 per lane.
func (p *ParamLanes) P2() lane.F64 {
	return p.Px.Mul(p.Px).Add(p.Py.Mul(p.Py)).Add(p.Pz.Mul(p.Pz))
}

// Point is a batch of spatial points.
type Point struct {
	X, Y, Z lane.F64
}

// SplatPoint returns a batch with every lane at (x, y, z).
func SplatPoint(x, y, z float64) Point {
	return Point{X: lane.Splat(x), Y: lane.Splat(y), Z: lane.Splat(z)}
}

// PointFromVertex broadcasts a vertex position to all lanes.
func PointFromVertex(v *particle.Vertex) Point {
	return SplatPoint(v.X, v.Y, v.Z)
}

// At returns the point held in lane l.
func (pt *Point) At(l int) (x, y, z float64) {
	return pt.X[l], pt.Y[l], pt.Z[l]
}

// Broadcast returns a point batch whose every lane is a copy of lane l.
func (pt *Point) Broadcast(l int) Point {
	return SplatPoint(pt.X[l], pt.Y[l], pt.Z[l])
}

// Transport advances every lane by path parameter s along its trajectory in
// a uniform field bz and re-expresses state and covariance there. The path
// parameter is path length divided by momentum, so position advances as
// x += s*px in the field-free limit.
//
// The transverse motion is a rotation by the arc angle b = q*bz*cLight*s:
//
//	x' = x + sB*px + cB*py        px' = c*px + s*py
//	y' = y - cB*px + sB*py        py' = -s*px + c*py
//	z' = z + s*pz                 pz' = pz
//
// with sB = sin(b)/k, cB = (1-cos(b))/k, k = q*bz*cLight. Near b = 0 the
// series expansions keep the straight-line limit exact.
func Transport(p ParamLanes, s lane.F64, bz float64) ParamLanes {
	out := p
	var sB, cB, sinb, cosb lane.F64
	for l := 0; l < lane.Width; l++ {
		k := p.Q[l] * bz * cLight
		b := k * s[l]
		if math.Abs(b) < smallArc {
			// sin(b)/k = s*(1 - b^2/6), (1-cos(b))/k = s*b/2 to leading order.
			sB[l] = s[l] * (1 - b*b/6)
			cB[l] = s[l] * b / 2
			sinb[l] = b
			cosb[l] = 1 - b*b/2
			continue
		}
		sn, cs := math.Sincos(b)
		sB[l] = sn / k
		cB[l] = (1 - cs) / k
		sinb[l] = sn
		cosb[l] = cs
	}

	out.X = p.X.Add(sB.Mul(p.Px)).Add(cB.Mul(p.Py))
	out.Y = p.Y.Sub(cB.Mul(p.Px)).Add(sB.Mul(p.Py))
	out.Z = p.Z.Add(s.Mul(p.Pz))
	out.Px = cosb.Mul(p.Px).Add(sinb.Mul(p.Py))
	out.Py = cosb.Mul(p.Py).Sub(sinb.Mul(p.Px))
	out.Pz = p.Pz

	transportCov(&out.Cov, sB, cB, sinb, cosb, s)
	return out
}

// transportShallow advances state only, leaving the covariance untouched.
// Used by the closest-approach iterations, which refine path parameters
// before the single full transport.
func transportShallow(p ParamLanes, s lane.F64, bz float64) ParamLanes {
	out := p
	var sB, cB, sinb, cosb lane.F64
	for l := 0; l < lane.Width; l++ {
		k := p.Q[l] * bz * cLight
		b := k * s[l]
		if math.Abs(b) < smallArc {
			sB[l] = s[l] * (1 - b*b/6)
			cB[l] = s[l] * b / 2
			sinb[l] = b
			cosb[l] = 1 - b*b/2
			continue
		}
		sn, cs := math.Sincos(b)
		sB[l] = sn / k
		cB[l] = (1 - cs) / k
		sinb[l] = sn
		cosb[l] = cs
	}

	out.X = p.X.Add(sB.Mul(p.Px)).Add(cB.Mul(p.Py))
	out.Y = p.Y.Sub(cB.Mul(p.Px)).Add(sB.Mul(p.Py))
	out.Z = p.Z.Add(s.Mul(p.Pz))
	out.Px = cosb.Mul(p.Px).Add(sinb.Mul(p.Py))
	out.Py = cosb.Mul(p.Py).Sub(sinb.Mul(p.Px))
	out.Pz = p.Pz
	return out
}

// transportCov applies the transport Jacobian to the packed covariance:
// C' = J C J^T with
//
//	J = [ I  F ]   F = [ sB  cB  0  ]   R = [ c  s  0 ]
//	    [ 0  R ]       [ -cB sB  0  ]       [ -s c  0 ]
//	                   [ 0   0   s ]        [ 0  0  1 ]
//
// Blockwise: C'_rr = C_rr + F*C_pr + (F*C_pr)^T + F*C_pp*F^T,
// C'_pr = R*(C_pr + C_pp*F^T), C'_pp = R*C_pp*R^T.
func transportCov(c *[particle.CovSize]lane.F64, sB, cB, sinb, cosb, s lane.F64) {
	f := zmat{a: sB, b: cB, d: cB.Neg(), e: sB, g: s}
	r := zmat{a: cosb, b: sinb, d: sinb.Neg(), e: cosb, g: lane.Splat(1)}

	crr := sym3{c[0], c[1], c[2], c[3], c[4], c[5]}
	cpr := mat3{
		c[6], c[7], c[8],
		c[10], c[11], c[12],
		c[15], c[16], c[17],
	}
	cpp := sym3{c[9], c[13], c[14], c[18], c[19], c[20]}

	// F*C_pr and F*C_pp*F^T feed the position block.
	fcpr := f.mulMat(cpr)
	fcppft := f.sandwich(cpp)
	rr := crr.add(fcpr.plusTransposed()).add(fcppft)

	// C'_pr = R*(C_pr + C_pp*F^T).
	pr := r.mulMat(cpr.add(cpp.toMat().mulTransposed(f)))

	// C'_pp = R*C_pp*R^T.
	pp := r.sandwich(cpp)

	c[0], c[1], c[2], c[3], c[4], c[5] = rr.xx, rr.xy, rr.yy, rr.xz, rr.yz, rr.zz
	c[6], c[7], c[8] = pr[0], pr[1], pr[2]
	c[10], c[11], c[12] = pr[3], pr[4], pr[5]
	c[15], c[16], c[17] = pr[6], pr[7], pr[8]
	c[9], c[13], c[14] = pp.xx, pp.xy, pp.yy
	c[18], c[19], c[20] = pp.xz, pp.yz, pp.zz
}
