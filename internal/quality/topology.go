package quality

import (
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// minLength is the decay length below which significance and pointing are
// treated as degenerate.
const minLength = 1e-12

// DecayLength returns per lane the distance from the primary vertex to the
// candidate decay vertex, its significance l/dl from the combined position
// covariances, and the prompt flag (significance below PromptLdL).
//
// Lanes decaying exactly at the vertex report l = 0, ldl = 0 and are flagged
// prompt. Lanes whose combined covariance gives no measurable uncertainty
// along the flight direction report ldl = SingularChi2.
func DecayLength(m *MotherLanes, v *particle.Vertex) (l, ldl lane.F64, fromPV lane.Mask) {
	d0 := m.Par.X.Sub(lane.Splat(v.X))
	d1 := m.Par.Y.Sub(lane.Splat(v.Y))
	d2 := m.Par.Z.Sub(lane.Splat(v.Z))

	l2 := d0.Mul(d0).Add(d1.Mul(d1)).Add(d2.Mul(d2))
	l = l2.SqrtGuard(0)

	// Var(l) projects the combined covariance onto the flight direction:
	// (d^T C d) / l^2 with C the mother plus vertex position covariance.
	q := quadSym3(d0, d1, d2,
		m.Par.Cov[0].Add(lane.Splat(v.Cov[0])),
		m.Par.Cov[1].Add(lane.Splat(v.Cov[1])),
		m.Par.Cov[2].Add(lane.Splat(v.Cov[2])),
		m.Par.Cov[3].Add(lane.Splat(v.Cov[3])),
		m.Par.Cov[4].Add(lane.Splat(v.Cov[4])),
		m.Par.Cov[5].Add(lane.Splat(v.Cov[5])),
	)
	dl := q.DivGuard(l2, minLength, 0).Max(lane.Splat(0)).SqrtGuard(0)

	ldl = l.DivGuard(dl, minLength, SingularChi2)
	atVertex := l2.LessEq(lane.Splat(minLength))
	l = lane.Blend(atVertex, lane.Splat(0), l)
	ldl = lane.Blend(atVertex, lane.Splat(0), ldl)

	fromPV = ldl.Less(lane.Splat(PromptLdL))
	return l, ldl, fromPV
}

// CosTopo returns the pointing cosine between the candidate momentum and the
// line from the primary vertex to the decay vertex. True secondaries point
// back to the vertex, giving values near one.
func CosTopo(m *MotherLanes, v *particle.Vertex) lane.F64 {
	dx := m.Par.X.Sub(lane.Splat(v.X))
	dy := m.Par.Y.Sub(lane.Splat(v.Y))
	dz := m.Par.Z.Sub(lane.Splat(v.Z))
	return cosAgainst(&m.Par, dx, dy, dz)
}

// Chi2Topo transports the candidate to its closest approach to the primary
// vertex and weighs the residual by the combined covariances. Candidates
// compatible with production at the vertex give small values.
func Chi2Topo(m *MotherLanes, v *particle.Vertex, bz float64) lane.F64 {
	pt := geom.PointFromVertex(v)
	at := geom.PropagateToPoint(m.Par, pt, bz)
	return chi2ToPoint(&at, pt, v.Cov)
}
