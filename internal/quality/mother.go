package quality

import (
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
)

// minMassForError is the invariant mass below which the mass-error gradient
// is undefined; such lanes report MassErr = -1.
const minMassForError = 1e-9

// MotherLanes is a batch of candidate mother states assembled from daughters
// at the decay vertex. Par carries position, summed momentum, summed charge
// and the combined covariance; the invariant mass and its error come from
// the daughter kinematics under their species mass hypotheses.
type MotherLanes struct {
	Par  geom.ParamLanes
	E    lane.F64
	Mass lane.F64
	// MassErr is the propagated invariant-mass uncertainty, or -1 where the
	// mass itself vanishes and the gradient is undefined.
	MassErr lane.F64
}

// daughterTerm bundles one daughter's contribution to the mother.
type daughterTerm struct {
	par *geom.ParamLanes
	m   float64
	// posW scales the position covariance contribution (squared vertex
	// weight), crossW the momentum-position cross block (linear weight).
	// Daughters that do not define the vertex carry zero for both.
	posW, crossW lane.F64
}

// ConstructMother assembles two-daughter candidates at the secondary vertex
// sv. w1 is the vertex weight fraction of the first daughter as returned by
// geom.SecondaryVertex.
func ConstructMother(a, b *geom.ParamLanes, ma, mb float64, sv geom.Point, w1 lane.F64) MotherLanes {
	w2 := lane.Splat(1).Sub(w1)
	return constructMother(sv, []daughterTerm{
		{par: a, m: ma, posW: w1.Mul(w1), crossW: w1},
		{par: b, m: mb, posW: w2.Mul(w2), crossW: w2},
	})
}

// ConstructMotherThree assembles three-daughter candidates. The vertex and
// its weights come from the first two daughters; the third is expected to be
// expressed at sv already and contributes momentum, energy and momentum
// covariance only.
func ConstructMotherThree(a, b, c *geom.ParamLanes, ma, mb, mc float64, sv geom.Point, w1 lane.F64) MotherLanes {
	w2 := lane.Splat(1).Sub(w1)
	zero := lane.Splat(0)
	return constructMother(sv, []daughterTerm{
		{par: a, m: ma, posW: w1.Mul(w1), crossW: w1},
		{par: b, m: mb, posW: w2.Mul(w2), crossW: w2},
		{par: c, m: mc, posW: zero, crossW: zero},
	})
}

var crossBlock = [...]int{6, 7, 8, 10, 11, 12, 15, 16, 17}
var momBlock = [...]int{9, 13, 14, 18, 19, 20}

func constructMother(sv geom.Point, daughters []daughterTerm) MotherLanes {
	var m MotherLanes
	m.Par.X, m.Par.Y, m.Par.Z = sv.X, sv.Y, sv.Z

	for _, d := range daughters {
		m.Par.Px = m.Par.Px.Add(d.par.Px)
		m.Par.Py = m.Par.Py.Add(d.par.Py)
		m.Par.Pz = m.Par.Pz.Add(d.par.Pz)
		m.Par.Q = m.Par.Q.Add(d.par.Q)

		e := d.par.P2().Add(lane.Splat(d.m * d.m)).SqrtGuard(0)
		m.E = m.E.Add(e)

		// Position block scales with the squared vertex weights, the cross
		// block linearly, momentum blocks add up.
		for k := 0; k <= 5; k++ {
			m.Par.Cov[k] = m.Par.Cov[k].Add(d.posW.Mul(d.par.Cov[k]))
		}
		for _, k := range crossBlock {
			m.Par.Cov[k] = m.Par.Cov[k].Add(d.crossW.Mul(d.par.Cov[k]))
		}
		for _, k := range momBlock {
			m.Par.Cov[k] = m.Par.Cov[k].Add(d.par.Cov[k])
		}
	}

	m2 := m.E.Mul(m.E).Sub(m.Par.P2())
	m.Mass = m2.Max(lane.Splat(0)).SqrtGuard(0)
	m.MassErr = massError(&m, daughters)
	return m
}

// massError propagates the daughter momentum covariances through the
// invariant mass. For daughter d the gradient is
//
//	dM/dp_d = ((E/E_d) p_d - P) / M
//
// and with independent daughters Var(M) sums the per-daughter quadratic
// forms over their momentum covariance blocks.
func massError(m *MotherLanes, daughters []daughterTerm) lane.F64 {
	defined := m.Mass.Greater(lane.Splat(minMassForError))

	var variance lane.F64
	for _, d := range daughters {
		ed := d.par.P2().Add(lane.Splat(d.m * d.m)).SqrtGuard(0)
		alpha := m.E.DivGuard(ed, minVecNorm, 0)
		gx := alpha.Mul(d.par.Px).Sub(m.Par.Px).DivGuard(m.Mass, minMassForError, 0)
		gy := alpha.Mul(d.par.Py).Sub(m.Par.Py).DivGuard(m.Mass, minMassForError, 0)
		gz := alpha.Mul(d.par.Pz).Sub(m.Par.Pz).DivGuard(m.Mass, minMassForError, 0)

		variance = variance.Add(quadSym3(gx, gy, gz,
			d.par.Cov[9], d.par.Cov[13], d.par.Cov[14],
			d.par.Cov[18], d.par.Cov[19], d.par.Cov[20],
		))
	}

	err := variance.Max(lane.Splat(0)).SqrtGuard(0)
	return lane.Blend(defined, err, lane.Splat(-1))
}
