package finder

import (
	"math"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// Candidate is one reconstructed mother hypothesis. Daughter entries are
// indices into the event's track slice; unused slots hold -1.
type Candidate struct {
	EventID    int64
	Mother     int32
	NDaughters int
	Daughters  [3]int32

	// Fitted state at the decay vertex.
	X, Y, Z    float64
	Px, Py, Pz float64
	E          float64
	Cov        [particle.CovSize]float64
	Charge     int8

	Mass    float64
	MassErr float64

	// Selection variables, recorded for every accepted candidate so the
	// cut set can be tightened offline without rerunning the finder.
	Chi2Prim     [3]float64
	Distance     float64
	CosOpen      float64
	Chi2Geo      float64
	DistanceToSV float64
	Chi2ToSV     float64
	L            float64
	LdL          float64
	IsFromPV     bool
	CosTopo      float64
	Chi2Topo     float64
}

// P returns the momentum magnitude.
func (c *Candidate) P() float64 {
	return math.Sqrt(c.Px*c.Px + c.Py*c.Py + c.Pz*c.Pz)
}

// Pt returns the transverse momentum.
func (c *Candidate) Pt() float64 {
	return math.Hypot(c.Px, c.Py)
}

// Rapidity returns the longitudinal rapidity. Candidates at the kinematic
// edge E <= |pz| yield +-Inf rather than NaN.
func (c *Candidate) Rapidity() float64 {
	return 0.5 * math.Log((c.E+c.Pz)/(c.E-c.Pz))
}
