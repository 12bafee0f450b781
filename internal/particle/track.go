package particle

import "math"

// CovSize is the number of elements in a packed lower-triangular 6x6
// covariance over the state order (x, y, z, px, py, pz).
const CovSize = 21

// VertexCovSize is the number of elements in a packed lower-triangular 3x3
// position covariance.
const VertexCovSize = 6

// CovIndex returns the packed index of element (i, j) of a lower-triangular
// symmetric matrix. Callers may pass i and j in either order.
func CovIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i+1)/2 + j
}

// Track is one fitted charged-track state estimate expressed at a reference
// point, typically its distance of closest approach to the beamline. Tracks
// are immutable once an event is assembled; the finder re-expresses copies at
// other points along the trajectory.
type Track struct {
	ID         int32   // detector-assigned identifier, unique within the event
	X, Y, Z    float64 // cm
	Px, Py, Pz float64 // GeV/c
	Charge     int8
	PDG        int32         // particle hypothesis from PID
	Cov        [CovSize]float64 // packed lower-triangular 6x6 over (x,y,z,px,py,pz)
}

// P returns the track momentum magnitude.
func (t *Track) P() float64 {
	return math.Sqrt(t.Px*t.Px + t.Py*t.Py + t.Pz*t.Pz)
}

// Pt returns the transverse momentum.
func (t *Track) Pt() float64 {
	return math.Hypot(t.Px, t.Py)
}

// Energy returns the track energy under the mass hypothesis m.
func (t *Track) Energy(m float64) float64 {
	return math.Sqrt(m*m + t.Px*t.Px + t.Py*t.Py + t.Pz*t.Pz)
}

// CovAt returns covariance element (i, j) of the 6x6 state covariance.
func (t *Track) CovAt(i, j int) float64 {
	return t.Cov[CovIndex(i, j)]
}

// Vertex is the fitted primary interaction vertex.
type Vertex struct {
	X, Y, Z float64                   // cm
	Cov     [VertexCovSize]float64 // packed lower-triangular 3x3
}

// CovAt returns covariance element (i, j) of the 3x3 position covariance.
func (v *Vertex) CovAt(i, j int) float64 {
	return v.Cov[CovIndex(i, j)]
}
