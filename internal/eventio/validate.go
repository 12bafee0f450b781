package eventio

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// ValidateEvent checks that an event is physically usable: every value
// finite, every track moving and charged, charges consistent with the
// species tag, and all covariances positive definite. Tracks with unknown
// PDG codes are allowed; the finder simply never pairs them.
func ValidateEvent(ev *particle.Event) error {
	if !isFinite(ev.Bz) {
		return errors.New("magnetic field is not finite")
	}
	v := &ev.Vertex
	if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
		return errors.New("vertex position is not finite")
	}
	for _, c := range v.Cov {
		if !isFinite(c) {
			return errors.New("vertex covariance is not finite")
		}
	}
	if !posDef(v.Cov[:], 3) {
		return errors.New("vertex covariance is not positive definite")
	}
	for i := range ev.Tracks {
		if err := validateTrack(&ev.Tracks[i]); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}
	return nil
}

func validateTrack(tr *particle.Track) error {
	state := [6]float64{tr.X, tr.Y, tr.Z, tr.Px, tr.Py, tr.Pz}
	for _, v := range state {
		if !isFinite(v) {
			return errors.New("state is not finite")
		}
	}
	for _, c := range tr.Cov {
		if !isFinite(c) {
			return errors.New("covariance is not finite")
		}
	}
	if tr.Px == 0 && tr.Py == 0 && tr.Pz == 0 {
		return errors.New("zero momentum")
	}
	if tr.Charge == 0 {
		return errors.New("zero charge")
	}
	if sp, ok := particle.SpeciesByPDG(tr.PDG); ok && sp.Charge != tr.Charge {
		return fmt.Errorf("charge %+d does not match species %s", tr.Charge, sp.Name)
	}
	if !posDef(tr.Cov[:], 6) {
		return errors.New("covariance is not positive definite")
	}
	return nil
}

// posDef expands a packed lower-triangular matrix and attempts a Cholesky
// factorization, which succeeds exactly for positive-definite input.
func posDef(packed []float64, n int) bool {
	sym := mat.NewSymDense(n, nil)
	k := 0
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, packed[k])
			k++
		}
	}
	var ch mat.Cholesky
	return ch.Factorize(sym)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
