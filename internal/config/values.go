package config

import (
	"fmt"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// Decay is the validated decay hypothesis handed to the finder: the mother
// species and an ordered list of two or three daughter species. Daughter
// order fixes which tracks seed the pair vertex; for three-prong hypotheses
// the third daughter extends an already-formed pair.
type Decay struct {
	Mother     particle.Species
	Daughters  [3]particle.Species
	NDaughters int
}

// Daughter returns daughter i.
func (d *Decay) Daughter(i int) particle.Species {
	return d.Daughters[i]
}

// String renders the hypothesis, e.g. "k0s -> pion+ pion-".
func (d Decay) String() string {
	s := d.Mother.Name + " ->"
	for i := 0; i < d.NDaughters; i++ {
		s += " " + d.Daughters[i].Name
	}
	return s
}

// Validate checks daughter count, species sanity and charge balance.
func (d *Decay) Validate() error {
	if d.NDaughters < 2 || d.NDaughters > 3 {
		return &ValidationError{Field: "decay.daughters", Reason: fmt.Sprintf("need 2 or 3 daughters, got %d", d.NDaughters)}
	}
	if d.Mother.PDG == 0 {
		return &ValidationError{Field: "decay.mother", Reason: "missing species"}
	}
	var charge int
	for i := 0; i < d.NDaughters; i++ {
		sp := d.Daughters[i]
		if sp.PDG == 0 {
			return &ValidationError{Field: "decay.daughters", Reason: fmt.Sprintf("daughter %d missing species", i)}
		}
		if sp.Charge == 0 {
			return &ValidationError{Field: "decay.daughters", Reason: fmt.Sprintf("daughter %q is neutral; only charged tracks are reconstructed", sp.Name)}
		}
		charge += int(sp.Charge)
	}
	if charge != int(d.Mother.Charge) {
		return &ValidationError{
			Field:  "decay",
			Reason: fmt.Sprintf("daughter charges sum to %+d but %s carries %+d", charge, d.Mother.Name, d.Mother.Charge),
		}
	}
	return nil
}

// Cuts is the validated selection threshold set. Maximum cuts at or below
// zero are disabled; minimum cosine cuts of -1 pass everything. Chi2PrimMin
// is a lower bound: daughters must be detached from the primary vertex.
type Cuts struct {
	Chi2PrimMin float64
	DistanceMax float64
	CosOpenMin  float64
	Chi2GeoMax  float64
	LdLMin      float64
	LdLMax      float64
	CosTopoMin  float64
	Chi2TopoMax float64

	DistanceToSVMax  float64
	CosOpenThreeMin  float64
	Chi2GeoMaxThree  float64
	LdLMinThree      float64
	CosTopoMinThree  float64
	Chi2TopoMaxThree float64
}

// DefaultCuts returns the standard V0 selection.
func DefaultCuts() Cuts {
	return (*Config)(nil).BuildCuts()
}

// Validate rejects thresholds outside their meaningful ranges.
func (c *Cuts) Validate() error {
	checks := []struct {
		name  string
		ok    bool
		whyNo string
	}{
		{"cuts.chi2_prim_min", c.Chi2PrimMin >= 0, "must not be negative"},
		{"cuts.distance_max", c.DistanceMax > 0, "must be positive"},
		{"cuts.cos_open_min", c.CosOpenMin >= -1 && c.CosOpenMin <= 1, "must be in [-1, 1]"},
		{"cuts.chi2_geo_max", c.Chi2GeoMax > 0, "must be positive"},
		{"cuts.ldl_min", c.LdLMin >= 0, "must not be negative"},
		{"cuts.ldl_max", c.LdLMax <= 0 || c.LdLMax > c.LdLMin, "must exceed ldl_min when enabled"},
		{"cuts.cos_topo_min", c.CosTopoMin >= -1 && c.CosTopoMin <= 1, "must be in [-1, 1]"},
		{"cuts.distance_sv_max", c.DistanceToSVMax > 0, "must be positive"},
		{"cuts.cos_open_three_min", c.CosOpenThreeMin >= -1 && c.CosOpenThreeMin <= 1, "must be in [-1, 1]"},
		{"cuts.chi2_geo_max_three", c.Chi2GeoMaxThree > 0, "must be positive"},
		{"cuts.ldl_min_three", c.LdLMinThree >= 0, "must not be negative"},
		{"cuts.cos_topo_min_three", c.CosTopoMinThree >= -1 && c.CosTopoMinThree <= 1, "must be in [-1, 1]"},
	}
	for _, ck := range checks {
		if !ck.ok {
			return &ValidationError{Field: ck.name, Reason: ck.whyNo}
		}
	}
	return nil
}
