// Package particle holds the in-memory event model handed to the candidate
// finder: particle species constants, fitted track state estimates with their
// covariances, the primary vertex, and the per-event track container.
//
// Units follow the usual heavy-ion reconstruction conventions: positions in
// centimeters, momenta in GeV/c, masses in GeV/c^2, magnetic field in
// kilogauss, charge in units of the elementary charge.
package particle

import "fmt"

// Species describes one particle hypothesis a track or candidate can carry.
type Species struct {
	PDG    int32
	Name   string
	Mass   float64 // GeV/c^2
	Charge int8    // units of e
}

// Daughter species assignable to tracks.
var (
	PionPlus   = Species{PDG: 211, Name: "pion+", Mass: 0.13957039, Charge: +1}
	PionMinus  = Species{PDG: -211, Name: "pion-", Mass: 0.13957039, Charge: -1}
	KaonPlus   = Species{PDG: 321, Name: "kaon+", Mass: 0.493677, Charge: +1}
	KaonMinus  = Species{PDG: -321, Name: "kaon-", Mass: 0.493677, Charge: -1}
	Proton     = Species{PDG: 2212, Name: "proton", Mass: 0.93827208816, Charge: +1}
	AntiProton = Species{PDG: -2212, Name: "antiproton", Mass: 0.93827208816, Charge: -1}
	Deuteron   = Species{PDG: 1000010020, Name: "deuteron", Mass: 1.87561294257, Charge: +1}
	He3        = Species{PDG: 1000020030, Name: "he3", Mass: 2.80839160743, Charge: +2}
)

// Mother species reconstructable from daughter combinations.
var (
	KShort      = Species{PDG: 310, Name: "k0s", Mass: 0.497611, Charge: 0}
	Lambda      = Species{PDG: 3122, Name: "lambda", Mass: 1.115683, Charge: 0}
	AntiLambda  = Species{PDG: -3122, Name: "antilambda", Mass: 1.115683, Charge: 0}
	XiMinus     = Species{PDG: 3312, Name: "xi-", Mass: 1.32171, Charge: -1}
	OmegaMinus  = Species{PDG: 3334, Name: "omega-", Mass: 1.67245, Charge: -1}
	Hypertriton = Species{PDG: 1010010030, Name: "hypertriton", Mass: 2.99131, Charge: +1}
)

var catalogue = []Species{
	PionPlus, PionMinus, KaonPlus, KaonMinus,
	Proton, AntiProton, Deuteron, He3,
	KShort, Lambda, AntiLambda, XiMinus, OmegaMinus, Hypertriton,
}

var (
	byPDG  = map[int32]Species{}
	byName = map[string]Species{}
)

func init() {
	for _, s := range catalogue {
		byPDG[s.PDG] = s
		byName[s.Name] = s
	}
}

// SpeciesByPDG looks a species up by its PDG code.
func SpeciesByPDG(pdg int32) (Species, bool) {
	s, ok := byPDG[pdg]
	return s, ok
}

// SpeciesByName looks a species up by its lowercase name, e.g. "pion-".
func SpeciesByName(name string) (Species, bool) {
	s, ok := byName[name]
	return s, ok
}

// MustSpecies returns the species for a PDG code and panics when the code is
// unknown. Intended for table construction in tests and generators.
func MustSpecies(pdg int32) Species {
	s, ok := byPDG[pdg]
	if !ok {
		panic(fmt.Sprintf("particle: unknown PDG code %d", pdg))
	}
	return s
}

// SpeciesNames returns the names of every known species, daughters first.
func SpeciesNames() []string {
	names := make([]string, 0, len(catalogue))
	for _, s := range catalogue {
		names = append(names, s.Name)
	}
	return names
}
