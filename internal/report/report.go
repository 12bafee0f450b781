// Package report condenses the candidates of a reconstruction run into
// summary statistics and histograms, and renders them as an HTML page or
// a PNG plot for offline inspection.
package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/viktorklochkov/PFSimple/internal/finder"
)

// goodFitProb is the fit-probability threshold below which a candidate
// counts as a poor vertex fit.
const goodFitProb = 0.01

// Summary holds per-run statistics over the accepted candidates.
// Masses are GeV/c^2, lengths cm.
type Summary struct {
	Candidates int `json:"candidates"`

	MassMean   float64 `json:"mass_mean"`
	MassStdDev float64 `json:"mass_stddev"`
	MassP05    float64 `json:"mass_p05"`
	MassP50    float64 `json:"mass_p50"`
	MassP95    float64 `json:"mass_p95"`

	Chi2GeoP50 float64 `json:"chi2_geo_p50"`
	Chi2GeoP95 float64 `json:"chi2_geo_p95"`
	LdLP50     float64 `json:"ldl_p50"`

	// FitProbP50 is the median chi-square survival probability of the
	// geometric vertex fits; GoodFitFrac is the fraction of candidates
	// above the 1% probability floor.
	FitProbP50  float64 `json:"fit_prob_p50"`
	GoodFitFrac float64 `json:"good_fit_frac"`
}

// BuildSummary computes summary statistics over a candidate set.
func BuildSummary(cands []finder.Candidate) Summary {
	sum := Summary{Candidates: len(cands)}
	if len(cands) == 0 {
		return sum
	}

	masses := make([]float64, len(cands))
	chi2 := make([]float64, len(cands))
	ldl := make([]float64, len(cands))
	probs := make([]float64, len(cands))
	good := 0
	for i := range cands {
		c := &cands[i]
		masses[i] = c.Mass
		chi2[i] = c.Chi2Geo
		ldl[i] = c.LdL
		probs[i] = FitProb(c.Chi2Geo, c.NDaughters)
		if probs[i] >= goodFitProb {
			good++
		}
	}

	sum.MassMean = stat.Mean(masses, nil)
	if len(masses) > 1 {
		sum.MassStdDev = stat.StdDev(masses, nil)
	}

	sort.Float64s(masses)
	sort.Float64s(chi2)
	sort.Float64s(ldl)
	sort.Float64s(probs)
	sum.MassP05 = stat.Quantile(0.05, stat.Empirical, masses, nil)
	sum.MassP50 = stat.Quantile(0.50, stat.Empirical, masses, nil)
	sum.MassP95 = stat.Quantile(0.95, stat.Empirical, masses, nil)
	sum.Chi2GeoP50 = stat.Quantile(0.50, stat.Empirical, chi2, nil)
	sum.Chi2GeoP95 = stat.Quantile(0.95, stat.Empirical, chi2, nil)
	sum.LdLP50 = stat.Quantile(0.50, stat.Empirical, ldl, nil)
	sum.FitProbP50 = stat.Quantile(0.50, stat.Empirical, probs, nil)
	sum.GoodFitFrac = float64(good) / float64(len(cands))
	return sum
}

// FitProb converts a vertex-fit chi-square into the probability of a
// worse fit. A two-daughter vertex fit carries one degree of freedom,
// each further daughter adds two.
func FitProb(chi2 float64, nDaughters int) float64 {
	if nDaughters < 2 || chi2 < 0 {
		return 0
	}
	ndf := 2*nDaughters - 3
	return distuv.ChiSquared{K: float64(ndf)}.Survival(chi2)
}

// Hist is a fixed-range histogram over half-open bins [Lo, Hi). Values
// outside the range land in the underflow and overflow counters.
type Hist struct {
	Lo, Hi    float64
	Counts    []float64
	Underflow int
	Overflow  int
}

// NewHist bins values into equal-width bins spanning [lo, hi).
func NewHist(values []float64, lo, hi float64, bins int) (*Hist, error) {
	if bins < 1 {
		return nil, fmt.Errorf("histogram needs a positive bin count, got %d", bins)
	}
	if !(lo < hi) {
		return nil, fmt.Errorf("histogram range [%g, %g) is empty", lo, hi)
	}

	h := &Hist{Lo: lo, Hi: hi, Counts: make([]float64, bins)}
	in := make([]float64, 0, len(values))
	for _, v := range values {
		switch {
		case v < lo:
			h.Underflow++
		case v < hi:
			in = append(in, v)
		default:
			h.Overflow++
		}
	}
	sort.Float64s(in)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	stat.Histogram(h.Counts, dividers, in, nil)
	return h, nil
}

// BinWidth returns the width of one bin.
func (h *Hist) BinWidth() float64 {
	return (h.Hi - h.Lo) / float64(len(h.Counts))
}

// Centers returns the midpoint of every bin, for axis labels.
func (h *Hist) Centers() []float64 {
	w := h.BinWidth()
	centers := make([]float64, len(h.Counts))
	for i := range centers {
		centers[i] = h.Lo + (float64(i)+0.5)*w
	}
	return centers
}

// Entries returns the number of values inside the histogram range.
func (h *Hist) Entries() int {
	total := 0.0
	for _, c := range h.Counts {
		total += c
	}
	return int(total)
}
