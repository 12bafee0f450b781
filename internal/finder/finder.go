// Package finder reconstructs weak-decay candidates from fitted tracks.
//
// A SimpleFinder is configured once with a decay hypothesis and a cut set,
// then fed events one at a time. The search walks every hypothesis-compatible
// track pair (plus a third track for three-prong decays), evaluates the
// geometry four combinations at a time, and applies the cuts in a fixed order
// so doomed combinations drop out before the expensive steps.
package finder

import (
	"math"

	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
	"github.com/viktorklochkov/PFSimple/internal/quality"
)

// SimpleFinder reconstructs candidates for one decay hypothesis. It is not
// safe for concurrent use; run one instance per goroutine and share the
// Diagnostics collector instead.
type SimpleFinder struct {
	decay config.Decay
	cuts  config.Cuts
	diag  Diagnostics

	eventID  int64
	bz       float64
	vertex   particle.Vertex
	tracks   *particle.TrackSet
	chi2Prim map[int32][]float64
	surv     map[int32]survivorSet
	cands    []Candidate
}

// survivorSet holds the tracks of one species that passed the detachment
// cut, with their primary-vertex chi2 kept for the candidate record.
type survivorSet struct {
	idx  []int
	chi2 []float64
}

// New builds a finder. The decay and cuts are validated up front so a
// misconfigured finder never reaches event processing.
func New(decay config.Decay, cuts config.Cuts) (*SimpleFinder, error) {
	f := &SimpleFinder{}
	if err := f.SetDecay(decay); err != nil {
		return nil, err
	}
	if err := f.SetCuts(cuts); err != nil {
		return nil, err
	}
	return f, nil
}

// SetDecay replaces the decay hypothesis.
func (f *SimpleFinder) SetDecay(d config.Decay) error {
	if err := d.Validate(); err != nil {
		return err
	}
	f.decay = d
	return nil
}

// SetCuts replaces the selection thresholds. The per-event detachment
// partition is rebuilt on next use since it depends on Chi2PrimMin.
func (f *SimpleFinder) SetCuts(c config.Cuts) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f.cuts = c
	f.surv = nil
	return nil
}

// SetDiagnostics installs a telemetry collector. A nil collector disables
// telemetry entirely.
func (f *SimpleFinder) SetDiagnostics(d Diagnostics) {
	f.diag = d
}

// Decay returns the active hypothesis.
func (f *SimpleFinder) Decay() config.Decay { return f.decay }

// Cuts returns the active selection thresholds.
func (f *SimpleFinder) Cuts() config.Cuts { return f.cuts }

// Init loads an event, replacing any previously loaded one. The tracks are
// validated and partitioned by species; a validation failure leaves the
// finder without an event.
func (f *SimpleFinder) Init(ev *particle.Event) error {
	f.tracks = nil
	f.cands = nil
	if ev == nil {
		return &BadEventError{Track: -1, Reason: "nil event"}
	}
	if err := validateEvent(ev); err != nil {
		return err
	}
	f.eventID = ev.ID
	f.bz = ev.Bz
	f.vertex = ev.Vertex
	f.tracks = particle.NewTrackSet(ev.Tracks)
	f.chi2Prim = make(map[int32][]float64)
	f.surv = make(map[int32]survivorSet)
	return nil
}

// FindParticles runs the candidate search on the loaded event. The result
// order is fixed by the event's track order, so reruns over the same input
// reproduce the same candidates bit for bit. An event without enough
// hypothesis-compatible tracks yields an empty result, not an error.
func (f *SimpleFinder) FindParticles() ([]Candidate, error) {
	if f.tracks == nil {
		return nil, ErrNoEvent
	}
	f.cands = nil

	d1, d2 := f.decay.Daughter(0), f.decay.Daughter(1)
	s1 := f.survivors(d1.PDG)
	s2 := f.survivors(d2.PDG)
	var s3 survivorSet
	if f.decay.NDaughters == 3 {
		s3 = f.survivors(f.decay.Daughter(2).PDG)
		if len(s3.idx) == 0 {
			return f.cands, nil
		}
	}

	same := d1.PDG == d2.PDG
	var pairs pairBatch
	for a := range s1.idx {
		bStart := 0
		if same {
			bStart = a + 1
		}
		for b := bStart; b < len(s2.idx); b++ {
			i, j := s1.idx[a], s2.idx[b]
			if i == j {
				continue
			}
			if f.diag != nil {
				f.diag.PairConsidered()
			}
			pairs.add(f.tracks, i, j, s1.chi2[a], s2.chi2[b])
			if pairs.n == lane.Width {
				f.flushPairs(&pairs, s3)
			}
		}
	}
	f.flushPairs(&pairs, s3)
	return f.cands, nil
}

// Candidates returns the result of the last FindParticles call.
func (f *SimpleFinder) Candidates() []Candidate {
	return f.cands
}

// survivors returns the detachment-cut survivors for one species, computing
// and caching the primary-vertex chi2 of every track on first use.
func (f *SimpleFinder) survivors(pdg int32) survivorSet {
	if s, ok := f.surv[pdg]; ok {
		return s
	}
	idx := f.tracks.Indices(pdg)
	chi := f.primaryChi2(pdg, idx)
	s := survivorSet{
		idx:  make([]int, 0, len(idx)),
		chi2: make([]float64, 0, len(idx)),
	}
	for k, i := range idx {
		if chi[k] >= f.cuts.Chi2PrimMin {
			s.idx = append(s.idx, i)
			s.chi2 = append(s.chi2, chi[k])
		} else if f.diag != nil {
			f.diag.TrackPruned(pdg, chi[k])
		}
	}
	f.surv[pdg] = s
	return s
}

// primaryChi2 evaluates the chi2 of each listed track against the primary
// vertex, four tracks per pass.
func (f *SimpleFinder) primaryChi2(pdg int32, idx []int) []float64 {
	if chi, ok := f.chi2Prim[pdg]; ok {
		return chi
	}
	chi := make([]float64, len(idx))
	var batch geom.ParamLanes
	for at := 0; at < len(idx); at += lane.Width {
		n := len(idx) - at
		if n > lane.Width {
			n = lane.Width
		}
		for l := 0; l < n; l++ {
			batch.SetTrack(l, f.tracks.At(idx[at+l]))
		}
		// duplicate the last track into unused lanes; their outputs are
		// discarded below
		for l := n; l < lane.Width; l++ {
			batch.SetTrack(l, f.tracks.At(idx[at+n-1]))
		}
		out := quality.Chi2ToVertex(batch, &f.vertex, f.bz)
		for l := 0; l < n; l++ {
			chi[at+l] = out[l]
		}
	}
	f.chi2Prim[pdg] = chi
	return chi
}

// pairBatch accumulates up to lane.Width daughter pairs for one evaluation
// pass. Lanes past n hold leftovers from earlier batches and stay masked.
type pairBatch struct {
	n    int
	i, j [lane.Width]int32
	chiI [lane.Width]float64
	chiJ [lane.Width]float64
	a, b geom.ParamLanes
}

func (pb *pairBatch) add(ts *particle.TrackSet, i, j int, chiI, chiJ float64) {
	l := pb.n
	pb.i[l] = int32(i)
	pb.j[l] = int32(j)
	pb.chiI[l] = chiI
	pb.chiJ[l] = chiJ
	pb.a.SetTrack(l, ts.At(i))
	pb.b.SetTrack(l, ts.At(j))
	pb.n++
}

// flushPairs evaluates the batched pairs and either emits two-prong
// candidates or hands surviving pairs to the third-track extension.
func (f *SimpleFinder) flushPairs(pairs *pairBatch, thirds survivorSet) {
	if pairs.n == 0 {
		return
	}
	n := pairs.n
	pairs.n = 0
	active := lane.FirstN(n)

	da, db := geom.ClosestApproach(pairs.a, pairs.b, f.bz)

	dist := quality.Distance(&da, &db)
	active = f.cutMax(active, dist, f.cuts.DistanceMax, StageDistance)
	if !active.Any() {
		return
	}

	cosOpen := quality.CosOpen(&da, &db)
	active = f.cutMin(active, cosOpen, f.cuts.CosOpenMin, StageCosOpen)
	if !active.Any() {
		return
	}

	sv, w1 := geom.SecondaryVertex(&da, &db)

	chi2Geo := quality.Chi2Geo(&da, &db)
	active = f.cutMax(active, chi2Geo, f.cuts.Chi2GeoMax, StageChi2Geo)
	if !active.Any() {
		return
	}

	if f.decay.NDaughters == 3 {
		for l := 0; l < n; l++ {
			if active[l] {
				f.extendPair(pairs, l, &da, &db, sv, w1, dist, chi2Geo, thirds)
			}
		}
		return
	}

	mother := quality.ConstructMother(&da, &db,
		f.decay.Daughter(0).Mass, f.decay.Daughter(1).Mass, sv, w1)

	length, ldl, fromPV := quality.DecayLength(&mother, &f.vertex)
	active = f.cutMin(active, ldl, f.cuts.LdLMin, StageLdL)
	active = f.cutMaxEnabled(active, ldl, f.cuts.LdLMax, StageLdL)
	if !active.Any() {
		return
	}

	cosTopo := quality.CosTopo(&mother, &f.vertex)
	active = f.cutMin(active, cosTopo, f.cuts.CosTopoMin, StageCosTopo)
	if !active.Any() {
		return
	}

	chi2Topo := quality.Chi2Topo(&mother, &f.vertex, f.bz)
	active = f.cutMaxEnabled(active, chi2Topo, f.cuts.Chi2TopoMax, StageChi2Topo)
	if !active.Any() {
		return
	}

	for l := 0; l < n; l++ {
		if !active[l] {
			continue
		}
		c := Candidate{
			EventID:    f.eventID,
			Mother:     f.decay.Mother.PDG,
			NDaughters: 2,
			Daughters:  [3]int32{pairs.i[l], pairs.j[l], -1},
			X:          mother.Par.X[l],
			Y:          mother.Par.Y[l],
			Z:          mother.Par.Z[l],
			Px:         mother.Par.Px[l],
			Py:         mother.Par.Py[l],
			Pz:         mother.Par.Pz[l],
			E:          mother.E[l],
			Cov:        mother.Par.CovAt(l),
			Charge:     int8(mother.Par.Q[l]),
			Mass:       mother.Mass[l],
			MassErr:    mother.MassErr[l],
			Chi2Prim:   [3]float64{pairs.chiI[l], pairs.chiJ[l], 0},
			Distance:   dist[l],
			CosOpen:    cosOpen[l],
			Chi2Geo:    chi2Geo[l],
			L:          length[l],
			LdL:        ldl[l],
			IsFromPV:   fromPV[l],
			CosTopo:    cosTopo[l],
			Chi2Topo:   chi2Topo[l],
		}
		f.cands = append(f.cands, c)
		if f.diag != nil {
			f.diag.Accepted(&c)
		}
	}
}

// tripleSeed is one accepted pair broadcast across all lanes so candidate
// third tracks can be evaluated against it in batches.
type tripleSeed struct {
	i, j       int32
	chiI, chiJ float64
	a, b       geom.ParamLanes
	sv         geom.Point
	w1         lane.F64
	dist       float64
	chi2Geo    float64
}

type tripleBatch struct {
	n   int
	k   [lane.Width]int32
	chi [lane.Width]float64
	c   geom.ParamLanes
}

func (tb *tripleBatch) add(ts *particle.TrackSet, k int, chi float64) {
	l := tb.n
	tb.k[l] = int32(k)
	tb.chi[l] = chi
	tb.c.SetTrack(l, ts.At(k))
	tb.n++
}

// extendPair tries every surviving third track against one accepted pair.
func (f *SimpleFinder) extendPair(pairs *pairBatch, l int, da, db *geom.ParamLanes, sv geom.Point, w1, dist, chi2Geo lane.F64, thirds survivorSet) {
	seed := tripleSeed{
		i:       pairs.i[l],
		j:       pairs.j[l],
		chiI:    pairs.chiI[l],
		chiJ:    pairs.chiJ[l],
		a:       da.Broadcast(l),
		b:       db.Broadcast(l),
		sv:      sv.Broadcast(l),
		w1:      lane.Splat(w1[l]),
		dist:    dist[l],
		chi2Geo: chi2Geo[l],
	}
	d1 := f.decay.Daughter(0)
	d2 := f.decay.Daughter(1)
	d3 := f.decay.Daughter(2)

	var batch tripleBatch
	for t := range thirds.idx {
		k := int32(thirds.idx[t])
		if k == seed.i || k == seed.j {
			continue
		}
		// When the third slot shares a species with a pair slot, the same
		// track set would show up twice with the roles swapped. Keep the
		// ordered variant only.
		if d3.PDG == d1.PDG && k < seed.i {
			continue
		}
		if d3.PDG == d2.PDG && k < seed.j {
			continue
		}
		if f.diag != nil {
			f.diag.TripleConsidered()
		}
		batch.add(f.tracks, thirds.idx[t], thirds.chi2[t])
		if batch.n == lane.Width {
			f.flushTriples(&seed, &batch)
		}
	}
	f.flushTriples(&seed, &batch)
}

// flushTriples evaluates batched third tracks against one pair seed and
// emits the surviving three-prong candidates.
func (f *SimpleFinder) flushTriples(seed *tripleSeed, batch *tripleBatch) {
	if batch.n == 0 {
		return
	}
	n := batch.n
	batch.n = 0
	active := lane.FirstN(n)

	third := geom.PropagateToPoint(batch.c, seed.sv, f.bz)

	distSV := quality.DistanceToPoint(&third, seed.sv)
	active = f.cutMax(active, distSV, f.cuts.DistanceToSVMax, StageDistanceSV)
	if !active.Any() {
		return
	}

	cosThree := quality.CosOpenThree(&seed.a, &seed.b, &third)
	active = f.cutMin(active, cosThree, f.cuts.CosOpenThreeMin, StageCosOpenThree)
	if !active.Any() {
		return
	}

	mother := quality.ConstructMotherThree(&seed.a, &seed.b, &third,
		f.decay.Daughter(0).Mass, f.decay.Daughter(1).Mass, f.decay.Daughter(2).Mass,
		seed.sv, seed.w1)

	chi2SV := quality.Chi2ToMother(&third, &mother)
	active = f.cutMax(active, chi2SV, f.cuts.Chi2GeoMaxThree, StageChi2SV)
	if !active.Any() {
		return
	}

	length, ldl, fromPV := quality.DecayLength(&mother, &f.vertex)
	active = f.cutMin(active, ldl, f.cuts.LdLMinThree, StageLdL)
	if !active.Any() {
		return
	}

	cosTopo := quality.CosTopo(&mother, &f.vertex)
	active = f.cutMin(active, cosTopo, f.cuts.CosTopoMinThree, StageCosTopo)
	if !active.Any() {
		return
	}

	chi2Topo := quality.Chi2Topo(&mother, &f.vertex, f.bz)
	active = f.cutMaxEnabled(active, chi2Topo, f.cuts.Chi2TopoMaxThree, StageChi2Topo)
	if !active.Any() {
		return
	}

	for l := 0; l < n; l++ {
		if !active[l] {
			continue
		}
		c := Candidate{
			EventID:      f.eventID,
			Mother:       f.decay.Mother.PDG,
			NDaughters:   3,
			Daughters:    [3]int32{seed.i, seed.j, batch.k[l]},
			X:            mother.Par.X[l],
			Y:            mother.Par.Y[l],
			Z:            mother.Par.Z[l],
			Px:           mother.Par.Px[l],
			Py:           mother.Par.Py[l],
			Pz:           mother.Par.Pz[l],
			E:            mother.E[l],
			Cov:          mother.Par.CovAt(l),
			Charge:       int8(mother.Par.Q[l]),
			Mass:         mother.Mass[l],
			MassErr:      mother.MassErr[l],
			Chi2Prim:     [3]float64{seed.chiI, seed.chiJ, batch.chi[l]},
			Distance:     seed.dist,
			CosOpen:      cosThree[l],
			Chi2Geo:      seed.chi2Geo,
			DistanceToSV: distSV[l],
			Chi2ToSV:     chi2SV[l],
			L:            length[l],
			LdL:          ldl[l],
			IsFromPV:     fromPV[l],
			CosTopo:      cosTopo[l],
			Chi2Topo:     chi2Topo[l],
		}
		f.cands = append(f.cands, c)
		if f.diag != nil {
			f.diag.Accepted(&c)
		}
	}
}

// cutMax keeps lanes with value <= limit.
func (f *SimpleFinder) cutMax(active lane.Mask, v lane.F64, limit float64, stage Stage) lane.Mask {
	pass := v.LessEq(lane.Splat(limit))
	f.countRejections(active, pass, stage)
	return active.And(pass)
}

// cutMaxEnabled is cutMax with limit <= 0 meaning "cut disabled".
func (f *SimpleFinder) cutMaxEnabled(active lane.Mask, v lane.F64, limit float64, stage Stage) lane.Mask {
	if limit <= 0 {
		return active
	}
	return f.cutMax(active, v, limit, stage)
}

// cutMin keeps lanes with value >= floor.
func (f *SimpleFinder) cutMin(active lane.Mask, v lane.F64, floor float64, stage Stage) lane.Mask {
	pass := v.GreaterEq(lane.Splat(floor))
	f.countRejections(active, pass, stage)
	return active.And(pass)
}

func (f *SimpleFinder) countRejections(active, pass lane.Mask, stage Stage) {
	if f.diag == nil {
		return
	}
	dropped := active.AndNot(pass)
	for l := range dropped {
		if dropped[l] {
			f.diag.Rejected(stage)
		}
	}
}

func validateEvent(ev *particle.Event) error {
	if !isFinite(ev.Bz) {
		return &BadEventError{EventID: ev.ID, Track: -1, Reason: "magnetic field is not finite"}
	}
	v := &ev.Vertex
	if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
		return &BadEventError{EventID: ev.ID, Track: -1, Reason: "vertex position is not finite"}
	}
	for _, c := range v.Cov {
		if !isFinite(c) {
			return &BadEventError{EventID: ev.ID, Track: -1, Reason: "vertex covariance is not finite"}
		}
	}
	for i := range ev.Tracks {
		if err := checkTrack(ev.ID, i, &ev.Tracks[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkTrack(eventID int64, i int, tr *particle.Track) error {
	bad := func(reason string) error {
		return &BadEventError{EventID: eventID, Track: i, Reason: reason}
	}
	state := [6]float64{tr.X, tr.Y, tr.Z, tr.Px, tr.Py, tr.Pz}
	for _, v := range state {
		if !isFinite(v) {
			return bad("track state is not finite")
		}
	}
	for _, c := range tr.Cov {
		if !isFinite(c) {
			return bad("track covariance is not finite")
		}
	}
	if tr.Px == 0 && tr.Py == 0 && tr.Pz == 0 {
		return bad("zero momentum")
	}
	if tr.Charge == 0 {
		return bad("zero charge")
	}
	for _, d := range [6]int{0, 2, 5, 9, 14, 20} {
		if tr.Cov[d] < 0 {
			return bad("negative variance")
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
