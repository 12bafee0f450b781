package finder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

const testBz = 5.0

func diagCov(sigmaPos, sigmaMom float64) [particle.CovSize]float64 {
	var c [particle.CovSize]float64
	c[0], c[2], c[5] = sigmaPos*sigmaPos, sigmaPos*sigmaPos, sigmaPos*sigmaPos
	c[9], c[14], c[20] = sigmaMom*sigmaMom, sigmaMom*sigmaMom, sigmaMom*sigmaMom
	return c
}

// trackFrom builds the detector-side view of a particle born at (x, y, z)
// with momentum (px, py, pz): the state is flown a path length s through the
// field and handed over with a fresh diagonal covariance, the way a fitted
// track would arrive.
func trackFrom(id int32, sp particle.Species, x, y, z, px, py, pz, s float64) particle.Track {
	seed := particle.Track{
		ID: id, X: x, Y: y, Z: z, Px: px, Py: py, Pz: pz,
		Charge: sp.Charge, PDG: sp.PDG,
	}
	var par geom.ParamLanes
	par.SetTrack(0, &seed)
	out := geom.Transport(par, lane.Splat(s), testBz)
	nx, ny, nz, npx, npy, npz := out.StateAt(0)
	return particle.Track{
		ID: id, X: nx, Y: ny, Z: nz, Px: npx, Py: npy, Pz: npz,
		Charge: sp.Charge, PDG: sp.PDG, Cov: diagCov(0.01, 0.001),
	}
}

func invMass(masses []float64, momenta [][3]float64) float64 {
	var e, px, py, pz float64
	for k, p := range momenta {
		px += p[0]
		py += p[1]
		pz += p[2]
		e += math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2] + masses[k]*masses[k])
	}
	return math.Sqrt(e*e - px*px - py*py - pz*pz)
}

// decayPoint places the decay vertex a distance l from the origin along the
// summed daughter momentum, so the reconstructed mother points back at the
// primary vertex.
func decayPoint(l float64, momenta ...[3]float64) [3]float64 {
	var sum [3]float64
	for _, p := range momenta {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	norm := math.Sqrt(sum[0]*sum[0] + sum[1]*sum[1] + sum[2]*sum[2])
	return [3]float64{sum[0] * l / norm, sum[1] * l / norm, sum[2] * l / norm}
}

func originVertex() particle.Vertex {
	return particle.Vertex{
		Cov: [particle.VertexCovSize]float64{1e-4, 0, 1e-4, 0, 0, 1e-4},
	}
}

func kshortDecay() config.Decay {
	return config.Decay{
		Mother:     particle.KShort,
		Daughters:  [3]particle.Species{particle.PionPlus, particle.PionMinus},
		NDaughters: 2,
	}
}

// kshortEvent is one clean two-prong topology: a pion pair emitted 5 cm from
// the origin, plus two primary pions the detachment cut must remove.
func kshortEvent() (particle.Event, [3]float64, [3]float64) {
	p1 := [3]float64{0.2, 0.05, 0.7}
	p2 := [3]float64{0.1, 0.05, 0.5}
	d := decayPoint(5, p1, p2)
	ev := particle.Event{
		ID:     42,
		Bz:     testBz,
		Vertex: originVertex(),
		Tracks: []particle.Track{
			trackFrom(0, particle.PionPlus, d[0], d[1], d[2], p1[0], p1[1], p1[2], 7),
			trackFrom(1, particle.PionMinus, d[0], d[1], d[2], p2[0], p2[1], p2[2], 6),
			trackFrom(2, particle.PionPlus, 0, 0, 0, 0.3, -0.1, 0.9, 8),
			trackFrom(3, particle.PionMinus, 0, 0, 0, -0.2, 0.15, 0.8, 9),
		},
	}
	return ev, p1, p2
}

func TestFindKShort(t *testing.T) {
	t.Parallel()

	ev, p1, p2 := kshortEvent()
	cuts := config.DefaultCuts()
	f, err := New(kshortDecay(), cuts)
	require.NoError(t, err)
	diag := NewCounters()
	f.SetDiagnostics(diag)

	require.NoError(t, f.Init(&ev))
	cands, err := f.FindParticles()
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, int64(42), c.EventID)
	assert.Equal(t, particle.KShort.PDG, c.Mother)
	assert.Equal(t, 2, c.NDaughters)
	assert.Equal(t, [3]int32{0, 1, -1}, c.Daughters)
	assert.Equal(t, int8(0), c.Charge)

	wantMass := invMass(
		[]float64{particle.PionPlus.Mass, particle.PionMinus.Mass},
		[][3]float64{p1, p2},
	)
	assert.InDelta(t, wantMass, c.Mass, 1e-6)
	assert.Greater(t, c.MassErr, 0.0)

	assert.InDelta(t, p1[0]+p2[0], c.Px, 1e-6)
	assert.InDelta(t, p1[1]+p2[1], c.Py, 1e-6)
	assert.InDelta(t, p1[2]+p2[2], c.Pz, 1e-6)
	assert.InDelta(t, 5.0, math.Sqrt(c.X*c.X+c.Y*c.Y+c.Z*c.Z), 1e-3)

	assert.Greater(t, c.Chi2Prim[0], cuts.Chi2PrimMin)
	assert.Greater(t, c.Chi2Prim[1], cuts.Chi2PrimMin)
	assert.Less(t, c.Distance, 1e-3)
	assert.Less(t, c.Chi2Geo, 0.1)
	assert.InDelta(t, 5.0, c.L, 1e-2)
	assert.Greater(t, c.LdL, 100.0)
	assert.False(t, c.IsFromPV)
	assert.Greater(t, c.CosTopo, 0.9999)
	assert.Less(t, c.Chi2Topo, 0.1)

	snap := diag.Snapshot()
	assert.Equal(t, 1, snap.Pairs)
	assert.Equal(t, 1, snap.Accepted)
	assert.Equal(t, 1, snap.TracksPruned[particle.PionPlus.PDG])
	assert.Equal(t, 1, snap.TracksPruned[particle.PionMinus.PDG])
	assert.Equal(t, 0, snap.TotalRejected())
}

// multiV0Event packs three pion pairs from three separate decay points into
// one event, forcing the pair loop through several evaluation batches.
func multiV0Event() (particle.Event, []float64) {
	pairs := [3][2][3]float64{
		{{0.2, 0.05, 0.7}, {0.1, 0.05, 0.5}},
		{{-0.15, 0.1, 0.8}, {-0.05, 0.02, 0.6}},
		{{0.05, -0.2, 0.9}, {0.02, -0.1, 0.65}},
	}
	lengths := [3]float64{4.5, 5.5, 6.5}
	paths := [3][2]float64{{7, 6}, {6.5, 7.5}, {8, 5.5}}

	ev := particle.Event{ID: 7, Bz: testBz, Vertex: originVertex()}
	masses := make([]float64, 0, 3)
	id := int32(0)
	for k, pp := range pairs {
		d := decayPoint(lengths[k], pp[0], pp[1])
		ev.Tracks = append(ev.Tracks,
			trackFrom(id, particle.PionPlus, d[0], d[1], d[2], pp[0][0], pp[0][1], pp[0][2], paths[k][0]))
		id++
		ev.Tracks = append(ev.Tracks,
			trackFrom(id, particle.PionMinus, d[0], d[1], d[2], pp[1][0], pp[1][1], pp[1][2], paths[k][1]))
		id++
		masses = append(masses, invMass(
			[]float64{particle.PionPlus.Mass, particle.PionMinus.Mass},
			[][3]float64{pp[0], pp[1]},
		))
	}
	return ev, masses
}

func assertSatisfiesCuts(t *testing.T, cuts config.Cuts, c *Candidate) {
	t.Helper()
	for k := 0; k < c.NDaughters; k++ {
		assert.GreaterOrEqual(t, c.Chi2Prim[k], cuts.Chi2PrimMin)
	}
	assert.LessOrEqual(t, c.Distance, cuts.DistanceMax)
	assert.LessOrEqual(t, c.Chi2Geo, cuts.Chi2GeoMax)
	if c.NDaughters == 2 {
		assert.GreaterOrEqual(t, c.CosOpen, cuts.CosOpenMin)
		assert.GreaterOrEqual(t, c.LdL, cuts.LdLMin)
		assert.GreaterOrEqual(t, c.CosTopo, cuts.CosTopoMin)
		if cuts.LdLMax > 0 {
			assert.LessOrEqual(t, c.LdL, cuts.LdLMax)
		}
		if cuts.Chi2TopoMax > 0 {
			assert.LessOrEqual(t, c.Chi2Topo, cuts.Chi2TopoMax)
		}
		return
	}
	assert.GreaterOrEqual(t, c.CosOpen, cuts.CosOpenThreeMin)
	assert.GreaterOrEqual(t, c.LdL, cuts.LdLMinThree)
	assert.GreaterOrEqual(t, c.CosTopo, cuts.CosTopoMinThree)
	assert.LessOrEqual(t, c.DistanceToSV, cuts.DistanceToSVMax)
	assert.LessOrEqual(t, c.Chi2ToSV, cuts.Chi2GeoMaxThree)
	if cuts.Chi2TopoMaxThree > 0 {
		assert.LessOrEqual(t, c.Chi2Topo, cuts.Chi2TopoMaxThree)
	}
}

func TestFindMultipleVertices(t *testing.T) {
	t.Parallel()

	ev, masses := multiV0Event()
	cuts := config.DefaultCuts()
	f, err := New(kshortDecay(), cuts)
	require.NoError(t, err)
	require.NoError(t, f.Init(&ev))

	cands, err := f.FindParticles()
	require.NoError(t, err)

	want := map[[2]int32]float64{
		{0, 1}: masses[0],
		{2, 3}: masses[1],
		{4, 5}: masses[2],
	}
	found := make(map[[2]int32]bool)
	for i := range cands {
		c := &cands[i]
		assertSatisfiesCuts(t, cuts, c)
		key := [2]int32{c.Daughters[0], c.Daughters[1]}
		if m, ok := want[key]; ok {
			assert.InDelta(t, m, c.Mass, 1e-6)
			found[key] = true
		}
	}
	assert.Len(t, found, 3, "all generated pairs must be reconstructed")
}

func TestFindIsDeterministic(t *testing.T) {
	t.Parallel()

	ev, _ := multiV0Event()
	run := func() []Candidate {
		f, err := New(kshortDecay(), config.DefaultCuts())
		require.NoError(t, err)
		require.NoError(t, f.Init(&ev))
		out, err := f.FindParticles()
		require.NoError(t, err)
		return out
	}

	first := run()
	require.NotEmpty(t, first)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, run())
	}

	// calling FindParticles again without Init must recompute, not append
	f, err := New(kshortDecay(), config.DefaultCuts())
	require.NoError(t, err)
	require.NoError(t, f.Init(&ev))
	a, err := f.FindParticles()
	require.NoError(t, err)
	b, err := f.FindParticles()
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, first, f.Candidates())
}

func TestFindTrackOrderOnlyMovesIndices(t *testing.T) {
	t.Parallel()

	ev, _, _ := kshortEvent()
	rev := particle.Event{ID: ev.ID, Bz: ev.Bz, Vertex: ev.Vertex}
	for i := len(ev.Tracks) - 1; i >= 0; i-- {
		rev.Tracks = append(rev.Tracks, ev.Tracks[i])
	}

	find := func(e *particle.Event) Candidate {
		f, err := New(kshortDecay(), config.DefaultCuts())
		require.NoError(t, err)
		require.NoError(t, f.Init(e))
		out, err := f.FindParticles()
		require.NoError(t, err)
		require.Len(t, out, 1)
		return out[0]
	}

	c1 := find(&ev)
	c2 := find(&rev)

	// same physical tracks, so everything but the indices matches exactly
	assert.Equal(t, [3]int32{0, 1, -1}, c1.Daughters)
	assert.Equal(t, [3]int32{3, 2, -1}, c2.Daughters)
	assert.Equal(t, c1.Mass, c2.Mass)
	assert.Equal(t, c1.MassErr, c2.MassErr)
	assert.Equal(t, c1.Px, c2.Px)
	assert.Equal(t, c1.LdL, c2.LdL)
	assert.Equal(t, c1.Chi2Geo, c2.Chi2Geo)
	assert.Equal(t, c1.CosTopo, c2.CosTopo)
}

func TestFindParticlesRequiresInit(t *testing.T) {
	t.Parallel()

	f, err := New(kshortDecay(), config.DefaultCuts())
	require.NoError(t, err)

	_, err = f.FindParticles()
	require.ErrorIs(t, err, ErrNoEvent)

	// a failed Init must leave the finder without an event
	ev, _, _ := kshortEvent()
	ev.Tracks[1].Px = math.NaN()
	require.Error(t, f.Init(&ev))
	_, err = f.FindParticles()
	require.ErrorIs(t, err, ErrNoEvent)
}

func TestInitRejectsMalformedEvents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(ev *particle.Event)
		wantTrack int
	}{
		{"nan momentum", func(ev *particle.Event) { ev.Tracks[1].Px = math.NaN() }, 1},
		{"inf position", func(ev *particle.Event) { ev.Tracks[2].Z = math.Inf(1) }, 2},
		{"nan covariance", func(ev *particle.Event) { ev.Tracks[0].Cov[9] = math.NaN() }, 0},
		{"negative variance", func(ev *particle.Event) { ev.Tracks[3].Cov[14] = -1e-6 }, 3},
		{"zero momentum", func(ev *particle.Event) {
			ev.Tracks[0].Px, ev.Tracks[0].Py, ev.Tracks[0].Pz = 0, 0, 0
		}, 0},
		{"zero charge", func(ev *particle.Event) { ev.Tracks[2].Charge = 0 }, 2},
		{"nan vertex", func(ev *particle.Event) { ev.Vertex.Y = math.NaN() }, -1},
		{"inf field", func(ev *particle.Event) { ev.Bz = math.Inf(-1) }, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev, _, _ := kshortEvent()
			tc.mutate(&ev)

			f, err := New(kshortDecay(), config.DefaultCuts())
			require.NoError(t, err)
			err = f.Init(&ev)
			var bad *BadEventError
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, tc.wantTrack, bad.Track)
			assert.Equal(t, ev.ID, bad.EventID)
		})
	}

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		f, err := New(kshortDecay(), config.DefaultCuts())
		require.NoError(t, err)
		var bad *BadEventError
		require.ErrorAs(t, f.Init(nil), &bad)
	})
}

func TestFindWithoutCompatibleTracksIsEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		tracks []particle.Track
	}{
		{"no tracks", nil},
		{"one species only", []particle.Track{
			trackFrom(0, particle.PionPlus, 1, 0.5, 4, 0.2, 0.05, 0.7, 7),
			trackFrom(1, particle.PionPlus, 1, -0.5, 4, 0.1, -0.05, 0.6, 6),
		}},
		{"all primaries", []particle.Track{
			trackFrom(0, particle.PionPlus, 0, 0, 0, 0.2, 0.05, 0.7, 7),
			trackFrom(1, particle.PionMinus, 0, 0, 0, 0.1, 0.05, 0.5, 6),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev := particle.Event{ID: 1, Bz: testBz, Vertex: originVertex(), Tracks: tc.tracks}
			f, err := New(kshortDecay(), config.DefaultCuts())
			require.NoError(t, err)
			require.NoError(t, f.Init(&ev))
			cands, err := f.FindParticles()
			require.NoError(t, err)
			assert.Empty(t, cands)
		})
	}
}

func TestTightCutsRejectTheSignal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *config.Cuts)
		stage  Stage
	}{
		{"detachment", func(c *config.Cuts) { c.Chi2PrimMin = 1e6 }, StageChi2Prim},
		{"opening angle", func(c *config.Cuts) { c.CosOpenMin = 0.99999 }, StageCosOpen},
		{"decay length floor", func(c *config.Cuts) { c.LdLMin = 1e4 }, StageLdL},
		{"decay length ceiling", func(c *config.Cuts) { c.LdLMax = 50 }, StageLdL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev, _, _ := kshortEvent()
			cuts := config.DefaultCuts()
			tc.mutate(&cuts)

			f, err := New(kshortDecay(), cuts)
			require.NoError(t, err)
			diag := NewCounters()
			f.SetDiagnostics(diag)
			require.NoError(t, f.Init(&ev))

			cands, err := f.FindParticles()
			require.NoError(t, err)
			assert.Empty(t, cands)

			snap := diag.Snapshot()
			if tc.stage == StageChi2Prim {
				assert.Equal(t, 0, snap.Pairs, "pruned tracks must never be paired")
				assert.Equal(t, 4, snap.TracksPruned[particle.PionPlus.PDG]+snap.TracksPruned[particle.PionMinus.PDG])
			} else {
				assert.GreaterOrEqual(t, snap.Rejected[tc.stage.String()], 1)
			}
		})
	}
}

func hypertritonDecay() config.Decay {
	return config.Decay{
		Mother:     particle.Hypertriton,
		Daughters:  [3]particle.Species{particle.Proton, particle.PionMinus, particle.Deuteron},
		NDaughters: 3,
	}
}

func TestFindHypertriton(t *testing.T) {
	t.Parallel()

	pp := [3]float64{0.4, 0.1, 2.0}
	ppi := [3]float64{0.05, -0.02, 0.3}
	pd := [3]float64{0.3, -0.05, 1.8}
	d := decayPoint(5, pp, ppi, pd)

	ev := particle.Event{
		ID:     11,
		Bz:     testBz,
		Vertex: originVertex(),
		Tracks: []particle.Track{
			trackFrom(0, particle.Proton, d[0], d[1], d[2], pp[0], pp[1], pp[2], 7),
			trackFrom(1, particle.PionMinus, d[0], d[1], d[2], ppi[0], ppi[1], ppi[2], 6),
			trackFrom(2, particle.Deuteron, d[0], d[1], d[2], pd[0], pd[1], pd[2], 8),
			trackFrom(3, particle.Proton, 0, 0, 0, 0.5, 0.1, 1.5, 9),
		},
	}

	cuts := config.DefaultCuts()
	f, err := New(hypertritonDecay(), cuts)
	require.NoError(t, err)
	diag := NewCounters()
	f.SetDiagnostics(diag)
	require.NoError(t, f.Init(&ev))

	cands, err := f.FindParticles()
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, particle.Hypertriton.PDG, c.Mother)
	assert.Equal(t, 3, c.NDaughters)
	assert.Equal(t, [3]int32{0, 1, 2}, c.Daughters)
	assert.Equal(t, int8(1), c.Charge)

	wantMass := invMass(
		[]float64{particle.Proton.Mass, particle.PionMinus.Mass, particle.Deuteron.Mass},
		[][3]float64{pp, ppi, pd},
	)
	assert.InDelta(t, wantMass, c.Mass, 1e-6)
	assert.Greater(t, c.MassErr, 0.0)
	assert.InDelta(t, pp[0]+ppi[0]+pd[0], c.Px, 1e-6)
	assert.InDelta(t, pp[2]+ppi[2]+pd[2], c.Pz, 1e-6)

	assert.Greater(t, c.Chi2Prim[2], cuts.Chi2PrimMin)
	assert.Less(t, c.DistanceToSV, 1e-3)
	assert.Less(t, c.Chi2ToSV, 0.1)
	assert.InDelta(t, 5.0, c.L, 1e-2)
	assert.Greater(t, c.CosTopo, 0.9999)
	assert.False(t, c.IsFromPV)
	assertSatisfiesCuts(t, cuts, &c)

	snap := diag.Snapshot()
	assert.Equal(t, 1, snap.Pairs)
	assert.Equal(t, 1, snap.Triples)
	assert.Equal(t, 1, snap.TracksPruned[particle.Proton.PDG])

	t.Run("no third species means no candidates", func(t *testing.T) {
		short := particle.Event{ID: 12, Bz: testBz, Vertex: originVertex(), Tracks: ev.Tracks[:2]}
		f2, err := New(hypertritonDecay(), cuts)
		require.NoError(t, err)
		require.NoError(t, f2.Init(&short))
		out, err := f2.FindParticles()
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestSameSpeciesSlotsDeduplicate(t *testing.T) {
	t.Parallel()

	// first and third slot share a species: every track set must be
	// emitted exactly once even though two pair seeds could reach it
	decay := config.Decay{
		Mother:     particle.Hypertriton,
		Daughters:  [3]particle.Species{particle.Proton, particle.PionMinus, particle.Proton},
		NDaughters: 3,
	}
	require.NoError(t, decay.Validate())

	pa := [3]float64{0.4, 0.1, 2.0}
	ppi := [3]float64{0.05, -0.02, 0.3}
	pb := [3]float64{0.3, -0.05, 1.8}
	d := decayPoint(5, pa, ppi, pb)

	ev := particle.Event{
		ID:     13,
		Bz:     testBz,
		Vertex: originVertex(),
		Tracks: []particle.Track{
			trackFrom(0, particle.Proton, d[0], d[1], d[2], pa[0], pa[1], pa[2], 7),
			trackFrom(1, particle.PionMinus, d[0], d[1], d[2], ppi[0], ppi[1], ppi[2], 6),
			trackFrom(2, particle.Proton, d[0], d[1], d[2], pb[0], pb[1], pb[2], 8),
		},
	}

	f, err := New(decay, config.DefaultCuts())
	require.NoError(t, err)
	diag := NewCounters()
	f.SetDiagnostics(diag)
	require.NoError(t, f.Init(&ev))

	cands, err := f.FindParticles()
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, [3]int32{0, 1, 2}, cands[0].Daughters)

	snap := diag.Snapshot()
	assert.Equal(t, 2, snap.Pairs, "both proton-pion pairs are tried")
	assert.Equal(t, 1, snap.Triples, "the swapped role assignment is skipped")
}

func TestSameSpeciesPairUsesEachPairOnce(t *testing.T) {
	t.Parallel()

	// two identical-species daughters: the pair loop must enumerate each
	// unordered pair once
	decay := config.Decay{
		Mother:     particle.KaonPlus,
		Daughters:  [3]particle.Species{particle.PionPlus, particle.PionPlus, particle.PionMinus},
		NDaughters: 3,
	}
	require.NoError(t, decay.Validate())

	q1 := [3]float64{0.15, 0.05, 0.6}
	q2 := [3]float64{0.1, -0.03, 0.5}
	q3 := [3]float64{0.05, 0.02, 0.4}
	d := decayPoint(5, q1, q2, q3)

	ev := particle.Event{
		ID:     14,
		Bz:     testBz,
		Vertex: originVertex(),
		Tracks: []particle.Track{
			trackFrom(0, particle.PionPlus, d[0], d[1], d[2], q1[0], q1[1], q1[2], 7),
			trackFrom(1, particle.PionPlus, d[0], d[1], d[2], q2[0], q2[1], q2[2], 6.5),
			trackFrom(2, particle.PionMinus, d[0], d[1], d[2], q3[0], q3[1], q3[2], 6),
		},
	}

	f, err := New(decay, config.DefaultCuts())
	require.NoError(t, err)
	diag := NewCounters()
	f.SetDiagnostics(diag)
	require.NoError(t, f.Init(&ev))

	cands, err := f.FindParticles()
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, [3]int32{0, 1, 2}, c.Daughters)
	wantMass := invMass(
		[]float64{particle.PionPlus.Mass, particle.PionPlus.Mass, particle.PionMinus.Mass},
		[][3]float64{q1, q2, q3},
	)
	assert.InDelta(t, wantMass, c.Mass, 1e-6)

	snap := diag.Snapshot()
	assert.Equal(t, 1, snap.Pairs)
	assert.Equal(t, 1, snap.Triples)
}
