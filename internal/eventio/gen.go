package eventio

import (
	"math"
	"math/rand"

	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/geom"
	"github.com/viktorklochkov/PFSimple/internal/lane"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// GenConfig steers the synthetic event generator. Zero physics parameters
// fall back to defaults; the counts are taken literally.
type GenConfig struct {
	Events     int
	Signal     int // injected decays per event
	Background int // primary tracks per event

	Decay config.Decay // zero value means K0s -> pi+ pi-
	Bz    float64      // kilogauss
	Seed  int64

	DecayLength float64 // cm, nominal flight length of the mother
	VertexSigma float64 // cm, primary vertex spread per axis
	PosSigma    float64 // cm, track position resolution per axis
	MomSigma    float64 // GeV/c, track momentum resolution per component
}

func (c GenConfig) withDefaults() GenConfig {
	if c.Decay.NDaughters == 0 {
		c.Decay, _ = (*config.Config)(nil).BuildDecay()
	}
	if c.Bz == 0 {
		c.Bz = 5
	}
	if c.DecayLength == 0 {
		c.DecayLength = 5
	}
	if c.VertexSigma == 0 {
		c.VertexSigma = 0.005
	}
	if c.PosSigma == 0 {
		c.PosSigma = 0.01
	}
	if c.MomSigma == 0 {
		c.MomSigma = 0.002
	}
	return c
}

// Generator produces events with known decays buried in primary-track
// background. The same seed always yields the same sample.
type Generator struct {
	cfg    GenConfig
	rng    *rand.Rand
	nextID int64
}

func NewGenerator(cfg GenConfig) *Generator {
	cfg = cfg.withDefaults()
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Events generates the configured number of events.
func (g *Generator) Events() []particle.Event {
	out := make([]particle.Event, 0, g.cfg.Events)
	for i := 0; i < g.cfg.Events; i++ {
		out = append(out, g.Event())
	}
	return out
}

// Event generates a single event.
func (g *Generator) Event() particle.Event {
	vs := g.cfg.VertexSigma
	ev := particle.Event{
		ID: g.nextID,
		Bz: g.cfg.Bz,
		Vertex: particle.Vertex{
			X: g.rng.NormFloat64() * vs,
			Y: g.rng.NormFloat64() * vs,
			Z: g.rng.NormFloat64() * vs,
			Cov: [particle.VertexCovSize]float64{
				vs * vs, 0, vs * vs, 0, 0, vs * vs,
			},
		},
	}
	g.nextID++

	id := int32(0)
	for s := 0; s < g.cfg.Signal; s++ {
		ev.Tracks = append(ev.Tracks, g.decayProducts(&ev.Vertex, &id)...)
	}
	for b := 0; b < g.cfg.Background; b++ {
		ev.Tracks = append(ev.Tracks, g.primaryTrack(&ev.Vertex, &id))
	}
	return ev
}

// decayProducts injects one mother decay: the mother flies a bounded length
// from the primary vertex, decays with exact kinematics, and each daughter
// is handed over as a smeared track some path length downstream.
func (g *Generator) decayProducts(v *particle.Vertex, id *int32) []particle.Track {
	d := g.cfg.Decay
	m := d.Mother.Mass

	dir := g.isotropicUnit()
	pm := g.uniform(1.0, 3.0)
	flight := g.cfg.DecayLength * g.uniform(0.7, 1.3)
	at := [3]float64{
		v.X + flight*dir[0],
		v.Y + flight*dir[1],
		v.Z + flight*dir[2],
	}

	var masses []float64
	var moms [][3]float64
	if d.NDaughters == 2 {
		masses = []float64{d.Daughter(0).Mass, d.Daughter(1).Mass}
		moms = g.twoBody(m, masses[0], masses[1])
	} else {
		masses = []float64{d.Daughter(0).Mass, d.Daughter(1).Mass, d.Daughter(2).Mass}
		moms = g.threeBody(m, masses[0], masses[1], masses[2])
	}

	em := math.Sqrt(pm*pm + m*m)
	beta, gamma := pm/em, em/m
	tracks := make([]particle.Track, 0, d.NDaughters)
	for k := range moms {
		lab := boost(moms[k], masses[k], dir, beta, gamma)
		tracks = append(tracks, g.emit(*id, d.Daughter(k), at, lab))
		*id++
	}
	return tracks
}

func (g *Generator) primaryTrack(v *particle.Vertex, id *int32) particle.Track {
	d := g.cfg.Decay
	sp := d.Daughter(g.rng.Intn(d.NDaughters))
	p := scale(g.isotropicUnit(), g.uniform(0.3, 2.0))
	tr := g.emit(*id, sp, [3]float64{v.X, v.Y, v.Z}, p)
	*id++
	return tr
}

// emit flies a daughter from its production point and returns the smeared
// detector-side track.
func (g *Generator) emit(id int32, sp particle.Species, at, p [3]float64) particle.Track {
	seed := particle.Track{
		X: at[0], Y: at[1], Z: at[2],
		Px: p[0], Py: p[1], Pz: p[2],
		Charge: sp.Charge,
	}
	var par geom.ParamLanes
	par.SetTrack(0, &seed)
	out := geom.Transport(par, lane.Splat(g.uniform(2.0, 8.0)), g.cfg.Bz)
	x, y, z, px, py, pz := out.StateAt(0)

	ps, ms := g.cfg.PosSigma, g.cfg.MomSigma
	var cov [particle.CovSize]float64
	cov[0], cov[2], cov[5] = ps*ps, ps*ps, ps*ps
	cov[9], cov[14], cov[20] = ms*ms, ms*ms, ms*ms
	return particle.Track{
		ID:     id,
		X:      x + g.rng.NormFloat64()*ps,
		Y:      y + g.rng.NormFloat64()*ps,
		Z:      z + g.rng.NormFloat64()*ps,
		Px:     px + g.rng.NormFloat64()*ms,
		Py:     py + g.rng.NormFloat64()*ms,
		Pz:     pz + g.rng.NormFloat64()*ms,
		Charge: sp.Charge,
		PDG:    sp.PDG,
		Cov:    cov,
	}
}

// twoBody draws an isotropic back-to-back daughter pair in the mother rest
// frame.
func (g *Generator) twoBody(m, m1, m2 float64) [][3]float64 {
	p := breakupMomentum(m, m1, m2)
	dir := g.isotropicUnit()
	return [][3]float64{scale(dir, p), scale(dir, -p)}
}

// threeBody decays sequentially: mother -> d1 + X, then X -> d2 + d3, with
// the intermediate mass drawn uniformly over its kinematic range. The three
// lab momenta still sum to the mother's exactly.
func (g *Generator) threeBody(m, m1, m2, m3 float64) [][3]float64 {
	lo, hi := m2+m3, m-m1
	m23 := lo + g.rng.Float64()*(hi-lo)

	p1 := breakupMomentum(m, m1, m23)
	dir := g.isotropicUnit()
	first := scale(dir, p1)

	// X recoils against the first daughter
	nX := scale(dir, -1)
	q := breakupMomentum(m23, m2, m3)
	dir2 := g.isotropicUnit()
	eX := math.Sqrt(p1*p1 + m23*m23)
	betaX, gammaX := p1/eX, eX/m23
	d2 := boost(scale(dir2, q), m2, nX, betaX, gammaX)
	d3 := boost(scale(dir2, -q), m3, nX, betaX, gammaX)
	return [][3]float64{first, d2, d3}
}

// breakupMomentum is the daughter momentum magnitude of a two-body decay in
// the parent rest frame.
func breakupMomentum(m, m1, m2 float64) float64 {
	a := m*m - (m1+m2)*(m1+m2)
	b := m*m - (m1-m2)*(m1-m2)
	if a <= 0 {
		return 0
	}
	return math.Sqrt(a*b) / (2 * m)
}

// boost transforms a momentum from a frame moving with velocity beta along
// the unit vector n into the lab.
func boost(p [3]float64, mass float64, n [3]float64, beta, gamma float64) [3]float64 {
	pl := p[0]*n[0] + p[1]*n[1] + p[2]*n[2]
	e := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2] + mass*mass)
	shift := (gamma-1)*pl + gamma*beta*e
	return [3]float64{
		p[0] + shift*n[0],
		p[1] + shift*n[1],
		p[2] + shift*n[2],
	}
}

func (g *Generator) isotropicUnit() [3]float64 {
	cos := 2*g.rng.Float64() - 1
	sin := math.Sqrt(1 - cos*cos)
	phi := 2 * math.Pi * g.rng.Float64()
	return [3]float64{sin * math.Cos(phi), sin * math.Sin(phi), cos}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func scale(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}
