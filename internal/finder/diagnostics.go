package finder

import "sync"

// Stage labels the selection step that removed a combination.
type Stage int

const (
	StageChi2Prim Stage = iota
	StageDistance
	StageCosOpen
	StageChi2Geo
	StageDistanceSV
	StageCosOpenThree
	StageChi2SV
	StageLdL
	StageCosTopo
	StageChi2Topo
	stageCount
)

var stageNames = [stageCount]string{
	"chi2_prim",
	"distance",
	"cos_open",
	"chi2_geo",
	"distance_sv",
	"cos_open_three",
	"chi2_sv",
	"ldl",
	"cos_topo",
	"chi2_topo",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return "unknown"
	}
	return stageNames[s]
}

// Diagnostics receives selection telemetry from a finder. Implementations
// must tolerate concurrent calls when the same collector is shared between
// finders running on different events.
type Diagnostics interface {
	// TrackPruned fires once per track removed by the primary-vertex
	// detachment cut, before any pairing.
	TrackPruned(pdg int32, chi2 float64)
	// PairConsidered fires once per daughter pair entering the
	// geometry stage.
	PairConsidered()
	// TripleConsidered fires once per third-track extension attempt.
	TripleConsidered()
	// Rejected fires once per combination removed at the given stage.
	Rejected(stage Stage)
	// Accepted fires once per emitted candidate.
	Accepted(c *Candidate)
}

// Counters is a mutex-guarded Diagnostics that tallies everything it sees.
type Counters struct {
	mu       sync.Mutex
	pruned   map[int32]int
	pairs    int
	triples  int
	rejected [stageCount]int
	accepted int
}

// NewCounters returns an empty collector.
func NewCounters() *Counters {
	return &Counters{pruned: make(map[int32]int)}
}

func (c *Counters) TrackPruned(pdg int32, chi2 float64) {
	c.mu.Lock()
	c.pruned[pdg]++
	c.mu.Unlock()
}

func (c *Counters) PairConsidered() {
	c.mu.Lock()
	c.pairs++
	c.mu.Unlock()
}

func (c *Counters) TripleConsidered() {
	c.mu.Lock()
	c.triples++
	c.mu.Unlock()
}

func (c *Counters) Rejected(stage Stage) {
	c.mu.Lock()
	if stage >= 0 && stage < stageCount {
		c.rejected[stage]++
	}
	c.mu.Unlock()
}

func (c *Counters) Accepted(cand *Candidate) {
	c.mu.Lock()
	c.accepted++
	c.mu.Unlock()
}

// Snapshot is a point-in-time copy of the tallies.
type Snapshot struct {
	TracksPruned map[int32]int
	Pairs        int
	Triples      int
	Rejected     map[string]int
	Accepted     int
}

// Snapshot copies the current tallies. Zero-count stages are omitted from
// the rejection map.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		TracksPruned: make(map[int32]int, len(c.pruned)),
		Pairs:        c.pairs,
		Triples:      c.triples,
		Rejected:     make(map[string]int),
		Accepted:     c.accepted,
	}
	for pdg, n := range c.pruned {
		s.TracksPruned[pdg] = n
	}
	for st, n := range c.rejected {
		if n > 0 {
			s.Rejected[Stage(st).String()] = n
		}
	}
	return s
}

// TotalRejected sums rejections across all stages.
func (s Snapshot) TotalRejected() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}
