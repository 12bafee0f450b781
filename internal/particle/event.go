package particle

// Event is one interaction record: the primary vertex, the magnetic field it
// was recorded under, and every fitted track selected for secondary-candidate
// finding.
type Event struct {
	ID     int64
	Bz     float64 // uniform solenoid field along z, kilogauss
	Vertex Vertex
	Tracks []Track
}

// TrackSet indexes an event's tracks by particle hypothesis so the finder
// only pairs hypothesis-compatible tracks. The per-species index slices keep
// the event's original track order, which fixes the candidate emission order.
type TrackSet struct {
	tracks []Track
	byPDG  map[int32][]int
}

// NewTrackSet builds the per-species partition of tracks in a single pass.
// The caller keeps ownership of the slice; TrackSet never mutates it.
func NewTrackSet(tracks []Track) *TrackSet {
	s := &TrackSet{tracks: tracks}
	s.Partition()
	return s
}

// Partition rebuilds the species index. Call after replacing the underlying
// track slice.
func (s *TrackSet) Partition() {
	s.byPDG = make(map[int32][]int)
	for i := range s.tracks {
		pdg := s.tracks[i].PDG
		s.byPDG[pdg] = append(s.byPDG[pdg], i)
	}
}

// Indices returns the event-order indices of every track carrying the given
// hypothesis. The returned slice is shared; callers must not modify it.
func (s *TrackSet) Indices(pdg int32) []int {
	return s.byPDG[pdg]
}

// At returns the track at index i.
func (s *TrackSet) At(i int) *Track {
	return &s.tracks[i]
}

// Len returns the number of tracks in the set.
func (s *TrackSet) Len() int {
	return len(s.tracks)
}
