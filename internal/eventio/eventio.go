// Package eventio moves events in and out of the engine as JSON Lines: one
// event object per line, tracks inline. The format is deliberately flat so
// samples can be produced by any tracking framework with a few lines of
// glue, inspected with standard text tooling, and diffed between runs.
//
// The package also carries a seeded synthetic generator used by the test
// suite and the gen command to produce reconstructable samples.
package eventio

import (
	"fmt"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// DecodeError reports an undecodable input line by its 1-based line number.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("eventio: line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type trackRecord struct {
	ID     int32     `json:"id"`
	Pos    []float64 `json:"pos"`
	Mom    []float64 `json:"mom"`
	Charge int8      `json:"charge"`
	PDG    int32     `json:"pdg"`
	Cov    []float64 `json:"cov"`
}

type vertexRecord struct {
	Pos []float64 `json:"pos"`
	Cov []float64 `json:"cov"`
}

type eventRecord struct {
	ID     int64         `json:"id"`
	Bz     float64       `json:"bz"`
	Vertex vertexRecord  `json:"vertex"`
	Tracks []trackRecord `json:"tracks"`
}

// toEvent converts a decoded record, rejecting wrong-sized arrays. Slices
// rather than fixed arrays in the record types make short inputs a loud
// error instead of a silent zero-fill.
func (rec *eventRecord) toEvent() (*particle.Event, error) {
	if len(rec.Vertex.Pos) != 3 {
		return nil, fmt.Errorf("vertex pos has %d elements, want 3", len(rec.Vertex.Pos))
	}
	if len(rec.Vertex.Cov) != particle.VertexCovSize {
		return nil, fmt.Errorf("vertex cov has %d elements, want %d", len(rec.Vertex.Cov), particle.VertexCovSize)
	}
	ev := &particle.Event{ID: rec.ID, Bz: rec.Bz}
	ev.Vertex.X, ev.Vertex.Y, ev.Vertex.Z = rec.Vertex.Pos[0], rec.Vertex.Pos[1], rec.Vertex.Pos[2]
	copy(ev.Vertex.Cov[:], rec.Vertex.Cov)

	ev.Tracks = make([]particle.Track, 0, len(rec.Tracks))
	for i, tr := range rec.Tracks {
		if len(tr.Pos) != 3 {
			return nil, fmt.Errorf("track %d: pos has %d elements, want 3", i, len(tr.Pos))
		}
		if len(tr.Mom) != 3 {
			return nil, fmt.Errorf("track %d: mom has %d elements, want 3", i, len(tr.Mom))
		}
		if len(tr.Cov) != particle.CovSize {
			return nil, fmt.Errorf("track %d: cov has %d elements, want %d", i, len(tr.Cov), particle.CovSize)
		}
		t := particle.Track{
			ID:     tr.ID,
			X:      tr.Pos[0],
			Y:      tr.Pos[1],
			Z:      tr.Pos[2],
			Px:     tr.Mom[0],
			Py:     tr.Mom[1],
			Pz:     tr.Mom[2],
			Charge: tr.Charge,
			PDG:    tr.PDG,
		}
		copy(t.Cov[:], tr.Cov)
		ev.Tracks = append(ev.Tracks, t)
	}
	return ev, nil
}

func fromEvent(ev *particle.Event) eventRecord {
	rec := eventRecord{
		ID: ev.ID,
		Bz: ev.Bz,
		Vertex: vertexRecord{
			Pos: []float64{ev.Vertex.X, ev.Vertex.Y, ev.Vertex.Z},
			Cov: append([]float64(nil), ev.Vertex.Cov[:]...),
		},
		Tracks: make([]trackRecord, 0, len(ev.Tracks)),
	}
	for i := range ev.Tracks {
		tr := &ev.Tracks[i]
		rec.Tracks = append(rec.Tracks, trackRecord{
			ID:     tr.ID,
			Pos:    []float64{tr.X, tr.Y, tr.Z},
			Mom:    []float64{tr.Px, tr.Py, tr.Pz},
			Charge: tr.Charge,
			PDG:    tr.PDG,
			Cov:    append([]float64(nil), tr.Cov[:]...),
		})
	}
	return rec
}
