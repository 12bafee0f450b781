// Package runner drives one full reconstruction pass: load the decay and cut
// configuration, stream events from JSONL, fan them across a worker pool of
// finders, persist run bookkeeping plus accepted candidates, and report a
// summary. The finder itself stays silent; all logging happens here.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/eventio"
	"github.com/viktorklochkov/PFSimple/internal/finder"
	"github.com/viktorklochkov/PFSimple/internal/particle"
	sqlite "github.com/viktorklochkov/PFSimple/internal/storage/sqlite"
	"github.com/viktorklochkov/PFSimple/internal/workpool"
)

// Options configure one reconstruction run.
type Options struct {
	ConfigPath string // decay + cuts JSON; empty runs the default K0s selection
	EventsPath string // JSONL event input, required
	DBPath     string // SQLite output; empty skips persistence
	Workers    int    // parallel event workers; 0 defers to the config file
	Note       string // free-form annotation stored with the run
}

// Summary reports what one run did.
type Summary struct {
	RunID      string // empty when persistence was skipped
	Decay      config.Decay
	Events     int // events handed to the finder
	Skipped    int // events rejected by input validation
	Tracks     int
	Candidates int
	Counters   finder.Snapshot
	Duration   time.Duration
}

// Run executes a reconstruction pass. Events that fail input validation are
// logged and skipped; the remaining events are processed in parallel and the
// candidates persisted in event order.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	decay, err := cfg.BuildDecay()
	if err != nil {
		return nil, err
	}
	cuts := cfg.BuildCuts()

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.GetWorkers()
	}

	all, err := eventio.ReadFile(opts.EventsPath)
	if err != nil {
		return nil, err
	}

	events := make([]particle.Event, 0, len(all))
	skipped, tracks := 0, 0
	for i := range all {
		if err := eventio.ValidateEvent(&all[i]); err != nil {
			opsf("event %d skipped: %v", all[i].ID, err)
			skipped++
			continue
		}
		tracks += len(all[i].Tracks)
		events = append(events, all[i])
	}
	opsf("searching %s in %d events, %d tracks (%d events skipped)", decay, len(events), tracks, skipped)

	counters := finder.NewCounters()
	results, err := workpool.Map(ctx, workers, events,
		func(ctx context.Context, i int, ev particle.Event) ([]finder.Candidate, error) {
			f, err := finder.New(decay, cuts)
			if err != nil {
				return nil, err
			}
			f.SetDiagnostics(counters)
			if err := f.Init(&ev); err != nil {
				return nil, fmt.Errorf("event %d: %w", ev.ID, err)
			}
			cands, err := f.FindParticles()
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", ev.ID, err)
			}
			tracef("event %d: %d candidates", ev.ID, len(cands))
			return cands, nil
		})
	if err != nil {
		return nil, err
	}

	var cands []finder.Candidate
	for _, r := range results {
		cands = append(cands, r...)
	}

	sum := &Summary{
		Decay:      decay,
		Events:     len(events),
		Skipped:    skipped,
		Tracks:     tracks,
		Candidates: len(cands),
		Counters:   counters.Snapshot(),
		Duration:   time.Since(start),
	}

	if opts.DBPath != "" {
		runID, err := persist(opts, decay, cuts, workers, cands, sum, start)
		if err != nil {
			return nil, err
		}
		sum.RunID = runID
	}

	sum.Duration = time.Since(start)
	diagf("run done: %d candidates, %d pairs, %d triples, %d rejections in %v",
		sum.Candidates, sum.Counters.Pairs, sum.Counters.Triples, sum.Counters.TotalRejected(), sum.Duration)
	return sum, nil
}

// persist writes the run row and its candidates, then stamps the run
// finished. The stored config snapshot records the effective decay and cut
// values, not the raw file, so defaulted fields are visible later.
func persist(opts Options, decay config.Decay, cuts config.Cuts, workers int, cands []finder.Candidate, sum *Summary, start time.Time) (string, error) {
	db, err := sqlite.OpenAndMigrate(opts.DBPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	snapshot, err := json.Marshal(struct {
		Decay   string      `json:"decay"`
		Cuts    config.Cuts `json:"cuts"`
		Workers int         `json:"workers"`
	}{decay.String(), cuts, workers})
	if err != nil {
		return "", fmt.Errorf("marshal config snapshot: %w", err)
	}

	runs := sqlite.NewRunStore(db.DB)
	run := &sqlite.Run{
		StartedAt:  start.UnixNano(),
		Note:       opts.Note,
		ConfigJSON: snapshot,
		MotherPDG:  decay.Mother.PDG,
	}
	if err := runs.Insert(run); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := sqlite.NewCandidateStore(db.DB).InsertBatch(run.RunID, cands); err != nil {
		return "", fmt.Errorf("persist candidates: %w", err)
	}
	if err := runs.Finish(run.RunID, sum.Events, sum.Tracks, len(cands), time.Since(start)); err != nil {
		return "", err
	}
	opsf("run %s: %d candidates persisted to %s", run.RunID, len(cands), opts.DBPath)
	return run.RunID, nil
}
