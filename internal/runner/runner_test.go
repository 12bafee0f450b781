package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorklochkov/PFSimple/internal/eventio"
	sqlite "github.com/viktorklochkov/PFSimple/internal/storage/sqlite"
)

const (
	testEvents     = 12
	tracksPerEvent = 6 // one two-body decay plus four background tracks
	kshortMass     = 0.497611
	testMassWindow = 0.05
	minFound       = 6
)

func writeTestEvents(t *testing.T, dir string) string {
	t.Helper()
	gen := eventio.NewGenerator(eventio.GenConfig{
		Events:     testEvents,
		Signal:     1,
		Background: 4,
		Seed:       7,
	})
	path := filepath.Join(dir, "events.jsonl")
	require.NoError(t, eventio.WriteFile(path, gen.Events()))
	return path
}

func TestRunFindsAndPersists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "out.db")

	sum, err := Run(context.Background(), Options{
		EventsPath: writeTestEvents(t, dir),
		DBPath:     dbPath,
		Workers:    2,
		Note:       "pipeline smoke pass",
	})
	require.NoError(t, err)

	assert.Equal(t, testEvents, sum.Events)
	assert.Zero(t, sum.Skipped)
	assert.Equal(t, testEvents*tracksPerEvent, sum.Tracks)
	assert.GreaterOrEqual(t, sum.Candidates, minFound)
	assert.Equal(t, sum.Candidates, sum.Counters.Accepted)
	assert.Equal(t, "k0s", sum.Decay.Mother.Name)
	require.NotEmpty(t, sum.RunID)

	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	run, err := sqlite.NewRunStore(db.DB).Get(sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, testEvents, run.Events)
	assert.Equal(t, testEvents*tracksPerEvent, run.Tracks)
	assert.Equal(t, sum.Candidates, run.Candidates)
	assert.Equal(t, int32(310), run.MotherPDG)
	assert.Equal(t, "pipeline smoke pass", run.Note)
	assert.NotZero(t, run.FinishedAt)
	assert.Contains(t, string(run.ConfigJSON), "k0s")

	stored, err := sqlite.NewCandidateStore(db.DB).ListByRun(sum.RunID)
	require.NoError(t, err)
	require.Len(t, stored, sum.Candidates)
	lastEvent := int64(-1)
	for _, c := range stored {
		assert.GreaterOrEqual(t, c.EventID, lastEvent, "candidates should be stored in event order")
		lastEvent = c.EventID
		assert.InDelta(t, kshortMass, c.Mass, testMassWindow)
	}
}

func TestRunWithoutPersistence(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	sum, err := Run(context.Background(), Options{
		EventsPath: writeTestEvents(t, dir),
		Workers:    1,
	})
	require.NoError(t, err)
	assert.Empty(t, sum.RunID)
	assert.GreaterOrEqual(t, sum.Candidates, minFound)
}

func TestRunSkipsInvalidEvents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	gen := eventio.NewGenerator(eventio.GenConfig{Events: 3, Signal: 1, Background: 2, Seed: 11})
	events := gen.Events()
	// A charge contradicting the species is finite, so it survives encoding
	// and must be caught by input validation.
	events[1].Tracks[0].Charge = -events[1].Tracks[0].Charge

	path := filepath.Join(dir, "events.jsonl")
	require.NoError(t, eventio.WriteFile(path, events))

	sum, err := Run(context.Background(), Options{EventsPath: path, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Events)
	assert.Equal(t, 1, sum.Skipped)
}

func TestRunUsesConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lambda.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"decay": {"mother": "lambda", "daughters": ["proton", "pion-"]}
	}`), 0o644))

	sum, err := Run(context.Background(), Options{
		ConfigPath: cfgPath,
		EventsPath: writeTestEvents(t, dir),
		Workers:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "lambda", sum.Decay.Mother.Name)
	assert.Zero(t, sum.Candidates, "pion-only events carry no proton legs")
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"decay": {"mother": "k0s", "daughters": ["pion+", "unobtainium"]}
	}`), 0o644))

	_, err := Run(context.Background(), Options{
		ConfigPath: cfgPath,
		EventsPath: writeTestEvents(t, dir),
	})
	assert.Error(t, err)
}

func TestRunMissingEventsFile(t *testing.T) {
	t.Parallel()
	_, err := Run(context.Background(), Options{
		EventsPath: filepath.Join(t.TempDir(), "nope.jsonl"),
	})
	assert.Error(t, err)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTestEvents(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{EventsPath: path, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTestEvents(t, dir)

	one, err := Run(context.Background(), Options{EventsPath: path, Workers: 1})
	require.NoError(t, err)
	four, err := Run(context.Background(), Options{EventsPath: path, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, one.Candidates, four.Candidates)
	assert.Equal(t, one.Counters, four.Counters)
}

