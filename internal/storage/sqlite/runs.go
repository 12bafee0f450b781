package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is the bookkeeping record for one reconstruction pass: which decay was
// searched, with which configuration, over how many events, and what it
// produced. Counters are zero until the run is finished.
type Run struct {
	RunID      string          `json:"run_id"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at,omitempty"`
	Note       string          `json:"note,omitempty"`
	ConfigJSON json.RawMessage `json:"config_json,omitempty"`
	MotherPDG  int32           `json:"mother_pdg"`
	Events     int             `json:"events"`
	Tracks     int             `json:"tracks"`
	Candidates int             `json:"candidates"`
	DurationMS int64           `json:"duration_ms"`
}

// RunStore provides persistence for reconstruction runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a new run. If RunID is empty a UUID is generated; if
// StartedAt is zero the current time is used.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = time.Now().UnixNano()
	}

	var configStr interface{}
	if len(run.ConfigJSON) > 0 {
		configStr = string(run.ConfigJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO runs (
				run_id, started_at, finished_at, note, config_json,
				mother_pdg, events, tracks, candidates, duration_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.StartedAt, run.FinishedAt, run.Note, configStr,
			run.MotherPDG, run.Events, run.Tracks, run.Candidates, run.DurationMS,
		)
		return err
	})
}

// Finish stamps the end of a run and records its final counters.
func (s *RunStore) Finish(runID string, events, tracks, candidates int, duration time.Duration) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`
			UPDATE runs
			SET finished_at = ?, events = ?, tracks = ?, candidates = ?, duration_ms = ?
			WHERE run_id = ?`,
			time.Now().UnixNano(), events, tracks, candidates, duration.Milliseconds(), runID,
		)
		if err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, started_at, finished_at, note, config_json,
		       mother_pdg, events, tracks, candidates, duration_ms
		FROM runs
		WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. limit <= 0 means no limit.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, finished_at, note, config_json,
		       mother_pdg, events, tracks, candidates, duration_ms
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run and, via the schema's cascade, its candidates.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var configStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Note, &configStr,
		&r.MotherPDG, &r.Events, &r.Tracks, &r.Candidates, &r.DurationMS,
	)
	if err != nil {
		return nil, err
	}
	if configStr.Valid {
		r.ConfigJSON = json.RawMessage(configStr.String)
	}
	return &r, nil
}
