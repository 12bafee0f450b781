package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/viktorklochkov/PFSimple/internal/finder"
	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// CandidateStore provides persistence for reconstructed candidates.
type CandidateStore struct {
	db *sql.DB
}

// NewCandidateStore creates a new CandidateStore.
func NewCandidateStore(db *sql.DB) *CandidateStore {
	return &CandidateStore{db: db}
}

const candidateColumns = `
	event_id, mother_pdg, n_daughters, daughter_0, daughter_1, daughter_2,
	x, y, z, px, py, pz, e, charge, mass, mass_err,
	chi2_prim_0, chi2_prim_1, chi2_prim_2,
	distance, cos_open, chi2_geo, distance_sv, chi2_sv,
	decay_length, ldl, is_from_pv, cos_topo, chi2_topo, cov_json`

// InsertBatch persists all candidates of one run inside a single
// transaction, preserving slice order.
func (s *CandidateStore) InsertBatch(runID string, cands []finder.Candidate) error {
	if len(cands) == 0 {
		return nil
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin candidate insert tx: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO candidates (run_id, ` + candidateColumns + `
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare candidate insert: %w", err)
		}

		for i := range cands {
			c := &cands[i]
			covJSON, err := json.Marshal(c.Cov[:])
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("marshal candidate covariance: %w", err)
			}
			if _, err := stmt.Exec(
				runID,
				c.EventID, c.Mother, c.NDaughters, c.Daughters[0], c.Daughters[1], c.Daughters[2],
				c.X, c.Y, c.Z, c.Px, c.Py, c.Pz, c.E, c.Charge, c.Mass, c.MassErr,
				c.Chi2Prim[0], c.Chi2Prim[1], c.Chi2Prim[2],
				c.Distance, c.CosOpen, c.Chi2Geo, c.DistanceToSV, c.Chi2ToSV,
				c.L, c.LdL, c.IsFromPV, c.CosTopo, c.Chi2Topo, string(covJSON),
			); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert candidate: %w", err)
			}
		}

		if err := stmt.Close(); err != nil {
			tx.Rollback()
			return fmt.Errorf("close candidate insert stmt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit candidate insert tx: %w", err)
		}
		return nil
	})
}

// ListByRun returns all candidates of a run in their insertion order.
func (s *CandidateStore) ListByRun(runID string) ([]finder.Candidate, error) {
	rows, err := s.db.Query(`
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var cands []finder.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	return cands, rows.Err()
}

// MassesForRun returns just the invariant masses of a run's candidates, in
// insertion order.
func (s *CandidateStore) MassesForRun(runID string) ([]float64, error) {
	rows, err := s.db.Query(`
		SELECT mass FROM candidates WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query masses: %w", err)
	}
	defer rows.Close()

	var masses []float64
	for rows.Next() {
		var m float64
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan mass: %w", err)
		}
		masses = append(masses, m)
	}
	return masses, rows.Err()
}

// CountByRun returns the number of candidates persisted for a run.
func (s *CandidateStore) CountByRun(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM candidates WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return n, nil
}

func scanCandidate(rows *sql.Rows) (finder.Candidate, error) {
	var c finder.Candidate
	var covStr sql.NullString
	err := rows.Scan(
		&c.EventID, &c.Mother, &c.NDaughters, &c.Daughters[0], &c.Daughters[1], &c.Daughters[2],
		&c.X, &c.Y, &c.Z, &c.Px, &c.Py, &c.Pz, &c.E, &c.Charge, &c.Mass, &c.MassErr,
		&c.Chi2Prim[0], &c.Chi2Prim[1], &c.Chi2Prim[2],
		&c.Distance, &c.CosOpen, &c.Chi2Geo, &c.DistanceToSV, &c.Chi2ToSV,
		&c.L, &c.LdL, &c.IsFromPV, &c.CosTopo, &c.Chi2Topo, &covStr,
	)
	if err != nil {
		return c, fmt.Errorf("scan candidate row: %w", err)
	}
	if covStr.Valid {
		var cov []float64
		if err := json.Unmarshal([]byte(covStr.String), &cov); err != nil {
			return c, fmt.Errorf("unmarshal candidate covariance: %w", err)
		}
		if len(cov) != particle.CovSize {
			return c, fmt.Errorf("candidate covariance has %d elements, want %d", len(cov), particle.CovSize)
		}
		copy(c.Cov[:], cov)
	}
	return c, nil
}
