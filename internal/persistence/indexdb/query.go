package indexdb

import (
	"context"
	"database/sql"
	"errors"
)

type RunSummary struct {
	RunID            string `json:"run_id"`
	Seed             string `json:"seed"`
	Commands         int    `json:"commands"`
	Rejected         int    `json:"rejected"`
	Snapshots        int    `json:"snapshots"`
	LastSeq          uint64 `json:"last_seq"`
	LastDigest       string `json:"last_digest,omitempty"`
	MaxSnapshotCoins int    `json:"max_snapshot_coins"`
}

// Summary reads back what has been committed for runID so far. Writes still
// queued are not visible.
func (s *SQLiteIndex) Summary(ctx context.Context, runID string) (RunSummary, error) {
	out := RunSummary{RunID: runID}
	err := s.db.QueryRowContext(ctx, `SELECT seed FROM runs WHERE run_id=?`, runID).Scan(&out.Seed)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNoRun
	}
	if err != nil {
		return out, err
	}

	var rejected sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(CASE WHEN ok=0 THEN 1 ELSE 0 END) FROM commands WHERE run_id=?`, runID,
	).Scan(&out.Commands, &rejected); err != nil {
		return out, err
	}
	out.Rejected = int(rejected.Int64)

	err = s.db.QueryRowContext(ctx,
		`SELECT seq, digest FROM commands WHERE run_id=? ORDER BY seq DESC LIMIT 1`, runID,
	).Scan(&out.LastSeq, &out.LastDigest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return out, err
	}

	var maxCoins sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(coins) FROM snapshots WHERE run_id=?`, runID,
	).Scan(&out.Snapshots, &maxCoins); err != nil {
		return out, err
	}
	out.MaxSnapshotCoins = int(maxCoins.Int64)
	return out, nil
}

// SnapshotJSON returns the stored JSON of snapshot idx.
func (s *SQLiteIndex) SnapshotJSON(ctx context.Context, runID string, idx int) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT json FROM snapshots WHERE run_id=? AND idx=?`, runID, idx,
	).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
