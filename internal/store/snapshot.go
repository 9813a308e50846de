package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/kgen/internal/ir"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one recorded resolution of a board/build type.
type Snapshot struct {
	ID        string      `json:"id" yaml:"id"`
	Seq       int64       `json:"seq" yaml:"seq"`
	Board     string      `json:"board" yaml:"board"`
	BuildType string      `json:"build_type" yaml:"build_type"`
	Digest    string      `json:"digest" yaml:"digest"`
	Symbols   int         `json:"symbols" yaml:"symbols"`
	Mapping   *ir.Mapping `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// Record stores m as the newest snapshot of board/buildType.
//
// Recording a mapping identical to an earlier snapshot of the same target
// (same digest) does not add a row: the existing snapshot is moved to the
// head of the sequence and returned with inserted=false.
func (s *Store) Record(ctx context.Context, board, buildType string, m *ir.Mapping) (snap Snapshot, inserted bool, err error) {
	digest, err := ir.Digest(m)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: %w", err)
	}
	mappingJSON, err := json.Marshal(m)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: marshal mapping: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots
	`).Scan(&seq); err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: next seq: %w", err)
	}

	var id string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM snapshots
		WHERE board = ? AND build_type = ? AND digest = ?
	`, board, buildType, digest).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = s.ids.Generate()
		inserted = true
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots (id, seq, board, build_type, digest, symbols, mapping)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, seq, board, buildType, digest, m.Len(), string(mappingJSON))
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE snapshots SET seq = ? WHERE id = ?
		`, seq, id)
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: commit: %w", err)
	}

	return Snapshot{
		ID:        id,
		Seq:       seq,
		Board:     board,
		BuildType: buildType,
		Digest:    digest,
		Symbols:   m.Len(),
		Mapping:   m,
	}, inserted, nil
}

// Latest returns the newest snapshot of board/buildType, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, board, buildType string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, board, build_type, digest, symbols, mapping
		FROM snapshots
		WHERE board = ? AND build_type = ?
		ORDER BY seq DESC
		LIMIT 1
	`, board, buildType)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %s/%s: %w", board, buildType, err)
	}
	return snap, nil
}

// Get returns the snapshot with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, board, build_type, digest, symbols, mapping
		FROM snapshots
		WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns every snapshot of board/buildType, oldest first, without
// mappings.
func (s *Store) List(ctx context.Context, board, buildType string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, board, build_type, digest, symbols
		FROM snapshots
		WHERE board = ? AND build_type = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, board, buildType)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Seq, &snap.Board, &snap.BuildType, &snap.Digest, &snap.Symbols); err != nil {
			return nil, fmt.Errorf("list snapshots: scan: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Diff compares the latest snapshots of two targets.
func (s *Store) Diff(ctx context.Context, baseBoard, baseBuildType, headBoard, headBuildType string) (ir.Delta, error) {
	base, err := s.Latest(ctx, baseBoard, baseBuildType)
	if err != nil {
		return ir.Delta{}, err
	}
	head, err := s.Latest(ctx, headBoard, headBuildType)
	if err != nil {
		return ir.Delta{}, err
	}
	return ir.Diff(base.Mapping, head.Mapping), nil
}

func scanSnapshot(row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	var mappingJSON string
	err := row.Scan(&snap.ID, &snap.Seq, &snap.Board, &snap.BuildType, &snap.Digest, &snap.Symbols, &mappingJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan: %w", err)
	}

	snap.Mapping = ir.NewMapping()
	if err := json.Unmarshal([]byte(mappingJSON), snap.Mapping); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal mapping: %w", err)
	}
	return snap, nil
}
