package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/placement"
)

// ErrRunExists is returned by WriteRun when the run id is already stored.
var ErrRunExists = errors.New("run already exists")

// WriteRun stores a run and its instances in one transaction and returns
// the run's assigned seq.
//
// Instances are stored in the given order as canonical JSON per RFC 8785,
// each with its content hash. InstanceCount and BatchHash are checked against
// instances before anything is written. Run ids are never reused: writing an
// existing id returns ErrRunExists.
func (s *Store) WriteRun(ctx context.Context, run Run, instances []ir.Instance) (int64, error) {
	if run.ID == "" {
		return 0, fmt.Errorf("write run: id is required")
	}
	if run.InstanceCount != len(instances) {
		return 0, fmt.Errorf("write run %s: instance count %d does not match %d instances",
			run.ID, run.InstanceCount, len(instances))
	}
	batchHash, err := ir.BatchHash(instances)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}
	if run.Attempts < 0 {
		return 0, fmt.Errorf("write run %s: attempts must be >= 0, got %d", run.ID, run.Attempts)
	}
	if run.Attempts == 0 {
		run.Attempts = placement.MaxAttempts
	}
	if run.BatchHash != batchHash {
		return 0, fmt.Errorf("write run %s: batch hash does not match instances", run.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	// Seeds are stored bit-for-bit as signed 64-bit integers.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, seed, requests, requests_hash, grid, batch_hash, requested, instance_count, first_event_id, attempts, ir_version, generator)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		int64(run.Seed),
		run.Requests,
		run.RequestsHash,
		run.Grid,
		run.BatchHash,
		run.Requested,
		run.InstanceCount,
		run.FirstEventID,
		run.Attempts,
		run.IRVersion,
		run.Generator,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.id") {
			return 0, fmt.Errorf("write run %s: %w", run.ID, ErrRunExists)
		}
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	for i, inst := range instances {
		record, hash, err := marshalInstance(inst)
		if err != nil {
			return 0, fmt.Errorf("write run %s: %w", run.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO instances
			(run_id, seq, event_id, template_key, x, y, record, hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i+1,
			inst.ID,
			templateKey(inst),
			inst.X,
			inst.Y,
			record,
			hash,
		)
		if err != nil {
			return 0, fmt.Errorf("write run %s: instance %d: %w", run.ID, inst.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// DeleteRun removes a run and its instances. Deleting an unknown id is not
// an error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}
