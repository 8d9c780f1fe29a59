package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/query"
)

// ErrRunNotFound is returned when a run id is not stored.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, seed, requests, requests_hash, grid, batch_hash, requested, instance_count, first_event_id, attempts, ir_version, generator`

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every stored run ordered by seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadInstances returns the instances of a run in placement order.
// Returns an empty slice (not nil) for unknown runs or empty batches.
func (s *Store) ReadInstances(ctx context.Context, runID string) ([]ir.Instance, error) {
	records, err := s.readRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	instances := make([]ir.Instance, 0, len(records))
	for _, r := range records {
		instances = append(instances, r.instance)
	}
	return instances, nil
}

// InstanceRef locates a stored instance without decoding its record.
type InstanceRef struct {
	RunID       string `json:"run_id"`
	EventID     int    `json:"event_id"`
	TemplateKey string `json:"template"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

// FindByTemplate returns every stored instance generated from the template
// with key "category:id", ordered by run seq then placement seq.
func (s *Store) FindByTemplate(ctx context.Context, key string) ([]InstanceRef, error) {
	return s.FindInstances(ctx, query.Select{Filter: query.ByTemplate(key)})
}

// FindInstances returns the stored instances matching q, ordered by run seq
// then placement seq. Returns an empty slice (not nil) when nothing matches.
func (s *Store) FindInstances(ctx context.Context, q query.Select) ([]InstanceRef, error) {
	stmt, params, err := query.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("find instances: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	refs := []InstanceRef{}
	for rows.Next() {
		var ref InstanceRef
		if err := rows.Scan(&ref.RunID, &ref.EventID, &ref.TemplateKey, &ref.X, &ref.Y); err != nil {
			return nil, fmt.Errorf("scan instance ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instance refs: %w", err)
	}
	return refs, nil
}

type storedInstance struct {
	instance ir.Instance
	hash     string
}

func (s *Store) readRecords(ctx context.Context, runID string) ([]storedInstance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record, hash
		FROM instances
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	var out []storedInstance
	for rows.Next() {
		var record, hash string
		if err := rows.Scan(&record, &hash); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		inst, err := unmarshalInstance(record)
		if err != nil {
			return nil, err
		}
		out = append(out, storedInstance{instance: inst, hash: hash})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var seed int64
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&seed,
		&run.Requests,
		&run.RequestsHash,
		&run.Grid,
		&run.BatchHash,
		&run.Requested,
		&run.InstanceCount,
		&run.FirstEventID,
		&run.Attempts,
		&run.IRVersion,
		&run.Generator,
	)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	return run, nil
}
