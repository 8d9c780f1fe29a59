package store

import (
	"context"
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
)

// Verification reports whether a stored run is internally consistent.
type Verification struct {
	RunID string

	// Corrupt lists event ids whose record no longer hashes to the stored hash.
	Corrupt []int

	// InstanceCount is the number of instance rows found.
	InstanceCount int

	// BatchHash is the hash recomputed from the stored records.
	BatchHash string

	// BatchMatch is true when BatchHash equals the run's recorded batch hash.
	BatchMatch bool
}

// OK reports whether every check passed.
func (v Verification) OK() bool {
	return len(v.Corrupt) == 0 && v.BatchMatch
}

// VerifyRun recomputes every instance hash and the batch hash of a stored
// run from its records and compares them with the stored values.
func (s *Store) VerifyRun(ctx context.Context, id string) (Verification, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify run: %w", err)
	}
	records, err := s.readRecords(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify run %s: %w", id, err)
	}

	v := Verification{RunID: id, InstanceCount: len(records)}
	instances := make([]ir.Instance, len(records))
	for i, r := range records {
		instances[i] = r.instance
		hash, err := ir.InstanceHash(r.instance)
		if err != nil {
			return Verification{}, fmt.Errorf("verify run %s: %w", id, err)
		}
		if hash != r.hash {
			v.Corrupt = append(v.Corrupt, r.instance.ID)
		}
	}

	v.BatchHash, err = ir.BatchHash(instances)
	if err != nil {
		return Verification{}, fmt.Errorf("verify run %s: %w", id, err)
	}
	v.BatchMatch = v.BatchHash == run.BatchHash && v.InstanceCount == run.InstanceCount
	return v, nil
}
