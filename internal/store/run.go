package store

import (
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/placement"
)

// Run is one recorded generation batch.
type Run struct {
	// ID is the run id, a UUIDv7 in production.
	ID string

	// Seq is the logical insertion order, assigned by WriteRun.
	Seq int64

	// Seed is the RNG seed the batch was generated with.
	Seed uint64

	// Requests is the canonical JSON of the request batch.
	Requests string

	// RequestsHash is the content hash of Requests.
	RequestsHash string

	// Grid is the grid source document the batch was placed on.
	Grid string

	// BatchHash is the content hash of the produced instances, in order.
	BatchHash string

	// Requested is the number of requested iterations.
	Requested int

	// InstanceCount is the number of instances produced.
	InstanceCount int

	// FirstEventID is the id given to the first placed instance.
	FirstEventID int

	// Attempts is the placement attempt budget per event. NewRun sets the
	// placement default; callers placing with another budget overwrite it.
	Attempts int

	IRVersion string
	Generator string
}

// Shortfall returns how many requested events the run did not produce.
func (r Run) Shortfall() int {
	return r.Requested - r.InstanceCount
}

// NewRun builds a run record for instances produced from the given inputs.
// requests must be an IR value (usually an IRArray of request objects); its
// canonical JSON and hash are stored.
func NewRun(id string, seed uint64, requests ir.IRValue, grid string, requested, firstEventID int, instances []ir.Instance) (Run, error) {
	reqJSON, err := ir.MarshalCanonical(requests)
	if err != nil {
		return Run{}, fmt.Errorf("new run: marshal requests: %w", err)
	}
	reqHash, err := ir.RequestsHash(requests)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	batchHash, err := ir.BatchHash(instances)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		ID:            id,
		Seed:          seed,
		Requests:      string(reqJSON),
		RequestsHash:  reqHash,
		Grid:          grid,
		BatchHash:     batchHash,
		Requested:     requested,
		InstanceCount: len(instances),
		Attempts:      placement.MaxAttempts,
		FirstEventID:  firstEventID,
		IRVersion:     ir.SchemaVersion,
		Generator:     ir.GeneratorVersion,
	}, nil
}
