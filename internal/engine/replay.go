package engine

import (
	"context"
	"fmt"

	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/placement"
)

// ReplayResult compares a regenerated batch with a recorded hash.
type ReplayResult struct {
	Result   *BatchResult
	Expected string
	Actual   string
}

// Match reports whether the regenerated batch hashes like the recorded one.
func (r *ReplayResult) Match() bool {
	return r.Expected == r.Actual
}

// Replay regenerates a batch from its seed and compares the batch hash with
// expected.
//
// Replay is the same code path as the original run: PlaceEvents with a
// fresh RNG built from seed. Any difference means the templates, grid or
// generator changed since the run was recorded.
func Replay(ctx context.Context, p *Placer, g *placement.Grid, reqs []Request, seed uint64, expected string) (*ReplayResult, error) {
	result, err := p.PlaceEvents(ctx, g, reqs, params.NewRNG(seed))
	if err != nil {
		return nil, fmt.Errorf("replaying batch: %w", err)
	}
	actual, err := result.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing replayed batch: %w", err)
	}
	return &ReplayResult{Result: result, Expected: expected, Actual: actual}, nil
}
