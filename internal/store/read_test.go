package store

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/query"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, "run-a", math.MaxUint64, testInstances(2))
	seq, err := s.WriteRun(ctx, run, testInstances(2))
	require.NoError(t, err)
	run.Seq = seq

	got, err := s.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.Equal(t, uint64(math.MaxUint64), got.Seed, "seed survives the signed column")
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadInstances_PlacementOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	instances := testInstances(4)
	// Placement order differs from id order.
	instances[0], instances[3] = instances[3], instances[0]
	_, err := s.WriteRun(ctx, createTestRun(t, "run-a", 1, instances), instances)
	require.NoError(t, err)

	got, err := s.ReadInstances(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, instances, got)
	assert.Equal(t, ir.MustBatchHash(instances), ir.MustBatchHash(got))
}

func TestReadInstances_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun(t, "run-empty", 1, []ir.Instance{}), []ir.Instance{})
	require.NoError(t, err)

	got, err := s.ReadInstances(ctx, "run-empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	for _, id := range []string{"run-z", "run-a", "run-m"} {
		_, err := s.WriteRun(ctx, createTestRun(t, id, 1, testInstances(1)), testInstances(1))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-z", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)
	assert.Equal(t, "run-m", runs[2].ID)
}

func TestFindByTemplate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun(t, "run-a", 1, testInstances(2)), testInstances(2))
	require.NoError(t, err)

	refs, err := s.FindByTemplate(ctx, "chest:potion_chest")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, InstanceRef{RunID: "run-a", EventID: 1, TemplateKey: "chest:potion_chest", X: 1, Y: 1}, refs[0])

	none, err := s.FindByTemplate(ctx, "npc:farmer")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindInstances(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	chests := testInstances(3)
	_, err := s.WriteRun(ctx, createTestRun(t, "run-a", 1, chests), chests)
	require.NoError(t, err)

	mixed := testInstances(4)
	mixed[1].Note = "<template:villager:farmer>"
	mixed[3].Note = "<template:villager:smith>"
	_, err = s.WriteRun(ctx, createTestRun(t, "run-b", 2, mixed), mixed)
	require.NoError(t, err)

	tests := []struct {
		name string
		q    query.Select
		want []string // run:event
	}{
		{"everything in run order", query.Select{}, []string{"run-a:1", "run-a:2", "run-a:3", "run-b:1", "run-b:2", "run-b:3", "run-b:4"}},
		{"category", query.Select{Filter: query.ByCategory("villager")}, []string{"run-b:2", "run-b:4"}},
		{"run and category", query.Select{Filter: query.All(query.ByRun("run-b"), query.ByCategory("chest"))}, []string{"run-b:1", "run-b:3"}},
		{"region", query.Select{Filter: query.Within{X: 2, Y: 2, W: 2, H: 2}}, []string{"run-a:2", "run-a:3", "run-b:2", "run-b:3"}},
		{"limit", query.Select{Filter: query.ByCategory("chest"), Limit: 2}, []string{"run-a:1", "run-a:2"}},
		{"no match", query.Select{Filter: query.ByTemplate("chest:gold_chest")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, err := s.FindInstances(ctx, tt.q)
			require.NoError(t, err)
			got := make([]string, len(refs))
			for i, r := range refs {
				got[i] = fmt.Sprintf("%s:%d", r.RunID, r.EventID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindInstancesInvalidQuery(t *testing.T) {
	s := createTestStore(t)

	_, err := s.FindInstances(context.Background(), query.Select{Limit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}
