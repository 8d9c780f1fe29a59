package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testInstances builds n instances on a diagonal with consecutive ids.
func testInstances(n int) []ir.Instance {
	out := make([]ir.Instance, n)
	for i := range out {
		out[i] = ir.Instance{
			ID:   i + 1,
			Name: fmt.Sprintf("Chest %d", i+1),
			Note: "<template:chest:potion_chest>",
			X:    i + 1,
			Y:    i + 1,
			Pages: []ir.CompiledPage{{
				Conditions: ir.DefaultConditions(),
				Image:      ir.DefaultImage(),
				MoveSpeed:  ir.DefaultMoveSpeed,
				MoveRoute:  ir.DefaultMoveRoute(),
				WalkAnime:  true,
				List: []ir.Instruction{
					{Code: ir.CodeShowText, Parameters: ir.IRArray{
						ir.IRString(""), ir.IRInt(0), ir.IRInt(0), ir.IRInt(2), ir.IRString("Potion"),
					}},
					ir.Terminator(),
				},
			}},
		}
	}
	return out
}

// createTestRun builds a consistent run record for instances.
func createTestRun(t *testing.T, id string, seed uint64, instances []ir.Instance) Run {
	t.Helper()
	requests := ir.IRArray{ir.IRObject{
		"selector": ir.IRString("chest"),
		"count":    ir.IRInt(len(instances)),
		"strategy": ir.IRString("random"),
		"params":   ir.IRObject{},
	}}
	run, err := NewRun(id, seed, requests, "width: 8\nheight: 8\n", len(instances), 1, instances)
	require.NoError(t, err)
	return run
}
