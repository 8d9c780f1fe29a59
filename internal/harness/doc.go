// Package harness runs placement scenarios as executable tests.
//
// A scenario names its template sources, a grid, a seed and a request batch,
// and asserts on the batch that comes out. Every scenario runs against a
// fresh in-memory run store: the batch is written, read back, and the
// assertions see the stored instances, so the storage round trip is checked
// on every run.
//
// # Scenario Format
//
//	name: village
//	description: "chests near walls, villagers anywhere"
//	templates:
//	  - ../templates          # directory or .cue file
//	seed: 42
//	grid: ../grids/village.yaml
//	requests:
//	  - selector: chest
//	    count: 3
//	    strategy: nearWall
//	assertions:
//	  - type: instance_count
//	    count: 3
//	  - type: no_overlap
//
// Paths are relative to the scenario file.
//
// # Assertion Types
//
//   - instance_count: exactly count instances were placed
//   - instance_at: an instance sits at (x, y), optionally from template
//   - instruction_contains: some instance has an instruction with code,
//     optionally containing text, optionally limited to template
//   - no_overlap: no two instances share a coordinate or an event id
//   - balanced: every page list is well nested and terminated
//   - shortfall: exactly count requested events were not placed
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the batch against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
