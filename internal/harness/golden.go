package harness

import (
	"math"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/scenesmith/internal/ir"
)

// BatchSnapshot captures a scenario's placed batch for golden comparison.
type BatchSnapshot struct {
	ScenarioName string
	Seed         uint64
	BatchHash    string
	Result       *Result
}

// toCanonical converts the snapshot to an IR object for canonical JSON.
// Outcomes keep only their stable fields.
func (s *BatchSnapshot) toCanonical() ir.IRObject {
	outcomes := make(ir.IRArray, len(s.Result.Outcomes))
	for i, o := range s.Result.Outcomes {
		obj := ir.IRObject{
			"request":   ir.IRInt(o.Request),
			"iteration": ir.IRInt(o.Iteration),
			"selector":  ir.IRString(o.Selector),
			"status":    ir.IRString(o.Status),
		}
		if o.Template != "" {
			obj["template"] = ir.IRString(o.Template)
			obj["event_id"] = ir.IRInt(o.EventID)
		}
		outcomes[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		// Seeds above 2^63 are stored as their decimal text.
		"seed":       seedValue(s.Seed),
		"batch_hash": ir.IRString(s.BatchHash),
		"instances":  ir.InstancesArray(s.Result.Instances),
		"outcomes":   outcomes,
	}
}

func seedValue(seed uint64) ir.IRValue {
	if seed > math.MaxInt64 {
		return ir.IRString(strconv.FormatUint(seed, 10))
	}
	return ir.IRInt(int64(seed))
}

// RunWithGolden executes a scenario and compares the batch against a golden
// file stored at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A batch that differs from
// the golden file fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.Seed, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, seed uint64, result *Result) error {
	t.Helper()

	snapshot := BatchSnapshot{
		ScenarioName: name,
		Seed:         seed,
		BatchHash:    result.BatchHash,
		Result:       result,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonical())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
