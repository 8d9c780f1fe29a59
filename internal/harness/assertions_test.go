package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/engine"
	"github.com/roach88/scenesmith/internal/ir"
)

func intp(n int) *int { return &n }

func sampleResult() *Result {
	r := NewResult()
	r.Instances = []ir.Instance{
		{
			ID: 1, X: 2, Y: 3, Note: "<template:chest:potion_chest>",
			Pages: []ir.CompiledPage{{List: []ir.Instruction{
				{Code: ir.CodeShowText, Parameters: ir.IRArray{ir.IRString(""), ir.IRInt(0), ir.IRInt(0), ir.IRInt(2), ir.IRString("You found a Potion!")}},
				ir.Terminator(),
			}}},
		},
		{
			ID: 2, X: 4, Y: 3, Note: "<template:villager:farmer>",
			Pages: []ir.CompiledPage{{List: []ir.Instruction{
				{Code: ir.CodeConditionalStart, Parameters: ir.IRArray{ir.IRInt(0), ir.IRInt(1), ir.IRInt(0)}},
				{Code: ir.CodeShowText, Indent: 1, Parameters: ir.IRArray{ir.IRString("Hello")}},
				{Code: ir.CodeBranchEnd},
				ir.Terminator(),
			}}},
		},
	}
	r.Outcomes = []engine.Outcome{
		{Status: engine.StatusPlaced}, {Status: engine.StatusPlaced}, {Status: engine.StatusPlacementFailed},
	}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		pass      bool
	}{
		{"count matches", Assertion{Type: AssertInstanceCount, Count: intp(2)}, true},
		{"count differs", Assertion{Type: AssertInstanceCount, Count: intp(3)}, false},
		{"shortfall matches", Assertion{Type: AssertShortfall, Count: intp(1)}, true},
		{"shortfall differs", Assertion{Type: AssertShortfall, Count: intp(0)}, false},
		{"instance at", Assertion{Type: AssertInstanceAt, X: intp(2), Y: intp(3)}, true},
		{"instance at with template", Assertion{Type: AssertInstanceAt, X: intp(4), Y: intp(3), Template: "villager:farmer"}, true},
		{"instance at wrong template", Assertion{Type: AssertInstanceAt, X: intp(4), Y: intp(3), Template: "chest:potion_chest"}, false},
		{"nothing at", Assertion{Type: AssertInstanceAt, X: intp(9), Y: intp(9)}, false},
		{"instruction code", Assertion{Type: AssertInstructionContains, Code: intp(ir.CodeConditionalStart)}, true},
		{"instruction text", Assertion{Type: AssertInstructionContains, Code: intp(ir.CodeShowText), Text: "Potion"}, true},
		{"instruction text in template", Assertion{Type: AssertInstructionContains, Code: intp(ir.CodeShowText), Text: "Hello", Template: "villager:farmer"}, true},
		{"instruction text other template", Assertion{Type: AssertInstructionContains, Code: intp(ir.CodeShowText), Text: "Hello", Template: "chest:potion_chest"}, false},
		{"instruction missing", Assertion{Type: AssertInstructionContains, Code: intp(ir.CodeChangeGold)}, false},
		{"no overlap", Assertion{Type: AssertNoOverlap}, true},
		{"balanced", Assertion{Type: AssertBalanced}, true},
		{"unknown", Assertion{Type: "magic"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.pass {
				assert.Empty(t, failures)
			} else {
				assert.Len(t, failures, 1)
			}
		})
	}
}

func TestAssertNoOverlap_Failures(t *testing.T) {
	r := sampleResult()
	r.Instances[1].X = 2
	err := assertNoOverlap(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share (2,3)")

	r = sampleResult()
	r.Instances[1].ID = 1
	err = assertNoOverlap(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event id 1 used twice")
}

func TestAssertBalanced_Failures(t *testing.T) {
	r := sampleResult()
	list := r.Instances[1].Pages[0].List
	r.Instances[1].Pages[0].List = list[:len(list)-1]
	err := assertBalanced(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminator")

	r = sampleResult()
	r.Instances[1].Pages[0].List = []ir.Instruction{
		{Code: ir.CodeConditionalStart, Parameters: ir.IRArray{ir.IRInt(0)}},
		ir.Terminator(),
	}
	err = assertBalanced(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 2 page 0")
}

func TestAssertionError_ListsBatch(t *testing.T) {
	err := &AssertionError{
		Type:     AssertInstanceCount,
		Expected: "3 instances",
		Actual:   "2 instances",
		Batch:    sampleResult().Instances,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: instance_count")
	assert.Contains(t, msg, "[1] <template:chest:potion_chest> at (2,3)")
}
