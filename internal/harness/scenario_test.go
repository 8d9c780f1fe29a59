package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/placement"
)

func TestLoadScenario_ResolvesPaths(t *testing.T) {
	s, err := LoadScenario(sharedScenarios + "/village.yaml")
	require.NoError(t, err)

	assert.Equal(t, "village", s.Name)
	assert.Equal(t, uint64(42), s.Seed)
	assert.Equal(t, filepath.Join(sharedScenarios, "../templates"), s.Templates[0])
	assert.Equal(t, filepath.Join(sharedScenarios, "../grids/village.yaml"), s.Grid)

	reqs := s.RequestBatch()
	require.Len(t, reqs, 3)
	assert.Equal(t, placement.NearWall, reqs[0].Strategy)
	assert.Equal(t, 1, reqs[2].Count)
	assert.Equal(t, placement.InRoom, reqs[2].Strategy)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asserts")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Validation(t *testing.T) {
	base := `name: x
description: y
templates: [a.cue]
grid: g.yaml
`
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: y\ntemplates: [a]\ngrid: g\nrequests: [{selector: a}]\nassertions: [{type: balanced}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\ntemplates: [a]\ngrid: g\nrequests: [{selector: a}]\nassertions: [{type: balanced}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing templates",
			yaml:    "name: x\ndescription: y\ngrid: g\nrequests: [{selector: a}]\nassertions: [{type: balanced}]\n",
			wantErr: "templates list is required",
		},
		{
			name:    "missing grid",
			yaml:    "name: x\ndescription: y\ntemplates: [a]\nrequests: [{selector: a}]\nassertions: [{type: balanced}]\n",
			wantErr: "grid is required",
		},
		{
			name:    "missing requests",
			yaml:    base + "assertions: [{type: balanced}]\n",
			wantErr: "requests list is required",
		},
		{
			name:    "bad request",
			yaml:    base + "requests: [{selector: a, strategy: teleport}]\nassertions: [{type: balanced}]\n",
			wantErr: "requests:",
		},
		{
			name:    "missing assertions",
			yaml:    base + "requests: [{selector: a}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown assertion",
			yaml:    base + "requests: [{selector: a}]\nassertions: [{type: magic}]\n",
			wantErr: `unknown type "magic"`,
		},
		{
			name:    "count without value",
			yaml:    base + "requests: [{selector: a}]\nassertions: [{type: instance_count}]\n",
			wantErr: "instance_count requires count",
		},
		{
			name:    "instance_at without y",
			yaml:    base + "requests: [{selector: a}]\nassertions: [{type: instance_at, x: 1}]\n",
			wantErr: "instance_at requires x and y",
		},
		{
			name:    "instruction_contains without code",
			yaml:    base + "requests: [{selector: a}]\nassertions: [{type: instruction_contains, text: hi}]\n",
			wantErr: "instruction_contains requires code",
		},
		{
			name:    "negative attempts",
			yaml:    base + "attempts: -1\nrequests: [{selector: a}]\nassertions: [{type: balanced}]\n",
			wantErr: "attempts must be >= 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ZeroCountAllowed(t *testing.T) {
	s, err := ParseScenario([]byte(`name: x
description: y
templates: [a.cue]
grid: g.yaml
requests: [{selector: a, count: 0}]
assertions: [{type: instance_count, count: 0}]
`), "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.RequestBatch()[0].Count)
	assert.Equal(t, 0, *s.Assertions[0].Count)
}
