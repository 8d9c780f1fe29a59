package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenesmith/internal/engine"
)

// Scenario defines a placement test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Templates lists CUE files or directories to load.
	Templates []string `yaml:"templates"`

	// Seed drives every random draw of the batch.
	Seed uint64 `yaml:"seed"`

	// Grid is the path of the grid document.
	Grid string `yaml:"grid"`

	// Requests is the request batch, in the request file format.
	Requests yaml.Node `yaml:"requests"`

	// Attempts overrides the placement attempt budget when non-zero.
	Attempts int `yaml:"attempts,omitempty"`

	// FirstEventID overrides the first event id when non-zero.
	FirstEventID int `yaml:"first_event_id,omitempty"`

	// Assertions validate the placed batch.
	Assertions []Assertion `yaml:"assertions"`

	requests []engine.Request
}

// Assertion validates the placed batch.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by instance_count and shortfall.
	Count *int `yaml:"count,omitempty"`

	// X and Y are used by instance_at.
	X *int `yaml:"x,omitempty"`
	Y *int `yaml:"y,omitempty"`

	// Template limits instance_at and instruction_contains to instances
	// generated from "category:id".
	Template string `yaml:"template,omitempty"`

	// Code and Text are used by instruction_contains.
	Code *int   `yaml:"code,omitempty"`
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertInstanceCount       = "instance_count"
	AssertInstanceAt          = "instance_at"
	AssertInstructionContains = "instruction_contains"
	AssertNoOverlap           = "no_overlap"
	AssertBalanced            = "balanced"
	AssertShortfall           = "shortfall"
)

// LoadScenario reads and parses a scenario YAML file, resolving template
// and grid paths relative to the file.
// Unknown fields are rejected so that typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. Relative paths are resolved against
// basePath when it is non-empty.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if basePath != "" {
		for i, p := range scenario.Templates {
			scenario.Templates[i] = resolve(basePath, p)
		}
		if scenario.Grid != "" {
			scenario.Grid = resolve(basePath, scenario.Grid)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks required fields and decodes the request batch.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Templates) == 0 {
		return fmt.Errorf("templates list is required and must be non-empty")
	}
	if s.Grid == "" {
		return fmt.Errorf("grid is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Attempts < 0 {
		return fmt.Errorf("attempts must be >= 0")
	}

	if s.Requests.Kind == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}
	raw, err := yaml.Marshal(&s.Requests)
	if err != nil {
		return fmt.Errorf("requests: %w", err)
	}
	if s.requests, err = engine.ParseRequests(raw); err != nil {
		return fmt.Errorf("requests: %w", err)
	}
	if len(s.requests) == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertInstanceCount, AssertShortfall:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: %s requires count", index, a.Type)
		}
	case AssertInstanceAt:
		if a.X == nil || a.Y == nil {
			return fmt.Errorf("assertions[%d]: instance_at requires x and y", index)
		}
	case AssertInstructionContains:
		if a.Code == nil {
			return fmt.Errorf("assertions[%d]: instruction_contains requires code", index)
		}
	case AssertNoOverlap, AssertBalanced:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}

// RequestBatch returns the decoded request batch.
func (s *Scenario) RequestBatch() []engine.Request {
	return s.requests
}
