package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/scenesmith/internal/compiler"
	"github.com/roach88/scenesmith/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Batch    []ir.Instance // Placed instances for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nPlaced instances:\n")
	for _, inst := range e.Batch {
		fmt.Fprintf(&buf, "  [%d] %s at (%d,%d)\n", inst.ID, inst.Note, inst.X, inst.Y)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertInstanceCount:
			err = assertInstanceCount(result, a)
		case AssertInstanceAt:
			err = assertInstanceAt(result, a)
		case AssertInstructionContains:
			err = assertInstructionContains(result, a)
		case AssertNoOverlap:
			err = assertNoOverlap(result)
		case AssertBalanced:
			err = assertBalanced(result)
		case AssertShortfall:
			err = assertShortfall(result, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func assertInstanceCount(result *Result, a Assertion) error {
	if len(result.Instances) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertInstanceCount,
		Expected: fmt.Sprintf("%d instances", *a.Count),
		Actual:   fmt.Sprintf("%d instances", len(result.Instances)),
		Batch:    result.Instances,
	}
}

func assertShortfall(result *Result, a Assertion) error {
	if result.Shortfall() == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertShortfall,
		Expected: fmt.Sprintf("shortfall of %d", *a.Count),
		Actual:   fmt.Sprintf("shortfall of %d", result.Shortfall()),
		Batch:    result.Instances,
	}
}

func assertInstanceAt(result *Result, a Assertion) error {
	for _, inst := range result.Instances {
		if inst.X == *a.X && inst.Y == *a.Y {
			if a.Template == "" || fromTemplate(inst, a.Template) {
				return nil
			}
			return &AssertionError{
				Type:     AssertInstanceAt,
				Expected: fmt.Sprintf("instance of %s at (%d,%d)", a.Template, *a.X, *a.Y),
				Actual:   fmt.Sprintf("instance %s", inst.Note),
				Batch:    result.Instances,
			}
		}
	}
	return &AssertionError{
		Type:     AssertInstanceAt,
		Expected: fmt.Sprintf("instance at (%d,%d)", *a.X, *a.Y),
		Actual:   "no instance there",
		Batch:    result.Instances,
	}
}

func assertInstructionContains(result *Result, a Assertion) error {
	for _, inst := range result.Instances {
		if a.Template != "" && !fromTemplate(inst, a.Template) {
			continue
		}
		for _, page := range inst.Pages {
			for _, in := range page.List {
				if in.Code == *a.Code && parametersContain(in.Parameters, a.Text) {
					return nil
				}
			}
		}
	}
	expected := fmt.Sprintf("instruction %d", *a.Code)
	if a.Text != "" {
		expected += fmt.Sprintf(" containing %q", a.Text)
	}
	if a.Template != "" {
		expected += " in " + a.Template
	}
	return &AssertionError{
		Type:     AssertInstructionContains,
		Expected: expected,
		Actual:   "not found in any page",
		Batch:    result.Instances,
	}
}

func assertNoOverlap(result *Result) error {
	coords := make(map[ir.Coordinate]int)
	ids := make(map[int]bool)
	for _, inst := range result.Instances {
		if prev, ok := coords[inst.Coordinate()]; ok {
			return &AssertionError{
				Type:     AssertNoOverlap,
				Expected: "distinct coordinates",
				Actual:   fmt.Sprintf("events %d and %d share (%d,%d)", prev, inst.ID, inst.X, inst.Y),
				Batch:    result.Instances,
			}
		}
		coords[inst.Coordinate()] = inst.ID
		if ids[inst.ID] {
			return &AssertionError{
				Type:     AssertNoOverlap,
				Expected: "distinct event ids",
				Actual:   fmt.Sprintf("event id %d used twice", inst.ID),
				Batch:    result.Instances,
			}
		}
		ids[inst.ID] = true
	}
	return nil
}

func assertBalanced(result *Result) error {
	for _, inst := range result.Instances {
		for p, page := range inst.Pages {
			actual := ""
			switch {
			case len(page.List) == 0 || !isTerminator(page.List[len(page.List)-1]):
				actual = "list does not end with the terminator"
			default:
				if err := compiler.CheckBalance(page.List); err != nil {
					actual = err.Error()
				}
			}
			if actual != "" {
				return &AssertionError{
					Type:     AssertBalanced,
					Expected: fmt.Sprintf("event %d page %d balanced", inst.ID, p),
					Actual:   actual,
					Batch:    result.Instances,
				}
			}
		}
	}
	return nil
}

func isTerminator(in ir.Instruction) bool {
	return in.Code == ir.CodeEnd && in.Indent == 0 && len(in.Parameters) == 0
}

func fromTemplate(inst ir.Instance, key string) bool {
	return inst.Note == "<template:"+key+">"
}

// parametersContain reports whether text appears in the textual form of any
// parameter. Empty text always matches.
func parametersContain(parameters ir.IRArray, text string) bool {
	if text == "" {
		return true
	}
	for _, p := range parameters {
		if strings.Contains(ir.Text(p), text) {
			return true
		}
	}
	return false
}
