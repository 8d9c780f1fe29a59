package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// Validation error codes (E200-E299)
const (
	ErrTemplateIDEmpty       = "E201" // id is required
	ErrTemplateCategoryEmpty = "E202" // category is required
	ErrTemplateNoPages       = "E203" // at least one page required
	ErrCaseOutsideChoices    = "E204" // ChoiceCase with no open ShowChoices
	ErrChoiceIndexRange      = "E205" // ChoiceCase index not among the options
	ErrUnboundMarker         = "E206" // {{name}} with no declared parameter
	ErrUnknownConditionKind  = "E207" // conditional branch kind RMMZ does not know
	ErrConflictingTiles      = "E208" // tile both allowed and disallowed
	ErrUnknownPageAttribute  = "E209" // page attribute RMMZ does not have
)

// ValidationError represents a template validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a template for structural mistakes the compiler would
// otherwise emit silently. Returns all errors found (does not fail-fast).
func Validate(t *template.Template) []ValidationError {
	v := &validator{}

	// E201, E202
	if strings.TrimSpace(t.ID) == "" {
		v.add("id", ErrTemplateIDEmpty, "id is required and must be non-empty")
	}
	if strings.TrimSpace(t.Category) == "" {
		v.add("category", ErrTemplateCategoryEmpty, "category is required and must be non-empty")
	}

	// E203
	if len(t.Pages) == 0 {
		v.add("pages", ErrTemplateNoPages, "at least one page is required")
	}

	// Parameters may only refer to parameters declared before them.
	var declared []string
	for _, d := range t.Parameters {
		v.value(fmt.Sprintf("parameters.%s", d.Name), d.Value, declared)
		declared = append(declared, d.Name)
	}

	v.text("name", t.Name, declared)
	v.decls("appearance", t.Appearance, declared)

	for i, page := range t.Pages {
		prefix := fmt.Sprintf("pages[%d]", i)
		v.decls(prefix+".conditions", page.Conditions, declared)
		v.decls(prefix+".image", page.Image, declared)
		v.decls(prefix+".attributes", page.Attributes, declared)

		// E209
		for _, d := range page.Attributes {
			if !slices.Contains(template.PageAttributes, d.Name) {
				v.add(prefix+".attributes."+d.Name, ErrUnknownPageAttribute,
					fmt.Sprintf("unknown page attribute %q", d.Name))
			}
		}

		v.commands(prefix+".commands", page.Commands, declared)
	}

	// E208
	for _, tile := range t.Placement.AllowedTiles {
		if slices.Contains(t.Placement.DisallowedTiles, tile) {
			v.add("placement", ErrConflictingTiles,
				fmt.Sprintf("tile %d is both allowed and disallowed", tile))
		}
	}

	return v.errs
}

type validator struct {
	errs []ValidationError
}

func (v *validator) add(field, code, message string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message, Code: code})
}

func (v *validator) decls(field string, decls params.Decls, declared []string) {
	for _, d := range decls {
		v.value(field+"."+d.Name, d.Value, declared)
	}
}

// value reports E206 for markers in v that no declared parameter binds.
func (v *validator) value(field string, val params.Value, declared []string) {
	switch pv := val.(type) {
	case params.Placeholder:
		v.text(field, pv.Text, declared)
	case params.Choice:
		for i, opt := range pv.Options {
			v.value(fmt.Sprintf("%s.choice[%d]", field, i), opt, declared)
		}
	}
}

func (v *validator) text(field, s string, declared []string) {
	for _, name := range params.Markers(s) {
		if !slices.Contains(declared, name) {
			v.add(field, ErrUnboundMarker, fmt.Sprintf("marker {{%s}} has no declared parameter", name))
		}
	}
}

func (v *validator) commands(field string, nodes []template.CommandNode, declared []string) {
	options := -1 // option count of the open choice scope; -1 when closed
	for i, n := range nodes {
		path := fmt.Sprintf("%s[%d]", field, i)
		if _, isCase := n.(template.ChoiceCase); !isCase {
			options = -1
		}

		switch node := n.(type) {
		case template.ShowChoices:
			options = len(node.Options)
			for j, opt := range node.Options {
				v.value(fmt.Sprintf("%s.options[%d]", path, j), opt, declared)
			}

		case template.ChoiceCase:
			// E204, E205
			switch {
			case options < 0:
				v.add(path, ErrCaseOutsideChoices, "choice case without a preceding showChoices")
			case node.Index != template.CancelIndex && (node.Index < 0 || node.Index >= options):
				v.add(path, ErrChoiceIndexRange,
					fmt.Sprintf("choice index %d out of range (%d options)", node.Index, options))
			}
			v.value(path+".label", node.Label, declared)
			v.commands(path+".body", node.Body, declared)

		case template.ConditionalBranch:
			// E207
			if !node.Condition.Kind.Valid() {
				v.add(path+".condition", ErrUnknownConditionKind,
					fmt.Sprintf("unknown condition kind %d", node.Condition.Kind))
			}
			for j, op := range node.Condition.Operands {
				v.value(fmt.Sprintf("%s.condition[%d]", path, j), op, declared)
			}
			v.commands(path+".then", node.Then, declared)
			v.commands(path+".else", node.Else, declared)

		case template.Say:
			v.value(path+".text", node.Text, declared)
			v.value(path+".face", node.Face, declared)
		case template.SetSwitch:
			v.value(path+".id", node.ID, declared)
		case template.SetVariable:
			v.value(path+".id", node.ID, declared)
			v.value(path+".value", node.Value, declared)
		case template.ChangeItems:
			v.value(path+".item", node.ItemID, declared)
			v.value(path+".amount", node.Amount, declared)
		case template.ChangeGold:
			v.value(path+".amount", node.Amount, declared)
		case template.PlaySound:
			v.value(path+".name", node.Name, declared)
		case template.Raw:
			for j, op := range node.Operands {
				v.value(fmt.Sprintf("%s.operands[%d]", path, j), op, declared)
			}
		}
	}
}
