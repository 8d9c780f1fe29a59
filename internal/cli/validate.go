package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/compiler"
	"github.com/roach88/scenesmith/internal/loader"
)

// ValidationIssue is one problem found in a template.
type ValidationIssue struct {
	Template string `json:"template,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Line     int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Templates int               `json:"templates"`
	Errors    []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <templates-dir>",
		Short: "Check templates for structural mistakes",
		Long: `Compile every template in a directory and check it for mistakes the
compiler would otherwise accept silently: unbound {{name}} markers,
choice cases outside a choice block, unknown page attributes and
conflicting tile rules.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, errs := loader.LoadDir(dir, loader.CollectAll)
	if result == nil && len(errs) > 0 {
		return failLoad(formatter, errs[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	var issues []ValidationIssue
	for _, err := range errs {
		issue := ValidationIssue{Field: "load", Message: err.Error(), Code: loader.ErrCodeGeneric}
		var loadErr *loader.Error
		if errors.As(err, &loadErr) {
			issue.Message = loadErr.Message
			issue.Code = loadErr.Code
			if loadErr.Pos.IsValid() {
				issue.Line = loadErr.Pos.Line()
			}
		}
		issues = append(issues, issue)
	}

	for _, t := range result.Templates {
		formatter.VerboseLog("Validating template: %s", t.Key())
		for _, v := range compiler.Validate(t) {
			issues = append(issues, ValidationIssue{
				Template: t.Key(),
				Field:    v.Field,
				Message:  v.Message,
				Code:     v.Code,
			})
		}
	}

	res := ValidationResult{Valid: len(issues) == 0, Templates: len(result.Templates), Errors: issues}
	if res.Valid {
		return formatter.Render(res, func(w io.Writer) {
			fmt.Fprintf(w, "\u2713 %d template(s) valid\n", res.Templates)
		})
	}

	message := fmt.Sprintf("%d validation error(s)", len(issues))
	if formatter.Format == "json" {
		_ = formatter.Error("E200", message, res)
	} else {
		fmt.Fprintf(formatter.Writer, "\u2717 %s\n", message)
		for _, i := range issues {
			where := i.Field
			if i.Template != "" {
				where = i.Template + " " + i.Field
			}
			if i.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d: [%s] %s: %s\n", i.Line, i.Code, where, i.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", i.Code, where, i.Message)
			}
		}
	}
	return NewExitError(ExitFailure, message)
}
