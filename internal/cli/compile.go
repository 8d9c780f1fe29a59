package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/loader"
	"github.com/roach88/scenesmith/internal/template"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// TemplateRecord is the listing form of a compiled template.
type TemplateRecord struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Data        TemplateData `json:"data"`
}

// TemplateData summarizes a template's shape.
type TemplateData struct {
	Pages      int             `json:"pages"`
	Commands   int             `json:"commands"`
	Parameters []string        `json:"parameters"`
	Placement  PlacementRecord `json:"placement"`
}

// PlacementRecord mirrors template.PlacementRules for output.
type PlacementRecord struct {
	RequireWalkable bool  `json:"requireWalkable"`
	AllowedTiles    []int `json:"allowedTiles,omitempty"`
	DisallowedTiles []int `json:"disallowedTiles,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <templates-dir>",
		Short: "Compile CUE templates and list them",
		Long: `Compile the CUE event templates in a directory and print one record per
template, sorted by template id.

Every template is attempted; all compile errors are reported together.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write records as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result, errs := loader.LoadDir(dir, loader.CollectAll)
	if result == nil && len(errs) > 0 {
		return failLoad(formatter, errs[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)
	for _, t := range result.Templates {
		formatter.VerboseLog("Compiled template: %s", t.Key())
	}

	if len(errs) > 0 {
		return failCompile(formatter, errs)
	}

	records := make([]TemplateRecord, len(result.Templates))
	for i, t := range result.Templates {
		records[i] = NewTemplateRecord(t)
	}

	if opts.Output != "" {
		if err := writeJSONFile(records, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, loader.ErrCodeWriteFailed,
				fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return formatter.Render(records, func(w io.Writer) {
		fmt.Fprintf(w, "\u2713 Compiled %d template(s)\n\n", len(records))
		for _, r := range records {
			fmt.Fprintf(w, "  %s (%s): %d page(s), %d command(s)\n", r.ID, r.Type, r.Data.Pages, r.Data.Commands)
		}
		if opts.Output != "" {
			fmt.Fprintf(w, "\nOutput written to: %s\n", opts.Output)
		}
	})
}

// NewTemplateRecord builds the listing record for t. The record id is the
// registry key and the type is the category.
func NewTemplateRecord(t *template.Template) TemplateRecord {
	commands := 0
	for _, p := range t.Pages {
		commands += len(p.Commands)
	}
	names := t.Parameters.Names()
	if names == nil {
		names = []string{}
	}
	return TemplateRecord{
		ID:          t.Key(),
		Type:        t.Category,
		Name:        t.Name,
		Description: t.Description,
		Data: TemplateData{
			Pages:      len(t.Pages),
			Commands:   commands,
			Parameters: names,
			Placement: PlacementRecord{
				RequireWalkable: t.Placement.RequireWalkable,
				AllowedTiles:    t.Placement.AllowedTiles,
				DisallowedTiles: t.Placement.DisallowedTiles,
			},
		},
	}
}

// failLoad reports an error that stopped loading altogether.
func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *loader.Error
	if errors.As(err, &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return formatter.Fail(ExitCommandError, loader.ErrCodeGeneric, err.Error(), nil)
}

// CompileErrorDetail is one template compile error in JSON output.
type CompileErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// failCompile reports every template compile error.
func failCompile(formatter *OutputFormatter, errs []error) error {
	details := make([]CompileErrorDetail, 0, len(errs))
	for _, err := range errs {
		d := CompileErrorDetail{Code: loader.ErrCodeGeneric, Message: err.Error()}
		var loadErr *loader.Error
		if errors.As(err, &loadErr) {
			d.Code = loadErr.Code
			d.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				d.File = loadErr.Pos.Filename()
				d.Line = loadErr.Pos.Line()
			}
		}
		details = append(details, d)
	}

	message := fmt.Sprintf("%d template error(s)", len(details))
	if formatter.Format == "json" {
		_ = formatter.Error(loader.ErrCodeBuildFailed, message, details)
	} else {
		fmt.Fprintf(formatter.Writer, "\u2717 %s\n", message)
		for _, d := range details {
			if d.File != "" {
				fmt.Fprintf(formatter.Writer, "  %s:%d: [%s] %s\n", d.File, d.Line, d.Code, d.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "  [%s] %s\n", d.Code, d.Message)
			}
		}
	}
	return NewExitError(ExitFailure, message)
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
