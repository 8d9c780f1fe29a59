// Package loader finds CUE template sources on disk and compiles them into
// templates.
//
// Templates live under a top-level "template" struct, one field per template
// id:
//
//	template: potion_chest: {
//		category: "chest"
//		pages: [{commands: [{say: "You found a {{itemName}}!"}]}]
//	}
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/scenesmith/internal/compiler"
	"github.com/roach88/scenesmith/internal/template"
)

// Mode controls how errors are handled during loading.
type Mode int

const (
	// FailFast stops on the first error encountered.
	FailFast Mode = iota
	// CollectAll collects all errors before returning.
	CollectAll
)

// Result contains the templates loaded from a directory or file list.
type Result struct {
	Templates []*template.Template
	CUEValue  cue.Value // Raw value of the last loaded source
	FileCount int
}

// Registry registers every loaded template in a new registry.
func (r *Result) Registry() (*template.Registry, error) {
	reg := template.NewRegistry()
	for _, t := range r.Templates {
		if _, err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Error is a loading or compilation failure with its CUE position.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, shared by every CLI command.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Template compile errors
	ErrCodeCategory    = "E101" // Missing category
	ErrCodePages       = "E102" // Missing or empty pages
	ErrCodeCommand     = "E103" // Unknown or malformed command
	ErrCodeInvalidType = "E104" // Invalid field type (e.g., float)
	ErrCodeCondition   = "E105" // Malformed condition
	ErrCodeParameter   = "E106" // Malformed declared value
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "category":
		return ErrCodeCategory
	case "pages", "pages.*":
		return ErrCodePages
	case "command", "when", "op", "setVariable.op", "say.text":
		return ErrCodeCommand
	case "type":
		return ErrCodeInvalidType
	case "if", "if.cmp":
		return ErrCodeCondition
	case "expr", "choice":
		return ErrCodeParameter
	default:
		return ErrCodeGeneric
	}
}

// LoadDir loads and compiles every template in the CUE package at dir.
// With FailFast it returns on the first error; with CollectAll every
// template is attempted and all errors are returned.
func LoadDir(dir string, mode Mode) (*Result, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("templates directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing templates directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&Error{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&Error{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&Error{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&Error{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &Result{CUEValue: value, FileCount: len(cueFiles)}
	errs := extract(value, result, mode)
	if len(result.Templates) == 0 && len(errs) == 0 {
		errs = append(errs, &Error{Code: ErrCodeGeneric, Message: "no templates found"})
	}
	return result, errs
}

// LoadFiles compiles each CUE file on its own and collects the templates of
// all of them. A path naming a directory is loaded with LoadDir.
func LoadFiles(paths []string, mode Mode) (*Result, []error) {
	ctx := cuecontext.New()
	result := &Result{}
	var errs []error

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("template source not found: %s", path)})
			if mode == FailFast {
				return result, errs
			}
			continue
		}

		if info.IsDir() {
			sub, subErrs := LoadDir(path, mode)
			if sub != nil {
				result.Templates = append(result.Templates, sub.Templates...)
				result.FileCount += sub.FileCount
				result.CUEValue = sub.CUEValue
			}
			errs = append(errs, subErrs...)
			if len(subErrs) > 0 && mode == FailFast {
				return result, errs
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)})
			if mode == FailFast {
				return result, errs
			}
			continue
		}
		value := ctx.CompileBytes(data, cue.Filename(path))
		if err := value.Err(); err != nil {
			errs = append(errs, &Error{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building %s: %v", path, err)})
			if mode == FailFast {
				return result, errs
			}
			continue
		}
		result.FileCount++
		result.CUEValue = value

		fileErrs := extract(value, result, mode)
		errs = append(errs, fileErrs...)
		if len(fileErrs) > 0 && mode == FailFast {
			return result, errs
		}
	}
	return result, errs
}

// extract compiles every field of the top-level "template" struct, in
// label order, appending templates to result.
func extract(value cue.Value, result *Result, mode Mode) []error {
	var errs []error
	templatesVal := value.LookupPath(cue.ParsePath("template"))
	if !templatesVal.Exists() {
		return nil
	}

	iter, err := templatesVal.Fields()
	if err != nil {
		return []error{&Error{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating templates: %v", err)}}
	}

	type entry struct {
		label string
		value cue.Value
	}
	var entries []entry
	for iter.Next() {
		entries = append(entries, entry{label: iter.Selector().Unquoted(), value: iter.Value()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].label < entries[j].label })

	for _, e := range entries {
		tpl, compileErr := compiler.CompileTemplate(e.value)
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "template."+e.label))
			if mode == FailFast {
				return errs
			}
			continue
		}
		result.Templates = append(result.Templates, tpl)
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to an Error with position info.
func convertCompileError(err error, context string) *Error {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &Error{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &Error{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
