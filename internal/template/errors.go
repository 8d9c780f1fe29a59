package template

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no template matches a lookup.
var ErrNotFound = errors.New("template not found")

// ErrDuplicateCategoryMismatch matches every DuplicateCategoryMismatchError
// via errors.Is.
var ErrDuplicateCategoryMismatch = errors.New("template id registered under another category")

// DuplicateCategoryMismatchError reports an id that is already registered
// under a different category.
type DuplicateCategoryMismatchError struct {
	ID       string
	Existing string
	Incoming string
}

func (e *DuplicateCategoryMismatchError) Error() string {
	return fmt.Sprintf("template %q already registered in category %q, cannot register in %q",
		e.ID, e.Existing, e.Incoming)
}

// Is lets errors.Is match ErrDuplicateCategoryMismatch.
func (e *DuplicateCategoryMismatchError) Is(target error) bool {
	return target == ErrDuplicateCategoryMismatch
}
