package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while generating or placing
// events.
//
// Runtime errors include:
//   - Template not found: a selector or template id matched nothing
//   - Placement failed: the attempt budget ran out without a free tile
//   - Invalid request: a request cannot be processed at all
//
// Template-not-found and placement failures inside PlaceEvents are recorded
// on the batch Outcomes instead of being returned.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Selector is the template id or selector involved.
	Selector string

	// Request is the index of the request in its batch, or -1.
	Request int

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeTemplateNotFound indicates no template matched.
	ErrCodeTemplateNotFound RuntimeErrorCode = "TEMPLATE_NOT_FOUND"

	// ErrCodePlacementFailed indicates no valid coordinate was found.
	ErrCodePlacementFailed RuntimeErrorCode = "PLACEMENT_FAILED"

	// ErrCodeInvalidRequest indicates a malformed placement request.
	ErrCodeInvalidRequest RuntimeErrorCode = "INVALID_REQUEST"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Selector != "" && e.Request >= 0 {
		return fmt.Sprintf("%s: %s (request=%d, selector=%s)", e.Code, e.Message, e.Request, e.Selector)
	}
	if e.Selector != "" {
		return fmt.Sprintf("%s: %s (selector=%s)", e.Code, e.Message, e.Selector)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTemplateNotFound returns true if the error is a template-not-found error.
// Uses errors.As to handle wrapped errors.
func IsTemplateNotFound(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTemplateNotFound
	}
	return false
}

// IsPlacementFailed returns true if the error is a placement failure.
// Uses errors.As to handle wrapped errors.
func IsPlacementFailed(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodePlacementFailed
	}
	return false
}

// IsInvalidRequest returns true if the error is an invalid-request error.
// Uses errors.As to handle wrapped errors.
func IsInvalidRequest(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidRequest
	}
	return false
}

// NewTemplateNotFoundError creates a RuntimeError for an unknown template.
func NewTemplateNotFoundError(selector string, request int) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeTemplateNotFound,
		Message:  "no template matches selector",
		Selector: selector,
		Request:  request,
	}
}

// NewPlacementFailedError creates a RuntimeError for an exhausted budget.
func NewPlacementFailedError(selector string, request int, strategy string, attempts int) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodePlacementFailed,
		Message:  fmt.Sprintf("no valid location after %d attempts", attempts),
		Selector: selector,
		Request:  request,
		Details: map[string]string{
			"strategy": strategy,
			"attempts": fmt.Sprintf("%d", attempts),
		},
	}
}

// NewInvalidRequestError creates a RuntimeError for a malformed request.
func NewInvalidRequestError(request int, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Request: request,
	}
}
