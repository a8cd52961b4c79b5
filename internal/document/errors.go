package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrMalformed indicates the document is missing an expected
	// structural key or has the wrong shape where one is assumed.
	ErrMalformed = errors.New("malformed document")
)

// ReferenceError represents a failure to resolve a $ref: a reference
// not in local pointer form, an unresolvable pointer, or a reference
// cycle detected while following refs.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// IsCircular is true if this error is due to a reference cycle
	IsCircular bool
	// Message provides additional context about the failure
	Message string
}

func (e *ReferenceError) Error() string {
	if e.IsCircular {
		return fmt.Sprintf("circular reference: %s", e.Ref)
	}
	if e.Message != "" {
		return fmt.Sprintf("unsupported ref %s: %s", e.Ref, e.Message)
	}
	return fmt.Sprintf("unsupported ref: %s", e.Ref)
}

// Is reports whether target matches this error type.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// MalformedError represents a structural problem in the document,
// such as a parameter definition without a name. Compilation does not
// attempt partial recovery; these abort the whole run.
type MalformedError struct {
	// Path locates the offending node, e.g. "paths./boards.get"
	Path string
	// Message describes what was expected
	Message string
}

func (e *MalformedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed document at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("malformed document: %s", e.Message)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}
