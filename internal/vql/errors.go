package vql

import (
	"fmt"
	"strings"
)

// FieldError locates a single validation failure inside a nested filter
// document. Path uses dotted keys and bracketed list indexes, e.g.
// "filters.and[0].or[1].value".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every problem found in a filter document.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError builds a ValidationError with a single entry.
func NewValidationError(path, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Path: path, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		if fe.Path == "" {
			parts[i] = fe.Message
			continue
		}
		parts[i] = fe.Path + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MalformedJSONError is returned by ParseJSON when the input is not JSON at
// all, as opposed to JSON that fails schema validation.
type MalformedJSONError struct {
	Offset int64
	Err    error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}
