package ingest

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed or incomplete record. Context is the
// source label, "file.json[2]" for a record or "file.json" for the file as
// a whole.
type ValidationError struct {
	Context string
	Cause   string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s in %s: %v", e.Cause, e.Context, e.Err)
	}
	return fmt.Sprintf("%s in %s", e.Cause, e.Context)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CoercionError reports a value that could not be read as a finite number.
type CoercionError struct {
	Field string
	Value string // raw JSON text
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %s: %s is not numeric", e.Field, e.Value)
}

// EligibilityError lists every reason an upload was refused before parsing.
type EligibilityError struct {
	Name    string
	Reasons []string
}

func (e *EligibilityError) Error() string {
	return e.Name + ": " + strings.Join(e.Reasons, ", ")
}

// FileError is one rejected file of a batch.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }

// BatchError is returned when no file of a batch produced a record.
type BatchError struct {
	Errors []FileError
}

func (e *BatchError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		lines[i] = fe.Error()
	}
	return "Failed to parse any files:\n" + strings.Join(lines, "\n")
}
