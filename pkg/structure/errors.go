// Package structure implements the structure definition engine: parsing,
// schema migration, validation, and the immutable queryable model behind
// planning and drift auditing.
package structure

import (
	"fmt"
	"strings"
)

// Error codes attached to violations for programmatic handling.
const (
	CodeMissingField   = "MISSING_FIELD"
	CodeInvalidFormat  = "INVALID_FORMAT"
	CodeInvalidType    = "INVALID_TYPE"
	CodeUnknownSchema  = "UNKNOWN_SCHEMA_VERSION"
	CodeEmptyStructure = "EMPTY_STRUCTURE"
)

// Violation is a single validation finding with its location in the document.
type Violation struct {
	// Path is the JSON path to the offending field (e.g. "metadata.version",
	// "structure.docs.guides").
	Path string `json:"path"`

	// Code is the machine-readable violation code.
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// String renders the violation in "CODE: message at path" form.
func (v Violation) String() string {
	if v.Path == "" {
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
	return fmt.Sprintf("%s: %s at %s", v.Code, v.Message, v.Path)
}

// ValidationError is raised in strict mode when a document fails validation.
// It always carries the complete violation list, never just the first.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "structure validation failed"
	}
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("structure validation failed with %d error(s):", len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "  - "+v.String())
	}
	return strings.Join(lines, "\n")
}

// MigrationError is raised when a document is neither current-schema nor
// recognizably legacy-shaped. Distinct from ValidationError so callers can
// tell "this is not a structure document" apart from "this structure
// document has schema violations".
type MigrationError struct {
	Reason string
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	return "schema migration failed: " + e.Reason
}

func newMigrationError(format string, args ...interface{}) *MigrationError {
	return &MigrationError{Reason: fmt.Sprintf(format, args...)}
}
