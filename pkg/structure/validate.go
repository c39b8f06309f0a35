package structure

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Name patterns for tree entries. Directory names must start with a letter;
// file names additionally require an extension.
var (
	dirNamePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-_]*$`)
	fileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.\-_]*\.[a-zA-Z0-9]+$`)
	semverPattern   = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// ValidationResult is the outcome of validating a structure document.
// Validation is total: every violation is collected rather than stopping at
// the first, so callers see the complete error set in one pass.
type ValidationResult struct {
	Valid    bool        `json:"valid"`
	Errors   []Violation `json:"errors,omitempty"`
	Warnings []Violation `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(path, code, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Violation{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
	r.Valid = false
}

func (r *ValidationResult) addWarning(path, code, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Violation{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Err returns a ValidationError carrying the full violation list, or nil
// when the result is valid. This is the strict-mode policy hook; callers in
// non-strict mode inspect the result directly and nothing is raised.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Violations: append([]Violation(nil), r.Errors...)}
}

// Summary renders a one-line outcome for CLI output.
func (r *ValidationResult) Summary() string {
	if r.Valid {
		if len(r.Warnings) > 0 {
			return fmt.Sprintf("valid with %d warning(s)", len(r.Warnings))
		}
		return "valid"
	}
	return fmt.Sprintf("invalid: %d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}

// Validator checks documents in current-schema shape against the declared
// schema. The metadata fields are validated through struct tags; the
// dynamic-keyed tree is walked recursively.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the structure-specific tag
// validations registered.
func NewValidator() *Validator {
	v := validator.New()

	// Report field names from json tags so violation paths match the wire
	// format rather than Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "dirname", func(fl validator.FieldLevel) bool {
		return dirNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "semver", func(fl validator.FieldLevel) bool {
		return semverPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "schemaversion", func(fl validator.FieldLevel) bool {
		return knownSchemaVersions[fl.Field().String()]
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate checks a migrated document and returns the complete set of
// violations. It never returns an error itself; raising on an invalid
// result is the caller's policy (see ValidationResult.Err).
func (v *Validator) Validate(doc Document) ValidationResult {
	result := ValidationResult{Valid: true}

	v.validateMetadata(doc.Metadata, &result)

	if doc.Structure == nil {
		result.addError("structure", CodeMissingField, "required field 'structure' is missing")
		return result
	}
	if doc.Structure.Kind != KindDirectory {
		result.addError("structure", CodeInvalidType, "structure root must be an object")
		return result
	}
	if len(doc.Structure.ChildNames()) == 0 {
		result.addError("structure", CodeEmptyStructure, "structure cannot be empty")
		return result
	}

	v.validateTree(doc.Structure, "structure", &result)

	return result
}

// validateMetadata maps struct-tag failures onto violations with wire-level
// field paths.
func (v *Validator) validateMetadata(meta Metadata, result *ValidationResult) {
	err := v.validate.Struct(meta)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.addError("metadata", CodeInvalidType, "metadata is not validatable: %v", err)
		return
	}

	for _, fe := range fieldErrs {
		path := "metadata." + fe.Field()
		switch fe.Tag() {
		case "required":
			result.addError(path, CodeMissingField, "required metadata field %q is missing", fe.Field())
		case "dirname":
			result.addError(path, CodeInvalidFormat, "project name %q must match %s", fe.Value(), dirNamePattern)
		case "semver":
			result.addError(path, CodeInvalidFormat, "version %q must follow semantic versioning (e.g. 1.0.0)", fe.Value())
		case "schemaversion":
			result.addError(path, CodeUnknownSchema, "schema version %q is not recognized", fe.Value())
		default:
			result.addError(path, CodeInvalidFormat, "metadata field %q failed %q check", fe.Field(), fe.Tag())
		}
	}
}

// validateTree recursively checks every directory name and file name in the
// declared tree.
func (v *Validator) validateTree(node *Node, path string, result *ValidationResult) {
	if node.Kind == KindFileList {
		for _, file := range node.Files() {
			if !fileNamePattern.MatchString(file) {
				result.addError(path, CodeInvalidFormat,
					"file name %q is invalid: names need an extension and must match %s", file, fileNamePattern)
			}
		}
		return
	}

	for _, name := range node.ChildNames() {
		childPath := path + "." + name
		if !dirNamePattern.MatchString(name) {
			result.addError(childPath, CodeInvalidFormat,
				"directory name %q is invalid: names must match %s", name, dirNamePattern)
		}
		v.validateTree(node.Child(name), childPath, result)
	}
}
