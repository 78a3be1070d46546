package diagnostic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"datatree-mapper/internal/common"
)

// ErrInvalid wraps the errors folded by Diagnostics.Err.
var ErrInvalid = errors.New("invalid")

// Codes of the diagnostics the engine emits.
const (
	CodeMissingRequired   = "missing_required"
	CodeIncorrectQuantity = "incorrect_quantity"
	CodeDtypeConversion   = "dtype_conversion"
	CodeNameConflict      = "name_conflict"
	CodeUnversioned       = "unversioned_namespace"

	// Validation of stored builder trees.
	CodeMissingDataType   = "missing_data_type"
	CodeIncorrectDtype    = "incorrect_dtype"
	CodeIncorrectShape    = "incorrect_shape"
	CodeExpectedArray     = "expected_array"
	CodeIllegalLink       = "illegal_link"
	CodeIncorrectDataType = "incorrect_data_type"
)

// Diagnostics collects the non-fatal findings of one operation. Errors make
// a validated tree invalid; warnings only describe how a value was adapted.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity
	// Code is one of the Code constants.
	Code    string
	Message string
	// TypeName is the data type, record class or spec path the finding is about.
	TypeName string
	// FieldPath is the logical field or builder location, if any.
	FieldPath string
}

type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

func (d *Diagnostics) AddError(code, message, typeName, fieldPath string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

func (d *Diagnostics) AddWarning(code, message, typeName, fieldPath string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

func (d Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Empty reports whether nothing at all was collected.
func (d Diagnostics) Empty() bool {
	return len(d.Errors) == 0 && len(d.Warnings) == 0
}

// All returns errors followed by warnings.
func (d Diagnostics) All() []Diagnostic {
	return append(slices.Clone(d.Errors), d.Warnings...)
}

// WithCode returns every finding, of either severity, carrying code.
func (d Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Code == code {
			out = append(out, diag)
		}
	}

	return out
}

// Err folds the errors into one error, or returns nil when there are none.
// Warnings never make Err non-nil.
func (d Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.TypeName != "" {
		prefix = append(prefix, "["+d.TypeName+"]")
	}

	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
