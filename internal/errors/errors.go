// Package errors defines the closed error taxonomy for the refactoring
// engine. Expected outcomes (not found, ambiguous, invalid input) are modeled
// as typed error values with stable machine-readable codes; panics are
// reserved for provider bugs.
package errors

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/lcr/internal/types"
)

// Code is a stable machine-readable error code.
type Code string

const (
	// Input errors
	CodeMissingField      Code = "missing_required_field"
	CodeRelativePath      Code = "relative_path"
	CodeInvalidLineNumber Code = "invalid_line_number"
	CodeInvalidColumn     Code = "invalid_column_number"
	CodeInvalidIdentifier Code = "invalid_identifier"
	CodeReservedKeyword   Code = "reserved_keyword"
	CodeSameName          Code = "same_name"

	// Resolution errors
	CodeSymbolNotFound  Code = "symbol_not_found"
	CodeSymbolAmbiguous Code = "symbol_ambiguous"
	CodeSymbolExternal  Code = "symbol_external"

	// Semantic-legality errors
	CodeCannotRenameConstructor Code = "cannot_rename_constructor"
	CodeCannotRenameDestructor  Code = "cannot_rename_destructor"
	CodeCannotRenameOperator    Code = "cannot_rename_operator"
	CodeStaticTarget            Code = "static_target"
	CodeMemberNotFound          Code = "member_not_found"
	CodeDuplicateSignature      Code = "duplicate_signature"

	// I/O errors
	CodeFileNotFound   Code = "file_not_found"
	CodeTargetExists   Code = "target_exists"
	CodeWriteFailed    Code = "write_failed"
	CodeDeleteFailed   Code = "delete_failed"
	CodeStaleSnapshot  Code = "stale_snapshot"
	CodeCancelled      Code = "operation_cancelled"
	CodeConfig         Code = "config"
)

// RefactorError carries a code, a human-readable message, structured details
// for machine consumption, and optional remediation hints.
type RefactorError struct {
	Code         Code
	Message      string
	Details      map[string]any
	Remediations []string
	Underlying   error
}

// New creates an error with the given code and message.
func New(code Code, format string, args ...any) *RefactorError {
	return &RefactorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error with the given code around an underlying cause.
func Wrap(code Code, underlying error, format string, args ...any) *RefactorError {
	return &RefactorError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Underlying: underlying,
	}
}

// WithDetail attaches one structured detail and returns the error.
func (e *RefactorError) WithDetail(key string, value any) *RefactorError {
	if e.Details == nil {
		e.Details = make(map[string]any, 2)
	}
	e.Details[key] = value
	return e
}

// WithRemediation appends a suggested remediation hint.
func (e *RefactorError) WithRemediation(format string, args ...any) *RefactorError {
	e.Remediations = append(e.Remediations, fmt.Sprintf(format, args...))
	return e
}

// Error implements the error interface.
func (e *RefactorError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *RefactorError) Unwrap() error {
	return e.Underlying
}

// Record converts the error into the serializable OperationError shape.
func (e *RefactorError) Record() *types.OperationError {
	return &types.OperationError{
		Code:         string(e.Code),
		Message:      e.Message,
		Details:      e.Details,
		Remediations: e.Remediations,
	}
}

// CodeOf extracts the code from an error chain, or "" when the error is not a
// RefactorError.
func CodeOf(err error) Code {
	var re *RefactorError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// AsRecord converts any error into an OperationError. Non-taxonomy errors get
// the internal marker code so callers can tell them apart from expected
// outcomes.
func AsRecord(err error) *types.OperationError {
	if err == nil {
		return nil
	}
	var re *RefactorError
	if errors.As(err, &re) {
		return re.Record()
	}
	return &types.OperationError{Code: "internal", Message: err.Error()}
}
