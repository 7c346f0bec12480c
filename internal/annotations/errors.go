package annotations

import "fmt"

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// SyntaxError is reported when a marker line does not follow the grammar
type SyntaxError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SyntaxError) Error() string {
	return withHint(fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg), e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// ValidationError is reported when a well-formed marker breaks its schema
type ValidationError struct {
	Kind string
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *ValidationError) Error() string {
	return withHint(fmt.Sprintf("%s: invalid //relay::%s: %s", e.Loc, e.Kind, e.Msg), e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SchemaError is reported for a marker kind without a registered schema
type SchemaError struct {
	Kind string
	Loc  SourceLocation
	Hint string
}

func (e *SchemaError) Error() string {
	return withHint(fmt.Sprintf("%s: unknown marker //relay::%s", e.Loc, e.Kind), e.Hint)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError is returned when a schema cannot be registered
type RegistrationError struct {
	Msg string
}

func (e *RegistrationError) Error() string { return e.Msg }

func (e *RegistrationError) Location() SourceLocation { return SourceLocation{} }
func (e *RegistrationError) Suggestion() string       { return "" }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

func withHint(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + " (" + hint + ")"
}
