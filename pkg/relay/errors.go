package relay

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents the kind of failure a relay operation reported
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Registration error types
	RegistrationErrorCode
	LookupErrorCode

	// Dispatch error types
	UnsupportedMethodErrorCode
	UnsupportedReturnShapeErrorCode
	RequestBuildErrorCode

	// Response error types
	RemoteErrorCode
	TransportErrorCode
	DecodeErrorCode
)

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	switch c {
	case RegistrationErrorCode:
		return "RegistrationError"
	case LookupErrorCode:
		return "LookupError"
	case UnsupportedMethodErrorCode:
		return "UnsupportedMethodError"
	case UnsupportedReturnShapeErrorCode:
		return "UnsupportedReturnShapeError"
	case RequestBuildErrorCode:
		return "RequestBuildError"
	case RemoteErrorCode:
		return "RemoteError"
	case TransportErrorCode:
		return "TransportError"
	case DecodeErrorCode:
		return "DecodeError"
	default:
		return "UnknownError"
	}
}

// Sentinel errors for errors.Is checks. Every *Error produced by relay
// matches exactly one of them.
var (
	ErrMissingVerbMarker      = errors.New("missing verb marker")
	ErrDuplicateVerbMarker    = errors.New("duplicate verb marker")
	ErrUnresolvedPathParam    = errors.New("unresolved path parameter")
	ErrUnknownMethod          = errors.New("unknown method")
	ErrParameterCount         = errors.New("parameter count mismatch")
	ErrInvalidDeclaration     = errors.New("invalid declaration")
	ErrNotRegistered          = errors.New("interface not registered")
	ErrUnsupportedMethod      = errors.New("unsupported method")
	ErrUnsupportedReturnShape = errors.New("unsupported return shape")
	ErrRequestBuild           = errors.New("request build failed")
	ErrDecode                 = errors.New("response decode failed")
	ErrTransport              = errors.New("transport failure")
)

// Error is the error type returned by relay for everything except remote
// error statuses, which are reported as *RemoteError.
type Error struct {
	Code        ErrorCode      // kind of error
	Kind        error          // sentinel matched by errors.Is
	Message     string         // error message
	Cause       error          // underlying error cause
	ContextData map[string]any // additional context information
	Hints       []string       // suggestions for fixing the error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Is reports whether target is the sentinel this error was created for
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Unwrap returns the underlying cause for error chain inspection
func (e *Error) Unwrap() error {
	return e.Cause
}

// Context returns the error context data
func (e *Error) Context() map[string]any {
	if e.ContextData == nil {
		return make(map[string]any)
	}
	return e.ContextData
}

// Suggestions returns hints for fixing the error
func (e *Error) Suggestions() []string {
	return e.Hints
}

// WithCause adds an underlying error cause
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.ContextData == nil {
		e.ContextData = make(map[string]any)
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a hint for fixing the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Hints = append(e.Hints, suggestion)
	return e
}

func newError(code ErrorCode, kind error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func missingVerbError(iface, method string) *Error {
	return newError(RegistrationErrorCode, ErrMissingVerbMarker,
		"missing HTTP annotation for the method %s", method).
		WithContext("interface", iface).
		WithContext("method", method).
		WithSuggestion("add one of relay.GET, relay.POST, relay.PUT, relay.PATCH or relay.DELETE to the method")
}

func duplicateVerbError(iface, method string, verbs []string) *Error {
	return newError(RegistrationErrorCode, ErrDuplicateVerbMarker,
		"method %s declares more than one HTTP annotation (%s)", method, strings.Join(verbs, ", ")).
		WithContext("interface", iface).
		WithContext("method", method)
}

func unresolvedPathParamError(iface, method, token string) *Error {
	return newError(RegistrationErrorCode, ErrUnresolvedPathParam,
		"path param %s in the url cannot find an annotated argument in the method %s", token, method).
		WithContext("interface", iface).
		WithContext("method", method).
		WithContext("token", token).
		WithSuggestion(fmt.Sprintf("mark one parameter with relay.Path(%q)", token))
}

func notRegisteredError(iface string) *Error {
	return newError(LookupErrorCode, ErrNotRegistered,
		"the interface %s has not been registered", iface).
		WithContext("interface", iface).
		WithSuggestion("register the interface declaration with Store.Register or Client.Bind first")
}

func unsupportedMethodError(method, reason string) *Error {
	return newError(UnsupportedMethodErrorCode, ErrUnsupportedMethod,
		"method %s cannot be dispatched: %s", method, reason).
		WithContext("method", method)
}

func unsupportedShapeError(method, declared string) *Error {
	return newError(UnsupportedReturnShapeErrorCode, ErrUnsupportedReturnShape,
		"unsupported return type %s for method %s", declared, method).
		WithContext("method", method).
		WithSuggestion("return (T, error), (error) or *relay.Future[T]")
}

func transportError(op string, cause error) *Error {
	return newError(TransportErrorCode, ErrTransport, "%s", op).WithCause(cause)
}

func decodeError(target string, cause error) *Error {
	return newError(DecodeErrorCode, ErrDecode, "decoding response into %s", target).WithCause(cause)
}

func requestBuildError(method string, cause error) *Error {
	return newError(RequestBuildErrorCode, ErrRequestBuild, "building request for %s", method).
		WithCause(cause).
		WithContext("method", method)
}

// ErrorDetail is the error object of the JSON error envelope
// {"error":{"message","type","param","code"}}.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RemoteError reports a response whose status code was outside 200–299
type RemoteError struct {
	StatusCode int          // HTTP status code of the response
	Detail     *ErrorDetail // parsed envelope, nil when the body was not an envelope
	Body       string       // raw response body
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message())
}

// Message returns the envelope message, falling back to the raw body
func (e *RemoteError) Message() string {
	if e.Detail != nil && e.Detail.Message != "" {
		return e.Detail.Message
	}
	return e.Body
}

// IsRemoteError reports whether err carries a *RemoteError and returns it
func IsRemoteError(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}
