package apierrors

import (
	"errors"
	"fmt"
)

// MissingCredentialError indicates an API call was attempted before a
// credential was configured.
type MissingCredentialError struct {
	Op string
}

// NewMissingCredentialError constructs a MissingCredentialError.
func NewMissingCredentialError(op string) error {
	return &MissingCredentialError{Op: op}
}

func (e *MissingCredentialError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("missing credential: %s requires an API key", e.Op)
	}
	return "missing credential: no API key configured"
}

// TransportError represents a network-level failure before any HTTP status
// was received.
type TransportError struct {
	Op  string
	Err error
}

// NewTransportError constructs a TransportError.
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError represents a non-success HTTP response from the backend.
type HTTPStatusError struct {
	StatusCode int
	Op         string
	Message    string
}

// NewHTTPStatusError constructs an HTTPStatusError.
func NewHTTPStatusError(op string, statusCode int, message string) error {
	return &HTTPStatusError{StatusCode: statusCode, Op: op, Message: message}
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("http error: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http error: %s: status %d", e.Op, e.StatusCode)
}

// DecodingError captures a failure turning a server payload into typed data.
type DecodingError struct {
	What string
	Err  error
}

// NewDecodingError constructs a DecodingError.
func NewDecodingError(what string, err error) error {
	return &DecodingError{What: what, Err: err}
}

func (e *DecodingError) Error() string {
	if e == nil {
		return ""
	}
	if e.What != "" {
		return fmt.Sprintf("decoding error: %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("decoding error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *DecodingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EncodingError captures a failure serializing an outbound payload.
type EncodingError struct {
	What string
	Err  error
}

// NewEncodingError constructs an EncodingError.
func NewEncodingError(what string, err error) error {
	return &EncodingError{What: what, Err: err}
}

func (e *EncodingError) Error() string {
	if e == nil {
		return ""
	}
	if e.What != "" {
		return fmt.Sprintf("encoding error: %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("encoding error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *EncodingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PermissionDeniedError indicates the user or host declined access to a
// platform resource, or the backend rejected the caller outright.
type PermissionDeniedError struct {
	Resource string
}

// NewPermissionDeniedError constructs a PermissionDeniedError.
func NewPermissionDeniedError(resource string) error {
	return &PermissionDeniedError{Resource: resource}
}

func (e *PermissionDeniedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Resource != "" {
		return fmt.Sprintf("permission denied: %s", e.Resource)
	}
	return "permission denied"
}

// ExternalServiceError represents a failure in a collaborator outside the
// backend API, such as a sign-in provider or contact source.
type ExternalServiceError struct {
	Service string
	Err     error
}

// NewExternalServiceError constructs an ExternalServiceError.
func NewExternalServiceError(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

func (e *ExternalServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Service != "" {
		return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("external service error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ExternalServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures settings or payload validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode extracts the HTTP status from err when it carries one.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

// IsMissingCredential reports whether err is a MissingCredentialError.
func IsMissingCredential(err error) bool {
	var credErr *MissingCredentialError
	return errors.As(err, &credErr)
}

// IsPermissionDenied reports whether err is a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var permErr *PermissionDeniedError
	return errors.As(err, &permErr)
}

// Retryable reports whether err describes a transient failure worth
// retrying: a transport error or a 5xx response.
func Retryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	if code, ok := StatusCode(err); ok {
		return code >= 500
	}
	return false
}
