// Package errors provides the error taxonomy shared by the relay, the API
// client and the page scraper.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure inside a chat turn.
type Kind int

const (
	KindUnknown Kind = iota
	KindCredentialMissing
	KindCredentialInvalid
	KindTransport
	KindContextUnavailable
	KindMalformedResponse
	KindDOMMissingElement
	KindAPI
)

// String returns the kebab-case name used in logs
func (k Kind) String() string {
	switch k {
	case KindCredentialMissing:
		return "credential-missing"
	case KindCredentialInvalid:
		return "credential-invalid"
	case KindTransport:
		return "transport-failure"
	case KindContextUnavailable:
		return "context-unavailable"
	case KindMalformedResponse:
		return "malformed-response"
	case KindDOMMissingElement:
		return "dom-missing-element"
	case KindAPI:
		return "api-error"
	default:
		return "unknown"
	}
}

// Sentinel errors for common cases
var (
	ErrCredentialMissing = errors.New("api key is not set")
	ErrNoActivePage      = errors.New("no active tab found")
	ErrNoPageData        = errors.New("received no data from content script")
	ErrInvalidResponse   = errors.New("invalid response format")
)

// AuthError is returned when the API rejects the key (HTTP 401/403).
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed [%d]: API key was rejected", e.StatusCode)
	}
	return fmt.Sprintf("authentication failed [%d]: %s", e.StatusCode, e.Message)
}

// NewAuthError creates a new AuthError
func NewAuthError(statusCode int, message string) *AuthError {
	return &AuthError{StatusCode: statusCode, Message: message}
}

// APIError represents any other non-2xx response
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("HTTP error! status: %d (%s)", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError keeping the (truncated) response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, message)
	e.Body = body
	return e
}

// NetworkError wraps a transport failure: DNS, refused connection, reset, timeout.
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s (%s): %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a 2xx response that lacks the expected structure
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error: %s (at %s)", e.Message, e.Path)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// DOMElementError is returned by the scraper when a required page element
// cannot be located.
type DOMElementError struct {
	Element  string
	Selector string
	Err      error
}

func (e *DOMElementError) Error() string {
	return fmt.Sprintf("%s not found (selector %q)", e.Element, e.Selector)
}

func (e *DOMElementError) Unwrap() error {
	return e.Err
}

// NewDOMElementError creates a new DOMElementError
func NewDOMElementError(element, selector string, err error) *DOMElementError {
	return &DOMElementError{Element: element, Selector: selector, Err: err}
}

// KindOf classifies err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var authErr *AuthError
	var apiErr *APIError
	var netErr *NetworkError
	var parseErr *ParseError
	var domErr *DOMElementError

	switch {
	case errors.Is(err, ErrCredentialMissing):
		return KindCredentialMissing
	case errors.As(err, &authErr):
		return KindCredentialInvalid
	case errors.As(err, &domErr):
		return KindDOMMissingElement
	case errors.Is(err, ErrNoActivePage), errors.Is(err, ErrNoPageData):
		return KindContextUnavailable
	case errors.As(err, &parseErr):
		return KindMalformedResponse
	case errors.As(err, &netErr):
		return KindTransport
	case errors.As(err, &apiErr):
		return KindAPI
	}
	return KindUnknown
}

// IsAuthError reports whether err is a rejected-credential error
func IsAuthError(err error) bool {
	return KindOf(err) == KindCredentialInvalid
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	return KindOf(err) == KindTransport
}

// IsParseError reports whether err is a malformed-response error
func IsParseError(err error) bool {
	return KindOf(err) == KindMalformedResponse
}

// GetHTTPStatus extracts the HTTP status code from err, or 0
func GetHTTPStatus(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetResponseBody extracts the response body attached to an APIError, if any
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
