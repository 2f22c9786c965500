// Package apierrors defines the failure kinds surfaced by the catalog client.
// Every error returned by the catalog manager is one of these four types,
// possibly wrapped, so callers can switch on KindOf.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is matched by errors.Is when the remote API reports a missing object.
var ErrNotFound = errors.New("not found")

// Kind identifies which failure class an error belongs to.
type Kind string

const (
	KindUnknown       Kind = ""
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindRemote        Kind = "remote"
	KindTransport     Kind = "transport"
)

// ConfigurationError is returned when a required identifier is missing at call time.
type ConfigurationError struct {
	Field     string
	Operation string
}

func (e *ConfigurationError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("configuration error: %s is required to %s", e.Field, e.Operation)
	}
	return fmt.Sprintf("configuration error: %s is required", e.Field)
}

// ValidationError carries every violation found in a record.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// RemoteAPIError is a non-2xx response from the remote API.
// Payload holds the decoded response body, or nil when it was not JSON.
type RemoteAPIError struct {
	Message    string
	StatusCode int
	Payload    map[string]interface{}
}

func (e *RemoteAPIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrNotFound) match missing-object responses.
func (e *RemoteAPIError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether the response means the object does not exist.
// The Graph API answers unknown object ids with either 404 or a 400 carrying
// error code 100 / subcode 33.
func (e *RemoteAPIError) IsNotFound() bool {
	if e.StatusCode == http.StatusNotFound {
		return true
	}
	if e.StatusCode != http.StatusBadRequest {
		return false
	}
	g := e.GraphError()
	return g != nil && g.Code == 100 && g.Subcode == 33
}

// GraphError is the "error" object of a Graph API response body.
type GraphError struct {
	Message   string
	Type      string
	Code      int
	Subcode   int
	FBTraceID string
}

// GraphError extracts the structured error object from the payload, if any.
func (e *RemoteAPIError) GraphError() *GraphError {
	if e.Payload == nil {
		return nil
	}
	obj, ok := e.Payload["error"].(map[string]interface{})
	if !ok {
		return nil
	}
	g := &GraphError{}
	g.Message, _ = obj["message"].(string)
	g.Type, _ = obj["type"].(string)
	g.FBTraceID, _ = obj["fbtrace_id"].(string)
	if v, ok := obj["code"].(float64); ok {
		g.Code = int(v)
	}
	if v, ok := obj["error_subcode"].(float64); ok {
		g.Subcode = int(v)
	}
	return g
}

// NewRemoteAPIError builds the error message from the status and the payload's
// error message when present.
func NewRemoteAPIError(statusCode int, payload map[string]interface{}) *RemoteAPIError {
	e := &RemoteAPIError{StatusCode: statusCode, Payload: payload}
	msg := fmt.Sprintf("catalog API error: %d", statusCode)
	if g := e.GraphError(); g != nil {
		if g.Message != "" {
			msg += " - " + g.Message
		} else {
			msg += " - unknown error"
		}
	}
	e.Message = msg
	return e
}

// TransportError is a failure before any HTTP status was received:
// DNS, connection refused, TLS, timeout or cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf classifies err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	var (
		cfgErr       *ConfigurationError
		validErr     *ValidationError
		remoteErr    *RemoteAPIError
		transportErr *TransportError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &validErr):
		return KindValidation
	case errors.As(err, &remoteErr):
		return KindRemote
	case errors.As(err, &transportErr):
		return KindTransport
	}
	return KindUnknown
}

// StatusCode returns the remote HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var remoteErr *RemoteAPIError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err wraps a missing-object response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
