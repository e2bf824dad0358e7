package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies an APIError for callers that branch on failure type.
type ErrorKind string

const (
	// ErrorKindNetwork is a transport failure: no response was received.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindClient is a 4xx response.
	ErrorKindClient ErrorKind = "client"

	// ErrorKindServer is a 5xx response.
	ErrorKindServer ErrorKind = "server"
)

// APIError is the single error type surfaced by every API call. A zero
// StatusCode means the request never produced a response.
type APIError struct {
	StatusCode int    `json:"status_code"      yaml:"status_code"`
	Title      string `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail     string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err        error  `json:"-"                yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return "network error: " + e.Err.Error()
		}

		return "network error: " + e.Detail
	}

	title := e.Title
	if title == "" {
		title = http.StatusText(e.StatusCode)
	}

	if e.Detail == "" {
		return fmt.Sprintf("%s (status: %d)", title, e.StatusCode)
	}

	return fmt.Sprintf("%s: %s (status: %d)", title, e.Detail, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another APIError with the same status, so errors.Is(err, ErrNotFound) works.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)

	return ok && t.StatusCode == e.StatusCode
}

// Kind reports whether the error is a network, client or server failure.
func (e *APIError) Kind() ErrorKind {
	switch {
	case e.StatusCode == 0:
		return ErrorKindNetwork
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrorKindServer
	default:
		return ErrorKindClient
	}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *APIError {
	return &APIError{Title: "Network Error", Detail: err.Error(), Err: err}
}

// Common errors.
var (
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound, Title: "Not Found"}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized, Title: "Unauthorized"}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden, Title: "Forbidden"}
)

// Common static errors that can be wrapped with context.
var (
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrConfigRequired       = errors.New("config is required")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSessionExpired       = errors.New("session expired")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrInvalidWeek          = errors.New("invalid ISO week")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNoMoreItems          = errors.New("no more items")
	ErrEmptyIdentifier      = errors.New("identifier is required")
)

func asAPIError(err error) (*APIError, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsServerError checks if the error is a 5xx.
func IsServerError(err error) bool {
	return StatusCode(err) >= http.StatusInternalServerError
}

// IsNetworkError checks if the request failed without a response.
func IsNetworkError(err error) bool {
	apiErr, ok := asAPIError(err)

	return ok && apiErr.StatusCode == 0
}

// IsRetryable reports whether a failed request is worth repeating: transport
// failures, 5xx and 429. Other 4xx responses will not change on retry.
func IsRetryable(err error) bool {
	apiErr, ok := asAPIError(err)
	if !ok {
		return false
	}

	return apiErr.StatusCode == 0 ||
		apiErr.StatusCode == http.StatusTooManyRequests ||
		apiErr.StatusCode >= http.StatusInternalServerError
}

// errorBody covers the error envelopes the backend produces.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type validationDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// ParseAPIError builds an APIError from a non-2xx response body.
func ParseAPIError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Title: http.StatusText(statusCode)}

	var body errorBody

	err := json.Unmarshal(data, &body)
	if err != nil {
		apiErr.Detail = strings.TrimSpace(string(data))

		return apiErr
	}

	switch {
	case len(body.Detail) > 0:
		apiErr.Detail = parseDetail(body.Detail)
	case body.Message != "":
		apiErr.Detail = body.Message
	case body.Error != "":
		apiErr.Detail = body.Error
	}

	return apiErr
}

func parseDetail(raw json.RawMessage) string {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text
	}

	var details []validationDetail
	if json.Unmarshal(raw, &details) == nil {
		messages := make([]string, 0, len(details))

		for _, d := range details {
			field := ""
			if len(d.Loc) > 0 {
				field = fmt.Sprint(d.Loc[len(d.Loc)-1]) + ": "
			}

			messages = append(messages, field+d.Msg)
		}

		return strings.Join(messages, "; ")
	}

	return string(raw)
}
