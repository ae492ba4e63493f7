package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	// Message is the server's explanation, taken from detail, error or
	// message, or else the first field error. Empty when the body had none.
	Message string
	Body    []byte
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    extractMessage(body),
		Body:       body,
	}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// Is maps status codes onto the package sentinels so callers can use
// errors.Is(err, ierrors.ErrNotFound) and friends.
func (e *APIError) Is(target error) bool {
	switch target {
	case ierrors.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ierrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ierrors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ierrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ierrors.ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Field returns the raw value of key in the error body, or nil.
func (e *APIError) Field(key string) any {
	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return nil
	}
	return payload[key]
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an API error.
func StatusCode(err error) int {
	var apiErr *APIError
	if ierrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the server message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if ierrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		if msg := flatten(payload[key]); msg != "" {
			return msg
		}
	}

	// field errors come back as {"email": ["already exists"]}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := flatten(payload[k]); msg != "" {
			return k + ": " + msg
		}
	}
	return ""
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
