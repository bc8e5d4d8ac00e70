package xano

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoAuthToken means a login/signup response came back 2xx but without a
// bearer token. Hard failure, not retryable.
var ErrNoAuthToken = errors.New("xano: no authToken in response")

// APIError is a non-2xx response from either endpoint group.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != `` {
		return fmt.Sprintf("xano: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("xano: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// parseError turns an error response body into an *APIError. Xano replies
// with {"code": ..., "message": ...}; anything else falls back to the raw
// body or the status text.
func parseError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != `` {
		return apiErr
	}

	msg := strings.TrimSpace(string(body))
	if msg == `` {
		msg = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
