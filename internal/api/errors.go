// ABOUTME: Error types returned by the BloodLink API client
// ABOUTME: Maps non-2xx responses and unsuccessful envelopes to *Error

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound matches any *Error with a 404 status via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized matches any *Error with a 401 status via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a failure reported by the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return e.Message
}

// Is lets callers use errors.Is(err, ErrNotFound) and friends.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// Message returns the human-readable message for err, preferring the
// backend's own wording when there is one.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// handleErrorResponse extracts the error message from a non-2xx response.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var errResp struct {
			Message json.RawMessage `json:"message"`
			Error   string          `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if msg := flattenMessage(errResp.Message); msg != "" {
				return &Error{Status: resp.StatusCode, Message: msg}
			}
			if errResp.Error != "" {
				return &Error{Status: resp.StatusCode, Message: errResp.Error}
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

// flattenMessage accepts either a string or a list of strings, which is how
// validation failures come back from the backend.
func flattenMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
