package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// FallbackMessage is used when the backend gives no message of its own.
const FallbackMessage = "Operation failed"

var (
	// ErrInvalidID is returned before any request for an empty or placeholder id.
	ErrInvalidID = errors.New("invalid id")
	// ErrMissingPhone is returned before any request when a phone number is required.
	ErrMissingPhone = errors.New("phone number is required")
	// ErrUnexpectedShape marks a response that could not be normalized.
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// APIError is a failed mutation with a user-facing message.
type APIError struct {
	Status  int    // HTTP status, 0 for transport errors
	Message string // Backend message or FallbackMessage
	Err     error  // Underlying transport error, if any
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// validID rejects ids that would produce a broken path.
func validID(id string) error {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return ErrInvalidID
	}
	return nil
}

// checkResponse reports HTTP failures and HTTP 200 bodies that signal an
// error through their status field or a non-empty error field.
func checkResponse(status int, body []byte) error {
	var obj map[string]any
	_ = json.Unmarshal(body, &obj)

	if status >= http.StatusBadRequest || signalsError(obj) {
		return &APIError{Status: status, Message: messageOf(obj)}
	}
	return nil
}

func signalsError(obj map[string]any) bool {
	switch v := obj["status"].(type) {
	case string:
		if strings.EqualFold(v, "success") {
			return false
		}
		if strings.EqualFold(v, "error") || strings.EqualFold(v, "failed") {
			return true
		}
	case bool:
		return !v
	}
	msg, _ := obj["error"].(string)
	return strings.TrimSpace(msg) != ""
}

// messageOf picks the first message field the backend set.
func messageOf(obj map[string]any) string {
	for _, key := range []string{"msg", "message", "error", "Response"} {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return FallbackMessage
}
