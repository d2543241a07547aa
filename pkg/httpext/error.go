// Package httpext normalizes the error payloads the remote service
// attaches to non-2xx responses. The payload's detail field may be a
// plain string, a structured object, or a list of {msg|message}
// objects; every shape collapses into one human-readable string.
package httpext

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a normalized non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// errorEnvelope is the outer error body. Detail is kept raw because its
// shape varies by endpoint and failure class.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error,omitempty"`
}

// detailItem is one element of a list-shaped detail, as produced by
// request validation layers.
type detailItem struct {
	Msg     string `json:"msg,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeError turns a non-2xx status and body into an APIError with a
// normalized detail string. A body that carries no recognizable payload
// falls back to the standard status text.
func DecodeError(status int, body []byte) *APIError {
	detail := ""

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 {
			detail = NormalizeDetail(envelope.Detail)
		} else if envelope.Error != "" {
			detail = envelope.Error
		}
	}

	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	if detail == "" {
		detail = http.StatusText(status)
	}

	return &APIError{Status: status, Detail: detail}
}

// NormalizeDetail collapses any detail shape into a single string:
// a JSON string is returned as-is, a list of {msg|message} objects is
// joined with "; ", and any other object is compacted verbatim.
func NormalizeDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []detailItem
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			switch {
			case item.Msg != "":
				msgs = append(msgs, item.Msg)
			case item.Message != "":
				msgs = append(msgs, item.Message)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"msg", "message", "error"} {
			if v, ok := obj[key].(string); ok && v != "" {
				return v
			}
		}
	}

	return strings.TrimSpace(string(raw))
}
