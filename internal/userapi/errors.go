package userapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDeleteRejected is returned when the API answers a delete with isSucess=false.
	ErrDeleteRejected = errors.New("user api rejected delete")
	// ErrInvalidCredentials is returned by Login for 400/401/403 responses.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoToken is returned by Login when a 2xx response carries no token.
	ErrNoToken = errors.New("user api returned no access token")
)

// APIError is a non-2xx response from the user API.
type APIError struct {
	Op      string
	Status  int
	Message string
	URL     string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("user api %s failed: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.URL != "" {
		msg += " (url=" + e.URL + ")"
	}
	return msg
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e != nil && (e.Status == http.StatusTooManyRequests || e.Status >= 500)
}

func newAPIError(op, reqURL string, status int, body []byte) *APIError {
	return &APIError{
		Op:      op,
		Status:  status,
		Message: extractErrorMessage(body),
		URL:     safeURL(reqURL),
	}
}

func extractErrorMessage(body []byte) string {
	var payload struct {
		Errors  []string `json:"errors"`
		Error   string   `json:"error"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if len(payload.Errors) > 0 {
			if first := strings.TrimSpace(payload.Errors[0]); first != "" {
				return first
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return ""
	}
	lower := strings.ToLower(msg)
	if strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html") {
		return ""
	}
	msg = strings.Join(strings.Fields(msg), " ")
	const maxLen = 300
	if len(msg) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}

func safeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.Fragment = ""
	return u.String()
}
