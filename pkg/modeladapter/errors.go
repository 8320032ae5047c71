package modeladapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors. Every typed error below matches exactly one of them via
// errors.Is, so callers can branch on the class without knowing the type.
var (
	ErrAuth        = errors.New("authentication failed")
	ErrRateLimited = errors.New("rate limited")
	ErrProvider    = errors.New("provider error")
	ErrNetwork     = errors.New("network error")
)

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 512

// AuthError is returned when the API rejects the credentials (HTTP 401/403).
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Body)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// RateLimitError is returned when the API responds with HTTP 429 (Too Many Requests).
// It carries an optional RetryAfter duration parsed from the Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// ProviderError is returned when the API fails on its side (HTTP 5xx).
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// StatusError is returned for any other non-2xx response, typically a 400
// caused by an unknown model or an out-of-range max_tokens.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport failure: DNS, refused connection, TLS,
// timeout, or a truncated response body.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatusErr classifies a non-2xx HTTP status into the error taxonomy.
// retryAfter is the raw Retry-After header value (may be empty); body is the
// raw response body.
func StatusErr(status int, retryAfter string, body []byte) error {
	return ClassifyStatus(status, ParseRetryAfter(retryAfter), ErrorMessage(body))
}

// ClassifyStatus builds the typed error for a non-2xx status whose message
// has already been extracted. SDK-backed providers use it to map their own
// API errors onto the same taxonomy.
func ClassifyStatus(status int, retryAfter time.Duration, msg string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{StatusCode: status, Body: msg}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter, Body: msg}
	case status >= 500:
		return &ProviderError{StatusCode: status, Body: msg}
	default:
		return &StatusError{StatusCode: status, Body: msg}
	}
}

// ErrorMessage extracts a human-readable message from an error response
// body. OpenAI-compatible APIs return {"error":{"message":"..."}}; anything
// else is returned trimmed and capped.
func ErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
		return 0
	}
	return 0
}
