package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindAuth            ErrorKind = "auth"
	KindInvalidModel    ErrorKind = "invalid_model"
	KindNetwork         ErrorKind = "network"
	KindInvalidJSON     ErrorKind = "invalid_json"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindValidation      ErrorKind = "validation"
	KindUpstream        ErrorKind = "upstream"
)

// ProviderError is returned when a provider call cannot produce a usable candidate.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, e.Message)
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError of the given kind.
func NewProviderError(provider string, kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message, Err: err}
}

// NewRateLimitError creates a rate-limited ProviderError. A zero retryAfter
// means the provider did not advertise a delay.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       KindRateLimited,
		Message:    "rate limited",
		RetryAfter: retryAfter,
		Err:        err,
	}
}

// KindOf returns the kind of a ProviderError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// NetworkError wraps a transport failure. Context cancellation is passed through unchanged.
func NetworkError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return NewProviderError(provider, KindNetwork, "request failed", err)
}

var rateLimitHints = []string{"rate limit", "rate_limit", "too many requests", "quota", "resource_exhausted"}

// HasRateLimitHint reports whether an error message suggests rate limiting.
func HasRateLimitHint(msg string) bool {
	lower := strings.ToLower(msg)
	for _, h := range rateLimitHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// ClassifyStatus maps a non-200 provider response onto a ProviderError kind.
// retryAfter is used only for rate-limited responses.
func ClassifyStatus(provider string, status int, message string, modelRejected bool, retryAfter time.Duration) *ProviderError {
	base := fmt.Errorf("status %d: %s", status, truncate(message, 300))
	switch {
	case status == http.StatusTooManyRequests, HasRateLimitHint(message):
		return NewRateLimitError(provider, base, retryAfter)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewProviderError(provider, KindAuth, "credentials rejected", base)
	case modelRejected, status == http.StatusNotFound:
		return NewProviderError(provider, KindInvalidModel, "model rejected", base)
	default:
		return NewProviderError(provider, KindUpstream, "unexpected response", base)
	}
}

// ParseRetryAfterHeader parses a Retry-After header value given in seconds
// or as an HTTP date. Returns 0 if absent or unparseable.
func ParseRetryAfterHeader(val string) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

var tryAgainIn = regexp.MustCompile(`(?i)try again in ((?:[0-9.]+h)?(?:[0-9.]+m(?:s)?)?(?:[0-9.]+s)?)`)

// ParseTryAgainHint extracts a "try again in 7.5s" style delay from an error message.
func ParseTryAgainHint(msg string) time.Duration {
	m := tryAgainIn.FindStringSubmatch(msg)
	if len(m) < 2 || m[1] == "" {
		return 0
	}
	d, err := time.ParseDuration(m[1])
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
