package parser_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicepipe/internal/parser"
)

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30*time.Second, parser.ParseRetryAfterHeader("30"))
	assert.Equal(t, 1500*time.Millisecond, parser.ParseRetryAfterHeader("1.5"))
	assert.Zero(t, parser.ParseRetryAfterHeader(""))
	assert.Zero(t, parser.ParseRetryAfterHeader("soon"))
	assert.Zero(t, parser.ParseRetryAfterHeader("-4"))

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	d := parser.ParseRetryAfterHeader(future)
	assert.Greater(t, d, 60*time.Second)
}

func TestParseTryAgainHint(t *testing.T) {
	tests := []struct {
		msg  string
		want time.Duration
	}{
		{"Rate limit reached. Please try again in 7.5s.", 7500 * time.Millisecond},
		{"Please try again in 1m30s", 90 * time.Second},
		{"try again in 250ms", 250 * time.Millisecond},
		{"Please try again later", 0},
		{"no hint here", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parser.ParseTryAgainHint(tt.msg), tt.msg)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		message       string
		modelRejected bool
		want          parser.ErrorKind
	}{
		{name: "429", status: 429, message: "slow down", want: parser.KindRateLimited},
		{name: "quota hint", status: 400, message: "Quota exceeded for project", want: parser.KindRateLimited},
		{name: "401", status: 401, message: "bad key", want: parser.KindAuth},
		{name: "403", status: 403, message: "forbidden", want: parser.KindAuth},
		{name: "404", status: 404, message: "not found", want: parser.KindInvalidModel},
		{name: "model rejected", status: 400, message: "model xyz is invalid", modelRejected: true, want: parser.KindInvalidModel},
		{name: "500", status: 500, message: "internal", want: parser.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.ClassifyStatus("gemini", tt.status, tt.message, tt.modelRejected, 5*time.Second)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, "gemini", err.Provider)
			if tt.want == parser.KindRateLimited {
				assert.Equal(t, 5*time.Second, err.RetryAfter)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := parser.NewProviderError("groq", parser.KindNetwork, "request failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, parser.KindNetwork, parser.KindOf(err))
	assert.Contains(t, err.Error(), "groq network")

	var pe *parser.ProviderError
	require.True(t, errors.As(error(err), &pe))
	assert.Empty(t, parser.KindOf(errors.New("plain")))
}
