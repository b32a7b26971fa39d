package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicepipe/internal/config"
	"invoicepipe/internal/parser"
	"invoicepipe/internal/parser/gemini"
)

func testCfg() *config.ParserProviderConfig {
	return &config.ParserProviderConfig{
		Provider:      "gemini",
		APIKey:        "test-gemini-key",
		DefaultModel:  "gemini-2.0-flash",
		FallbackModel: "gemini-1.5-flash",
		TimeoutSecs:   5,
	}
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func request(model string) parser.CompletionRequest {
	return parser.CompletionRequest{Model: model, Prompt: "extract this", Temperature: parser.Temperature, MaxTokens: parser.MaxOutputTokens}
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Len(t, parts, 1)
		assert.Equal(t, "extract this", parts[0].(map[string]interface{})["text"])

		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, 0.1, genConfig["temperature"])
		assert.Equal(t, float64(2048), genConfig["maxOutputTokens"])
		assert.Equal(t, float64(1), genConfig["candidateCount"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successResponse(`{"vendor":{"name":"Acme"}}`))
	}))
	defer server.Close()

	c := gemini.NewClientWithEndpoint(testCfg(), server.URL)
	text, err := c.Complete(context.Background(), request("gemini-2.0-flash"))

	require.NoError(t, err)
	assert.Equal(t, `{"vendor":{"name":"Acme"}}`, text)
	assert.Equal(t, "gemini", c.Name())
}

func TestClient_Complete_RateLimitedWithRetryInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded","details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"13s"}]}}`))
	}))
	defer server.Close()

	_, err := gemini.NewClientWithEndpoint(testCfg(), server.URL).Complete(context.Background(), request("gemini-2.0-flash"))

	var pe *parser.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, parser.KindRateLimited, pe.Kind)
	assert.Equal(t, 13*time.Second, pe.RetryAfter)
}

func TestClient_Complete_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   parser.ErrorKind
	}{
		{name: "auth", status: 403, body: `{"error":{"code":403,"status":"PERMISSION_DENIED","message":"API key not valid"}}`, want: parser.KindAuth},
		{name: "unknown model", status: 404, body: `{"error":{"code":404,"status":"NOT_FOUND","message":"models/gemini-9 is not found"}}`, want: parser.KindInvalidModel},
		{name: "invalid model argument", status: 400, body: `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"Model name is invalid"}}`, want: parser.KindInvalidModel},
		{name: "server error", status: 503, body: `{"error":{"code":503,"status":"UNAVAILABLE","message":"overloaded"}}`, want: parser.KindUpstream},
		{name: "no candidates", status: 200, body: `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`, want: parser.KindInvalidResponse},
		{name: "garbage body", status: 200, body: `<html>`, want: parser.KindInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := gemini.NewClientWithEndpoint(testCfg(), server.URL).Complete(context.Background(), request("gemini-2.0-flash"))
			assert.Equal(t, tt.want, parser.KindOf(err))
		})
	}
}

func TestClient_Complete_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := gemini.NewClientWithEndpoint(testCfg(), url).Complete(context.Background(), request("gemini-2.0-flash"))
	assert.Equal(t, parser.KindNetwork, parser.KindOf(err))
}

func TestExtractor_WithGemini_FallbackModel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/gemini-2.0-flash:generateContent" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"model not found"}}`))
			return
		}
		assert.Equal(t, "/gemini-1.5-flash:generateContent", r.URL.Path)
		_ = json.NewEncoder(w).Encode(successResponse("```json\n" +
			`{"vendor":{"name":"Acme"},"invoice":{"number":"A-1","date":"2024-05-01","lineItems":[{"description":"Bolt","unitPrice":0.5,"quantity":100,"total":50}]}}` +
			"\n```"))
	}))
	defer server.Close()

	cfg := testCfg()
	e := parser.NewExtractor(gemini.NewClientWithEndpoint(cfg, server.URL), cfg)
	cand, err := e.Extract(context.Background(), "ACME invoice A-1")

	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", cand.Model)
	assert.Equal(t, "A-1", cand.Data.Invoice.Number)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRegisteredFactory(t *testing.T) {
	c, err := parser.NewCompleter(testCfg())
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Name())

	_, err = parser.NewCompleter(&config.ParserProviderConfig{Provider: "claude"})
	assert.Error(t, err)
}
