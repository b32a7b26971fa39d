package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoicepipe/internal/config"
	"invoicepipe/internal/parser"
)

const (
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
	retryInfo    = "type.googleapis.com/google.rpc.RetryInfo"
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (parser.Completer, error) {
		return NewClient(cfg), nil
	})
}

// Client implements parser.Completer using Google's Gemini generateContent API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Gemini completion client. cfg.BaseURL overrides the API base.
func NewClient(cfg *config.ParserProviderConfig) *Client {
	return newClient(cfg, cfg.BaseURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API base (for testing).
// Requests go to {baseURL}/{model}:generateContent.
func NewClientWithEndpoint(cfg *config.ParserProviderConfig, baseURL string) *Client {
	return newClient(cfg, baseURL)
}

func newClient(cfg *config.ParserProviderConfig, baseURL string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return providerName }

// Complete sends the prompt as a single user turn and returns the candidate text.
func (c *Client) Complete(ctx context.Context, in parser.CompletionRequest) (string, error) {
	model := in.Model
	if model == "" {
		model = defaultModel
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": in.Prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     in.Temperature,
			"maxOutputTokens": in.MaxTokens,
			"candidateCount":  1,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", parser.NetworkError(providerName, fmt.Errorf("calling gemini API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", parser.NetworkError(providerName, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyError(resp, respBody)
	}

	return parseResponse(respBody)
}

// apiError models the Gemini error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

func classifyError(resp *http.Response, body []byte) error {
	var ae apiError
	message := string(body)
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		message = ae.Error.Status + ": " + ae.Error.Message
	}

	retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
	for _, d := range ae.Error.Details {
		if d.Type == retryInfo && d.RetryDelay != "" {
			if delay, err := time.ParseDuration(d.RetryDelay); err == nil {
				retryAfter = delay
			}
		}
	}

	lower := strings.ToLower(ae.Error.Message)
	modelRejected := resp.StatusCode == http.StatusBadRequest &&
		strings.Contains(lower, "model") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "invalid") || strings.Contains(lower, "not supported"))

	return parser.ClassifyStatus(providerName, resp.StatusCode, message, modelRejected, retryAfter)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "unmarshaling response", err)
	}

	if len(resp.Candidates) == 0 {
		msg := "no candidates"
		if resp.PromptFeedback.BlockReason != "" {
			msg += " (blocked: " + resp.PromptFeedback.BlockReason + ")"
		}
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, msg, nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "empty response text", nil)
	}
	return text, nil
}
