package groq

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
	providerName = "groq"
	apiURL       = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (parser.Completer, error) {
		return NewClient(cfg), nil
	})
}

// Client implements parser.Completer using Groq's OpenAI-compatible Chat Completions API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates a Groq completion client. cfg.BaseURL overrides the endpoint.
func NewClient(cfg *config.ParserProviderConfig) *Client {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ParserProviderConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return providerName }

// Complete sends the prompt as a single user message and returns the reply.
func (c *Client) Complete(ctx context.Context, in parser.CompletionRequest) (string, error) {
	model := in.Model
	if model == "" {
		model = defaultModel
	}

	reqBody := map[string]interface{}{
		"model":       model,
		"temperature": in.Temperature,
		"max_tokens":  in.MaxTokens,
		"n":           1,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": "You extract structured invoice data and reply with raw JSON only.",
			},
			{
				"role":    "user",
				"content": in.Prompt,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", parser.NetworkError(providerName, fmt.Errorf("calling groq API: %w", err))
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

// apiError models the OpenAI-style error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func classifyError(resp *http.Response, body []byte) error {
	var ae apiError
	message := string(body)
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		message = ae.Error.Message
	}

	retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
	if retryAfter == 0 {
		retryAfter = parser.ParseTryAgainHint(message)
	}

	lower := strings.ToLower(message)
	modelRejected := ae.Error.Code == "model_not_found" || ae.Error.Code == "model_decommissioned" ||
		(strings.Contains(lower, "model") && (strings.Contains(lower, "does not exist") || strings.Contains(lower, "decommissioned")))

	return parser.ClassifyStatus(providerName, resp.StatusCode, message, modelRejected, retryAfter)
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "unmarshaling response", err)
	}

	if len(resp.Choices) == 0 {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "no choices", nil)
	}

	if resp.Choices[0].FinishReason == "length" {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "output truncated (finish_reason: length)", nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", parser.NewProviderError(providerName, parser.KindInvalidResponse, "empty response text", nil)
	}
	return text, nil
}
