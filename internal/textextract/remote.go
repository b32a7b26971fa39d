package textextract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRemoteTimeout = 45 * time.Second
	minRemoteTextLen     = 10
)

type remoteRequest struct {
	URL string `json:"url"`
}

type remoteResponse struct {
	Success    bool     `json:"success"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Method     string   `json:"method,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// RemoteStrategy delegates extraction to an out-of-process service that
// downloads the PDF from the document URL itself.
type RemoteStrategy struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewRemoteStrategy creates a strategy posting to {baseURL}/extract.
func NewRemoteStrategy(baseURL string, timeout time.Duration, client *http.Client) *RemoteStrategy {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteStrategy{
		endpoint: strings.TrimRight(baseURL, "/") + "/extract",
		timeout:  timeout,
		client:   client,
	}
}

func (s *RemoteStrategy) Name() string { return "remote" }

func (s *RemoteStrategy) Extract(ctx context.Context, doc *Document) (string, error) {
	if doc.URL == "" {
		return "", errNoURL
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{URL: doc.URL})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading extraction service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out remoteResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decoding extraction service response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", errRemoteFail, out.Error)
		}
		return "", errRemoteFail
	}
	text := strings.TrimSpace(out.Text)
	if len(text) <= minRemoteTextLen {
		return "", errShortText
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
