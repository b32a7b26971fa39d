package parser

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"invoicepipe/internal/config"
	"invoicepipe/internal/port"
)

const (
	defaultMaxAttempts   = 3
	defaultRetryDelay    = 2 * time.Second
	defaultMaxInputChars = 12000
)

// Extractor turns invoice text into a sanitised candidate using one provider.
// It implements port.StructuredExtractor.
type Extractor struct {
	completer     Completer
	model         string
	fallbackModel string
	maxAttempts   int
	maxInputChars int
	retryDelay    time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
	now           func() time.Time
}

var _ port.StructuredExtractor = (*Extractor)(nil)

// ExtractorOption customises an Extractor.
type ExtractorOption func(*Extractor)

// WithSleep replaces the retry delay function.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ExtractorOption {
	return func(e *Extractor) { e.sleep = sleep }
}

// WithClock replaces the clock used for sanitising defaults.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an Extractor for the provider block cfg using completer.
func NewExtractor(completer Completer, cfg *config.ParserProviderConfig, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		completer:     completer,
		model:         cfg.DefaultModel,
		fallbackModel: cfg.FallbackModel,
		maxAttempts:   cfg.MaxAttempts,
		maxInputChars: cfg.MaxInputChars,
		retryDelay:    defaultRetryDelay,
		sleep:         sleepContext,
		now:           time.Now,
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = defaultMaxAttempts
	}
	if e.maxInputChars <= 0 {
		e.maxInputChars = defaultMaxInputChars
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Provider returns the provider name.
func (e *Extractor) Provider() string {
	return e.completer.Name()
}

// Extract prompts the provider with text and returns the sanitised candidate.
func (e *Extractor) Extract(ctx context.Context, text string) (*port.Candidate, error) {
	prompt := BuildInvoicePrompt(truncateRunes(text, e.maxInputChars))

	raw, model, err := e.completeWithModelFallback(ctx, prompt)
	if err != nil {
		return nil, err
	}

	body := StripCodeFences(raw)
	var decoded interface{}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, NewProviderError(e.Provider(), KindInvalidJSON, "response is not valid JSON: "+truncate(body, 200), err)
	}
	if err := ValidateCandidate(decoded); err != nil {
		return nil, NewProviderError(e.Provider(), KindValidation, "candidate failed validation", err)
	}

	data := Sanitize(decoded.(map[string]interface{}), e.now())
	return &port.Candidate{Data: data, Model: model}, nil
}

func (e *Extractor) completeWithModelFallback(ctx context.Context, prompt string) (string, string, error) {
	raw, err := e.completeWithRetry(ctx, e.model, prompt)
	if err == nil {
		return raw, e.model, nil
	}
	if KindOf(err) != KindInvalidModel || e.fallbackModel == "" || e.fallbackModel == e.model {
		return "", "", err
	}
	log.Printf("parser.Extractor: %s model %q rejected, falling back to %q: %v", e.Provider(), e.model, e.fallbackModel, err)
	raw, err = e.completeWithRetry(ctx, e.fallbackModel, prompt)
	if err != nil {
		return "", "", err
	}
	return raw, e.fallbackModel, nil
}

// completeWithRetry retries rate-limited calls up to maxAttempts in total.
// Other failures are returned immediately.
func (e *Extractor) completeWithRetry(ctx context.Context, model, prompt string) (string, error) {
	req := CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: Temperature,
		MaxTokens:   MaxOutputTokens,
	}
	for attempt := 1; ; attempt++ {
		raw, err := e.completer.Complete(ctx, req)
		if err == nil {
			return raw, nil
		}

		var pe *ProviderError
		if !errors.As(err, &pe) {
			if ctx.Err() != nil {
				return "", err
			}
			err = NewProviderError(e.Provider(), KindUpstream, "completion failed", err)
			errors.As(err, &pe)
		}
		if pe.Kind != KindRateLimited || attempt >= e.maxAttempts {
			return "", err
		}

		delay := pe.RetryAfter
		if delay <= 0 {
			delay = e.retryDelay
		}
		log.Printf("parser.Extractor: %s rate limited (attempt %d/%d), retrying in %s", e.Provider(), attempt, e.maxAttempts, delay)
		if err := e.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
