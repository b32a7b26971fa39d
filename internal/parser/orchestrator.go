package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/port"
)

// Mock candidate values. domain.IsMockVendor matches MockVendorName exactly.
const (
	MockVendorName    = domain.MockVendorName
	MockInvoiceNumber = "MOCK-INVOICE"
	minCircuitBackoff = time.Second
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Orchestrator runs structured extraction with cross-provider fallback and a
// deterministic placeholder. It implements port.ExtractionOrchestrator.
type Orchestrator struct {
	extractors []port.StructuredExtractor
	circuits   []*circuitState
	now        func() time.Time
}

var _ port.ExtractionOrchestrator = (*Orchestrator)(nil)

// NewOrchestrator creates an Orchestrator. The order of extractors is the
// fallback order used when the preferred provider fails.
func NewOrchestrator(extractors []port.StructuredExtractor, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &Orchestrator{extractors: extractors, circuits: circuits, now: now}
}

// Providers returns the configured provider names in fallback order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.extractors))
	for i, e := range o.extractors {
		names[i] = e.Provider()
	}
	return names
}

// Run tries preferred first, then the remaining providers. It never fails:
// when nothing produces a valid candidate it returns MockCandidate.
func (o *Orchestrator) Run(ctx context.Context, text, preferred string) port.ExtractionResult {
	var failures []string
	if strings.TrimSpace(text) == "" {
		log.Printf("parser.Orchestrator: empty text, returning placeholder")
		return o.mockResult(append(failures, "no text to extract from"))
	}

	for _, i := range o.order(preferred) {
		if ctx.Err() != nil {
			failures = append(failures, fmt.Sprintf("context done: %v", ctx.Err()))
			break
		}
		name := o.extractors[i].Provider()
		now := o.now()
		if resetAt, open := o.circuits[i].isOpenWithReset(now); open {
			log.Printf("parser.Orchestrator: skipping %s (circuit open until %s)", name, resetAt.Format(time.RFC3339))
			failures = append(failures, fmt.Sprintf("%s: rate limited until %s", name, resetAt.Format(time.RFC3339)))
			continue
		}

		cand, err := o.attempt(ctx, i, text)
		if err == nil {
			err = cand.Data.Validate()
		}
		if err == nil {
			return port.ExtractionResult{Data: cand.Data, Provider: name, Model: cand.Model, Failures: failures}
		}

		log.Printf("parser.Orchestrator: %s failed: %v", name, err)
		failures = append(failures, fmt.Sprintf("%s: %v", name, err))

		var pe *ProviderError
		if errors.As(err, &pe) && pe.Kind == KindRateLimited {
			backoff := pe.RetryAfter
			if backoff < minCircuitBackoff {
				backoff = minCircuitBackoff
			}
			o.circuits[i].open(now.Add(backoff))
		}
	}

	log.Printf("parser.Orchestrator: all providers failed, returning placeholder")
	return o.mockResult(failures)
}

// attempt isolates a single provider call so a panic is reported as a failure.
func (o *Orchestrator) attempt(ctx context.Context, i int, text string) (cand *port.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cand, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	cand, err = o.extractors[i].Extract(ctx, text)
	if err == nil && cand == nil {
		err = errors.New("provider returned no candidate")
	}
	return cand, err
}

// order returns extractor indexes with preferred first.
func (o *Orchestrator) order(preferred string) []int {
	idx := make([]int, 0, len(o.extractors))
	for i, e := range o.extractors {
		if e.Provider() == preferred {
			idx = append(idx, i)
		}
	}
	for i, e := range o.extractors {
		if e.Provider() != preferred {
			idx = append(idx, i)
		}
	}
	return idx
}

func (o *Orchestrator) mockResult(failures []string) port.ExtractionResult {
	return port.ExtractionResult{
		Data:     MockCandidate(o.now()),
		Model:    domain.ExtractionModelMock,
		Mock:     true,
		Failures: failures,
	}
}

// MockCandidate returns the fixed placeholder used when no provider succeeds.
// Only the invoice date depends on now.
func MockCandidate(now time.Time) domain.ExtractedData {
	subtotal, tax, total := 0.0, 0.0, 0.0
	return domain.ExtractedData{
		Vendor: domain.Vendor{Name: MockVendorName},
		Invoice: domain.InvoiceData{
			Number:     MockInvoiceNumber,
			Date:       now.Format(isoDate),
			Currency:   DefaultCurrency,
			Subtotal:   &subtotal,
			TaxPercent: &tax,
			Total:      &total,
			LineItems:  []domain.LineItem{PlaceholderItem()},
		},
	}
}
