// Package textextract turns PDF bytes into plain text using an ordered list of
// independent strategies. The first strategy producing non-blank text wins.
package textextract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"invoicepipe/internal/config"
	"invoicepipe/internal/port"
)

// Document is the input handed to each strategy.
type Document struct {
	Data []byte
	URL  string
}

// Strategy is one way of recovering text from a PDF.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc *Document) (string, error)
}

// Extractor runs strategies in order. It keeps no state between calls.
type Extractor struct {
	fetcher    *Fetcher
	strategies []Strategy
}

var _ port.TextExtractor = (*Extractor)(nil)

// New creates an Extractor with an explicit strategy order.
func New(fetcher *Fetcher, strategies ...Strategy) *Extractor {
	if fetcher == nil {
		fetcher = NewFetcher(0, 0)
	}
	return &Extractor{fetcher: fetcher, strategies: strategies}
}

// NewDefault builds the standard order: layout walk, single-call plain text,
// remote service (only when configured), heuristic byte scan.
func NewDefault(cfg config.ExtractConfig) *Extractor {
	first, second := Strategy(LayoutStrategy{}), Strategy(PlainTextStrategy{})
	if cfg.PreferSingleCall {
		first, second = second, first
	}
	strategies := []Strategy{first, second}
	if cfg.RemoteURL != "" {
		strategies = append(strategies, NewRemoteStrategy(cfg.RemoteURL, secs(cfg.RemoteTimeoutSecs), nil))
	}
	strategies = append(strategies, HeuristicStrategy{})

	return New(NewFetcher(secs(cfg.FetchTimeoutSecs), cfg.MaxFetchMB*1024*1024), strategies...)
}

// Strategies returns the configured strategy names in order.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// ExtractText returns the trimmed text of the PDF. A URL-only source is fetched first.
func (e *Extractor) ExtractText(ctx context.Context, src port.TextSource) (string, error) {
	doc := &Document{Data: src.Data, URL: src.URL}
	if len(doc.Data) == 0 && doc.URL != "" {
		data, err := e.fetcher.Fetch(ctx, doc.URL)
		if err != nil {
			return "", err
		}
		doc.Data = data
	}

	notFound := &NoTextFoundError{}
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := runStrategy(ctx, s, doc)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				log.Printf("textextract.ExtractText: %s strategy produced %d chars", s.Name(), len(text))
				return text, nil
			}
			err = errEmptyText
		}
		log.Printf("textextract.ExtractText: %s strategy failed: %v", s.Name(), err)
		notFound.Attempts = append(notFound.Attempts, StrategyError{Strategy: s.Name(), Err: err})
	}
	return "", notFound
}

// runStrategy isolates a strategy so a panicking PDF library cannot take the caller down.
func runStrategy(ctx context.Context, s Strategy, doc *Document) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Extract(ctx, doc)
}
