package port

import (
	"context"

	"invoicepipe/internal/domain"
)

// TextSource is raw PDF bytes or a URL they can be fetched from.
// Data takes precedence when both are set.
type TextSource struct {
	Data []byte
	URL  string
}

// TextExtractor turns a PDF into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, src TextSource) (string, error)
}

// PDFInfo describes the structure of an uploaded PDF.
type PDFInfo struct {
	PageCount int
}

// PDFInspector reads structural metadata from PDF bytes.
type PDFInspector interface {
	Inspect(data []byte) (*PDFInfo, error)
}

// Candidate is a sanitised structured payload and the model that produced it.
type Candidate struct {
	Data  domain.ExtractedData
	Model string
}

// StructuredExtractor turns invoice text into a candidate using one provider.
type StructuredExtractor interface {
	Provider() string
	Extract(ctx context.Context, text string) (*Candidate, error)
}

// ExtractionResult is the outcome of an orchestrated extraction.
// Provider is empty and Mock is true when no provider produced the data.
type ExtractionResult struct {
	Data     domain.ExtractedData
	Provider string
	Model    string
	Mock     bool
	// Failures holds one message per provider attempt that did not succeed.
	Failures []string
}

// ExtractionOrchestrator runs structured extraction with cross-provider fallback.
// Run never fails; it degrades to a placeholder candidate.
type ExtractionOrchestrator interface {
	Run(ctx context.Context, text, preferredProvider string) ExtractionResult
	Providers() []string
}
