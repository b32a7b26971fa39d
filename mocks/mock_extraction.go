package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicepipe/internal/parser"
	"invoicepipe/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, src port.TextSource) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

// MockPDFInspector is a mock implementation of port.PDFInspector.
type MockPDFInspector struct {
	mock.Mock
}

func (m *MockPDFInspector) Inspect(data []byte) (*port.PDFInfo, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PDFInfo), args.Error(1)
}

// MockStructuredExtractor is a mock implementation of port.StructuredExtractor.
type MockStructuredExtractor struct {
	mock.Mock
	Name string
}

func (m *MockStructuredExtractor) Provider() string {
	return m.Name
}

func (m *MockStructuredExtractor) Extract(ctx context.Context, text string) (*port.Candidate, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.Candidate), args.Error(1)
}

// MockOrchestrator is a mock implementation of port.ExtractionOrchestrator.
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Run(ctx context.Context, text, preferredProvider string) port.ExtractionResult {
	args := m.Called(ctx, text, preferredProvider)
	return args.Get(0).(port.ExtractionResult)
}

func (m *MockOrchestrator) Providers() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockCompleter is a mock implementation of parser.Completer.
type MockCompleter struct {
	mock.Mock
	ProviderName string
}

func (m *MockCompleter) Name() string {
	return m.ProviderName
}

func (m *MockCompleter) Complete(ctx context.Context, req parser.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
