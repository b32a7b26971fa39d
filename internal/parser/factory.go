package parser

import (
	"fmt"

	"invoicepipe/internal/config"
)

// ProviderFactory creates a Completer from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (Completer, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a Completer from a provider config using the registered factory.
func NewCompleter(cfg *config.ParserProviderConfig) (Completer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewExtractorFromConfig builds an Extractor for a configured provider block.
func NewExtractorFromConfig(cfg *config.ParserProviderConfig, opts ...ExtractorOption) (*Extractor, error) {
	completer, err := NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	return NewExtractor(completer, cfg, opts...), nil
}
