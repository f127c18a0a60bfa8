package parser

import (
	"fmt"
	"sort"

	"invoicex/internal/config"
	"invoicex/internal/port"
)

// ProviderFactory creates a StructuredCompleter from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.StructuredCompleter, error)

// registry of provider factories, populated by the providers package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders returns the registered provider names in sorted order.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCompleter creates a StructuredCompleter from a provider config using the registered factory.
func NewCompleter(cfg *config.ParserProviderConfig) (port.StructuredCompleter, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
