// Package providers registers the built-in LLM providers with the parser
// registry and assembles the configured provider chain.
package providers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"invoicex/internal/config"
	"invoicex/internal/parser"
	"invoicex/internal/parser/claude"
	"invoicex/internal/parser/gemini"
	"invoicex/internal/parser/openai"
	"invoicex/internal/port"
)

func init() {
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.StructuredCompleter, error) {
		return openai.NewCompleter(cfg), nil
	})
	parser.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.StructuredCompleter, error) {
		return claude.NewCompleter(cfg), nil
	})
	parser.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.StructuredCompleter, error) {
		return gemini.NewCompleter(cfg), nil
	})
}

// New builds the completer described by cfg. With only a primary provider the
// completer is returned as-is; configured secondary/tertiary providers are chained
// behind it in a FallbackCompleter.
func New(cfg *config.ParserConfig, log logrus.FieldLogger) (port.StructuredCompleter, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := parser.NewCompleter(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("creating primary provider: %w", err)
	}

	completers := []port.StructuredCompleter{primary}
	names := []string{primaryCfg.Provider}

	for _, extra := range []*config.ParserProviderConfig{cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
		if extra == nil {
			continue
		}
		c, err := parser.NewCompleter(extra)
		if err != nil {
			return nil, fmt.Errorf("creating %s provider: %w", extra.Provider, err)
		}
		completers = append(completers, c)
		names = append(names, extra.Provider)
	}

	if len(completers) == 1 {
		return primary, nil
	}
	log.WithField("chain", names).Info("parser.fallback.enabled")
	return parser.NewFallbackCompleter(completers, names, log), nil
}
