package main

import (
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"invoicex/internal/config"
	"invoicex/internal/function"
	"invoicex/internal/logger"
	"invoicex/internal/parser/providers"
	"invoicex/internal/service"
)

func main() {
	h, err := setup()
	if err != nil {
		log.Fatal(err)
	}
	lambda.Start(h.Handle)
}

// setup builds the handler once per cold start; warm invocations reuse it.
func setup() (*function.Handler, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg := logger.New(cfg.Log)

	completer, err := providers.New(&cfg.Parser, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize parser: %w", err)
	}

	extractionSvc := service.NewExtractionService(completer, cfg.Parser.Provider, logg)
	return function.NewHandler(extractionSvc, logg), nil
}
