package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"invoicex/internal/config"
	"invoicex/internal/handler"
	"invoicex/internal/logger"
	"invoicex/internal/parser/providers"
	"invoicex/internal/router"
	"invoicex/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logg := logger.New(cfg.Log)

	// Initialize provider chain
	completer, err := providers.New(&cfg.Parser, logg)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	// Initialize services
	extractionSvc := service.NewExtractionService(completer, cfg.Parser.Provider, logg)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(extractionSvc, logg)
	healthH := handler.NewHealthHandler()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router
	r := router.Setup(cfg.CORS, logg, invoiceH, healthH)

	logg.WithField("port", cfg.Server.Port).Info("server starting")
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
