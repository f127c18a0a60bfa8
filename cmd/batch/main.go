package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"invoicex/internal/config"
	"invoicex/internal/domain"
	"invoicex/internal/logger"
	"invoicex/internal/parser/providers"
	"invoicex/internal/port"
	"invoicex/internal/service"
	s3storage "invoicex/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logg := logger.New(cfg.Log)

	completer, err := providers.New(&cfg.Parser, logg)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	extractionSvc := service.NewExtractionService(completer, cfg.Parser.Provider, logg)

	// Report upload is optional
	var storage port.ObjectStorage
	opts := service.BatchOptions{XLSXPath: cfg.Batch.XLSXOutput}
	if cfg.Batch.UploadReport && cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		opts.UploadBucket = cfg.S3.Bucket
		opts.UploadPrefix = cfg.S3.Prefix
	}

	batchSvc := service.NewBatchService(extractionSvc, storage, opts, logg)

	logg.WithField("dir", cfg.Batch.InputDir).Info("batch starting")
	report, err := batchSvc.ProcessDirectory(ctx, cfg.Batch.InputDir)
	if err != nil {
		return err
	}

	out, err := batchSvc.WriteReport(ctx, report, cfg.Batch.OutputFile)
	switch {
	case errors.Is(err, domain.ErrNothingGenerated):
		fmt.Printf("No records generated (%d files found, %d failed, %d empty).\n",
			report.FilesFound, report.Failed(), report.Skipped)
		return nil
	case err != nil:
		return err
	}

	fmt.Printf("Processed %d files: %d ok, %d failed, %d empty. %d rows written to %s\n",
		report.FilesFound, report.Succeeded, report.Failed(), report.Skipped, len(report.Rows), out.CSVPath)
	if out.XLSXPath != "" {
		fmt.Printf("Workbook written to %s\n", out.XLSXPath)
	}
	if out.UploadLocation != "" {
		fmt.Printf("Report uploaded to %s\n", out.UploadLocation)
	}
	return nil
}
