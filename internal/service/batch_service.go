package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"invoicex/internal/csvexport"
	"invoicex/internal/domain"
	"invoicex/internal/port"
	"invoicex/internal/xlsxexport"
)

// FileFailure records a file the batch could not turn into rows.
type FileFailure struct {
	File string
	Err  error
}

// BatchReport summarizes one directory run.
type BatchReport struct {
	Dir        string
	FilesFound int
	Succeeded  int
	Skipped    int
	Failures   []FileFailure
	Rows       []domain.ReportRow
}

// Failed returns the number of files whose extraction failed.
func (r *BatchReport) Failed() int {
	return len(r.Failures)
}

// ReportOutput lists where a written report ended up.
type ReportOutput struct {
	CSVPath        string
	XLSXPath       string
	UploadLocation string
}

// BatchOptions configures the optional report outputs.
type BatchOptions struct {
	XLSXPath     string
	UploadBucket string
	UploadPrefix string
}

// BatchService defines the batch processing contract.
type BatchService interface {
	ProcessDirectory(ctx context.Context, dir string) (*BatchReport, error)
	WriteReport(ctx context.Context, report *BatchReport, csvPath string) (*ReportOutput, error)
}

type batchService struct {
	extractor port.InvoiceExtractor
	storage   port.ObjectStorage // optional
	opts      BatchOptions
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewBatchService creates a BatchService. storage may be nil when reports are not uploaded.
func NewBatchService(extractor port.InvoiceExtractor, storage port.ObjectStorage, opts BatchOptions, log logrus.FieldLogger) BatchService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &batchService{
		extractor: extractor,
		storage:   storage,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// ProcessDirectory extracts every invoice text file in dir, one at a time in name
// order. A failing file is recorded and the run continues.
func (s *batchService) ProcessDirectory(ctx context.Context, dir string) (*BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	report := &BatchReport{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || !domain.IsInvoiceTextFile(e.Name()) {
			continue
		}
		report.FilesFound++

		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := e.Name()
		log := s.log.WithField("file", name)

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).Error("batchService.ProcessDirectory: read failed")
			report.Failures = append(report.Failures, FileFailure{File: name, Err: err})
			continue
		}
		if !utf8.Valid(data) {
			log.Error("batchService.ProcessDirectory: file is not valid UTF-8")
			report.Failures = append(report.Failures, FileFailure{File: name, Err: domain.ErrInvalidEncoding})
			continue
		}

		text := string(data)
		if strings.TrimSpace(text) == "" {
			log.Warn("batchService.ProcessDirectory: empty file skipped")
			report.Skipped++
			continue
		}

		log.Info("batchService.ProcessDirectory: processing")
		inv, err := s.extractor.Extract(ctx, text)
		if err != nil {
			log.WithError(err).Error("batchService.ProcessDirectory: extraction failed")
			report.Failures = append(report.Failures, FileFailure{File: name, Err: err})
			continue
		}

		rows := inv.ReportRows(name)
		report.Rows = append(report.Rows, rows...)
		report.Succeeded++
		log.WithField("rows", len(rows)).Info("batchService.ProcessDirectory: ok")
	}

	return report, nil
}

// WriteReport writes the CSV report to csvPath and the optional XLSX copy and
// upload. With no rows nothing is written and ErrNothingGenerated is returned.
func (s *batchService) WriteReport(ctx context.Context, report *BatchReport, csvPath string) (*ReportOutput, error) {
	if report == nil || len(report.Rows) == 0 {
		s.log.Warn("batchService.WriteReport: nothing generated")
		return nil, domain.ErrNothingGenerated
	}

	if err := csvexport.WriteFile(csvPath, report.Rows); err != nil {
		return nil, fmt.Errorf("writing csv report: %w", err)
	}
	out := &ReportOutput{CSVPath: csvPath}
	s.log.WithFields(logrus.Fields{"path": csvPath, "rows": len(report.Rows)}).Info("batchService.WriteReport: csv written")

	if s.opts.XLSXPath != "" {
		if err := xlsxexport.WriteFile(s.opts.XLSXPath, report.Rows); err != nil {
			return out, fmt.Errorf("writing xlsx report: %w", err)
		}
		out.XLSXPath = s.opts.XLSXPath
		s.log.WithField("path", s.opts.XLSXPath).Info("batchService.WriteReport: xlsx written")
	}

	if s.storage != nil && s.opts.UploadBucket != "" {
		location, err := s.upload(ctx, csvPath)
		if err != nil {
			return out, err
		}
		out.UploadLocation = location
	}

	return out, nil
}

func (s *batchService) upload(ctx context.Context, csvPath string) (string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return "", fmt.Errorf("opening csv report: %w", err)
	}
	defer func() { _ = f.Close() }()

	base := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	key := s.opts.UploadPrefix + csvexport.BuildFilename(base, s.now(), ".csv")

	result, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.opts.UploadBucket,
		Key:         key,
		Body:        f,
		ContentType: "text/csv; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("uploading csv report: %w", err)
	}
	s.log.WithFields(logrus.Fields{"bucket": s.opts.UploadBucket, "key": key}).Info("batchService.WriteReport: report uploaded")
	return result.Location, nil
}
