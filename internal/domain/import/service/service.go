// Package service provides the payment report orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/parser"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
	"github.com/FACorreiaa/payment-reports/pkg/storage"
)

const tracerName = "github.com/FACorreiaa/payment-reports/internal/domain/import/service"

// Failure reasons used in logs and metrics.
const (
	ReasonUnknownBank       = "unknown_bank"
	ReasonUnsupportedFormat = "unsupported_format"
	ReasonCorruptFile       = "corrupt_file"
	ReasonCanceled          = "canceled"
	ReasonIO                = "io"
)

// PaymentSink stores extracted records and reports how many were new.
type PaymentSink interface {
	SavePayments(ctx context.Context, bankID string, records []parser.PaymentRecord) (int, error)
}

// Report is the outcome of parsing one file.
type Report struct {
	Path     string
	BankID   string
	Format   sheet.Format
	Result   *parser.Result
	Duration time.Duration
}

// Upload is a report received from outside, e.g. an e-mail attachment.
type Upload struct {
	Name   string
	BankID string
	Body   io.Reader
}

// IngestResult contains the result of an ingest operation
type IngestResult struct {
	ID          uuid.UUID
	BankID      string
	FileName    string
	Records     []parser.PaymentRecord
	RowsParsed  int
	RowsSkipped int
	RowsAdded   int // new rows stored by the sink, 0 without a sink
	Report      *Report
}

// BatchItem is the outcome of one file of a ParseBatch call.
type BatchItem struct {
	Path   string
	Report *Report
	Err    error
}

// PaymentService orchestrates bank lookup, decoding and extraction
type PaymentService struct {
	registry *bank.Registry
	storage  storage.Storage // Optional: required by Ingest only
	sink     PaymentSink     // Optional: nil keeps records in memory
	metrics  *Metrics        // Optional
	logger   *slog.Logger
	tracer   trace.Tracer
	workers  int
}

// NewPaymentService creates a new payment service
func NewPaymentService(registry *bank.Registry, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PaymentService{
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		workers:  runtime.GOMAXPROCS(0),
	}
}

// WithStorage enables Ingest by providing a staging area
func (s *PaymentService) WithStorage(st storage.Storage) *PaymentService {
	s.storage = st
	return s
}

// WithSink forwards ingested records to sink
func (s *PaymentService) WithSink(sink PaymentSink) *PaymentService {
	s.sink = sink
	return s
}

// WithMetrics records parse outcomes on m
func (s *PaymentService) WithMetrics(m *Metrics) *PaymentService {
	s.metrics = m
	return s
}

// WithWorkers bounds the number of files ParseBatch decodes at once
func (s *PaymentService) WithWorkers(n int) *PaymentService {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Banks returns the registered bank profiles
func (s *PaymentService) Banks() []*bank.Profile {
	return s.registry.Profiles()
}

// ParsePayments extracts the payment records of the report at path using the
// layout registered for bankID. The bank is resolved before the file is touched.
func (s *PaymentService) ParsePayments(ctx context.Context, path, bankID string) ([]parser.PaymentRecord, error) {
	report, err := s.Parse(ctx, path, bankID)
	if err != nil {
		return nil, err
	}
	return report.Result.Records, nil
}

// Parse is ParsePayments with the full extraction diagnostics.
func (s *PaymentService) Parse(ctx context.Context, path, bankID string) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.Parse", trace.WithAttributes(
		attribute.String("bank.id", bankID),
		attribute.String("file.path", path),
	))
	defer span.End()

	report, err := s.parse(ctx, path, bankID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stats := report.Result.Stats()
	span.SetAttributes(
		attribute.String("file.format", string(report.Format)),
		attribute.Int("rows.parsed", stats.ParsedRows),
		attribute.Int("rows.skipped", stats.SkippedRows),
	)
	return report, nil
}

func (s *PaymentService) parse(ctx context.Context, path, bankID string) (*Report, error) {
	profile, err := s.registry.Lookup(bankID)
	if err != nil {
		s.metrics.observeFailed("unknown", ReasonUnknownBank)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.metrics.observeFailed(bankID, ReasonCanceled)
		return nil, err
	}

	start := time.Now()
	grid, err := sheet.Open(path, sheet.WithLogger(s.logger))
	if err != nil {
		reason := FailureReason(err)
		s.metrics.observeFailed(bankID, reason)
		s.logger.Warn("failed to open payment report",
			slog.String("bank", bankID),
			slog.String("path", path),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		return nil, err
	}

	res := parser.Parse(grid, profile)
	elapsed := time.Since(start)
	s.metrics.observeParsed(bankID, grid.Format, res, elapsed)

	switch {
	case !res.HeaderFound:
		s.logger.Warn("payment report header not found",
			slog.String("bank", bankID),
			slog.String("path", path),
			slog.Int("rows", grid.Len()),
		)
	case !res.ColumnsMapped:
		s.logger.Warn("payment report is missing required columns",
			slog.String("bank", bankID),
			slog.String("path", path),
			slog.Any("missing", res.MissingColumns),
			slog.String("fingerprint", res.Fingerprint),
		)
	}

	stats := res.Stats()
	s.logger.Debug("parsed payment report",
		slog.String("bank", bankID),
		slog.String("path", path),
		slog.String("format", string(grid.Format)),
		slog.Int("rows_total", stats.TotalRows),
		slog.Int("rows_parsed", stats.ParsedRows),
		slog.Int("rows_skipped", stats.SkippedRows),
		slog.Duration("elapsed", elapsed),
	)

	return &Report{
		Path:     path,
		BankID:   bankID,
		Format:   grid.Format,
		Result:   res,
		Duration: elapsed,
	}, nil
}

// ParseBatch parses several reports of the same bank concurrently. Items keep
// the order of paths; a failing file does not stop the others.
func (s *PaymentService) ParseBatch(ctx context.Context, bankID string, paths []string) ([]BatchItem, error) {
	if _, err := s.registry.Lookup(bankID); err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		g.Go(func() error {
			report, err := s.Parse(gctx, path, bankID)
			items[i] = BatchItem{Path: path, Report: report, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, ctx.Err()
}

// Ingest stages an upload, parses it and hands the records to the sink.
// The staged copy is always removed, whatever the outcome.
func (s *PaymentService) Ingest(ctx context.Context, up Upload) (*IngestResult, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.Ingest", trace.WithAttributes(
		attribute.String("bank.id", up.BankID),
		attribute.String("file.name", up.Name),
	))
	defer span.End()

	result, err := s.ingest(ctx, up)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows.added", result.RowsAdded))
	return result, nil
}

func (s *PaymentService) ingest(ctx context.Context, up Upload) (*IngestResult, error) {
	if s.storage == nil {
		return nil, errors.New("ingest requires a staging storage")
	}
	if _, err := s.registry.Lookup(up.BankID); err != nil {
		s.metrics.observeFailed("unknown", ReasonUnknownBank)
		return nil, err
	}

	info, err := s.storage.Stage(ctx, up.Name, up.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		if err := s.storage.Remove(context.WithoutCancel(ctx), info); err != nil {
			s.logger.Warn("failed to remove staged upload",
				slog.String("path", info.Path),
				slog.Any("error", err),
			)
		}
	}()

	report, err := s.Parse(ctx, info.Path, up.BankID)
	if err != nil {
		return nil, err
	}

	stats := report.Result.Stats()
	result := &IngestResult{
		ID:          info.ID,
		BankID:      up.BankID,
		FileName:    up.Name,
		Records:     report.Result.Records,
		RowsParsed:  stats.ParsedRows,
		RowsSkipped: stats.SkippedRows,
		Report:      report,
	}

	if s.sink != nil && len(result.Records) > 0 {
		added, err := s.sink.SavePayments(ctx, up.BankID, result.Records)
		if err != nil {
			return nil, fmt.Errorf("failed to store payments: %w", err)
		}
		result.RowsAdded = added
	}

	s.logger.Info("ingested payment report",
		slog.String("id", result.ID.String()),
		slog.String("bank", up.BankID),
		slog.String("file", up.Name),
		slog.Int("rows_parsed", result.RowsParsed),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Int("rows_added", result.RowsAdded),
	)
	return result, nil
}

// FailureReason classifies an error returned by Parse for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, bank.ErrUnknownBank):
		return ReasonUnknownBank
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return ReasonUnsupportedFormat
	case errors.Is(err, sheet.ErrCorruptFile):
		return ReasonCorruptFile
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonIO
	}
}
