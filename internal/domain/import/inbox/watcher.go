// Package inbox picks up payment reports dropped into a directory tree laid
// out as <inbox>/<bank-id>/<file> and ingests them.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/service"
)

// Subdirectories of a bank directory that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Ingester is implemented by service.PaymentService.
type Ingester interface {
	Ingest(ctx context.Context, up service.Upload) (*service.IngestResult, error)
}

// Summary counts the files handled by one sweep.
type Summary struct {
	Processed int
	Failed    int
	Records   int
	Added     int
}

// Watcher ingests every file found in the inbox.
type Watcher struct {
	dir      string
	ingester Ingester
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewWatcher creates a watcher over dir. timeout bounds each file, zero means none.
func NewWatcher(dir string, ingester Ingester, timeout time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		dir:      dir,
		ingester: ingester,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Sweep ingests the files currently in the inbox. Files that ingest cleanly are
// moved to processed/, the rest to failed/. Only filesystem errors on the inbox
// itself are returned.
func (w *Watcher) Sweep(ctx context.Context) (Summary, error) {
	var sum Summary

	banks, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sum, nil
		}
		return sum, fmt.Errorf("failed to read inbox: %w", err)
	}

	for _, b := range banks {
		if !b.IsDir() {
			continue
		}
		bankID := b.Name()
		bankDir := filepath.Join(w.dir, bankID)

		files, err := os.ReadDir(bankDir)
		if err != nil {
			return sum, fmt.Errorf("failed to read %s: %w", bankDir, err)
		}

		for _, f := range files {
			if !f.Type().IsRegular() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return sum, err
			}

			path := filepath.Join(bankDir, f.Name())
			result, err := w.ingestFile(ctx, bankID, path)

			dest := ProcessedDir
			if err != nil {
				dest = FailedDir
				sum.Failed++
				w.logger.Warn("inbox file failed",
					slog.String("bank", bankID),
					slog.String("file", f.Name()),
					slog.String("reason", service.FailureReason(err)),
					slog.Any("error", err),
				)
			} else {
				sum.Processed++
				sum.Records += result.RowsParsed
				sum.Added += result.RowsAdded
			}

			if err := w.move(bankDir, dest, f.Name()); err != nil {
				return sum, err
			}
		}
	}

	if sum.Processed+sum.Failed > 0 {
		w.logger.Info("inbox sweep completed",
			slog.Int("processed", sum.Processed),
			slog.Int("failed", sum.Failed),
			slog.Int("records", sum.Records),
			slog.Int("added", sum.Added),
		)
	}
	return sum, nil
}

func (w *Watcher) ingestFile(ctx context.Context, bankID, path string) (*service.IngestResult, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return w.ingester.Ingest(ctx, service.Upload{
		Name:   filepath.Base(path),
		BankID: bankID,
		Body:   f,
	})
}

// move files name into bankDir/sub, prefixed with a timestamp so that a report
// dropped twice does not overwrite the first copy.
func (w *Watcher) move(bankDir, sub, name string) error {
	target := filepath.Join(bankDir, sub)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	stamped := w.now().UTC().Format("20060102T150405") + "-" + name
	if err := os.Rename(filepath.Join(bankDir, name), filepath.Join(target, stamped)); err != nil {
		return fmt.Errorf("failed to move %s: %w", name, err)
	}
	return nil
}
