// Package repository persists extracted payment records.
package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/parser"
)

// Pool is the subset of pgxpool.Pool the store needs.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PaymentStore writes payment records to Postgres. Re-importing the same
// report adds nothing.
type PaymentStore struct {
	db     Pool
	logger *slog.Logger
}

// NewPaymentStore creates a new payment store
func NewPaymentStore(db Pool, logger *slog.Logger) *PaymentStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PaymentStore{db: db, logger: logger}
}

const insertPayment = `
	INSERT INTO payments (bank_id, account, payment_date, amount, payment_id)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (bank_id, account, payment_date, amount, payment_id) DO NOTHING
`

// SavePayments stores records in one transaction and returns how many were new.
// Records whose date is not YYYY-MM-DD cannot be stored and are left out.
func (s *PaymentStore) SavePayments(ctx context.Context, bankID string, records []parser.PaymentRecord) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	added, undated := 0, 0
	for _, r := range records {
		date, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			undated++
			continue
		}

		tag, err := tx.Exec(ctx, insertPayment, bankID, r.Account, date, r.Amount, r.PaymentID)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("failed to insert payment for account %s: %w", r.Account, err)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit payments: %w", err)
	}

	if undated > 0 {
		s.logger.Warn("payments without an ISO date were not stored",
			slog.String("bank", bankID),
			slog.Int("count", undated),
		)
	}
	s.logger.Debug("stored payments",
		slog.String("bank", bankID),
		slog.Int("received", len(records)),
		slog.Int("added", added),
	)
	return added, nil
}
