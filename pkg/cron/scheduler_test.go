package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/inbox"
)

type fakeSweeper struct {
	calls chan context.Context
	err   error
}

func (f *fakeSweeper) Sweep(ctx context.Context) (inbox.Summary, error) {
	f.calls <- ctx
	return inbox.Summary{Processed: 1}, f.err
}

func TestScheduler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		s := NewScheduler(&fakeSweeper{calls: make(chan context.Context, 1)}, "every now and then", time.Minute, logger)
		assert.Error(t, s.Start())
	})

	t.Run("run now sweeps with a deadline", func(t *testing.T) {
		sw := &fakeSweeper{calls: make(chan context.Context, 1)}
		s := NewScheduler(sw, "0 2 * * *", time.Minute, logger)
		require.NoError(t, s.Start())
		defer s.Stop()

		s.RunNow()

		select {
		case ctx := <-sw.calls:
			_, ok := ctx.Deadline()
			assert.True(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("sweep was not triggered")
		}
	})

	t.Run("sweep errors are logged, not fatal", func(t *testing.T) {
		sw := &fakeSweeper{calls: make(chan context.Context, 1), err: errors.New("disk full")}
		s := NewScheduler(sw, "@every 1h", time.Minute, logger)

		s.sweepInbox()
		assert.Len(t, sw.calls, 1)
	})
}
