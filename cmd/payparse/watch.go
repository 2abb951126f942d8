package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/inbox"
	"github.com/FACorreiaa/payment-reports/pkg/cron"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Ingest reports dropped into the inbox on a schedule",
		Long: "Sweeps INBOX_DIR on INBOX_SCHEDULE. Reports are expected under a directory\n" +
			"named after their bank identifier and are moved to processed/ or failed/.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context())
		},
	}
}

func (a *app) runWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, a.cfg, a.logger, a.cfg.Database.Enabled())
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	watcher := inbox.NewWatcher(a.cfg.Inbox.Dir, deps.PaymentService, a.cfg.Parse.Timeout, a.logger)
	scheduler := cron.NewScheduler(watcher, a.cfg.Inbox.Schedule, 30*time.Minute, a.logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("invalid INBOX_SCHEDULE %q: %w", a.cfg.Inbox.Schedule, err)
	}
	scheduler.RunNow()

	var server *http.Server
	if a.cfg.Observability.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
		server = &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Observability.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		a.logger.Info("metrics server listening", slog.String("addr", server.Addr))
	}

	a.logger.Info("watching inbox",
		slog.String("dir", a.cfg.Inbox.Dir),
		slog.String("schedule", a.cfg.Inbox.Schedule),
		slog.Bool("store", deps.PaymentStore != nil),
	)
	<-ctx.Done()

	<-scheduler.Stop().Done()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
	}
	a.logger.Info("watcher stopped")
	return nil
}
