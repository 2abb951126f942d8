package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/parser"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
)

// Metrics records parse outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	parsed   *prometheus.CounterVec
	failed   *prometheus.CounterVec
	records  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_reports_parsed_total",
			Help: "Reports decoded and extracted, by bank and spreadsheet format.",
		}, []string{"bank", "format"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_reports_failed_total",
			Help: "Reports rejected before extraction, by bank and reason.",
		}, []string{"bank", "reason"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_records_total",
			Help: "Payment records extracted.",
		}, []string{"bank"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_rows_skipped_total",
			Help: "Data rows dropped during extraction.",
		}, []string{"bank"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payment_report_parse_seconds",
			Help:    "Time spent decoding and extracting one report.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"bank"}),
	}
	reg.MustRegister(m.parsed, m.failed, m.records, m.skipped, m.duration)
	return m
}

func (m *Metrics) observeParsed(bankID string, format sheet.Format, res *parser.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	stats := res.Stats()
	m.parsed.WithLabelValues(bankID, string(format)).Inc()
	m.records.WithLabelValues(bankID).Add(float64(stats.ParsedRows))
	m.skipped.WithLabelValues(bankID).Add(float64(stats.SkippedRows))
	m.duration.WithLabelValues(bankID).Observe(elapsed.Seconds())
}

func (m *Metrics) observeFailed(bankID, reason string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(bankID, reason).Inc()
}
