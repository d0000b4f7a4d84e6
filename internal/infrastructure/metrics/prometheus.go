package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyberio/backend/internal/core/ports"
)

var (
	once sync.Once

	ScansStarted     = prometheus.NewCounter(prometheus.CounterOpts{Name: "cyberio_scans_started_total", Help: "Scans accepted by the tracker"})
	ScansCompleted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "cyberio_scans_completed_total", Help: "Scans that reached completed"})
	ScansFailed      = prometheus.NewCounter(prometheus.CounterOpts{Name: "cyberio_scans_failed_total", Help: "Scans that reached failed"})
	ScansRejected    = prometheus.NewCounter(prometheus.CounterOpts{Name: "cyberio_scans_rejected_total", Help: "Scans refused because the tracker was at capacity"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "cyberio_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	InFlightGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cyberio_scans_inflight", Help: "Scans currently running"})

	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cyberio_scan_duration_seconds",
		Help:    "Wall time from start to completion",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	ReportsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cyberio_reports_published_total", Help: "Reports written per sink"}, []string{"sink"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	register()
	return promhttp.Handler()
}

func register() {
	once.Do(func() {
		prometheus.MustRegister(
			ScansStarted,
			ScansCompleted,
			ScansFailed,
			ScansRejected,
			RateLimitRejects,
			InFlightGauge,
			ScanDuration,
			ReportsPublished,
		)
	})
}

// Recorder feeds tracker and middleware events into the package collectors.
type Recorder struct{}

var _ ports.ScanMetrics = Recorder{}

func NewRecorder() Recorder {
	register()
	return Recorder{}
}

func (Recorder) ScanStarted() { ScansStarted.Inc() }

func (Recorder) ScanCompleted(duration time.Duration) {
	ScansCompleted.Inc()
	ScanDuration.Observe(duration.Seconds())
}

func (Recorder) ScanFailed() { ScansFailed.Inc() }
func (Recorder) ScanRejected() { ScansRejected.Inc() }
func (Recorder) InflightInc() { InFlightGauge.Inc() }
func (Recorder) InflightDec() { InFlightGauge.Dec() }
func (Recorder) RateLimited() { RateLimitRejects.Inc() }

func (Recorder) ReportPublished(sink string) {
	ReportsPublished.WithLabelValues(sink).Inc()
}
