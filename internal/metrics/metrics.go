// Package metrics exposes Prometheus metrics for the signal engine: window
// evaluation throughput and latency, signals emitted per strategy and
// direction, and market-data feed health.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	WindowsEvaluated prometheus.Counter
	SignalsTotal     *prometheus.CounterVec // labels: strategy, direction
	EvalDur          prometheus.Histogram

	CandlesIngested prometheus.Counter
	WSReconnects    prometheus.Counter
	FetchDur        prometheus.Histogram
	PublishDur      prometheus.Histogram
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		WindowsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_windows_evaluated_total",
			Help: "Candle windows evaluated against the strategy set",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigengine_signals_total",
			Help: "Signals emitted (by strategy and direction)",
		}, []string{"strategy", "direction"}),
		EvalDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigengine_eval_duration_seconds",
			Help:    "Strategy evaluation latency per window",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		CandlesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_candles_ingested_total",
			Help: "Closed candles received from the market data feed",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigengine_ws_reconnects_total",
			Help: "WebSocket feed reconnection attempts",
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigengine_fetch_duration_seconds",
			Help:    "REST candle fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		PublishDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigengine_publish_duration_seconds",
			Help:    "Signal publish latency (Redis)",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.WindowsEvaluated,
		m.SignalsTotal,
		m.EvalDur,
		m.CandlesIngested,
		m.WSReconnects,
		m.FetchDur,
		m.PublishDur,
	)
	return m
}

// ObserveEval records one window evaluation and its duration.
func (m *Metrics) ObserveEval(start time.Time) {
	m.WindowsEvaluated.Inc()
	m.EvalDur.Observe(time.Since(start).Seconds())
}

// Serve starts the Prometheus metrics HTTP endpoint on addr.
// Runs in a goroutine; errors are logged, not fatal.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[metrics] server stopped: %v", err)
		}
	}()
	log.Printf("[metrics] serving on %s/metrics", addr)
}
