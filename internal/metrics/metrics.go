// Package metrics exposes Prometheus metrics and a liveness status for the
// dashboard service.
package metrics

import (
	"context"
	"database/sql"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	AnalysesTotal   *prometheus.CounterVec // labels: outcome=ok|no_data|error
	AnalysisDur     prometheus.Histogram
	FetchDur        prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	HistoryWrites   prometheus.Counter
	WSClients       prometheus.Gauge
	WatchRunsTotal  prometheus.Counter
	WatchRunsFailed prometheus.Counter
	SignalChanges   prometheus.Counter
}

// New registers and returns all dashboard metrics.
func New() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_analyses_total",
			Help: "Total analysis requests (by outcome)",
		}, []string{"outcome"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_analysis_duration_seconds",
			Help:    "Indicator + signal computation latency per request",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_fetch_duration_seconds",
			Help:    "Upstream price fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_series_cache_hits_total",
			Help: "Price series served from the Redis cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_series_cache_misses_total",
			Help: "Price series fetched from the upstream source",
		}),
		HistoryWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_history_writes_total",
			Help: "Analysis outcomes recorded to SQLite",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		WatchRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_watch_runs_total",
			Help: "Scheduled watch refreshes executed",
		}),
		WatchRunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_watch_runs_failed_total",
			Help: "Scheduled watch refreshes that ended in error",
		}),
		SignalChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_signal_changes_total",
			Help: "Latest signal transitions observed on watched symbols",
		}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDur,
		m.FetchDur,
		m.CacheHits,
		m.CacheMisses,
		m.HistoryWrites,
		m.WSClients,
		m.WatchRunsTotal,
		m.WatchRunsFailed,
		m.SignalChanges,
	)

	return m
}

// HealthStatus represents service health for the liveness endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected  bool      `json:"redis_connected"`
	SQLiteOK        bool      `json:"sqlite_ok"`
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now().UTC()}
}

// Snapshot returns a copy safe for serialization.
func (h *HealthStatus) Snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthStatus{
		RedisConnected:  h.RedisConnected,
		SQLiteOK:        h.SQLiteOK,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt,
		StartedAt:       h.StartedAt,
	}
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now().UTC()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now().UTC()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx ends.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if db != nil {
					h.CheckSQLite(probeCtx, db)
				}
				cancel()
			}
		}
	}()
}
