// Package watcher periodically refreshes the analysis for a configured set
// of watch symbols: fetch, analyze, record to history, and broadcast the
// fresh snapshot to WebSocket subscribers. Changes in a strategy's latest
// signal are pushed to the events ring and delivered as alerts.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/collector"
	"analysis-systemv1/internal/gateway"
	"analysis-systemv1/internal/logger"
	"analysis-systemv1/internal/markethours"
	"analysis-systemv1/internal/metrics"
	"analysis-systemv1/internal/model"
	"analysis-systemv1/internal/notification"
	"analysis-systemv1/internal/ringbuf"
	"analysis-systemv1/internal/store/sqlite"
)

// Config configures the watcher.
type Config struct {
	Symbols []string // tickers to refresh
	Period  string   // period applied to every watch symbol
	Spec    string   // cron spec, e.g. "0 */15 * * * *"

	// MarketHoursOnly skips scheduled runs outside NYSE trading hours.
	// RunOnce is never gated.
	MarketHoursOnly bool

	Notifier notification.Notifier // signal change alerts, may be nil
	Events   *ringbuf.Ring         // recent signal changes, may be nil
}

// Watcher owns the refresh schedule.
type Watcher struct {
	cfg      Config
	cron     *cron.Cron
	fetcher  collector.Fetcher
	analyzer *analysis.Analyzer
	history  *sqlite.History // may be nil
	hub      *gateway.Hub
	m        *metrics.Metrics // may be nil

	mu   sync.Mutex
	last map[string]map[string]model.SignalState // symbol -> strategy -> state

	ctx context.Context
}

// New creates a Watcher and registers its cron job. history and m may be
// nil; an empty symbol list yields a no-op scheduler.
func New(ctx context.Context, cfg Config, fetcher collector.Fetcher, analyzer *analysis.Analyzer,
	history *sqlite.History, hub *gateway.Hub, m *metrics.Metrics) (*Watcher, error) {

	w := &Watcher{
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
		fetcher:  fetcher,
		analyzer: analyzer,
		history:  history,
		hub:      hub,
		m:        m,
		last:     make(map[string]map[string]model.SignalState),
		ctx:      ctx,
	}

	if len(cfg.Symbols) > 0 {
		if _, err := w.cron.AddFunc(cfg.Spec, w.runScheduled); err != nil {
			return nil, fmt.Errorf("register watch task: %w", err)
		}
	}
	return w, nil
}

// Start starts the cron scheduler.
func (w *Watcher) Start() {
	w.cron.Start()
	log.Printf("[watcher] started (%d symbols, spec %q)", len(w.cfg.Symbols), w.cfg.Spec)
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	log.Println("[watcher] stopped")
}

func (w *Watcher) runScheduled() {
	if w.cfg.MarketHoursOnly && !markethours.IsMarketOpen(time.Now()) {
		log.Printf("[watcher] skipping run: %s", markethours.StatusString(time.Now()))
		return
	}
	ctx, cancel := context.WithTimeout(w.ctx, 2*time.Minute)
	defer cancel()
	w.RunOnce(ctx)
}

// RunOnce refreshes every watch symbol sequentially. Failures are logged
// and counted; one bad symbol does not stop the rest.
func (w *Watcher) RunOnce(ctx context.Context) {
	if w.m != nil {
		w.m.WatchRunsTotal.Inc()
	}
	for _, symbol := range w.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if err := w.refresh(ctx, symbol); err != nil {
			if w.m != nil {
				w.m.WatchRunsFailed.Inc()
			}
			log.Printf("[watcher] refresh %s/%s failed: %v", symbol, w.cfg.Period, err)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context, symbol string) error {
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(symbol, time.Now()))

	series, err := w.fetcher.FetchSeries(ctx, symbol, w.cfg.Period)
	if err != nil {
		return err
	}

	result, err := w.analyzer.Analyze(series, symbol, w.cfg.Period)
	if err != nil {
		return err
	}

	if w.history != nil {
		if err := w.history.Record(ctx, result); err != nil {
			log.Printf("[watcher] record %s history: %v", symbol, err)
		} else if w.m != nil {
			w.m.HistoryWrites.Inc()
		}
	}

	w.emitChanges(ctx, symbol, result)

	payload, err := json.Marshal(gateway.BuildPayload(result))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	w.hub.Broadcast(symbol, w.cfg.Period, payload)

	attrs := append([]any{
		slog.String("symbol", symbol),
		slog.String("period", w.cfg.Period),
		slog.String("macd", result.LastSignals["MACD"]),
		slog.String("rsi", result.LastSignals["RSI"]),
		slog.String("boll", result.LastSignals["BOLL"]),
	}, logger.LogWithTrace(ctx)...)
	slog.Info("watch refresh complete", attrs...)
	return nil
}

// emitChanges compares the latest signals against the previous run and
// records an event plus alert per changed strategy. The first observation
// of a symbol only seeds the baseline, no events fire.
func (w *Watcher) emitChanges(ctx context.Context, symbol string, result *model.Result) {
	w.mu.Lock()
	prev, seen := w.last[symbol]
	current := make(map[string]model.SignalState, len(result.LastSignals))
	for strategy, state := range result.LastSignals {
		current[strategy] = model.SignalState(state)
	}
	w.last[symbol] = current
	w.mu.Unlock()

	if !seen {
		return
	}

	for strategy, state := range current {
		before, ok := prev[strategy]
		if !ok || before == state {
			continue
		}
		ev := model.SignalEvent{
			Symbol:   symbol,
			Strategy: strategy,
			Prev:     before,
			Next:     state,
			Price:    result.Summary.LastPrice,
			TS:       time.Now().UTC(),
		}
		if w.cfg.Events != nil {
			w.cfg.Events.Push(ev)
		}
		if w.m != nil {
			w.m.SignalChanges.Inc()
		}
		log.Printf("[watcher] %s %s signal changed %s -> %s", symbol, strategy, before, state)
		if w.cfg.Notifier != nil {
			if err := w.cfg.Notifier.Send(ctx, notification.FromEvent(ev)); err != nil {
				log.Printf("[watcher] notify %s %s: %v", symbol, strategy, err)
			}
		}
	}
}
