package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"analysis-systemv1/config"
	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/collector"
	"analysis-systemv1/internal/gateway"
	"analysis-systemv1/internal/logger"
	"analysis-systemv1/internal/metrics"
	"analysis-systemv1/internal/notification"
	"analysis-systemv1/internal/ringbuf"
	redisstore "analysis-systemv1/internal/store/redis"
	sqlitestore "analysis-systemv1/internal/store/sqlite"
	"analysis-systemv1/internal/watcher"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("dashboard", slog.LevelInfo)
	log.Println("[dashboard] starting...")

	cfg := config.Load()
	if !collector.IsValidPeriod(cfg.DefaultPeriod) {
		log.Fatalf("[dashboard] invalid DEFAULT_PERIOD %q", cfg.DefaultPeriod)
	}
	if !collector.IsValidPeriod(cfg.WatchPeriod) {
		log.Fatalf("[dashboard] invalid WATCH_PERIOD %q", cfg.WatchPeriod)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	health := metrics.NewHealthStatus()

	// Price source: Yahoo, optionally behind the Redis series cache.
	var fetcher collector.Fetcher = collector.NewYahooFetcher(cfg.ProxyURL)
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		cache, err := redisstore.New(redisstore.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, fetcher, m)
		if err != nil {
			log.Printf("[dashboard] WARN series cache unavailable, fetching direct: %v", err)
		} else {
			fetcher = cache
			rdb = cache.Client()
			defer cache.Close()
		}
	}
	log.Printf("[dashboard] price source: %s", fetcher.Name())

	// Analysis history
	var history *sqlitestore.History
	var sqlDB *sql.DB
	if cfg.SQLitePath != "" {
		h, err := sqlitestore.New(sqlitestore.HistoryConfig{DBPath: cfg.SQLitePath})
		if err != nil {
			log.Printf("[dashboard] WARN history store unavailable: %v", err)
		} else {
			history = h
			sqlDB = h.DB()
			defer h.Close()
		}
	}

	health.StartLivenessChecker(ctx, rdb, sqlDB, 30*time.Second)

	analyzer := analysis.New()
	hub := gateway.NewHub(m)
	events := ringbuf.New(cfg.EventsRingSize)

	// Alert channels for signal changes on watched symbols
	var notifiers notification.Multi
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		log.Println("[dashboard] telegram alerts enabled")
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Println("[dashboard] webhook alerts enabled")
	}
	var notifier notification.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	} else {
		notifier = notification.NewLogNotifier()
	}

	server := &gateway.Server{
		Analyzer:      analyzer,
		Fetcher:       fetcher,
		History:       history,
		Events:        events,
		Hub:           hub,
		Metrics:       m,
		Health:        health,
		DefaultSymbol: cfg.DefaultSymbol,
		DefaultPeriod: cfg.DefaultPeriod,
	}
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	// Watch list refresher
	w, err := watcher.New(ctx, watcher.Config{
		Symbols:         cfg.ParseWatchSymbols(),
		Period:          cfg.WatchPeriod,
		Spec:            cfg.WatchCron,
		MarketHoursOnly: cfg.MarketHoursOnly,
		Notifier:        notifier,
		Events:          events,
	}, fetcher, analyzer, history, hub, m)
	if err != nil {
		log.Fatalf("[dashboard] init watcher: %v", err)
	}
	w.Start()
	defer w.Stop()
	if cfg.RunOnStart {
		log.Println("[dashboard] RUN_ON_START enabled, refreshing watch list now")
		go w.RunOnce(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[dashboard] http server: %v", err)
		}
	}()
	log.Printf("[dashboard] listening on %s", cfg.ListenAddr)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[dashboard] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[dashboard] http shutdown: %v", err)
	}
	hub.Shutdown(shutdownCtx)

	log.Println("[dashboard] stopped")
}
