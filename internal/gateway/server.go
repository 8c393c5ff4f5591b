package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/collector"
	"analysis-systemv1/internal/logger"
	"analysis-systemv1/internal/markethours"
	"analysis-systemv1/internal/metrics"
	"analysis-systemv1/internal/ringbuf"
	"analysis-systemv1/internal/store/sqlite"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Server wires the HTTP surface to the analysis core and its collaborators.
type Server struct {
	Analyzer *analysis.Analyzer
	Fetcher  collector.Fetcher
	History  *sqlite.History // nil disables /api/history
	Events   *ringbuf.Ring   // nil disables /api/events
	Hub      *Hub
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus

	DefaultSymbol string
	DefaultPeriod string
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/periods", s.handlePeriods)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
}

// symbolPeriod extracts and normalizes the request's symbol/period pair,
// applying the configured defaults.
func (s *Server) symbolPeriod(r *http.Request) (string, string) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		symbol = s.DefaultSymbol
	}
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = s.DefaultPeriod
	}
	return symbol, period
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	symbol, period := s.symbolPeriod(r)
	if !collector.IsValidPeriod(period) {
		writeError(w, http.StatusBadRequest, "unsupported period: "+period)
		return
	}

	ctx := logger.WithTraceID(r.Context(), logger.GenerateTraceID(symbol, time.Now()))

	fetchStart := time.Now()
	series, err := s.Fetcher.FetchSeries(ctx, symbol, period)
	if s.Metrics != nil {
		s.Metrics.FetchDur.Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		s.failAnalysis(ctx, w, symbol, period, err)
		return
	}

	analysisStart := time.Now()
	result, err := s.Analyzer.Analyze(series, symbol, period)
	if s.Metrics != nil {
		s.Metrics.AnalysisDur.Observe(time.Since(analysisStart).Seconds())
	}
	if err != nil {
		s.failAnalysis(ctx, w, symbol, period, err)
		return
	}

	if s.Metrics != nil {
		s.Metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	}
	writeJSON(w, http.StatusOK, BuildPayload(result))
}

// failAnalysis maps core errors onto HTTP statuses: no data → 404,
// anything else → 502 with the cause text.
func (s *Server) failAnalysis(ctx context.Context, w http.ResponseWriter, symbol, period string, err error) {
	var nde *analysis.NoDataError
	if errors.As(err, &nde) {
		if s.Metrics != nil {
			s.Metrics.AnalysesTotal.WithLabelValues("no_data").Inc()
		}
		writeError(w, http.StatusNotFound, nde.Error())
		return
	}

	if s.Metrics != nil {
		s.Metrics.AnalysesTotal.WithLabelValues("error").Inc()
	}
	attrs := append([]any{
		slog.String("symbol", symbol),
		slog.String("period", period),
		slog.String("err", err.Error()),
	}, logger.LogWithTrace(ctx)...)
	slog.Error("analysis failed", attrs...)
	writeError(w, http.StatusBadGateway, "analysis failed: "+err.Error())
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"periods": collector.ValidPeriods,
		"default": s.DefaultPeriod,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if s.History == nil {
		writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.History.Recent(r.Context(), symbol, limit)
	if err != nil {
		log.Printf("[gateway] history query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if entries == nil {
		entries = []sqlite.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleEvents serves the most recent signal changes on watched symbols,
// newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if s.Events == nil {
		writeError(w, http.StatusNotFound, "events not enabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events := s.Events.Snapshot(limit)
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	now := time.Now()
	resp := map[string]any{
		"status": "ok",
		"time":   now.UTC().Format(time.RFC3339),
		"market": markethours.StatusString(now),
	}
	if s.Health != nil {
		resp["deps"] = s.Health.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	symbol, period := s.symbolPeriod(r)
	if !collector.IsValidPeriod(period) {
		writeError(w, http.StatusBadRequest, "unsupported period: "+period)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade error: %v", err)
		return
	}

	client := newClient(conn, symbol, period)
	s.Hub.register(client)
	go client.writePump(s.Hub)
	go client.readPump(s.Hub)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[gateway] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
