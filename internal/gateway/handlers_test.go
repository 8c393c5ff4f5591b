package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"analysis-systemv1/internal/analysis"
	"analysis-systemv1/internal/logger"
	"analysis-systemv1/internal/model"
	"analysis-systemv1/internal/ringbuf"
)

// stubFetcher serves a canned series, or a canned error.
type stubFetcher struct {
	series model.PriceSeries
	err    error

	gotSymbol string
	gotPeriod string
	gotTrace  string
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) FetchSeries(ctx context.Context, symbol, period string) (model.PriceSeries, error) {
	f.gotSymbol, f.gotPeriod = symbol, period
	f.gotTrace = logger.TraceID(ctx)
	if f.err != nil {
		return model.PriceSeries{}, f.err
	}
	return f.series, nil
}

func stubSeries(closes ...float64) model.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{TS: base.AddDate(0, 0, i), Close: c}
	}
	return model.PriceSeries{Symbol: "AAPL", Points: points}
}

func newTestServer(f *stubFetcher) *Server {
	return &Server{
		Analyzer:      analysis.New(),
		Fetcher:       f,
		Hub:           NewHub(nil),
		DefaultSymbol: "AAPL",
		DefaultPeriod: "1y",
	}
}

func doGET(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleAnalysis_OK(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%9)
	}
	f := &stubFetcher{series: stubSeries(closes...)}

	rec := doGET(t, newTestServer(f), "/api/analysis?symbol=msft&period=6mo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	// Symbol uppercased before hitting the fetcher
	if f.gotSymbol != "MSFT" || f.gotPeriod != "6mo" {
		t.Errorf("fetcher got %s/%s, want MSFT/6mo", f.gotSymbol, f.gotPeriod)
	}

	// Request context carries a symbol-keyed trace ID
	if !strings.HasPrefix(f.gotTrace, "MSFT-") {
		t.Errorf("fetch context trace id=%q, want MSFT- prefix", f.gotTrace)
	}

	var payload AnalysisPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Symbol != "MSFT" || payload.Period != "6mo" {
		t.Errorf("payload identity %s/%s, want MSFT/6mo", payload.Symbol, payload.Period)
	}
	if len(payload.Close) != 60 || len(payload.Dates) != 60 || len(payload.RSI) != 60 {
		t.Errorf("column lengths %d/%d/%d, want 60", len(payload.Close), len(payload.Dates), len(payload.RSI))
	}
	if payload.Summary.Points != 60 {
		t.Errorf("summary points=%d, want 60", payload.Summary.Points)
	}
	for _, strat := range []string{"MACD", "RSI", "BOLL"} {
		if payload.LastSignals[strat] == "" {
			t.Errorf("missing last signal for %s", strat)
		}
	}

	// RSI(20): exactly 20 leading nulls, then values
	for i := 0; i < 20; i++ {
		if payload.RSI[i] != nil {
			t.Errorf("RSI[%d]=%v, want null during warm-up", i, *payload.RSI[i])
		}
	}
	if payload.RSI[20] == nil {
		t.Error("RSI[20] is null, want a value")
	}

	// Histogram serializes warm-up as zero, not null
	if len(payload.MACDHist) != 60 || payload.MACDHist[0] != 0 {
		t.Errorf("histogram warm-up should be zero-filled")
	}
}

func TestHandleAnalysis_DefaultsApplied(t *testing.T) {
	f := &stubFetcher{series: stubSeries(100, 101, 102)}
	rec := doGET(t, newTestServer(f), "/api/analysis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if f.gotSymbol != "AAPL" || f.gotPeriod != "1y" {
		t.Errorf("fetcher got %s/%s, want defaults AAPL/1y", f.gotSymbol, f.gotPeriod)
	}
}

func TestHandleAnalysis_InvalidPeriod(t *testing.T) {
	f := &stubFetcher{series: stubSeries(100)}
	rec := doGET(t, newTestServer(f), "/api/analysis?period=42d")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if f.gotPeriod != "" {
		t.Error("fetcher must not be called for an invalid period")
	}
}

func TestHandleAnalysis_NoData404(t *testing.T) {
	f := &stubFetcher{err: &analysis.NoDataError{Symbol: "NOPE", Period: "1y"}}
	rec := doGET(t, newTestServer(f), "/api/analysis?symbol=NOPE")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected user-visible error message")
	}
}

func TestHandleAnalysis_ComputationError502(t *testing.T) {
	// Fetch succeeds but the series breaks summary arithmetic.
	f := &stubFetcher{series: stubSeries(0, 10, 20)}
	rec := doGET(t, newTestServer(f), "/api/analysis")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d, want 502, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandlePeriods(t *testing.T) {
	rec := doGET(t, newTestServer(&stubFetcher{}), "/api/periods")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	var resp struct {
		Periods []string `json:"periods"`
		Default string   `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Periods) != 11 || resp.Default != "1y" {
		t.Errorf("periods=%v default=%q", resp.Periods, resp.Default)
	}
}

func TestHandleHealth(t *testing.T) {
	rec := doGET(t, newTestServer(&stubFetcher{}), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status=%v, want ok", resp["status"])
	}
	if resp["time"] == nil {
		t.Error("expected time field")
	}
	if resp["market"] == nil {
		t.Error("expected market status field")
	}
}

func TestHandleHistory_Disabled(t *testing.T) {
	rec := doGET(t, newTestServer(&stubFetcher{}), "/api/history")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404 when history disabled", rec.Code)
	}
}

func TestHandleEvents_Disabled(t *testing.T) {
	rec := doGET(t, newTestServer(&stubFetcher{}), "/api/events")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404 when events disabled", rec.Code)
	}
}

func TestHandleEvents(t *testing.T) {
	s := newTestServer(&stubFetcher{})
	s.Events = ringbuf.New(8)
	s.Events.Push(model.SignalEvent{Symbol: "AAPL", Strategy: "MACD",
		Prev: model.SignalNone, Next: model.SignalBuy, Price: 190})
	s.Events.Push(model.SignalEvent{Symbol: "MSFT", Strategy: "RSI",
		Prev: model.SignalBuy, Next: model.SignalSell, Price: 410})

	rec := doGET(t, s, "/api/events?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	var resp struct {
		Events []model.SignalEvent `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(resp.Events))
	}
	if resp.Events[0].Symbol != "MSFT" {
		t.Errorf("expected newest event first, got %s", resp.Events[0].Symbol)
	}

	rec = doGET(t, s, "/api/events?limit=9999")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 for out-of-range limit", rec.Code)
	}
}
