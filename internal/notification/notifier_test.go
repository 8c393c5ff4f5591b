package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"analysis-systemv1/internal/model"
)

func TestFromEvent_Levels(t *testing.T) {
	buy := FromEvent(model.SignalEvent{
		Symbol: "AAPL", Strategy: model.StrategyRSI,
		Prev: model.SignalNone, Next: model.SignalBuy,
		Price: 191.25, TS: time.Now(),
	})
	if buy.Level != AlertInfo {
		t.Errorf("buy transition: expected INFO, got %s", buy.Level)
	}
	if !strings.Contains(buy.Title, "AAPL") || !strings.Contains(buy.Title, "Buy") {
		t.Errorf("unexpected title %q", buy.Title)
	}
	if !strings.Contains(buy.Message, "191.25") {
		t.Errorf("expected price in message, got %q", buy.Message)
	}

	sell := FromEvent(model.SignalEvent{
		Symbol: "AAPL", Strategy: model.StrategyRSI,
		Prev: model.SignalBuy, Next: model.SignalSell,
		Price: 188.10,
	})
	if sell.Level != AlertWarning {
		t.Errorf("sell transition: expected WARNING, got %s", sell.Level)
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Send(context.Background(), Alert{Level: AlertInfo, Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["level"] != "INFO" || got["title"] != "t" || got["message"] != "m" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), Alert{Title: "t"}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestTelegramNotifier_Send(t *testing.T) {
	var gotPath string
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token123", "chat42")
	n.apiBase = srv.URL

	err := n.Send(context.Background(), Alert{
		Level:   AlertWarning,
		Title:   "AAPL RSI signal: Sell",
		Message: "RSI strategy on AAPL moved Buy -> Sell at 188.10",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("path=%q, want /bottoken123/sendMessage", gotPath)
	}
	if got["chat_id"] != "chat42" {
		t.Errorf("chat_id=%v, want chat42", got["chat_id"])
	}
	if got["parse_mode"] != "MarkdownV2" {
		t.Errorf("parse_mode=%v, want MarkdownV2", got["parse_mode"])
	}
	text, _ := got["text"].(string)
	// MarkdownV2 escaping: the dash and dot in the message must be escaped
	if !strings.Contains(text, `Buy \-\> Sell`) || !strings.Contains(text, `188\.10`) {
		t.Errorf("unescaped MarkdownV2 text: %q", text)
	}
}

func TestTelegramNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("bad", "chat")
	n.apiBase = srv.URL
	if err := n.Send(context.Background(), Alert{Title: "t"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

type stubNotifier struct {
	sent []Alert
	err  error
}

func (s *stubNotifier) Send(ctx context.Context, alert Alert) error {
	s.sent = append(s.sent, alert)
	return s.err
}

func TestMulti_SendsToAll(t *testing.T) {
	a := &stubNotifier{err: errors.New("boom")}
	b := &stubNotifier{}
	m := Multi{a, b}

	err := m.Send(context.Background(), Alert{Title: "t"})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected both backends attempted, got %d and %d", len(a.sent), len(b.sent))
	}
}
