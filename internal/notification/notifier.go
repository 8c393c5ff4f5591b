// Package notification provides alert delivery to external channels
// (Telegram, webhooks, etc.) for signal changes on watched symbols.
package notification

import (
	"context"
	"fmt"
	"log"

	"analysis-systemv1/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// FromEvent builds the alert for one signal change. Buy transitions are
// INFO, Sell transitions WARNING.
func FromEvent(ev model.SignalEvent) Alert {
	level := AlertInfo
	if ev.Next == model.SignalSell {
		level = AlertWarning
	}
	return Alert{
		Level:   level,
		Title:   fmt.Sprintf("%s %s signal: %s", ev.Symbol, ev.Strategy, ev.Next),
		Message: fmt.Sprintf("%s strategy on %s moved %s -> %s at %.2f", ev.Strategy, ev.Symbol, ev.Prev, ev.Next, ev.Price),
	}
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Multi fans an alert out to several backends. Send returns the first
// delivery error but still attempts every backend.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, alert Alert) error {
	var firstErr error
	for _, n := range m {
		if err := n.Send(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
