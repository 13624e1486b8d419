// Package notification delivers emitted trade signals to external channels
// (Telegram, webhooks). Delivery is best-effort: a failed notification never
// blocks or fails signal generation.
package notification

import (
	"context"
	"log"

	"signal-engine/internal/strategy"
)

// Notifier is the interface for all signal delivery backends.
type Notifier interface {
	// Notify delivers one signal. Returns an error if delivery fails.
	Notify(ctx context.Context, sig strategy.Signal) error
}

// LogNotifier logs signals instead of delivering them (development default).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, sig strategy.Signal) error {
	log.Printf("[notify] %s %s %s entry=%.4f stop=%.4f take=%.4f conf=%.2f",
		sig.Strategy, sig.Symbol, sig.Direction, sig.EntryPrice, sig.StopLoss, sig.TakeProfit, sig.Confidence)
	return nil
}

// Multi fans one signal out to several notifiers, logging individual
// failures and never returning an error itself.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Notify(ctx context.Context, sig strategy.Signal) error {
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, sig); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}
	}
	return nil
}
