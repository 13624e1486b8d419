// Package redis hands emitted signals to downstream consumers over Redis:
// pub/sub for live listeners plus a capped stream so a consumer that
// reconnects can catch up on recent signals. The stream is a bounded
// transport buffer, trimmed continuously — not a signal archive.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"signal-engine/internal/strategy"
)

const (
	signalStream       = "stream:signals"
	signalStreamMaxLen = 1000
	pingTimeout        = 5 * time.Second
)

// PublisherConfig configures the Redis signal publisher.
type PublisherConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher publishes trade signals to Redis.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a Publisher and pings the server.
func New(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishSignal delivers one signal: PUBLISH on the per-symbol channel and
// XADD to the capped signal stream.
func (p *Publisher) PublishSignal(ctx context.Context, sig strategy.Signal) error {
	payload := sig.JSON()

	ch := "signals:" + sig.Symbol
	if err := p.client.Publish(ctx, ch, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ch, err)
	}

	err := p.client.XAdd(ctx, &goredis.XAddArgs{
		Stream:       signalStream,
		MaxLenApprox: signalStreamMaxLen,
		Values: map[string]interface{}{
			"strategy":  sig.Strategy,
			"symbol":    sig.Symbol,
			"direction": string(sig.Direction),
			"payload":   payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", signalStream, err)
	}
	return nil
}

// Run consumes signals from sigCh and publishes them until ctx is cancelled
// or the channel is closed. Publish errors are logged, not fatal — a Redis
// hiccup must not stop signal generation.
func (p *Publisher) Run(ctx context.Context, sigCh <-chan strategy.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if err := p.PublishSignal(ctx, sig); err != nil {
				log.Printf("[redis] publish signal: %v", err)
			}
		}
	}
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
