package marketdata

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"signal-engine/internal/model"
)

const (
	reconnectBaseDelay   = time.Second
	reconnectMaxDelay    = 30 * time.Second
	reconnectStableAfter = time.Minute
)

// StreamConfig configures the live kline subscriber for one symbol.
type StreamConfig struct {
	WSBaseURL string // e.g. "wss://stream.binance.com:9443"
	Symbol    string
	Interval  string
}

// Stream subscribes to a kline websocket stream and emits a candle for each
// kline that closes. Forming klines are skipped — strategies evaluate only
// completed candles.
type Stream struct {
	cfg StreamConfig

	// OnReconnect is an optional hook invoked before each reconnection
	// attempt (metrics).
	OnReconnect func()
}

// NewStream creates a live kline subscriber.
func NewStream(cfg StreamConfig) *Stream {
	return &Stream{cfg: cfg}
}

// klineEvent is the wire shape of a kline stream message.
type klineEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTimeMs int64  `json:"t"`
		Open       string `json:"o"`
		High       string `json:"h"`
		Low        string `json:"l"`
		Close      string `json:"c"`
		Volume     string `json:"v"`
		Closed     bool   `json:"x"`
	} `json:"k"`
}

// Run connects and pushes closed candles into candleCh until ctx is done,
// reconnecting with capped exponential backoff on any read or dial error.
// A full channel drops the candle rather than stalling the read loop.
func (s *Stream) Run(ctx context.Context, candleCh chan<- model.Candle) {
	streamURL := fmt.Sprintf("%s/ws/%s@kline_%s",
		s.cfg.WSBaseURL, strings.ToLower(s.cfg.Symbol), s.cfg.Interval)

	delay := reconnectBaseDelay
	for {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := s.readLoop(ctx, streamURL, candleCh); err != nil {
			log.Printf("[stream] %s: %v", s.cfg.Symbol, err)
		}
		if ctx.Err() != nil {
			return
		}

		if s.OnReconnect != nil {
			s.OnReconnect()
		}
		var wait time.Duration
		wait, delay = reconnectDelay(delay, time.Since(start))
		log.Printf("[stream] %s: reconnecting in %s", s.cfg.Symbol, wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// reconnectDelay returns the backoff to apply after a dropped connection and
// the value to carry into the next attempt. A connection that held for
// reconnectStableAfter restarts the ladder from the base delay.
func reconnectDelay(cur, connectedFor time.Duration) (wait, next time.Duration) {
	if connectedFor >= reconnectStableAfter {
		cur = reconnectBaseDelay
	}
	next = cur * 2
	if next > reconnectMaxDelay {
		next = reconnectMaxDelay
	}
	return cur, next
}

func (s *Stream) readLoop(ctx context.Context, streamURL string, candleCh chan<- model.Candle) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", streamURL, err)
	}
	defer conn.Close()
	log.Printf("[stream] %s: connected", s.cfg.Symbol)

	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev klineEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if ev.EventType != "kline" || !ev.Kline.Closed {
			continue
		}
		candle, err := s.parseEvent(ev)
		if err != nil {
			log.Printf("[stream] %s: parse: %v", s.cfg.Symbol, err)
			continue
		}
		select {
		case candleCh <- candle:
		default:
			log.Printf("[stream] %s: candle channel full, dropping", s.cfg.Symbol)
		}
	}
}

func (s *Stream) parseEvent(ev klineEvent) (model.Candle, error) {
	fields := [5]string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume}
	var vals [5]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("kline field %d %q: %w", i, f, err)
		}
		vals[i] = v
	}
	c := model.Candle{
		Symbol: s.cfg.Symbol,
		TS:     time.UnixMilli(ev.Kline.OpenTimeMs).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}
	if err := c.Validate(); err != nil {
		return model.Candle{}, err
	}
	return c, nil
}
