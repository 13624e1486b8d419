// Package ringbuf provides a fixed-capacity trailing window of candles for
// the live evaluation loop. Appending beyond capacity evicts the oldest
// candle, so the buffer always holds the most recent candles in arrival
// order without reallocating.
package ringbuf

import "signal-engine/internal/model"

// Window is a trailing candle window backed by a circular buffer.
// Single-goroutine usage — no locks.
type Window struct {
	buf   []model.Candle
	head  int // next write position
	count int
}

// New creates a trailing window holding up to capacity candles.
// Minimum capacity is 1.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]model.Candle, capacity)}
}

// Push appends a candle, evicting the oldest one when the window is full.
func (w *Window) Push(c model.Candle) {
	w.buf[w.head] = c
	w.head = (w.head + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

// Len returns the number of candles currently held.
func (w *Window) Len() int { return w.count }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Full reports whether the window has reached capacity.
func (w *Window) Full() bool { return w.count == len(w.buf) }

// Snapshot returns the window contents oldest-first as a fresh slice, safe to
// hand to strategies while the window keeps filling.
func (w *Window) Snapshot() []model.Candle {
	out := make([]model.Candle, w.count)
	start := w.head - w.count
	if start < 0 {
		start += len(w.buf)
	}
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(start+i)%len(w.buf)]
	}
	return out
}
