package strategy

import (
	"context"

	"signal-engine/internal/model"
)

// Engine manages registered strategies and evaluates candle windows against
// all of them. Strategies are stateless, so evaluations for different symbols
// or strategies are independent — the engine adds no locking and callers may
// run several engines (or Evaluate calls) in parallel over read-only windows.
type Engine struct {
	strategies []Strategy
	signalCh   chan Signal
}

// NewEngine creates a strategy engine with a buffered signal channel.
func NewEngine(signalBufferSize int) *Engine {
	return &Engine{
		signalCh: make(chan Signal, signalBufferSize),
	}
}

// Register adds a strategy to the engine.
func (e *Engine) Register(s Strategy) {
	e.strategies = append(e.strategies, s)
}

// Strategies returns the registered strategies in registration order.
func (e *Engine) Strategies() []Strategy {
	return e.strategies
}

// Signals returns the channel of signals emitted during Run.
func (e *Engine) Signals() <-chan Signal {
	return e.signalCh
}

// Evaluate runs every registered strategy over the window and returns at most
// one signal per strategy. The window is read-only; calling Evaluate twice on
// the same window yields identical results.
func (e *Engine) Evaluate(window []model.Candle) []Signal {
	var out []Signal
	for _, s := range e.strategies {
		if sig := s.GenerateSignal(window); sig != nil {
			out = append(out, *sig)
		}
	}
	return out
}

// Run consumes candle windows and routes them to all registered strategies,
// pushing emitted signals to the signal channel. A full channel drops the
// signal rather than stalling the window feed. Blocks until ctx is cancelled
// or windowCh is closed.
func (e *Engine) Run(ctx context.Context, windowCh <-chan []model.Candle) {
	for {
		select {
		case <-ctx.Done():
			return
		case window, ok := <-windowCh:
			if !ok {
				return
			}
			for _, sig := range e.Evaluate(window) {
				select {
				case e.signalCh <- sig:
				default:
					// signal channel full, drop
				}
			}
		}
	}
}
