// Package scanner wires the data source, the strategy engine, and the signal
// sinks into the two run modes: a one-shot scan over fetched windows and a
// live loop that re-evaluates on every closed candle.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"signal-engine/config"
	"signal-engine/internal/marketdata"
	"signal-engine/internal/metrics"
	"signal-engine/internal/model"
	"signal-engine/internal/notification"
	"signal-engine/internal/ringbuf"
	redisstore "signal-engine/internal/store/redis"
	"signal-engine/internal/store/sqlite"
	"signal-engine/internal/strategy"
)

// Service runs the strategy set over candle windows for the configured
// symbols and hands emitted signals to the configured sinks.
type Service struct {
	cfg    *config.Config
	log    *slog.Logger
	met    *metrics.Metrics
	engine *strategy.Engine
	client *marketdata.Client

	cache     *sqlite.Store         // nil when SQLITE_PATH unset
	publisher *redisstore.Publisher // nil when REDIS_ADDR unset
	notifier  notification.Notifier
}

// BuildStrategies constructs the four strategy variants from configuration.
// Any invalid parameter fails the whole build — a partial strategy set would
// silently skip rules the operator asked for.
func BuildStrategies(cfg *config.Config) ([]strategy.Strategy, error) {
	vb, err := strategy.NewVolumeBreakout(strategy.VolumeBreakoutConfig{
		VolumeMultiplier: cfg.VolumeMultiplier,
	})
	if err != nil {
		return nil, fmt.Errorf("volume breakout: %w", err)
	}
	rd, err := strategy.NewRSIDivergence(strategy.RSIDivergenceConfig{
		Period:     cfg.RSIPeriod,
		Oversold:   cfg.RSIOversold,
		Overbought: cfg.RSIOverbought,
	})
	if err != nil {
		return nil, fmt.Errorf("rsi divergence: %w", err)
	}
	bs, err := strategy.NewBollingerSqueeze(strategy.BollingerSqueezeConfig{
		BBPeriod:   cfg.BBPeriod,
		BBStd:      cfg.BBStd,
		ATRPeriod:  cfg.ATRPeriod,
		MACDFast:   cfg.MACDFast,
		MACDSlow:   cfg.MACDSlow,
		MACDSignal: cfg.MACDSignal,
	})
	if err != nil {
		return nil, fmt.Errorf("bollinger squeeze: %w", err)
	}
	ec, err := strategy.NewEMACrossover(strategy.EMACrossoverConfig{
		FastPeriod:       cfg.EMAFast,
		SlowPeriod:       cfg.EMASlow,
		VolumeMultiplier: cfg.EMAVolumeMultiplier,
	})
	if err != nil {
		return nil, fmt.Errorf("ema crossover: %w", err)
	}
	return []strategy.Strategy{vb, rd, bs, ec}, nil
}

// New builds a Service from configuration: strategies, REST client, and the
// optional cache, publisher, and notifier sinks.
func New(cfg *config.Config, logger *slog.Logger, met *metrics.Metrics) (*Service, error) {
	strategies, err := BuildStrategies(cfg)
	if err != nil {
		return nil, fmt.Errorf("build strategies: %w", err)
	}
	engine := strategy.NewEngine(256)
	for _, s := range strategies {
		engine.Register(s)
	}

	svc := &Service{
		cfg:      cfg,
		log:      logger,
		met:      met,
		engine:   engine,
		client:   marketdata.NewClient(marketdata.ClientConfig{BaseURL: cfg.ExchangeBaseURL}),
		notifier: buildNotifier(cfg),
	}

	if cfg.SQLitePath != "" {
		cache, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open candle cache: %w", err)
		}
		svc.cache = cache
	}
	if cfg.RedisAddr != "" {
		pub, err := redisstore.New(redisstore.PublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

func buildNotifier(cfg *config.Config) notification.Notifier {
	var sinks []notification.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		sinks = append(sinks, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.SignalWebhookURL != "" {
		sinks = append(sinks, notification.NewWebhookNotifier(cfg.SignalWebhookURL))
	}
	if len(sinks) == 0 {
		return notification.NewLogNotifier()
	}
	return notification.NewMulti(sinks...)
}

// Close releases held resources.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
}

// ScanOnce fetches one window per configured symbol, evaluates every strategy
// against it, and reports the outcome. Symbols failing to load are logged and
// skipped — one bad symbol must not abort the scan.
func (s *Service) ScanOnce(ctx context.Context) error {
	symbols := s.cfg.ParseSymbols()
	if len(symbols) == 0 {
		return fmt.Errorf("scan: no symbols configured")
	}

	var signals int
	for _, symbol := range symbols {
		window, err := s.loadWindow(ctx, symbol)
		if err != nil {
			s.log.Error("load window failed", "symbol", symbol, "err", err)
			continue
		}

		start := time.Now()
		sigs := s.engine.Evaluate(window)
		if s.met != nil {
			s.met.ObserveEval(start)
		}

		if len(sigs) == 0 {
			s.log.Info("no signal", "symbol", symbol, "candles", len(window))
			continue
		}
		for _, sig := range sigs {
			s.emit(ctx, sig)
			signals++
		}
	}
	s.log.Info("scan complete", "symbols", len(symbols), "signals", signals)
	return nil
}

// RunLive streams closed candles per symbol, maintains trailing windows, and
// re-evaluates the strategy set on each update. Blocks until ctx is done.
func (s *Service) RunLive(ctx context.Context) error {
	symbols := s.cfg.ParseSymbols()
	if len(symbols) == 0 {
		return fmt.Errorf("live: no symbols configured")
	}

	windowCh := make(chan []model.Candle, len(symbols))
	go s.engine.Run(ctx, windowCh)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.drainSignals(ctx)
	}()

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.runSymbol(ctx, symbol, windowCh)
		}(symbol)
	}

	wg.Wait()
	return ctx.Err()
}

// runSymbol backfills the trailing window over REST, then keeps it current
// from the websocket stream, submitting a snapshot for evaluation on every
// closed candle.
func (s *Service) runSymbol(ctx context.Context, symbol string, windowCh chan<- []model.Candle) {
	win := ringbuf.New(s.cfg.WindowSize)

	backfill, err := s.loadWindow(ctx, symbol)
	if err != nil {
		s.log.Warn("backfill failed, starting cold", "symbol", symbol, "err", err)
	}
	for _, c := range backfill {
		win.Push(c)
	}
	s.log.Info("live window seeded", "symbol", symbol, "candles", win.Len())

	stream := marketdata.NewStream(marketdata.StreamConfig{
		WSBaseURL: s.cfg.ExchangeWSURL,
		Symbol:    symbol,
		Interval:  s.cfg.Interval,
	})
	if s.met != nil {
		stream.OnReconnect = s.met.WSReconnects.Inc
	}

	candleCh := make(chan model.Candle, 16)
	go stream.Run(ctx, candleCh)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-candleCh:
			if !ok {
				return
			}
			win.Push(c)
			if s.met != nil {
				s.met.CandlesIngested.Inc()
				s.met.WindowsEvaluated.Inc()
			}
			select {
			case windowCh <- win.Snapshot():
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Service) drainSignals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-s.engine.Signals():
			if !ok {
				return
			}
			s.emit(ctx, sig)
		}
	}
}

// loadWindow fetches a fresh window, caching it on success. When the fetch
// fails and a cache is configured, the most recent cached candles are used
// instead so offline scans still work.
func (s *Service) loadWindow(ctx context.Context, symbol string) ([]model.Candle, error) {
	start := time.Now()
	window, err := s.client.FetchCandles(ctx, symbol, s.cfg.Interval, s.cfg.ScanWindow)
	if s.met != nil {
		s.met.FetchDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.cache == nil {
			return nil, err
		}
		cached, cacheErr := s.cache.ReadCandles(ctx, symbol, s.cfg.Interval, s.cfg.ScanWindow)
		if cacheErr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("%w (cache fallback failed: %v)", err, cacheErr)
		}
		s.log.Warn("using cached candles", "symbol", symbol, "candles", len(cached), "fetch_err", err)
		return cached, nil
	}

	if s.cache != nil {
		if err := s.cache.WriteCandles(ctx, s.cfg.Interval, window); err != nil {
			s.log.Warn("cache write failed", "symbol", symbol, "err", err)
		}
	}
	return window, nil
}

// emit hands one signal to every configured sink.
func (s *Service) emit(ctx context.Context, sig strategy.Signal) {
	s.log.Info("signal",
		"strategy", sig.Strategy,
		"symbol", sig.Symbol,
		"direction", string(sig.Direction),
		"entry", sig.EntryPrice,
		"stop", sig.StopLoss,
		"take", sig.TakeProfit,
		"confidence", sig.Confidence,
	)
	if s.met != nil {
		s.met.SignalsTotal.WithLabelValues(sig.Strategy, string(sig.Direction)).Inc()
	}
	if s.publisher != nil {
		start := time.Now()
		if err := s.publisher.PublishSignal(ctx, sig); err != nil {
			s.log.Error("publish failed", "err", err)
		}
		if s.met != nil {
			s.met.PublishDur.Observe(time.Since(start).Seconds())
		}
	}
	if err := s.notifier.Notify(ctx, sig); err != nil {
		s.log.Error("notify failed", "err", err)
	}
}
