package scanner

import (
	"testing"

	"signal-engine/config"
	"signal-engine/internal/notification"
)

func defaultConfig() *config.Config {
	return &config.Config{
		Symbols:             "BTCUSDT,ETHUSDT",
		Interval:            "15m",
		ScanWindow:          200,
		WindowSize:          200,
		VolumeMultiplier:    2.0,
		RSIPeriod:           14,
		RSIOversold:         30,
		RSIOverbought:       70,
		BBPeriod:            20,
		BBStd:               2.0,
		ATRPeriod:           14,
		MACDFast:            12,
		MACDSlow:            26,
		MACDSignal:          9,
		EMAFast:             5,
		EMASlow:             20,
		EMAVolumeMultiplier: 1.5,
	}
}

func TestBuildStrategies_Defaults(t *testing.T) {
	strategies, err := BuildStrategies(defaultConfig())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(strategies) != 4 {
		t.Fatalf("got %d strategies, want 4", len(strategies))
	}
	names := map[string]bool{}
	for _, s := range strategies {
		names[s.Name()] = true
	}
	for _, want := range []string{"Volume_Breakout", "RSI_Divergence", "Bollinger_Squeeze", "EMA_Crossover"} {
		if !names[want] {
			t.Errorf("missing strategy %s (have %v)", want, names)
		}
	}
}

func TestBuildStrategies_InvalidParameterFailsWholeBuild(t *testing.T) {
	cfg := defaultConfig()
	cfg.RSIOversold = 80 // above overbought
	if _, err := BuildStrategies(cfg); err == nil {
		t.Fatal("expected build failure for inconsistent RSI thresholds")
	}

	cfg = defaultConfig()
	cfg.EMAFast = 50 // above slow
	if _, err := BuildStrategies(cfg); err == nil {
		t.Fatal("expected build failure for inverted EMA periods")
	}
}

func TestBuildNotifier_FallsBackToLog(t *testing.T) {
	if _, ok := buildNotifier(defaultConfig()).(*notification.LogNotifier); !ok {
		t.Fatal("expected log notifier when no delivery channel is configured")
	}
}

func TestBuildNotifier_FansOutConfiguredChannels(t *testing.T) {
	cfg := defaultConfig()
	cfg.SignalWebhookURL = "http://127.0.0.1:9/hook"
	if _, ok := buildNotifier(cfg).(*notification.Multi); !ok {
		t.Fatal("expected fan-out notifier with a webhook configured")
	}
}
