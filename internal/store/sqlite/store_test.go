package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"signal-engine/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "candles.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCandles(symbol string, n int) []model.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = model.Candle{
			Symbol: symbol,
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   p, High: p + 1, Low: p - 1, Close: p + 0.5,
			Volume: float64(10 * (i + 1)),
		}
	}
	return out
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	written := testCandles("BTCUSDT", 5)
	if err := s.WriteCandles(ctx, "1m", written); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.ReadCandles(ctx, "BTCUSDT", "1m", 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d candles, want 5", len(got))
	}
	for i := range got {
		w := written[i]
		if !got[i].TS.Equal(w.TS) || got[i].Close != w.Close || got[i].Volume != w.Volume {
			t.Errorf("candle %d: got %+v, want %+v", i, got[i], w)
		}
	}
}

func TestStore_ReadReturnsMostRecentAscending(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.WriteCandles(ctx, "1m", testCandles("BTCUSDT", 20)); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.ReadCandles(ctx, "BTCUSDT", "1m", 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d candles, want 5", len(got))
	}
	// last 5 of 20, oldest first
	if got[0].Close != 115.5 || got[4].Close != 119.5 {
		t.Errorf("unexpected slice: first=%.1f last=%.1f", got[0].Close, got[4].Close)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].TS.After(got[i-1].TS) {
			t.Fatalf("not ascending at %d", i)
		}
	}
}

func TestStore_UpsertReplacesCandle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	candles := testCandles("BTCUSDT", 3)
	if err := s.WriteCandles(ctx, "1m", candles); err != nil {
		t.Fatalf("write: %v", err)
	}
	candles[1].Close = 999
	if err := s.WriteCandles(ctx, "1m", candles); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	got, err := s.ReadCandles(ctx, "BTCUSDT", "1m", 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candles after upsert, want 3", len(got))
	}
	if got[1].Close != 999 {
		t.Errorf("upsert did not replace: %.1f", got[1].Close)
	}
}

func TestStore_SymbolsAndIntervalsIsolated(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.WriteCandles(ctx, "1m", testCandles("BTCUSDT", 3)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteCandles(ctx, "15m", testCandles("BTCUSDT", 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteCandles(ctx, "1m", testCandles("ETHUSDT", 2)); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		symbol, interval string
		want             int
	}{
		{"BTCUSDT", "1m", 3},
		{"BTCUSDT", "15m", 4},
		{"ETHUSDT", "1m", 2},
		{"SOLUSDT", "1m", 0},
	}
	for _, tc := range cases {
		got, err := s.ReadCandles(ctx, tc.symbol, tc.interval, 10)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.symbol, tc.interval, err)
		}
		if len(got) != tc.want {
			t.Errorf("%s/%s: got %d candles, want %d", tc.symbol, tc.interval, len(got), tc.want)
		}
	}
}

func TestStore_WriteEmptyIsNoop(t *testing.T) {
	s := testStore(t)
	if err := s.WriteCandles(context.Background(), "1m", nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
}
