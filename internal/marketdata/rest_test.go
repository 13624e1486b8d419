package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// klineRow builds one wire-format klines row: numeric open time, string
// prices, plus the trailing fields the exchange appends.
func klineRow(openTimeMs int64, o, h, l, c, v string) []interface{} {
	return []interface{}{
		openTimeMs, o, h, l, c, v,
		openTimeMs + 60_000, "0", 0, "0", "0", "0",
	}
}

func TestParseKline(t *testing.T) {
	raw, _ := json.Marshal(klineRow(1700000000000, "100.5", "101.2", "99.8", "100.9", "1234.56"))
	var row []interface{}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil {
		t.Fatal(err)
	}

	c, err := parseKline("BTCUSDT", row)
	if err != nil {
		t.Fatalf("parseKline: %v", err)
	}
	if c.Symbol != "BTCUSDT" {
		t.Errorf("symbol: %s", c.Symbol)
	}
	if got := c.TS.UnixMilli(); got != 1700000000000 {
		t.Errorf("open time: %d", got)
	}
	if c.Open != 100.5 || c.High != 101.2 || c.Low != 99.8 || c.Close != 100.9 || c.Volume != 1234.56 {
		t.Errorf("fields: %+v", c)
	}
}

func TestParseKline_ShortRow(t *testing.T) {
	if _, err := parseKline("BTCUSDT", []interface{}{json.Number("1"), "2", "3"}); err == nil {
		t.Error("short row accepted")
	}
}

func TestParseKline_BadFieldType(t *testing.T) {
	row := []interface{}{json.Number("1700000000000"), "100", true, "99", "100", "10"}
	if _, err := parseKline("BTCUSDT", row); err == nil {
		t.Error("boolean price field accepted")
	}
}

func TestFetchCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol query: %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit query: %s", got)
		}
		rows := [][]interface{}{
			klineRow(1700000000000, "100", "101", "99", "100.5", "10"),
			klineRow(1700000060000, "100.5", "102", "100", "101.5", "20"),
			klineRow(1700000120000, "101.5", "103", "101", "102.5", "30"),
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	candles, err := c.FetchCandles(context.Background(), "BTCUSDT", "1m", 3)
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}
	if candles[2].Close != 102.5 || candles[0].Volume != 10 {
		t.Errorf("candles: %+v", candles)
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].TS.After(candles[i-1].TS) {
			t.Fatalf("window not ascending at %d", i)
		}
	}
}

func TestFetchCandles_BadLimit(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:0"})
	for _, limit := range []int{0, -5, 1001} {
		if _, err := c.FetchCandles(context.Background(), "BTCUSDT", "1m", limit); err == nil {
			t.Errorf("limit %d accepted", limit)
		}
	}
}

func TestFetchCandles_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	if _, err := c.FetchCandles(context.Background(), "NOPEUSDT", "1m", 10); err == nil {
		t.Error("HTTP 400 accepted")
	}
}

func TestFetchCandles_RejectsUnorderedWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := [][]interface{}{
			klineRow(1700000060000, "100", "101", "99", "100.5", "10"),
			klineRow(1700000000000, "100.5", "102", "100", "101.5", "20"),
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	if _, err := c.FetchCandles(context.Background(), "BTCUSDT", "1m", 2); err == nil {
		t.Error("descending window accepted")
	}
}

func TestFetchCandlesRange_Paginates(t *testing.T) {
	const pageMs = int64(60_000)
	start := int64(1700000000000)
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		from, _ := json.Number(r.URL.Query().Get("startTime")).Int64()
		to, _ := json.Number(r.URL.Query().Get("endTime")).Int64()
		var rows [][]interface{}
		// serve at most 2 candles per page to force pagination
		for ts := alignUp(from, pageMs); ts < to && len(rows) < 2; ts += pageMs {
			rows = append(rows, klineRow(ts, "100", "101", "99", "100", "10"))
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	candles, err := c.FetchCandlesRange(context.Background(), "BTCUSDT", "1m",
		time.UnixMilli(start), time.UnixMilli(start+5*pageMs))
	if err != nil {
		t.Fatalf("FetchCandlesRange: %v", err)
	}
	if len(candles) != 5 {
		t.Fatalf("got %d candles, want 5", len(candles))
	}
	if requests < 3 {
		t.Errorf("expected pagination, got %d requests", requests)
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].TS.After(candles[i-1].TS) {
			t.Fatalf("range not ascending at %d", i)
		}
	}
}

func alignUp(ms, step int64) int64 {
	if rem := ms % step; rem != 0 {
		return ms + step - rem
	}
	return ms
}

func TestFetchCandlesRange_EmptyRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	now := time.Now()
	candles, err := c.FetchCandlesRange(context.Background(), "BTCUSDT", "1m", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if len(candles) != 0 {
		t.Errorf("got %d candles, want 0", len(candles))
	}
}
