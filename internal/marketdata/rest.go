// Package marketdata supplies ordered candle windows to the engine: a REST
// klines client for batch fetches and a websocket subscriber for live closed
// candles. The strategy core never fetches, paginates, or retries — that is
// entirely this package's job.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"signal-engine/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxPageSize    = 1000
)

// ClientConfig configures the REST klines client.
type ClientConfig struct {
	BaseURL string        // e.g. "https://api.binance.com"
	Timeout time.Duration // per-request; defaults to 15s
}

// Client fetches OHLCV candles from a Binance-style klines endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a REST klines client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchCandles retrieves the most recent limit candles for symbol at the
// given interval, validated as an ordered window.
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error) {
	if limit <= 0 || limit > maxPageSize {
		return nil, fmt.Errorf("fetch %s: limit %d out of range 1..%d", symbol, limit, maxPageSize)
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	candles, err := c.fetchPage(ctx, symbol, q)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateWindow(candles); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	return candles, nil
}

// FetchCandlesRange retrieves all candles between start and end, paginating
// by open time in pages of up to 1000.
func (c *Client) FetchCandlesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]model.Candle, error) {
	var all []model.Candle
	cursor := start
	for cursor.Before(end) {
		q := url.Values{}
		q.Set("symbol", symbol)
		q.Set("interval", interval)
		q.Set("limit", strconv.Itoa(maxPageSize))
		q.Set("startTime", strconv.FormatInt(cursor.UnixMilli(), 10))
		q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))

		page, err := c.fetchPage(ctx, symbol, q)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		next := page[len(page)-1].TS
		if !next.After(cursor) {
			break // no forward progress, stop rather than loop
		}
		cursor = next.Add(time.Millisecond)
	}
	if err := model.ValidateWindow(all); err != nil {
		return nil, fmt.Errorf("fetch range %s: %w", symbol, err)
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, symbol string, q url.Values) ([]model.Candle, error) {
	u := c.baseURL + "/api/v3/klines?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: create request: %w", symbol, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", symbol, resp.StatusCode, body)
	}

	var rows [][]interface{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("fetch %s: decode: %w", symbol, err)
	}

	candles := make([]model.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(symbol, row)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline converts one klines row into a Candle. The row layout is
// [openTime, open, high, low, close, volume, ...]; the exchange sends prices
// as strings and timestamps as numbers, so both shapes are accepted per
// field. Trailing fields are ignored.
func parseKline(symbol string, row []interface{}) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("kline row has %d fields, want >= 6", len(row))
	}
	openTimeMs, err := klineFloat(row[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("kline open time: %w", err)
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := klineFloat(row[i])
		if err != nil {
			return model.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	return model.Candle{
		Symbol: symbol,
		TS:     time.UnixMilli(int64(openTimeMs)).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// klineFloat converts a decoded kline field (json.Number or string) to float64.
func klineFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected kline field type %T", v)
	}
}
