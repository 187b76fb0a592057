// Package provider fetches candle history from a JSON time-series
// market-data API. The scoring core never performs I/O itself; it
// receives already-materialized candle slices from here. Provider
// failures surface as ErrNoData, which callers treat exactly like
// insufficient history, never as a fatal error.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalforge/internal/model"
)

// ErrNoData is returned when the provider has no candles for the
// requested symbol or the request failed. Expected condition.
var ErrNoData = errors.New("no data returned by provider")

// Provider is the data collaborator contract the engine consumes.
type Provider interface {
	GetHistory(ctx context.Context, symbol string, lookback int) ([]model.Candle, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// Client talks to a time-series API.
type Client struct {
	apiKey   string
	baseURL  string
	interval string
	http     *httpClient
	logger   zerolog.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	Interval       string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a market-data client.
func NewClient(opts ClientOptions) *Client {
	if opts.Interval == "" {
		opts.Interval = "1day"
	}
	return &Client{
		apiKey:   opts.APIKey,
		baseURL:  opts.BaseURL,
		interval: opts.Interval,
		http: newHTTPClient(httpClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "provider").Logger(),
	}
}

// seriesResponse is the wire format of the time-series endpoint.
// Numeric fields arrive as strings.
type seriesResponse struct {
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GetHistory fetches up to lookback candles for the symbol, sorted
// ascending by timestamp.
func (c *Client) GetHistory(ctx context.Context, symbol string, lookback int) ([]model.Candle, error) {
	url := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		c.baseURL, symbol, c.interval, lookback, c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Int("lookback", lookback).Msg("Fetching candle history")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.do(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("History request failed")
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNoData, err)
	}

	var data seriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing time-series response")
		return nil, fmt.Errorf("%w: parsing response: %v", ErrNoData, err)
	}
	if data.Status == "error" {
		c.logger.Warn().Str("message", data.Message).Str("symbol", symbol).Msg("Provider returned an error status")
		return nil, fmt.Errorf("%w: %s", ErrNoData, data.Message)
	}
	if len(data.Values) == 0 {
		return nil, ErrNoData
	}

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			// Daily series omit the time component.
			ts, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				continue
			}
		}
		candles = append(candles, model.Candle{
			Timestamp: ts,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// GetPrice returns the latest close for the symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := c.GetHistory(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	return candles[len(candles)-1].Close, nil
}
