// Package scanner fetches daily price history and runs the hype scan over a
// candidate list.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/models"
	"hype-hunter/pkg/utils"
)

const (
	tiingoBaseURL  = "https://api.tiingo.com"
	requestTimeout = 10 * time.Second
)

// BarSource supplies daily OHLCV history for a symbol.
type BarSource interface {
	DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]models.PriceBar, error)
}

// NewsSource supplies recent headlines for a symbol.
type NewsSource interface {
	News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// TiingoClient fetches end-of-day prices and news from the Tiingo REST API.
type TiingoClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryCfg   utils.RetryConfig
	logger     zerolog.Logger
}

// NewTiingoClient creates a Tiingo API client.
func NewTiingoClient(apiKey string, logger zerolog.Logger) *TiingoClient {
	return &TiingoClient{
		apiKey:  apiKey,
		baseURL: tiingoBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		retryCfg: utils.DefaultRetryConfig(),
		logger:   logging.WithProvider(logger, "tiingo"),
	}
}

// NewTiingoClientForBase creates a client against a non-default API base
// URL, for tests and proxies.
func NewTiingoClientForBase(baseURL, apiKey string, logger zerolog.Logger) *TiingoClient {
	c := NewTiingoClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

// tiingoBar is the wire format of a Tiingo daily price row.
type tiingoBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// tiingoNews is the wire format of a Tiingo news article.
type tiingoNews struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Source        string    `json:"source"`
	Description   string    `json:"description"`
	PublishedDate time.Time `json:"publishedDate"`
}

// DailyBars fetches daily bars for a symbol over the trailing lookback
// window, ordered ascending by date. Fetch failures and thin histories come
// back wrapping ErrNoData so scan loops can skip the symbol.
func (c *TiingoClient) DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]models.PriceBar, error) {
	start := time.Now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s", c.baseURL, symbol, start)

	raw, err := utils.RetryWithResult(ctx, c.retryCfg, func() ([]tiingoBar, error) {
		var rows []tiingoBar
		if err := c.getJSON(ctx, endpoint, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, apperrors.NewDataError("tiingo", symbol, "daily price fetch failed", err)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewDataError("tiingo", symbol, "no price history", nil)
	}

	bars := make([]models.PriceBar, len(raw))
	for i, r := range raw {
		bars[i] = models.PriceBar{
			Date:   r.Date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// News fetches the most recent headlines for a symbol.
func (c *TiingoClient) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}
	endpoint := fmt.Sprintf("%s/tiingo/news?tickers=%s&limit=%d", c.baseURL, symbol, limit)

	var raw []tiingoNews
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, apperrors.NewDataError("tiingo", symbol, "news fetch failed", err)
	}

	items := make([]models.NewsItem, len(raw))
	for i, r := range raw {
		items[i] = models.NewsItem{
			Title:       r.Title,
			URL:         r.URL,
			Source:      r.Source,
			Description: r.Description,
			PublishedAt: r.PublishedDate,
		}
	}
	return items, nil
}

// getJSON performs an authenticated GET and decodes the response body.
func (c *TiingoClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	logging.LogAPICall(c.logger, "tiingo", endpoint, time.Since(started), err)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
