// Package sentiment looks up retail-chatter data for a ticker from the
// ApeWisdom trending-stocks feed.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/models"
)

const (
	apeWisdomURL     = "https://apewisdom.io/api/v1.0/filter/all-stocks/page/1"
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches trending-stock mentions from ApeWisdom.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a sentiment client.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		baseURL: apeWisdomURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.WithProvider(logger, "apewisdom"),
	}
}

type apeWisdomResponse struct {
	Results []struct {
		Rank     int    `json:"rank"`
		Ticker   string `json:"ticker"`
		Mentions int    `json:"mentions"`
		Upvotes  int    `json:"upvotes"`
	} `json:"results"`
}

// TickerSentiment returns the chatter snapshot for a symbol. A ticker absent
// from the trending list yields a zero-mention snapshot, not an error; only
// a failed fetch is an error.
func (c *Client) TickerSentiment(ctx context.Context, ticker string) (*models.SentimentSnapshot, error) {
	ticker = strings.ToUpper(ticker)
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, apperrors.NewDataError("apewisdom", ticker, "bad request", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	logging.LogAPICall(c.logger, "apewisdom", c.baseURL, time.Since(started), err)
	if err != nil {
		return nil, apperrors.NewDataError("apewisdom", ticker, "trending fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewDataError("apewisdom", ticker,
			fmt.Sprintf("status %d: %s", resp.StatusCode, body), nil)
	}

	var payload apeWisdomResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewDataError("apewisdom", ticker, "bad response body", err)
	}

	for _, r := range payload.Results {
		if strings.ToUpper(r.Ticker) == ticker {
			return &models.SentimentSnapshot{
				Ticker:   ticker,
				Rank:     r.Rank,
				Mentions: r.Mentions,
				Upvotes:  r.Upvotes,
				Trending: true,
			}, nil
		}
	}

	// Not trending: a quiet ticker, not a failure.
	return &models.SentimentSnapshot{Ticker: ticker}, nil
}
