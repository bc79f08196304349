// Package discovery finds candidate tickers from market-mover screeners.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
)

const (
	yahooScreenerURL = "https://query1.finance.yahoo.com/v1/finance/screener/predefined/saved"
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxSymbolLen     = 5
)

// Screener identifiers for the mover feeds.
const (
	ScreenerDayGainers = "day_gainers"
	ScreenerMostActive = "most_active"
)

// Engine pulls market movers from Yahoo Finance's predefined screeners.
type Engine struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewEngine creates a discovery engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		baseURL: yahooScreenerURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.WithProvider(logger, "yahoo"),
	}
}

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
	} `json:"finance"`
}

// MarketMovers returns the deduplicated union of day gainers and most-active
// symbols, cleaned of indices, share classes, and long non-common tickers.
// One screener failing is tolerated; both failing is an error.
func (e *Engine) MarketMovers(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		count = 50
	}

	seen := make(map[string]struct{})
	var failures int
	for _, id := range []string{ScreenerDayGainers, ScreenerMostActive} {
		symbols, err := e.fetchScreener(ctx, id, count)
		if err != nil {
			e.logger.Warn().Str("screener", id).Err(err).Msg("Screener fetch failed")
			failures++
			continue
		}
		for _, s := range symbols {
			seen[s] = struct{}{}
		}
	}
	if failures == 2 {
		return nil, apperrors.NewDataError("yahoo", "", "all screeners failed", nil)
	}

	movers := make([]string, 0, len(seen))
	for s := range seen {
		movers = append(movers, s)
	}
	sort.Strings(movers)

	e.logger.Info().Int("candidates", len(movers)).Msg("Discovery completed")
	return movers, nil
}

// fetchScreener pulls one predefined screener and filters its symbols.
func (e *Engine) fetchScreener(ctx context.Context, screenerID string, count int) ([]string, error) {
	endpoint := fmt.Sprintf("%s?formatted=false&scrIds=%s&count=%d", e.baseURL, screenerID, count)
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.httpClient.Do(req)
	logging.LogAPICall(e.logger, "yahoo", screenerID, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("screener %s: status %d: %s", screenerID, resp.StatusCode, body)
	}

	var payload screenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("screener %s: %w", screenerID, err)
	}
	if len(payload.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener %s: empty result", screenerID)
	}

	var symbols []string
	for _, q := range payload.Finance.Result[0].Quotes {
		if isCommonTicker(q.Symbol) {
			symbols = append(symbols, strings.ToUpper(q.Symbol))
		}
	}
	return symbols, nil
}

// isCommonTicker rejects indices (^GSPC), share classes and units (BRK-B),
// and anything longer than a standard US common-stock symbol.
func isCommonTicker(symbol string) bool {
	if symbol == "" || len(symbol) > maxSymbolLen {
		return false
	}
	if strings.ContainsAny(symbol, "^-") {
		return false
	}
	return true
}
