package scanner

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/logging"
	"hype-hunter/internal/metrics"
	"hype-hunter/internal/models"
	"hype-hunter/internal/store"
)

// Scanner runs the hype scan: fetch bars per candidate, compute metrics,
// filter by relative volume. Symbols without enough data are skipped, never
// fatal; the scan reports whatever it could compute.
type Scanner struct {
	source       BarSource
	engine       *metrics.Engine
	store        store.DataStore
	lookbackDays int
	logger       zerolog.Logger
	now          func() time.Time
}

// New creates a Scanner. store may be nil to disable the local bar cache.
func New(source BarSource, engine *metrics.Engine, st store.DataStore, lookbackDays int, logger zerolog.Logger) *Scanner {
	if lookbackDays <= 0 {
		lookbackDays = 40
	}
	return &Scanner{
		source:       source,
		engine:       engine,
		store:        st,
		lookbackDays: lookbackDays,
		logger:       logger,
		now:          time.Now,
	}
}

// ScanResult is the outcome of a batch scan.
type ScanResult struct {
	Hits    []models.HypeMetrics
	Scanned int
	Skipped []string
}

// Scan computes hype metrics for each symbol and returns those at or above
// minRVOL, sorted by RVOL descending. A symbol that fails with no-data is
// recorded in Skipped; any other error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, symbols []string, minRVOL float64) (*ScanResult, error) {
	result := &ScanResult{Scanned: len(symbols)}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		m, err := s.scanOne(ctx, symbol)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNoData) {
				tickerLog := logging.WithTicker(s.logger, symbol)
				tickerLog.Debug().Err(err).Msg("Skipping symbol")
				result.Skipped = append(result.Skipped, symbol)
				continue
			}
			return nil, err
		}
		if m.RVOL >= minRVOL {
			result.Hits = append(result.Hits, *m)
		}
	}

	sort.Slice(result.Hits, func(i, j int) bool {
		return result.Hits[i].RVOL > result.Hits[j].RVOL
	})

	logging.LogScan(s.logger, result.Scanned, len(result.Hits), minRVOL)
	return result, nil
}

// Metrics computes the hype snapshot for a single symbol.
func (s *Scanner) Metrics(ctx context.Context, symbol string) (*models.HypeMetrics, error) {
	return s.scanOne(ctx, symbol)
}

// Bars fetches daily history for a symbol, refreshing the local cache.
func (s *Scanner) Bars(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	bars, err := s.source.DailyBars(ctx, symbol, s.lookbackDays)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.SaveBars(ctx, symbol, bars); err != nil {
			// Cache writes are best effort.
			tickerLog := logging.WithTicker(s.logger, symbol)
			tickerLog.Warn().Err(err).Msg("Bar cache write failed")
		}
	}
	return bars, nil
}

func (s *Scanner) scanOne(ctx context.Context, symbol string) (*models.HypeMetrics, error) {
	bars, err := s.Bars(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeHypeMetrics(symbol, bars, s.now())
}
