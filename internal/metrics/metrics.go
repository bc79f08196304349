// Package metrics implements the hype-metrics and risk-sizing calculation
// engine: relative volume with optional time-of-day normalization, short
// horizon price velocity, and ATR-based stop/position sizing. All functions
// are pure over their input bars; thin or malformed input yields an error
// wrapping errors.ErrNoData, never a panic.
package metrics

import (
	"time"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/models"
)

// regularSessionMinutes is the full-session length the intraday volume
// curve is calibrated to (a 6.5 hour US equity session).
const regularSessionMinutes = 390.0

// Config holds engine tunables.
type Config struct {
	RVOLLookback     int  // trailing full days averaged for RVOL
	VelocityLookback int  // bars for the rate-of-change metric
	EMAPeriod        int  // span for the trend-filter EMA
	ATRPeriod        int  // bars averaged for ATR
	IntradayRVOL     bool // time-of-day adjusted RVOL vs the plain ratio
	SessionOpenMin   int  // session open, minutes after midnight
	SessionCloseMin  int  // session close, minutes after midnight
	Location         *time.Location
	// MinWeight floors the first curve segment so a scan seconds after the
	// open never divides by a near-zero expected volume.
	MinWeight float64
}

// DefaultConfig returns the default engine configuration (US equities,
// 09:30-16:00 Eastern).
func DefaultConfig() Config {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return Config{
		RVOLLookback:     20,
		VelocityLookback: 5,
		EMAPeriod:        9,
		ATRPeriod:        20,
		IntradayRVOL:     true,
		SessionOpenMin:   9*60 + 30,
		SessionCloseMin:  16 * 60,
		Location:         loc,
		MinWeight:        0.02,
	}
}

// Engine computes hype metrics and risk plans from daily price bars.
type Engine struct {
	cfg Config
}

// NewEngine creates a metrics engine, filling zero-valued tunables from the
// defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.RVOLLookback <= 0 {
		cfg.RVOLLookback = def.RVOLLookback
	}
	if cfg.VelocityLookback <= 0 {
		cfg.VelocityLookback = def.VelocityLookback
	}
	if cfg.EMAPeriod <= 0 {
		cfg.EMAPeriod = def.EMAPeriod
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = def.ATRPeriod
	}
	if cfg.SessionOpenMin <= 0 {
		cfg.SessionOpenMin = def.SessionOpenMin
	}
	if cfg.SessionCloseMin <= 0 {
		cfg.SessionCloseMin = def.SessionCloseMin
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.MinWeight <= 0 {
		cfg.MinWeight = def.MinWeight
	}
	return &Engine{cfg: cfg}
}

// MinBars returns the minimum bar count ComputeHypeMetrics accepts: the
// current (possibly partial) bar plus the longer of the trailing volume and
// velocity windows.
func (e *Engine) MinBars() int {
	lookback := e.cfg.RVOLLookback
	if e.cfg.VelocityLookback > lookback {
		lookback = e.cfg.VelocityLookback
	}
	return lookback + 1
}

// ComputeHypeMetrics computes the momentum snapshot for a symbol from its
// daily bars, ordered ascending by date. now is the wall-clock time used for
// the intraday volume adjustment. Returns an error wrapping ErrNoData when
// the series is too short or the trailing average volume is zero.
func (e *Engine) ComputeHypeMetrics(ticker string, bars []models.PriceBar, now time.Time) (*models.HypeMetrics, error) {
	n := len(bars)
	if n < e.MinBars() {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "%s: %d bars, need %d", ticker, n, e.MinBars())
	}

	latest := bars[n-1]
	prev := bars[n-2]

	// Trailing average excludes the latest (possibly partial) bar.
	avgVol := mean(volumes(bars[n-1-e.cfg.RVOLLookback : n-1]))
	weight := e.sessionWeight(latest.Date, now)
	expected := avgVol * weight
	if expected <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "%s: zero expected volume", ticker)
	}
	rvol := float64(latest.Volume) / expected

	ref := bars[n-1-e.cfg.VelocityLookback].Close
	if ref <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "%s: zero reference close", ticker)
	}
	roc := (latest.Close - ref) / ref * 100

	var gap float64
	if prev.Close > 0 {
		gap = (latest.Open - prev.Close) / prev.Close * 100
	}

	emaSeries := ema(closePrices(bars), e.cfg.EMAPeriod)

	return &models.HypeMetrics{
		Ticker:     ticker,
		Price:      latest.Close,
		RVOL:       rvol,
		GapPct:     gap,
		ROC5:       roc,
		Above9EMA:  latest.Close > emaSeries[n-1],
		Volume:     latest.Volume,
		ComputedAt: now,
	}, nil
}

// sessionWeight returns the fraction of a full day's volume expected to have
// traded by now. It is 1.0 whenever the latest bar is a completed session:
// the bar is dated before today, the clock is outside session hours, or the
// intraday adjustment is disabled.
func (e *Engine) sessionWeight(barDate, now time.Time) float64 {
	if !e.cfg.IntradayRVOL {
		return 1.0
	}

	local := now.In(e.cfg.Location)
	by, bm, bd := barDate.In(e.cfg.Location).Date()
	ny, nm, nd := local.Date()
	if by != ny || bm != nm || bd != nd {
		// Stale bar: treat it as a full session.
		return 1.0
	}

	minute := local.Hour()*60 + local.Minute()
	if minute < e.cfg.SessionOpenMin || minute >= e.cfg.SessionCloseMin {
		return 1.0
	}

	elapsed := float64(minute - e.cfg.SessionOpenMin)
	sessionLen := float64(e.cfg.SessionCloseMin - e.cfg.SessionOpenMin)
	if sessionLen <= 0 {
		return 1.0
	}
	// The curve is calibrated to a 390-minute session; rescale elapsed time
	// for exchanges with different hours.
	return e.volumeCurveWeight(elapsed * regularSessionMinutes / sessionLen)
}

// volumeCurveWeight maps elapsed session minutes to the cumulative share of
// daily volume via a piecewise-linear intraday U-curve: heavy at the open and
// close, light midday. Segments are continuous at their boundaries and the
// result is monotonically non-decreasing and floored at MinWeight.
func (e *Engine) volumeCurveWeight(m float64) float64 {
	var w float64
	switch {
	case m <= 0:
		w = 0
	case m <= 30:
		w = 0.20 * (m / 30)
	case m <= 90:
		w = 0.20 + 0.15*((m-30)/60)
	case m <= 330:
		w = 0.35 + 0.40*((m-90)/240)
	case m < regularSessionMinutes:
		w = 0.75 + 0.25*((m-330)/60)
	default:
		w = 1.0
	}
	if w < e.cfg.MinWeight {
		w = e.cfg.MinWeight
	}
	return w
}
