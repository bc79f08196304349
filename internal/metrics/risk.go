package metrics

import (
	"math"

	apperrors "hype-hunter/internal/errors"
	"hype-hunter/internal/models"
)

// ComputeATRRisk sizes a position from volatility: stop-loss at an ATR
// multiple below the current close, shares sized so the distance to the stop
// risks riskPct percent of accountSize. Bars must be ordered ascending by
// date. Shares is 0 when the stop lands at or above the price; the caller
// rejects the trade rather than going short.
func (e *Engine) ComputeATRRisk(ticker string, bars []models.PriceBar, accountSize, riskPct, atrMultiplier float64) (*models.RiskPlan, error) {
	if accountSize <= 0 {
		return nil, apperrors.NewValidationError("account_size", accountSize, "must be positive")
	}
	if riskPct <= 0 || riskPct > 100 {
		return nil, apperrors.NewValidationError("risk_percent", riskPct, "must be in (0, 100]")
	}
	if atrMultiplier <= 0 {
		return nil, apperrors.NewValidationError("atr_multiplier", atrMultiplier, "must be positive")
	}

	period := e.cfg.ATRPeriod
	n := len(bars)
	if n < period+1 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "%s: %d bars, need %d for ATR", ticker, n, period+1)
	}

	price := bars[n-1].Close
	if price <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "%s: zero close price", ticker)
	}

	atr := e.atr(bars)
	stop := price - atr*atrMultiplier
	riskAmount := accountSize * riskPct / 100

	shares := 0
	perShareRisk := price - stop
	if perShareRisk > 0 {
		shares = int(math.Floor(riskAmount / perShareRisk))
	}

	return &models.RiskPlan{
		Ticker:          ticker,
		Price:           price,
		ATR:             atr,
		StopPrice:       stop,
		RiskAmount:      riskAmount,
		Shares:          shares,
		CapitalDeployed: float64(shares) * price,
	}, nil
}

// atr is the simple mean of the true range over the trailing ATRPeriod bars.
// Callers guarantee len(bars) >= ATRPeriod+1 so every bar in the window has
// a previous close.
func (e *Engine) atr(bars []models.PriceBar) float64 {
	n := len(bars)
	tr := make([]float64, 0, e.cfg.ATRPeriod)
	for i := n - e.cfg.ATRPeriod; i < n; i++ {
		tr = append(tr, trueRange(bars[i], bars[i-1]))
	}
	return mean(tr)
}
