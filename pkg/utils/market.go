package utils

import (
	"time"
)

// EasternLocation is the timezone for US equity markets.
var EasternLocation *time.Location

func init() {
	var err error
	EasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		EasternLocation = time.FixedZone("EST", -5*60*60)
	}
}

// MarketStatus describes the current US equity session phase.
type MarketStatus string

const (
	MarketClosed   MarketStatus = "CLOSED"
	MarketPreOpen  MarketStatus = "PRE_MARKET"
	MarketOpen     MarketStatus = "OPEN"
	MarketAfterHrs MarketStatus = "AFTER_HOURS"
)

// GetMarketStatus returns the current market status for US equities.
func GetMarketStatus(now time.Time) MarketStatus {
	local := now.In(EasternLocation)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return MarketClosed
	}

	timeMinutes := local.Hour()*60 + local.Minute()

	// Pre-market: 4:00 - 9:30
	if timeMinutes >= 4*60 && timeMinutes < 9*60+30 {
		return MarketPreOpen
	}

	// Regular session: 9:30 - 16:00
	if timeMinutes >= 9*60+30 && timeMinutes < 16*60 {
		return MarketOpen
	}

	// After hours: 16:00 - 20:00
	if timeMinutes >= 16*60 && timeMinutes < 20*60 {
		return MarketAfterHrs
	}

	return MarketClosed
}

// IsRegularSession returns true when the regular session is trading.
func IsRegularSession(now time.Time) bool {
	return GetMarketStatus(now) == MarketOpen
}
