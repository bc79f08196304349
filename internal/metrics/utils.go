package metrics

import (
	"hype-hunter/internal/models"
)

// abs returns the absolute value of a float64.
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// trueRange calculates the true range for a bar given its predecessor.
func trueRange(current, previous models.PriceBar) float64 {
	highLow := current.High - current.Low
	highClose := abs(current.High - previous.Close)
	lowClose := abs(current.Low - previous.Close)
	tr := highLow
	if highClose > tr {
		tr = highClose
	}
	if lowClose > tr {
		tr = lowClose
	}
	return tr
}

// closePrices extracts close prices from bars.
func closePrices(bars []models.PriceBar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Close
	}
	return prices
}

// volumes extracts volumes from bars as float64.
func volumes(bars []models.PriceBar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// ema calculates an exponential moving average over values with the given
// span, seeded from the first value (pandas ewm adjust=false convention).
func ema(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}
	k := 2.0 / (float64(span) + 1.0)
	result := make([]float64, len(values))
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = values[i]*k + result[i-1]*(1-k)
	}
	return result
}
