package schedule

import (
	"errors"
	"math"
)

var ErrInvalidRate = errors.New("daily rate must be positive")

type Quote struct {
	DailyRate   float64 `json:"dailyRate"`
	TotalDays   int     `json:"totalDays"`
	TotalAmount float64 `json:"totalAmount"`
}

// PriceQuote computes the cost of renting at dailyRate over period.
func PriceQuote(dailyRate float64, period TimeRange) (Quote, error) {
	if dailyRate <= 0 {
		return Quote{}, ErrInvalidRate
	}
	days := period.Days()
	return Quote{
		DailyRate:   dailyRate,
		TotalDays:   days,
		TotalAmount: roundCents(dailyRate * float64(days)),
	}, nil
}

// roundCents rounds half-up to two decimals, so a midpoint never
// undercharges.
func roundCents(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}
