package schedule

import (
	"time"
)

// BookedPeriod is the slice of an existing reservation the checker needs.
type BookedPeriod struct {
	ReservationUid string
	Status         Status
	Period         TimeRange
}

type Conflict struct {
	ReservationUid string    `json:"reservationUid"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
}

type Decision struct {
	Available bool
	Quote     Quote
	Conflicts []Conflict
}

// Check decides whether candidate can be booked against a car's existing
// reservations and, when it can, attaches a price quote at dailyRate.
// excludeUid skips the reservation being edited so it never conflicts with
// itself. The result is a pure function of the arguments: same inputs,
// same decision.
func Check(dailyRate float64, candidate TimeRange, existing []BookedPeriod, excludeUid string) (Decision, error) {
	var conflicts []Conflict
	for _, booked := range existing {
		if excludeUid != "" && booked.ReservationUid == excludeUid {
			continue
		}
		if !booked.Status.Blocks() {
			continue
		}
		if candidate.Overlaps(booked.Period) {
			conflicts = append(conflicts, Conflict{
				ReservationUid: booked.ReservationUid,
				StartDate:      booked.Period.Start,
				EndDate:        booked.Period.End,
				Status:         string(booked.Status),
			})
		}
	}
	if len(conflicts) > 0 {
		return Decision{Available: false, Conflicts: conflicts}, nil
	}
	quote, err := PriceQuote(dailyRate, candidate)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Available: true, Quote: quote}, nil
}
