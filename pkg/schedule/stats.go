package schedule

import (
	"sort"
	"time"

	"rentacar/pkg/models"
)

type OverdueEntry struct {
	ReservationUid string    `json:"reservationUid"`
	CarUid         string    `json:"carUid"`
	ClientUid      string    `json:"clientUid"`
	EndDate        time.Time `json:"endDate"`
	DaysOverdue    int       `json:"daysOverdue"`
}

type UpcomingEntry struct {
	ReservationUid string    `json:"reservationUid"`
	CarUid         string    `json:"carUid"`
	ClientUid      string    `json:"clientUid"`
	StartDate      time.Time `json:"startDate"`
	Status         string    `json:"status"`
	DaysUntil      int       `json:"daysUntil"`
}

type Summary struct {
	StatusCounts map[Status]int
	TotalRevenue float64
	Overdue      []OverdueEntry
	Upcoming     []UpcomingEntry
}

// Summarize computes dashboard statistics over the given reservations.
// Revenue sums total amounts of non-cancelled reservations whose period
// ends inside [windowStart, windowEnd]; zero window bounds mean unbounded.
// Overdue lists active reservations already past their end date; upcoming
// lists pending/confirmed ones starting within horizonDays of now, sorted
// by start date. The summary is recomputed from scratch on every call.
func Summarize(reservations []models.Reservation, now time.Time, windowStart, windowEnd time.Time, horizonDays int) Summary {
	summary := Summary{
		StatusCounts: make(map[Status]int),
	}
	for _, s := range Statuses() {
		summary.StatusCounts[s] = 0
	}

	horizon := now.AddDate(0, 0, horizonDays)

	for _, res := range reservations {
		status := Status(res.Status)
		summary.StatusCounts[status]++

		if status != StatusCancelled && inWindow(res.EndDate, windowStart, windowEnd) {
			summary.TotalRevenue = roundCents(summary.TotalRevenue + res.TotalAmount)
		}

		if status == StatusActive && res.EndDate.Before(now) {
			summary.Overdue = append(summary.Overdue, OverdueEntry{
				ReservationUid: res.ReservationUid,
				CarUid:         res.CarUid,
				ClientUid:      res.ClientUid,
				EndDate:        res.EndDate,
				DaysOverdue:    int(now.Sub(res.EndDate).Hours() / 24),
			})
		}

		if (status == StatusPending || status == StatusConfirmed) &&
			!res.StartDate.Before(now) && !res.StartDate.After(horizon) {
			summary.Upcoming = append(summary.Upcoming, UpcomingEntry{
				ReservationUid: res.ReservationUid,
				CarUid:         res.CarUid,
				ClientUid:      res.ClientUid,
				StartDate:      res.StartDate,
				Status:         res.Status,
				DaysUntil:      int(res.StartDate.Sub(now).Hours() / 24),
			})
		}
	}

	sort.Slice(summary.Upcoming, func(i, j int) bool {
		return summary.Upcoming[i].StartDate.Before(summary.Upcoming[j].StartDate)
	})
	sort.Slice(summary.Overdue, func(i, j int) bool {
		return summary.Overdue[i].EndDate.Before(summary.Overdue[j].EndDate)
	})

	return summary
}

func inWindow(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
