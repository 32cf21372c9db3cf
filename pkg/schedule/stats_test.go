package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentacar/pkg/models"
)

func TestSummarizeStatusCountsAndRevenue(t *testing.T) {
	now := day(2024, 7, 15)
	reservations := []models.Reservation{
		{ReservationUid: "r1", Status: "completed", TotalAmount: 300, EndDate: day(2024, 7, 10)},
		{ReservationUid: "r2", Status: "completed", TotalAmount: 150.50, EndDate: day(2024, 7, 12)},
		{ReservationUid: "r3", Status: "cancelled", TotalAmount: 999, EndDate: day(2024, 7, 11)},
		{ReservationUid: "r4", Status: "confirmed", TotalAmount: 200, StartDate: day(2024, 8, 20), EndDate: day(2024, 8, 25)},
	}

	summary := Summarize(reservations, now, time.Time{}, time.Time{}, 7)

	assert.Equal(t, 2, summary.StatusCounts[StatusCompleted])
	assert.Equal(t, 1, summary.StatusCounts[StatusCancelled])
	assert.Equal(t, 1, summary.StatusCounts[StatusConfirmed])
	assert.Equal(t, 0, summary.StatusCounts[StatusPending])
	// Cancelled reservations never count toward revenue.
	assert.Equal(t, 650.50, summary.TotalRevenue)
}

func TestSummarizeRevenueWindow(t *testing.T) {
	now := day(2024, 7, 15)
	reservations := []models.Reservation{
		{ReservationUid: "r1", Status: "completed", TotalAmount: 100, EndDate: day(2024, 6, 10)},
		{ReservationUid: "r2", Status: "completed", TotalAmount: 200, EndDate: day(2024, 7, 10)},
	}

	summary := Summarize(reservations, now, day(2024, 7, 1), day(2024, 7, 31), 7)
	assert.Equal(t, 200.0, summary.TotalRevenue)
}

func TestSummarizeOverdue(t *testing.T) {
	now := day(2024, 7, 15)
	reservations := []models.Reservation{
		{ReservationUid: "late", Status: "active", CarUid: "car-1", ClientUid: "cli-1", EndDate: day(2024, 7, 14)},
		{ReservationUid: "later", Status: "active", CarUid: "car-2", ClientUid: "cli-2", EndDate: day(2024, 7, 10)},
		{ReservationUid: "ok", Status: "active", EndDate: day(2024, 7, 20)},
		{ReservationUid: "done", Status: "completed", EndDate: day(2024, 7, 1)},
	}

	summary := Summarize(reservations, now, time.Time{}, time.Time{}, 7)

	assert.Len(t, summary.Overdue, 2)
	// Sorted by end date ascending, so the longest overdue comes first.
	assert.Equal(t, "later", summary.Overdue[0].ReservationUid)
	assert.Equal(t, 5, summary.Overdue[0].DaysOverdue)
	assert.Equal(t, "late", summary.Overdue[1].ReservationUid)
	assert.Equal(t, 1, summary.Overdue[1].DaysOverdue)
}

func TestSummarizeUpcomingWithinHorizon(t *testing.T) {
	now := day(2024, 7, 15)
	reservations := []models.Reservation{
		{ReservationUid: "soon", Status: "pending", StartDate: day(2024, 7, 17)},
		{ReservationUid: "sooner", Status: "confirmed", StartDate: day(2024, 7, 16)},
		{ReservationUid: "far", Status: "confirmed", StartDate: day(2024, 8, 1)},
		{ReservationUid: "running", Status: "active", StartDate: day(2024, 7, 16)},
	}

	summary := Summarize(reservations, now, time.Time{}, time.Time{}, 7)

	assert.Len(t, summary.Upcoming, 2)
	assert.Equal(t, "sooner", summary.Upcoming[0].ReservationUid)
	assert.Equal(t, 1, summary.Upcoming[0].DaysUntil)
	assert.Equal(t, "soon", summary.Upcoming[1].ReservationUid)
	assert.Equal(t, 2, summary.Upcoming[1].DaysUntil)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, day(2024, 7, 15), time.Time{}, time.Time{}, 7)

	assert.Equal(t, 0.0, summary.TotalRevenue)
	assert.Empty(t, summary.Overdue)
	assert.Empty(t, summary.Upcoming)
	for _, s := range Statuses() {
		assert.Equal(t, 0, summary.StatusCounts[s])
	}
}
