package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidRange = errors.New("invalid rental period")

// TimeRange is a half-open rental period [Start, End). A reservation that
// ends exactly when another starts does not collide with it, so back-to-back
// bookings on the same car are possible.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates a period for an existing reservation. Past dates
// are allowed here: managers must be able to correct historical records.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !end.After(start) {
		return TimeRange{}, fmt.Errorf("%w: end date must be after start date", ErrInvalidRange)
	}
	return TimeRange{Start: start, End: end}, nil
}

// NewBookingRange validates a period for a brand new reservation, which in
// addition must not start before now.
func NewBookingRange(start, end, now time.Time) (TimeRange, error) {
	tr, err := NewTimeRange(start, end)
	if err != nil {
		return TimeRange{}, err
	}
	if start.Before(now) {
		return TimeRange{}, fmt.Errorf("%w: start date is in the past", ErrInvalidRange)
	}
	return tr, nil
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Days counts billable days: the duration rounded up to whole days, never
// less than one even for sub-24h rentals.
func (r TimeRange) Days() int {
	days := int(math.Ceil(r.End.Sub(r.Start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}
