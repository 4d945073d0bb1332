package domain

import (
	"fmt"
	"time"
)

// MaxRangeDays bounds every DateRange, including analytics periods.
const MaxRangeDays = 3660

const secondsPerDay = 24 * 60 * 60

// DateRange is an inclusive span of calendar days. Time of day is discarded
// and all dates are held as UTC midnight.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange validates a period for a new booking or query: start must not
// be after end, and start must not be before today.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r, err := RestoreDateRange(start, end)
	if err != nil {
		return DateRange{}, err
	}
	if r.start.Before(Today()) {
		return DateRange{}, fmt.Errorf("%w: start date cannot be in the past", ErrValidation)
	}
	return r, nil
}

// RestoreDateRange rebuilds a stored period. It checks ordering only, because
// a reservation made last month legitimately starts in the past.
func RestoreDateRange(start, end time.Time) (DateRange, error) {
	s, e := TruncateDay(start), TruncateDay(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: start date must be before or equal to end date", ErrValidation)
	}
	r := DateRange{start: s, end: e}
	if r.Days() > MaxRangeDays {
		return DateRange{}, fmt.Errorf("%w: period cannot span more than %d days", ErrValidation, MaxRangeDays)
	}
	return r, nil
}

// DateRangeStartingToday returns a range of days days beginning today.
func DateRangeStartingToday(days int) (DateRange, error) {
	start := Today()
	return NewDateRange(start, start.AddDate(0, 0, days-1))
}

// DateRangeStartingTomorrow returns a range of days days beginning tomorrow.
func DateRangeStartingTomorrow(days int) (DateRange, error) {
	start := Today().AddDate(0, 0, 1)
	return NewDateRange(start, start.AddDate(0, 0, days-1))
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return TruncateDay(time.Now())
}

// TruncateDay drops the time of day, keeping the calendar date as seen in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time   { return r.end }
func (r DateRange) IsZero() bool     { return r.start.IsZero() && r.end.IsZero() }

// Days counts both endpoints: a single-day range has Days() == 1.
// Both ends are UTC midnight, so whole-day Unix arithmetic is exact.
func (r DateRange) Days() int {
	return int((r.end.Unix()-r.start.Unix())/secondsPerDay) + 1
}

// OverlapsWith is the closed-interval intersection test used for booking.
func (r DateRange) OverlapsWith(other DateRange) bool {
	return !r.start.After(other.end) && !r.end.Before(other.start)
}

func (r DateRange) Contains(day time.Time) bool {
	d := TruncateDay(day)
	return !d.Before(r.start) && !d.After(r.end)
}

func (r DateRange) IsInFuture() bool { return r.start.After(Today()) }

func (r DateRange) IsActive() bool { return r.Contains(Today()) }

func (r DateRange) HasPassed() bool { return r.end.Before(Today()) }

// ExtendBy returns a new range with the end moved days later.
func (r DateRange) ExtendBy(days int) (DateRange, error) {
	if days < 0 {
		return DateRange{}, fmt.Errorf("%w: cannot extend by negative days", ErrValidation)
	}
	return NewDateRange(r.start, r.end.AddDate(0, 0, days))
}

// ShortenBy returns a new range with the end moved days earlier. The result
// must still cover at least one day.
func (r DateRange) ShortenBy(days int) (DateRange, error) {
	if days < 0 {
		return DateRange{}, fmt.Errorf("%w: cannot shorten by negative days", ErrValidation)
	}
	end := r.end.AddDate(0, 0, -days)
	if end.Before(r.start) {
		return DateRange{}, fmt.Errorf("%w: cannot shorten range to less than one day", ErrValidation)
	}
	return NewDateRange(r.start, end)
}

// Dates lists every day in the range in ascending order.
func (r DateRange) Dates() []time.Time {
	out := make([]time.Time, 0, r.Days())
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (r DateRange) Equals(other DateRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s (%d days)", r.start.Format(time.DateOnly), r.end.Format(time.DateOnly), r.Days())
}
