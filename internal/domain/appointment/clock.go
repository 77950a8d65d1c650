package appointment

import (
	"fmt"
	"time"

	"github.com/salonflow/salon-api/internal/httperr"
)

const (
	// DefaultOpeningHour anchors the first appointment of a day that has
	// no prior valid appointment.
	DefaultOpeningHour = "09:00"

	// BookingCutoffHour closes same-day bookings: after 17:00 local time
	// no new appointment may be taken for today.
	BookingCutoffHour = 17

	// SlotIntervalMinutes is the grid step used both for display and for
	// anchoring, so the two never disagree.
	SlotIntervalMinutes = 30

	// HoldFreshness is how long a PENDING hold counts as occupying its
	// slot. Older unpaid holds are treated as abandoned when anchoring.
	HoldFreshness = 5 * time.Minute

	// HoldLifetime is how long an unpaid hold survives before automatic
	// cancellation.
	HoldLifetime = 300 * time.Second
)

// ParseHour converts "HH:MM" to minutes from midnight.
func ParseHour(hour string) (int, error) {
	t, err := time.Parse("15:04", hour)
	if err != nil {
		return 0, httperr.ErrBusiness("invalid_hour")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatHour converts minutes from midnight back to "HH:MM", carrying
// into the next day if the arithmetic runs past midnight.
func FormatHour(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts an "HH:MM" time forward by the given minutes.
func AddMinutes(hour string, minutes int) (string, error) {
	base, err := ParseHour(hour)
	if err != nil {
		return "", err
	}
	return FormatHour(base + minutes), nil
}

// Overlaps reports whether [startA, startA+durA) and
// [startB, startB+durB) intersect. Touching edges do not overlap.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// Noon pins a date to 12:00 in its own location. Storing appointment
// days at noon keeps same-day comparisons stable across DST and
// timezone-boundary shifts.
func Noon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// DayBounds returns [00:00, 24:00) of the date's calendar day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
