package timecalc

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used in the ledger.
const DateLayout = "2006-01-02"

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Useful for tests and for
// commands given an explicit time.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Round converts hoursOfDay to minutes, rounds half-up to the nearest
// multiple of granularityMinutes and converts back to hours.
// A non-positive granularity leaves the value unchanged.
func Round(hoursOfDay float64, granularityMinutes int) float64 {
	if granularityMinutes <= 0 {
		return hoursOfDay
	}
	g := float64(granularityMinutes)
	return math.Floor(hoursOfDay*60/g+0.5) * g / 60
}

// HourOfDay returns t as fractional hours since local midnight.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// Now returns the clock's hour-of-day rounded to granularityMinutes.
func Now(c Clock, granularityMinutes int) float64 {
	return Round(HourOfDay(c.Now()), granularityMinutes)
}

// Today returns the clock's current calendar day.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now())
}

// StartOfDay returns the calendar day of t as midnight UTC, so dates compare
// and add without daylight-saving surprises.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NextDay returns the calendar day after t.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ISOWeekday returns Monday=0 … Sunday=6.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayAbbrev returns the three-letter English weekday name, e.g. "Mon".
func WeekdayAbbrev(t time.Time) string {
	return t.Weekday().String()[:3]
}

// ISOWeek returns the ISO 8601 week number of t.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// FormatHours renders an hour value with the shortest decimal representation
// that parses back to the same float, without trailing zeros ("8", "8.25").
func FormatHours(h float64) string {
	if h == 0 {
		return "0"
	}
	return strconv.FormatFloat(h, 'f', -1, 64)
}
