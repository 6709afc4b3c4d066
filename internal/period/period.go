// Package period models the work intervals recorded for one ledger day.
package period

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

var (
	ErrMalformedPeriod    = errors.New("malformed period")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrOverlappingPeriods = errors.New("overlapping periods")
)

// sentinelEnd temporarily closes an open period so it can take part in
// overlap validation.
const sentinelEnd = 24.0

// Period is a work interval in hours of the day. End is nil while the period
// is still running.
type Period struct {
	Start float64
	End   *float64
}

// Closed returns the closed period [start, end).
func Closed(start, end float64) Period {
	return Period{Start: start, End: &end}
}

// Open returns a running period that started at start.
func Open(start float64) Period {
	return Period{Start: start}
}

// IsOpen reports whether the period has no end yet.
func (p Period) IsOpen() bool {
	return p.End == nil
}

// Hours returns the length of a closed period; open periods count as zero.
func (p Period) Hours() float64 {
	if p.End == nil {
		return 0
	}
	return *p.End - p.Start
}

// String renders the wire form "start-end", or "start-" when open.
func (p Period) String() string {
	if p.End == nil {
		return timecalc.FormatHours(p.Start) + "-"
	}
	return timecalc.FormatHours(p.Start) + "-" + timecalc.FormatHours(*p.End)
}

// ParseHour reads an hour of the day such as "8" or "16.5". Infinities and
// NaN are rejected.
func ParseHour(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !finite(h) {
		return 0, fmt.Errorf("hour %q is not a finite number", s)
	}
	return h, nil
}

func finite(h float64) bool {
	return !math.IsInf(h, 0) && !math.IsNaN(h)
}

// Parse reads a "start-end" token. An empty end yields an open period.
func Parse(token string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(token), "-")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, token)
	}
	start, err := ParseHour(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: bad start", ErrMalformedPeriod, token)
	}
	endText := strings.TrimSpace(parts[1])
	if endText == "" {
		return Open(start), nil
	}
	end, err := ParseHour(endText)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: bad end", ErrMalformedPeriod, token)
	}
	return Closed(start, end), nil
}

// ParseList reads a comma- or space-separated list of period tokens.
func ParseList(field string) ([]Period, error) {
	tokens := strings.Fields(strings.ReplaceAll(field, ",", " "))
	periods := make([]Period, 0, len(tokens))
	for _, tok := range tokens {
		p, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// Join renders periods the way the ledger stores them: "9-12, 13-17".
func Join(periods []Period) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Clone returns a deep copy of periods.
func Clone(periods []Period) []Period {
	if periods == nil {
		return nil
	}
	out := make([]Period, len(periods))
	for i, p := range periods {
		out[i] = Period{Start: p.Start}
		if p.End != nil {
			end := *p.End
			out[i].End = &end
		}
	}
	return out
}

// LastOpen reports whether the final period in the list is still running.
func LastOpen(periods []Period) bool {
	return len(periods) > 0 && periods[len(periods)-1].IsOpen()
}

// CheckShape verifies that at most one period is open and that it is last.
func CheckShape(periods []Period) error {
	for i, p := range periods {
		if p.IsOpen() && i != len(periods)-1 {
			return fmt.Errorf("%w: %s is open but not last", ErrInvalidPeriod, p)
		}
	}
	return nil
}

// overlaps uses a strict test, so periods that only touch do not overlap.
func overlaps(a, b Period) bool {
	return a.Start < *b.End && b.Start < *a.End
}

// ValidateAll checks that every endpoint is finite, that every closed period
// has start < end and that no two closed periods overlap.
func ValidateAll(periods []Period) error {
	for _, p := range periods {
		if !finite(p.Start) || (p.End != nil && !finite(*p.End)) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidPeriod, p)
		}
		if p.End != nil && p.Start >= *p.End {
			return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
		}
	}
	for i := range periods {
		if periods[i].End == nil {
			continue
		}
		for j := i + 1; j < len(periods); j++ {
			if periods[j].End == nil {
				continue
			}
			if overlaps(periods[i], periods[j]) {
				return fmt.Errorf("%w: %s %s", ErrOverlappingPeriods, periods[i], periods[j])
			}
		}
	}
	return nil
}

// Add rounds p to roundMinutes and inserts it into periods, keeping them
// sorted by start. A running last period is closed at 24 for the overlap
// check and reopened afterwards, so p may land before or after it.
// The input slice is not modified.
func Add(periods []Period, p Period, roundMinutes int) ([]Period, error) {
	if p.IsOpen() {
		return nil, fmt.Errorf("%w: %s has no end", ErrInvalidPeriod, p)
	}
	p = Closed(timecalc.Round(p.Start, roundMinutes), timecalc.Round(*p.End, roundMinutes))

	type slot struct {
		p    Period
		live bool
	}
	slots := make([]slot, 0, len(periods)+1)
	for _, existing := range Clone(periods) {
		s := slot{p: existing}
		if existing.IsOpen() {
			s.p.End = new(float64)
			*s.p.End = sentinelEnd
			s.live = true
		}
		slots = append(slots, s)
	}
	slots = append(slots, slot{p: p})

	check := make([]Period, len(slots))
	for i, s := range slots {
		check[i] = s.p
	}
	if err := ValidateAll(check); err != nil {
		return nil, err
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].p.Start < slots[j].p.Start })

	out := make([]Period, len(slots))
	for i, s := range slots {
		out[i] = s.p
		if s.live {
			out[i].End = nil
		}
	}
	return out, nil
}

// TotalHours sums the closed periods. When the last period is open and
// liveEnd is given, it counts as closed at *liveEnd for this sum only.
func TotalHours(periods []Period, liveEnd *float64) float64 {
	var total float64
	for i, p := range periods {
		if p.IsOpen() {
			if liveEnd != nil && i == len(periods)-1 && *liveEnd > p.Start {
				total += *liveEnd - p.Start
			}
			continue
		}
		total += p.Hours()
	}
	return total
}
