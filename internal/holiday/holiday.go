// Package holiday answers whether a calendar day is a day off and why.
package holiday

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCountry is returned for a country without a built-in calendar.
var ErrUnknownCountry = errors.New("unknown holiday country")

// Lookup reports the label of a day off, if day is one.
type Lookup interface {
	Holiday(day time.Time) (label string, ok bool)
}

// None is a Lookup without any holidays.
type None struct{}

func (None) Holiday(time.Time) (string, bool) { return "", false }

// Func adapts a plain function to Lookup.
type Func func(day time.Time) (string, bool)

func (f Func) Holiday(day time.Time) (string, bool) { return f(day) }

// Chain asks each lookup in turn; the first that answers wins.
type Chain []Lookup

func (c Chain) Holiday(day time.Time) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if label, ok := l.Holiday(day); ok {
			return label, true
		}
	}
	return "", false
}

// ForCountry returns the built-in calendar for an ISO 3166 country code.
// An empty code means no public holidays.
func ForCountry(code string, includeSundays bool) (Lookup, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "":
		return None{}, nil
	case "SE":
		return NewSweden(includeSundays), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
}

func dateKey(day time.Time) string {
	return day.Format("2006-01-02")
}
