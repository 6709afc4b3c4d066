// Package ledger holds the ordered day entries of a report card and the
// history queries built on them.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/flex-ledger/internal/holiday"
	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// ErrEmptyLedger is returned when a ledger has no day entries to extend.
var ErrEmptyLedger = errors.New("ledger has no entries")

// Appender persists a new ledger line.
type Appender interface {
	AppendLine(line string) error
}

// Ledger is the date-ascending list of day entries read from a report card.
// Raw keeps the original text of each entry so new lines can mirror its
// column alignment.
type Ledger struct {
	Entries []model.Entry
	Raw     []string
	Clock   timecalc.Clock
}

// IsRecord reports whether a raw line holds a day entry rather than a
// comment (#), a header (@) or nothing.
func IsRecord(line string) bool {
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
		return false
	}
	return strings.TrimSpace(line) != ""
}

// Load parses every record line. Any malformed line fails the whole load.
func Load(lines []string, clock timecalc.Clock) (*Ledger, error) {
	l := &Ledger{Clock: clock}
	for i, line := range lines {
		if !IsRecord(line) {
			continue
		}
		e, err := model.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		l.Entries = append(l.Entries, e)
		l.Raw = append(l.Raw, line)
	}
	return l, nil
}

// Len returns the number of day entries.
func (l *Ledger) Len() int { return len(l.Entries) }

// Last returns the most recent entry.
func (l *Ledger) Last() (model.Entry, error) {
	if len(l.Entries) == 0 {
		return model.Entry{}, ErrEmptyLedger
	}
	return l.Entries[len(l.Entries)-1], nil
}

// AlignmentReference returns the raw line a rewrite of the last entry
// should mirror: the entry before it, or the last entry itself.
func (l *Ledger) AlignmentReference() string {
	switch n := len(l.Raw); {
	case n >= 2:
		return l.Raw[n-2]
	case n == 1:
		return l.Raw[0]
	}
	return ""
}

// SetLast replaces the most recent entry and records the line written for it.
func (l *Ledger) SetLast(e model.Entry, raw string) {
	l.Entries[len(l.Entries)-1] = e
	l.Raw[len(l.Raw)-1] = raw
}

// FillToToday appends a synthesized entry for every calendar day between
// the last entry and today. Each new line is persisted before the next day
// is derived, so an interrupted fill resumes where it stopped.
func (l *Ledger) FillToToday(today time.Time, holidays holiday.Lookup, store Appender) (int, error) {
	if len(l.Entries) == 0 {
		return 0, ErrEmptyLedger
	}
	if holidays == nil {
		holidays = holiday.None{}
	}
	today = timecalc.StartOfDay(today)

	added := 0
	for {
		last := l.Entries[len(l.Entries)-1]
		if !last.Date.Before(today) {
			return added, nil
		}
		date := timecalc.NextDay(last.Date)
		label, isHoliday := holidays.Holiday(date)
		next := model.DeriveNextDay(last, date, label, isHoliday)
		line := next.FormatAligned(l.Raw[len(l.Raw)-1])

		if err := store.AppendLine(line); err != nil {
			return added, fmt.Errorf("filling %s: %w", timecalc.FormatDate(date), err)
		}
		slog.Debug("filled ledger day", "date", timecalc.FormatDate(date), "working_hours", next.Settings.WorkingHours, "note", next.Note)

		l.Entries = append(l.Entries, next)
		l.Raw = append(l.Raw, line)
		added++
	}
}

// indexOf returns the position of the entry dated date, or -1.
func (l *Ledger) indexOf(date time.Time) int {
	for i := len(l.Entries) - 1; i >= 0; i-- {
		if timecalc.SameDay(l.Entries[i].Date, date) {
			return i
		}
	}
	return -1
}

// WindowEndingAt returns up to numDays entries ending with (and including)
// the entry dated date, oldest first. Shorter history yields fewer entries;
// an unknown date yields none.
func (l *Ledger) WindowEndingAt(date time.Time, numDays int) []model.Entry {
	end := l.indexOf(date)
	if end < 0 || numDays <= 0 {
		return nil
	}
	start := end - numDays + 1
	if start < 0 {
		start = 0
	}
	out := make([]model.Entry, 0, end-start+1)
	for _, e := range l.Entries[start : end+1] {
		out = append(out, e.Clone())
	}
	return out
}

// Tail returns the last numDays entries, clipped to the available history.
func (l *Ledger) Tail(numDays int) []model.Entry {
	if numDays > len(l.Entries) {
		numDays = len(l.Entries)
	}
	if numDays <= 0 {
		return nil
	}
	return l.Entries[len(l.Entries)-numDays:]
}

// WorkedHours sums the worked hours of entries, counting running periods
// up to now.
func WorkedHours(entries []model.Entry, clock timecalc.Clock) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.WorkedHoursRightNow(clock)))
	}
	return total
}

// WeekTotal sums worked hours from the Monday of date's week (or the start of
// history) up to and including date.
func (l *Ledger) WeekTotal(date time.Time) decimal.Decimal {
	return WorkedHours(l.WindowEndingAt(date, timecalc.ISOWeekday(date)+1), l.Clock)
}

// CumulativeFlexBank accumulates worked minus expected hours over every
// entry from the oldest up to and including the one dated uptoDate.
func (l *Ledger) CumulativeFlexBank(uptoDate time.Time) decimal.Decimal {
	bank := decimal.Zero
	for _, e := range l.Entries {
		worked := decimal.NewFromFloat(e.WorkedHoursRightNow(l.Clock))
		bank = bank.Add(worked).Sub(decimal.NewFromFloat(e.Settings.WorkingHours))
		if timecalc.SameDay(e.Date, uptoDate) {
			break
		}
	}
	return bank
}
