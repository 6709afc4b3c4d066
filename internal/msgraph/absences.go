package msgraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// CalendarViewer lists calendar events in a time range.
type CalendarViewer interface {
	GetCalendarView(ctx context.Context, from, to time.Time, timezone string) ([]CalendarEvent, error)
}

// Absences is a holiday lookup built from all-day out-of-office events.
type Absences map[string]string

// FetchAbsences loads the out-of-office days between the calendar days from
// and to inclusive, on the wall clock of timezone.
func FetchAbsences(ctx context.Context, c CalendarViewer, from, to time.Time, timezone string) (Absences, error) {
	start, _ := DayRange(from, timezone)
	_, end := DayRange(to, timezone)
	events, err := c.GetCalendarView(ctx, start, end, timezone)
	if err != nil {
		return nil, fmt.Errorf("fetching absences: %w", err)
	}

	a := Absences{}
	for _, ev := range events {
		if !isAbsence(ev) {
			continue
		}
		// All-day events carry their dates as written, whatever the zone.
		first, err := parseInLocation(ev.Start.DateTime, time.UTC)
		if err != nil {
			slog.Warn("skipping absence", "subject", ev.Subject, "err", err)
			continue
		}
		stop, err := parseInLocation(ev.End.DateTime, time.UTC)
		if err != nil {
			slog.Warn("skipping absence", "subject", ev.Subject, "err", err)
			continue
		}
		// All-day events end at midnight after their last day.
		for d := timecalc.StartOfDay(first); d.Before(timecalc.StartOfDay(stop)); d = timecalc.NextDay(d) {
			if _, taken := a[timecalc.FormatDate(d)]; !taken {
				a[timecalc.FormatDate(d)] = ev.Subject
			}
		}
	}
	slog.Debug("fetched outlook absences", "days", len(a))
	return a, nil
}

func isAbsence(ev CalendarEvent) bool {
	return ev.IsAllDay && !ev.IsCancelled && ev.ShowAs == "oof"
}

// Holiday reports the subject of the out-of-office event covering day.
func (a Absences) Holiday(day time.Time) (string, bool) {
	label, ok := a[timecalc.FormatDate(day)]
	return label, ok
}
