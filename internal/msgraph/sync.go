package msgraph

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// Location returns the wall clock ledger hours are read in: the named IANA
// zone, or the local zone when timezone is empty or unknown.
func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("unknown timezone, using local time", "timezone", timezone, "err", err)
		return time.Local
	}
	return loc
}

// DayRange returns the instants bounding day on the ledger's wall clock.
func DayRange(day time.Time, timezone string) (from, to time.Time) {
	y, m, d := day.Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, Location(timezone))
	return from, from.AddDate(0, 0, 1)
}

// parseGraphTime reads a Graph dateTimeTimeZone and returns it on the wall
// clock of timezone. Graph reports times in UTC unless a Prefer header
// asked for another zone, and names the zone it used in TimeZone.
func parseGraphTime(dt DateTimeZone, timezone string) (time.Time, error) {
	src := time.UTC
	if timezone != "" {
		src = Location(timezone)
	}
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			src = l
		}
	}
	t, err := parseInLocation(dt.DateTime, src)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(Location(timezone)), nil
}

// parseInLocation parses Graph's zone-less "2026-02-27T09:00:00.0000000"
// in loc. Strings with an offset keep their own.
func parseInLocation(dt string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event should not become a work period.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled || event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" || event.ShowAs == "oof" {
		return true
	}
	return event.Start.DateTime == "" || event.End.DateTime == ""
}

// MapEventToPeriod converts a timed event on day into a closed period in
// hours of that day on the wall clock of timezone (local time when empty).
// Events running past midnight end at 24.
func MapEventToPeriod(event CalendarEvent, day time.Time, timezone string) (period.Period, error) {
	start, err := parseGraphTime(event.Start, timezone)
	if err != nil {
		return period.Period{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End, timezone)
	if err != nil {
		return period.Period{}, fmt.Errorf("parsing end time: %w", err)
	}
	if !timecalc.SameDay(start, day) {
		return period.Period{}, fmt.Errorf("event starts on %s, not %s", timecalc.FormatDate(start), timecalc.FormatDate(day))
	}

	endHour := timecalc.HourOfDay(end)
	if !timecalc.SameDay(start, end) {
		endHour = 24
	}
	return period.Closed(timecalc.HourOfDay(start), endHour), nil
}

// SyncMeetings adds the day's busy meetings to entry as periods. Meetings
// that overlap work already recorded are skipped. Progress goes to out.
func SyncMeetings(out io.Writer, entry model.Entry, events []CalendarEvent, timezone string) (model.Entry, SyncResult) {
	var result SyncResult
	e := entry.Clone()

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}
		p, err := MapEventToPeriod(event, e.Date, timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		periods, err := period.Add(e.Periods, p, e.Settings.RoundMinutes)
		if err != nil {
			fmt.Fprintf(out, "  – Skipped:  %s (%v)\n", event.Subject, err)
			result.Skipped++
			continue
		}
		e.Periods = periods
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", event.Subject, p)
		result.Imported++
	}
	return e, result
}
