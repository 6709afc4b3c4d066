package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// FormatVersion is the only ledger line layout this package reads and writes.
const FormatVersion = 1

// FieldSeparator separates the columns of a ledger line.
const FieldSeparator = ";"

// v1 layout: version; date; working hours; excess as overtime; round minutes; periods; note
const v1Fields = 7

var (
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrMalformedEntry     = errors.New("malformed entry")
	ErrInvalidSettings    = errors.New("invalid settings")
)

var validate = validator.New()

// Settings is the per-day configuration stored on every ledger line.
type Settings struct {
	WorkingHours     float64 `validate:"gte=0,lte=24"`
	ExcessAsOvertime bool
	RoundMinutes     int `validate:"gt=0,lte=60"`
}

// Entry is one calendar day of the ledger.
type Entry struct {
	Version  int
	Date     time.Time
	Settings Settings
	Periods  []period.Period
	Note     string
}

// Validate checks the settings ranges and the period invariants.
func (e Entry) Validate() error {
	if err := validate.Struct(e.Settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := period.CheckShape(e.Periods); err != nil {
		return err
	}
	return period.ValidateAll(e.Periods)
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	out.Periods = period.Clone(e.Periods)
	return out
}

// IsLive reports whether the day's last period is still running.
func (e Entry) IsLive() bool {
	return period.LastOpen(e.Periods)
}

// WorkedHoursRightNow sums the day's periods. A running last period counts
// up to the clock's current time rounded with the day's RoundMinutes.
func (e Entry) WorkedHoursRightNow(clock timecalc.Clock) float64 {
	if !e.IsLive() {
		return period.TotalHours(e.Periods, nil)
	}
	now := timecalc.Now(clock, e.Settings.RoundMinutes)
	return period.TotalHours(e.Periods, &now)
}

// FlexHours is the day's surplus (or deficit) against its working hours.
func (e Entry) FlexHours(clock timecalc.Clock) float64 {
	return e.WorkedHoursRightNow(clock) - e.Settings.WorkingHours
}

// Parse reads one ledger line.
func Parse(line string) (Entry, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), FieldSeparator)

	version, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || version != FormatVersion {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, strings.TrimSpace(parts[0]))
	}
	if len(parts) < v1Fields-1 {
		return Entry{}, fmt.Errorf("%w: want at least %d fields, got %d", ErrMalformedEntry, v1Fields-1, len(parts))
	}

	e := Entry{Version: version}
	if e.Date, err = timecalc.ParseDate(strings.TrimSpace(parts[1])); err != nil {
		return Entry{}, fmt.Errorf("%w: date: %v", ErrMalformedEntry, err)
	}
	if e.Settings.WorkingHours, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err != nil {
		return Entry{}, fmt.Errorf("%w: working hours: %v", ErrMalformedEntry, err)
	}
	excess, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: excess as overtime: %v", ErrMalformedEntry, err)
	}
	e.Settings.ExcessAsOvertime = excess != 0
	if e.Settings.RoundMinutes, err = strconv.Atoi(strings.TrimSpace(parts[4])); err != nil {
		return Entry{}, fmt.Errorf("%w: round minutes: %v", ErrMalformedEntry, err)
	}
	if e.Periods, err = period.ParseList(parts[5]); err != nil {
		return Entry{}, err
	}
	if len(parts) > v1Fields-1 {
		e.Note = strings.TrimSpace(strings.Join(parts[v1Fields-1:], FieldSeparator))
	}

	if err := e.Validate(); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", timecalc.FormatDate(e.Date), err)
	}
	return e, nil
}

// Fields renders the entry's columns without separators or padding.
func (e Entry) Fields() []string {
	excess := "0"
	if e.Settings.ExcessAsOvertime {
		excess = "1"
	}
	return []string{
		strconv.Itoa(e.Version),
		timecalc.FormatDate(e.Date),
		timecalc.FormatHours(e.Settings.WorkingHours),
		excess,
		strconv.Itoa(e.Settings.RoundMinutes),
		period.Join(e.Periods),
		e.Note,
	}
}

// Format renders the entry as a ledger line with no column padding.
func (e Entry) Format() string {
	return strings.Join(e.Fields(), FieldSeparator)
}

// FormatAligned renders the entry padded to the columns of reference,
// usually the ledger line above it.
func (e Entry) FormatAligned(reference string) string {
	return Align(e.Fields(), reference)
}

// DeriveNextDay builds the entry for date from previous. Periods are
// cleared. A Saturday or a holiday expects no work and carries the holiday
// label (or "Saturday") as its note; any other day expects 8 hours.
func DeriveNextDay(previous Entry, date time.Time, holidayLabel string, isHoliday bool) Entry {
	next := previous.Clone()
	next.Date = timecalc.StartOfDay(date)
	next.Periods = nil

	switch {
	case isHoliday:
		next.Settings.WorkingHours = 0
		next.Note = holidayLabel
	case date.Weekday() == time.Saturday:
		next.Settings.WorkingHours = 0
		next.Note = "Saturday"
	default:
		next.Settings.WorkingHours = DefaultWorkingHours
		next.Note = ""
	}
	return next
}

// DefaultWorkingHours is the expected working time of a regular weekday.
const DefaultWorkingHours = 8
