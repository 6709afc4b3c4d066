// Package punch applies clock-in, clock-out and add-period commands to a
// day entry without touching storage.
package punch

import (
	"errors"
	"fmt"
	"math"

	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

var (
	ErrPeriodActive   = errors.New("a period is already active")
	ErrNoActivePeriod = errors.New("no active period")
)

// Kind selects what a Command does.
type Kind int

const (
	CheckIn Kind = iota
	CheckOut
	AddPeriod
)

func (k Kind) String() string {
	switch k {
	case CheckIn:
		return "in"
	case CheckOut:
		return "out"
	case AddPeriod:
		return "period"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is one mutation of today's entry. At overrides the clock for
// CheckIn and CheckOut; Period is the interval for AddPeriod.
type Command struct {
	Kind   Kind
	At     *float64
	Period period.Period
}

// Result describes what a command did, for printing.
type Result struct {
	Message string
}

// In checks in at the current time, or at the given hour.
func In(at ...float64) Command { return Command{Kind: CheckIn, At: first(at)} }

// Out checks out at the current time, or at the given hour.
func Out(at ...float64) Command { return Command{Kind: CheckOut, At: first(at)} }

// Add inserts a closed period.
func Add(p period.Period) Command { return Command{Kind: AddPeriod, Period: p} }

func first(at []float64) *float64 {
	if len(at) == 0 {
		return nil
	}
	v := at[0]
	return &v
}

// Apply returns a copy of entry with cmd applied. entry itself is never
// modified, and on error nothing has changed.
func Apply(entry model.Entry, cmd Command, clock timecalc.Clock) (model.Entry, Result, error) {
	e := entry.Clone()
	round := e.Settings.RoundMinutes

	at := timecalc.Now(clock, round)
	if cmd.At != nil {
		if math.IsInf(*cmd.At, 0) || math.IsNaN(*cmd.At) {
			return entry, Result{}, fmt.Errorf("%w: hour %v is not finite", period.ErrInvalidPeriod, *cmd.At)
		}
		at = timecalc.Round(*cmd.At, round)
	}

	switch cmd.Kind {
	case CheckIn:
		if e.IsLive() {
			return entry, Result{}, fmt.Errorf("%w: %s", ErrPeriodActive, e.Periods[len(e.Periods)-1])
		}
		if err := startsAfterAll(e.Periods, at); err != nil {
			return entry, Result{}, err
		}
		e.Periods = append(e.Periods, period.Open(at))
		return e, Result{Message: fmt.Sprintf("checking in at %s", timecalc.FormatHours(at))}, nil

	case CheckOut:
		if !e.IsLive() {
			return entry, Result{}, fmt.Errorf("%w: %s", ErrNoActivePeriod, period.Join(e.Periods))
		}
		last := len(e.Periods) - 1
		e.Periods[last] = period.Closed(e.Periods[last].Start, at)
		if err := period.ValidateAll(e.Periods); err != nil {
			return entry, Result{}, err
		}
		return e, Result{Message: fmt.Sprintf("checking out at %s", timecalc.FormatHours(at))}, nil

	case AddPeriod:
		periods, err := period.Add(e.Periods, cmd.Period, round)
		if err != nil {
			return entry, Result{}, err
		}
		added := period.Closed(timecalc.Round(cmd.Period.Start, round), timecalc.Round(*cmd.Period.End, round))
		e.Periods = periods
		return e, Result{Message: fmt.Sprintf("adding period %s", added)}, nil
	}
	return entry, Result{}, fmt.Errorf("unknown command %s", cmd.Kind)
}

// startsAfterAll rejects a check-in at an hour some closed period of the
// day has not ended by.
func startsAfterAll(periods []period.Period, at float64) error {
	for _, p := range periods {
		if p.End != nil && *p.End > at {
			return fmt.Errorf("%w: %s %s", period.ErrOverlappingPeriods, p, period.Open(at))
		}
	}
	return nil
}
