// Package report renders the tabular day/week view of a ledger.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/flex-ledger/internal/ledger"
	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// summaryIndent lines the week summary up under the periods column.
const summaryIndent = 64

// Styles colour whole report lines. Layout is done before styling, so a
// style never shifts a column.
type Styles struct {
	Header  lipgloss.Style
	Live    lipgloss.Style
	Summary lipgloss.Style
	Deficit lipgloss.Style
}

// Renderer prints ledger reports. The zero value prints plain text.
type Renderer struct {
	Styles *Styles
}

// Render prints the last numDays entries of l with a summary after every
// Sunday and after the final row.
func (r Renderer) Render(w io.Writer, l *ledger.Ledger, numDays int) error {
	bw := bufio.NewWriter(w)
	days := l.Tail(numDays)

	r.line(bw, r.header(), headerKind)
	for i, e := range days {
		kind := rowKind
		if e.IsLive() {
			kind = liveKind
		}
		r.line(bw, Row(e, l.Clock), kind)

		if timecalc.ISOWeekday(e.Date) == 6 || i == len(days)-1 {
			bank := l.CumulativeFlexBank(e.Date)
			kind := summaryKind
			if bank.IsNegative() {
				kind = deficitKind
			}
			r.line(bw, Summary(l.WeekTotal(e.Date), bank), kind)
		}
	}
	return bw.Flush()
}

type lineKind int

const (
	rowKind lineKind = iota
	headerKind
	liveKind
	summaryKind
	deficitKind
)

func (r Renderer) line(w io.Writer, text string, kind lineKind) {
	if r.Styles != nil {
		switch kind {
		case headerKind:
			text = r.Styles.Header.Render(text)
		case liveKind:
			text = r.Styles.Live.Render(text)
		case summaryKind:
			text = r.Styles.Summary.Render(text)
		case deficitKind:
			text = r.Styles.Deficit.Render(text)
		}
	}
	fmt.Fprintln(w, text)
}

func (r Renderer) header() string {
	return fmt.Sprintf("%-5s%-4s%-11s%-6s%-9s%-6s%-22s %s",
		"Week", "Day", "Date", "Hours", "Overtime", "Total", "Periods", "Note")
}

// Row formats one day. A trailing "+" on the total marks a running period.
func Row(e model.Entry, clock timecalc.Clock) string {
	overtime := "0"
	if e.Settings.ExcessAsOvertime {
		overtime = "1"
	}
	total := Hours(decimal.NewFromFloat(e.WorkedHoursRightNow(clock)))
	if e.IsLive() {
		total += "+"
	}
	row := fmt.Sprintf("w%-4d%-4s%-11s%-6s%-9s%-6s%-22s %s",
		timecalc.ISOWeek(e.Date),
		timecalc.WeekdayAbbrev(e.Date),
		timecalc.FormatDate(e.Date),
		Hours(decimal.NewFromFloat(e.Settings.WorkingHours)),
		overtime,
		total,
		period.Join(e.Periods),
		e.Note,
	)
	return strings.TrimRight(row, " ")
}

// Summary formats the week line printed under a Sunday or the last row.
func Summary(weekTotal, bank decimal.Decimal) string {
	return fmt.Sprintf("%s Week total hours: %s, flex bank: %s",
		strings.Repeat(" ", summaryIndent-1), Hours(weekTotal), Hours(bank))
}

// Hours renders an hour amount with at most two decimals and no trailing zeros.
func Hours(h decimal.Decimal) string {
	return h.Round(2).String()
}
