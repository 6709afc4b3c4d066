package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/flex-ledger/internal/holiday"
	"github.com/Tiliavir/flex-ledger/internal/ledger"
	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

type memStore struct {
	lines []string
	err   error
}

func (m *memStore) AppendLine(line string) error {
	if m.err != nil {
		return m.err
	}
	m.lines = append(m.lines, line)
	return nil
}

var noon = timecalc.FixedClock(time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local))

func day(s string) time.Time {
	d, err := timecalc.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func load(t *testing.T, lines ...string) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Load(lines, noon)
	require.NoError(t, err)
	return l
}

func TestLoadSkipsCommentsHeadersAndBlanks(t *testing.T) {
	l := load(t,
		"# usage: $0 in",
		"@ver; date; hours; ot; round; periods; note",
		"",
		"   ",
		"1;2026-03-02;8;0;15;9-17;",
		"1;2026-03-03;8;0;15;9-12;",
	)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "2026-03-03", timecalc.FormatDate(l.Entries[1].Date))
	assert.Equal(t, "1;2026-03-03;8;0;15;9-12;", l.Raw[1])
}

func TestLoadFailsOnMalformedLine(t *testing.T) {
	_, err := ledger.Load([]string{"1;2026-03-02;8;0;15;9-17;", "3;2026-03-03;8;0;15;;"}, noon)
	assert.ErrorIs(t, err, model.ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFillToToday(t *testing.T) {
	// 2026-03-02 is a Monday; D+1..D+3 are Tue-Thu.
	l := load(t, "1;  2026-03-02;  8;  0;  15;  9-17;  kickoff")
	store := &memStore{}

	added, err := l.FillToToday(day("2026-03-05"), holiday.None{}, store)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, []string{
		"1;  2026-03-03;  8;  0;  15;  ;  ",
		"1;  2026-03-04;  8;  0;  15;  ;  ",
		"1;  2026-03-05;  8;  0;  15;  ;  ",
	}, store.lines)

	require.Equal(t, 4, l.Len())
	for i, want := range []string{"2026-03-03", "2026-03-04", "2026-03-05"} {
		e := l.Entries[i+1]
		assert.Equal(t, want, timecalc.FormatDate(e.Date))
		assert.Equal(t, 8.0, e.Settings.WorkingHours)
		assert.Empty(t, e.Note)
		assert.Empty(t, e.Periods)
	}

	// A second run has nothing left to write.
	added, err = l.FillToToday(day("2026-03-05"), holiday.None{}, store)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, store.lines, 3)
}

func TestFillToTodayWeekendAndHolidays(t *testing.T) {
	l := load(t, "1;2026-04-02;8;0;15;8-16;")
	store := &memStore{}

	added, err := l.FillToToday(day("2026-04-07"), holiday.NewSweden(true), store)
	require.NoError(t, err)
	assert.Equal(t, 5, added)
	assert.Equal(t, []string{
		"1;2026-04-03;0;0;15;;Långfredagen",
		"1;2026-04-04;0;0;15;;Saturday",
		"1;2026-04-05;0;0;15;;Påskdagen",
		"1;2026-04-06;0;0;15;;Annandag påsk",
		"1;2026-04-07;8;0;15;;",
	}, store.lines)
}

func TestFillToTodayStopsOnStorageError(t *testing.T) {
	l := load(t, "1;2026-03-02;8;0;15;;")
	store := &memStore{err: errors.New("disk full")}

	added, err := l.FillToToday(day("2026-03-05"), nil, store)
	assert.Error(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 1, l.Len())
}

func TestFillToTodayEmpty(t *testing.T) {
	l := load(t, "# nothing yet")
	_, err := l.FillToToday(day("2026-03-05"), nil, &memStore{})
	assert.ErrorIs(t, err, ledger.ErrEmptyLedger)
}

func TestWindowEndingAt(t *testing.T) {
	l := load(t,
		"1;2026-03-02;8;0;15;;",
		"1;2026-03-03;8;0;15;;",
		"1;2026-03-04;8;0;15;;",
		"1;2026-03-05;8;0;15;;",
	)

	w := l.WindowEndingAt(day("2026-03-04"), 2)
	require.Len(t, w, 2)
	assert.Equal(t, "2026-03-03", timecalc.FormatDate(w[0].Date))
	assert.Equal(t, "2026-03-04", timecalc.FormatDate(w[1].Date))

	assert.Len(t, l.WindowEndingAt(day("2026-03-04"), 10), 3)
	assert.Empty(t, l.WindowEndingAt(day("2026-04-01"), 3))
}

func TestCumulativeFlexBank(t *testing.T) {
	l := load(t,
		"1;2026-03-02;8;0;15;9-17;",
		"1;2026-03-03;8;0;15;9-15;",
		"1;2026-03-04;8;0;15;7-17;",
	)

	want := []int64{0, -2, 0}
	for i, d := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
		got := l.CumulativeFlexBank(day(d))
		assert.Truef(t, got.Equal(decimal.NewFromInt(want[i])), "bank at %s = %s, want %d", d, got, want[i])
	}
}

func TestCumulativeFlexBankCountsLivePeriod(t *testing.T) {
	// noon: the running 8- period has 4 hours so far.
	l := load(t,
		"1;2026-03-03;8;0;15;8-16;",
		"1;2026-03-04;8;0;15;8-;",
	)
	assert.True(t, l.CumulativeFlexBank(day("2026-03-04")).Equal(decimal.NewFromInt(-4)))
}

func TestWeekTotal(t *testing.T) {
	l := load(t,
		"1;2026-02-27;8;0;15;9-17;", // previous week's Friday
		"1;2026-03-02;8;0;15;9-17;",
		"1;2026-03-03;8;0;15;9-15;",
		"1;2026-03-04;8;0;15;7-17;",
	)
	assert.True(t, l.WeekTotal(day("2026-03-04")).Equal(decimal.NewFromInt(24)))
	assert.True(t, l.WeekTotal(day("2026-03-02")).Equal(decimal.NewFromInt(8)))
}

func TestTailAndAlignmentReference(t *testing.T) {
	l := load(t, "1;2026-03-02;8;0;15;;", "1; 2026-03-03;8;0;15;;")
	assert.Len(t, l.Tail(31), 2)
	assert.Len(t, l.Tail(1), 1)
	assert.Empty(t, l.Tail(0))
	assert.Equal(t, "1;2026-03-02;8;0;15;;", l.AlignmentReference())

	last, err := l.Last()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", timecalc.FormatDate(last.Date))
}
