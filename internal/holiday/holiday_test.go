package holiday_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/flex-ledger/internal/holiday"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSweden2026(t *testing.T) {
	se := holiday.NewSweden(false)
	tests := []struct {
		day  time.Time
		want string
	}{
		{date(2026, 1, 1), "Nyårsdagen"},
		{date(2026, 1, 6), "Trettondedag jul"},
		{date(2026, 4, 3), "Långfredagen"},
		{date(2026, 4, 5), "Påskdagen"},
		{date(2026, 4, 6), "Annandag påsk"},
		{date(2026, 5, 1), "Första maj"},
		{date(2026, 5, 14), "Kristi himmelsfärdsdag"},
		{date(2026, 5, 24), "Pingstdagen"},
		{date(2026, 6, 6), "Sveriges nationaldag"},
		{date(2026, 6, 19), "Midsommarafton"},
		{date(2026, 6, 20), "Midsommardagen"},
		{date(2026, 10, 31), "Alla helgons dag"},
		{date(2026, 12, 24), "Julafton"},
		{date(2026, 12, 25), "Juldagen"},
		{date(2026, 12, 26), "Annandag jul"},
		{date(2026, 12, 31), "Nyårsafton"},
	}
	for _, tt := range tests {
		label, ok := se.Holiday(tt.day)
		assert.Truef(t, ok, "%s should be a holiday", tt.day.Format("2006-01-02"))
		assert.Equal(t, tt.want, label)
	}

	_, ok := se.Holiday(date(2026, 2, 27))
	assert.False(t, ok)
	_, ok = se.Holiday(date(2026, 3, 1)) // Sunday
	assert.False(t, ok)
}

func TestSwedenEasterOtherYears(t *testing.T) {
	se := holiday.NewSweden(false)
	for _, d := range []time.Time{date(2024, 3, 31), date(2025, 4, 20), date(2027, 3, 28)} {
		label, ok := se.Holiday(d)
		assert.True(t, ok)
		assert.Equal(t, "Påskdagen", label)
	}
}

func TestSwedenSundays(t *testing.T) {
	se := holiday.NewSweden(true)

	label, ok := se.Holiday(date(2026, 3, 1))
	require.True(t, ok)
	assert.Equal(t, "Söndag", label)

	// A named holiday on a Sunday keeps its name.
	label, ok = se.Holiday(date(2026, 4, 5))
	require.True(t, ok)
	assert.Equal(t, "Påskdagen", label)

	_, ok = se.Holiday(date(2026, 2, 28))
	assert.False(t, ok, "Saturdays are not holidays")
}

func TestForCountry(t *testing.T) {
	l, err := holiday.ForCountry("se", true)
	require.NoError(t, err)
	_, ok := l.Holiday(date(2026, 12, 25))
	assert.True(t, ok)

	l, err = holiday.ForCountry("", true)
	require.NoError(t, err)
	_, ok = l.Holiday(date(2026, 12, 25))
	assert.False(t, ok)

	_, err = holiday.ForCountry("XX", false)
	assert.ErrorIs(t, err, holiday.ErrUnknownCountry)
}

func TestChain(t *testing.T) {
	vacation := holiday.Func(func(day time.Time) (string, bool) {
		return "Vacation", day.Equal(date(2026, 7, 13))
	})
	c := holiday.Chain{nil, vacation, holiday.NewSweden(true)}

	label, ok := c.Holiday(date(2026, 7, 13))
	assert.True(t, ok)
	assert.Equal(t, "Vacation", label)

	label, ok = c.Holiday(date(2026, 7, 12))
	assert.True(t, ok)
	assert.Equal(t, "Söndag", label)

	_, ok = c.Holiday(date(2026, 7, 14))
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\"2026-07-13\": Vacation\n\"2026-07-14\": Vacation\n"), 0o600))

	f, err := holiday.LoadFile(path)
	require.NoError(t, err)
	label, ok := f.Holiday(date(2026, 7, 14))
	assert.True(t, ok)
	assert.Equal(t, "Vacation", label)
	_, ok = f.Holiday(date(2026, 7, 15))
	assert.False(t, ok)
}

func TestLoadFileMissingAndBad(t *testing.T) {
	f, err := holiday.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, f)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\"13/07/2026\": Vacation\n"), 0o600))
	_, err = holiday.LoadFile(path)
	assert.Error(t, err)
}
