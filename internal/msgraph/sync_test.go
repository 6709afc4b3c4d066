package msgraph_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/msgraph"
	"github.com/Tiliavir/flex-ledger/internal/period"
)

func makeEvent(id, subject, start, end string) msgraph.CalendarEvent {
	return msgraph.CalendarEvent{
		ID:          id,
		Subject:     subject,
		Sensitivity: "normal",
		ShowAs:      "busy",
		Start:       msgraph.DateTimeZone{DateTime: start, TimeZone: "UTC"},
		End:         msgraph.DateTimeZone{DateTime: end, TimeZone: "UTC"},
	}
}

func allDay(id, subject, start, end, showAs string) msgraph.CalendarEvent {
	ev := makeEvent(id, subject, start, end)
	ev.IsAllDay = true
	ev.ShowAs = showAs
	return ev
}

var friday = time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

func TestMapEventToPeriod(t *testing.T) {
	p, err := msgraph.MapEventToPeriod(makeEvent("1", "Sprint Planning", "2026-02-27T09:00:00", "2026-02-27T10:30:00"), friday, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "9-10.5", p.String())

	p, err = msgraph.MapEventToPeriod(makeEvent("2", "Release", "2026-02-27T22:00:00.0000000", "2026-02-28T01:00:00.0000000"), friday, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "22-24", p.String())

	_, err = msgraph.MapEventToPeriod(makeEvent("3", "Tomorrow", "2026-02-28T09:00:00", "2026-02-28T10:00:00"), friday, "UTC")
	assert.Error(t, err)

	_, err = msgraph.MapEventToPeriod(makeEvent("4", "Broken", "yesterday", "2026-02-27T10:00:00"), friday, "UTC")
	assert.Error(t, err)
}

func TestMapEventToPeriodUsesLedgerTimezone(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Without a Prefer header Graph answers in UTC; 08:00Z is 09:00 in Stockholm.
	p, err := msgraph.MapEventToPeriod(makeEvent("1", "Standup", "2026-03-02T08:00:00.0000000", "2026-03-02T08:30:00.0000000"), monday, "Europe/Stockholm")
	require.NoError(t, err)
	assert.Equal(t, "9-9.5", p.String())

	ev := makeEvent("2", "Review", "2026-03-02T09:00:00.0000000", "2026-03-02T10:00:00.0000000")
	ev.Start.TimeZone = "Europe/Stockholm"
	ev.End.TimeZone = "Europe/Stockholm"
	p, err = msgraph.MapEventToPeriod(ev, monday, "Europe/Stockholm")
	require.NoError(t, err)
	assert.Equal(t, "9-10", p.String())

	// 23:30Z on Sunday is already Monday in Stockholm.
	p, err = msgraph.MapEventToPeriod(makeEvent("3", "Early", "2026-03-01T23:30:00", "2026-03-02T00:00:00"), monday, "Europe/Stockholm")
	require.NoError(t, err)
	assert.Equal(t, "0.5-1", p.String())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, msgraph.Location(""))
	assert.Equal(t, time.Local, msgraph.Location("Not/AZone"))
	assert.Equal(t, "Europe/Stockholm", msgraph.Location("Europe/Stockholm").String())
}

func TestDayRange(t *testing.T) {
	from, to := msgraph.DayRange(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "Europe/Stockholm")
	assert.Equal(t, time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), from.UTC())
	assert.Equal(t, time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), to.UTC())
}

func TestSyncMeetings(t *testing.T) {
	e, err := model.Parse("1;2026-02-27;8;0;15;8-9, 13-;")
	require.NoError(t, err)

	private := makeEvent("p", "Doctor", "2026-02-27T10:00:00", "2026-02-27T11:00:00")
	private.Sensitivity = "private"
	cancelled := makeEvent("c", "Cancelled", "2026-02-27T11:00:00", "2026-02-27T12:00:00")
	cancelled.IsCancelled = true

	events := []msgraph.CalendarEvent{
		makeEvent("1", "Standup", "2026-02-27T09:00:00", "2026-02-27T09:20:00"),
		makeEvent("2", "Overlaps morning", "2026-02-27T08:30:00", "2026-02-27T09:00:00"),
		makeEvent("3", "After check-in", "2026-02-27T14:00:00", "2026-02-27T15:00:00"),
		private,
		cancelled,
		allDay("4", "Conference", "2026-02-27T00:00:00", "2026-02-28T00:00:00", "busy"),
	}

	var out bytes.Buffer
	got, result := msgraph.SyncMeetings(&out, e, events, "UTC")

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Zero(t, result.Errors)
	assert.Equal(t, "8-9, 9-9.25, 13-", period.Join(got.Periods))
	assert.Equal(t, "8-9, 13-", period.Join(e.Periods), "input entry must not change")
	assert.Contains(t, out.String(), "Imported: Standup")
	assert.Contains(t, out.String(), "Skipped:  Overlaps morning")
}

func TestFetchAbsences(t *testing.T) {
	events := []msgraph.CalendarEvent{
		allDay("1", "Vacation", "2026-07-13T00:00:00.0000000", "2026-07-15T00:00:00.0000000", "oof"),
		allDay("2", "Offsite", "2026-07-16T00:00:00.0000000", "2026-07-17T00:00:00.0000000", "busy"),
		makeEvent("3", "Standup", "2026-07-16T09:00:00", "2026-07-16T09:15:00"),
	}

	var gotPath, gotStart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("startDateTime")
		assert.Equal(t, `outlook.timezone="Europe/Stockholm"`, r.Header.Get("Prefer"))
		_ = json.NewEncoder(w).Encode(map[string]any{"value": events})
	}))
	defer srv.Close()

	client := msgraph.NewClientWithHTTP(srv.Client(), srv.URL)
	from := time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC)
	a, err := msgraph.FetchAbsences(context.Background(), client, from, from.AddDate(0, 0, 7), "Europe/Stockholm")
	require.NoError(t, err)
	assert.Equal(t, "/me/calendarView", gotPath)
	assert.Equal(t, "2026-07-12T22:00:00Z", gotStart, "the window starts at Stockholm midnight")

	label, ok := a.Holiday(from)
	assert.True(t, ok)
	assert.Equal(t, "Vacation", label)
	_, ok = a.Holiday(from.AddDate(0, 0, 1))
	assert.True(t, ok)
	_, ok = a.Holiday(from.AddDate(0, 0, 2))
	assert.False(t, ok, "end date is exclusive")
	_, ok = a.Holiday(from.AddDate(0, 0, 3))
	assert.False(t, ok, "busy all-day events are not absences")
}

func TestGetCalendarViewPagesAndErrors(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/calendarView" {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		switch r.URL.Query().Get("page") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"value":           []msgraph.CalendarEvent{makeEvent("1", "A", "2026-02-27T09:00:00", "2026-02-27T10:00:00")},
				"@odata.nextLink": srv.URL + "/me/calendarView?page=2",
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"value": []msgraph.CalendarEvent{makeEvent("2", "B", "2026-02-27T11:00:00", "2026-02-27T12:00:00")},
			})
		}
	}))
	defer srv.Close()

	client := msgraph.NewClientWithHTTP(srv.Client(), srv.URL)
	events, err := client.GetCalendarView(context.Background(), friday, friday.AddDate(0, 0, 1), "")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "B", events[1].Subject)

	broken := msgraph.NewClientWithHTTP(srv.Client(), srv.URL+"/forbidden")
	_, err = broken.GetCalendarView(context.Background(), friday, friday, "")
	assert.ErrorContains(t, err, "graph API error 403")
}

func TestTokenStoreRoundTrip(t *testing.T) {
	store := msgraph.TokenStore{Path: t.TempDir() + "/auth/tokens.json"}

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "abc", RefreshToken: "def"}))
	tok, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "def", tok.RefreshToken)
}
