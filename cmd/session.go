package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tiliavir/flex-ledger/internal/holiday"
	"github.com/Tiliavir/flex-ledger/internal/ledger"
	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/msgraph"
	"github.com/Tiliavir/flex-ledger/internal/report"
	"github.com/Tiliavir/flex-ledger/internal/storage"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

// session is one run over the ledger: read once, filled up to today, and
// rewritten at most once at the end.
type session struct {
	store  storage.File
	lines  []string
	ledger *ledger.Ledger
	clock  timecalc.Clock
}

// ledgerPath resolves the configured ledger location.
func ledgerPath() (string, error) {
	p := cfg.Ledger
	if p == "" {
		return storage.DefaultPath()
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p, nil
}

// readSession loads and parses the ledger without changing it.
func readSession() (*session, error) {
	path, err := ledgerPath()
	if err != nil {
		return nil, storageFailure(err)
	}
	s := &session{store: storage.File{Path: path}, clock: timecalc.SystemClock{}}

	s.lines, err = s.store.ReadAllLines()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storageFailure(fmt.Errorf("no ledger at %s, run \"flex init\" to create one", path))
	}
	if err != nil {
		return nil, storageFailure(err)
	}

	s.ledger, err = ledger.Load(s.lines, s.clock)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("ledger loaded", "path", path, "entries", s.ledger.Len())
	return s, nil
}

// openSession loads the ledger and appends any days missing up to today.
func openSession(ctx context.Context) (*session, error) {
	s, err := readSession()
	if err != nil {
		return nil, err
	}
	if err := s.fill(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) fill(ctx context.Context) error {
	last, err := s.ledger.Last()
	if err != nil {
		return fmt.Errorf("%s: %w", s.store.Path, err)
	}
	today := timecalc.Today(s.clock)
	if !last.Date.Before(today) {
		return nil
	}

	lookup, err := holidays(ctx, timecalc.NextDay(last.Date), today)
	if err != nil {
		return err
	}
	n, err := s.ledger.FillToToday(today, lookup, s.store)
	if err != nil {
		return storageFailure(err)
	}
	slog.Debug("filled missing days", "count", n)
	return nil
}

// holidays builds the day-off lookup used while filling from..to: the
// country calendar, then the personal file, then Outlook absences.
func holidays(ctx context.Context, from, to time.Time) (holiday.Lookup, error) {
	var chain holiday.Chain

	country, err := holiday.ForCountry(cfg.Holidays.Country, cfg.Holidays.IncludeSundays)
	if err != nil {
		return nil, err
	}
	chain = append(chain, country)

	if cfg.Holidays.File != "" {
		f, err := holiday.LoadFile(cfg.Holidays.File)
		if err != nil {
			return nil, storageFailure(err)
		}
		chain = append(chain, f)
	}

	if cfg.Outlook.Enabled {
		absences, err := outlookAbsences(ctx, from, to)
		if err != nil {
			slog.Warn("outlook absences unavailable, filling without them", "err", err)
		} else {
			chain = append(chain, absences)
		}
	}
	return chain, nil
}

func outlookAbsences(ctx context.Context, from, to time.Time) (msgraph.Absences, error) {
	client, err := outlookClient(ctx, false)
	if err != nil {
		return nil, err
	}
	return msgraph.FetchAbsences(ctx, client, from, to, cfg.Outlook.Timezone)
}

// saveToday rewrites the last ledger line with e, aligned like the line
// before it.
func (s *session) saveToday(e model.Entry) error {
	raw := e.FormatAligned(s.ledger.AlignmentReference())
	if err := s.store.ReplaceLastLine(raw); err != nil {
		return storageFailure(err)
	}
	s.ledger.SetLast(e, raw)
	slog.Debug("today's entry saved", "line", raw)
	return nil
}

func (s *session) render(w io.Writer, days int) error {
	r := report.Renderer{Styles: stylesFor(cfg.Report.Color, w)}
	return r.Render(w, s.ledger, days)
}

