package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex-ledger/internal/watch"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

var watchCmd = &cobra.Command{
	Use:   "watch [days]",
	Short: "Print the report and reprint it whenever the ledger changes",
	Args:  reportArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	days := daysArg(args)
	out := cmd.OutOrStdout()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, clearScreen)
	if err := s.render(out, days); err != nil {
		return err
	}

	w, err := watch.New(s.store.Path, watch.DefaultDebounce)
	if err != nil {
		return storageFailure(fmt.Errorf("watching %s: %w", s.store.Path, err))
	}
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	for {
		select {
		case err := <-errc:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-w.Changes():
			s, err := readSession()
			if err != nil {
				// The file may be mid-edit; keep the last good report.
				slog.Warn("cannot reload ledger", "err", err)
				continue
			}
			fmt.Fprint(out, clearScreen)
			if err := s.render(out, days); err != nil {
				return err
			}
		}
	}
}
