package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex-ledger/internal/model"
	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/storage"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

var (
	initWorkingHours float64
	initRoundMinutes int
	initOvertime     bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new ledger starting today",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Float64Var(&initWorkingHours, "working-hours", model.DefaultWorkingHours, "Expected working hours per day")
	initCmd.Flags().IntVar(&initRoundMinutes, "round-minutes", 15, "Rounding granularity for times, in minutes")
	initCmd.Flags().BoolVar(&initOvertime, "excess-as-overtime", false, "Count excess hours as overtime")
}

// ledgerPreamble is the usage block "flex help" prints.
var ledgerPreamble = []string{
	"# flex report card. One line per day:",
	"#   version;date;working-hours;excess-as-overtime;round-minutes;periods;note",
	"#",
	"# $0              print the last 31 days",
	"# $0 N            print the last N days",
	"# $0 in [time]    check in now or at time (hours, e.g. 8.5)",
	"# $0 out [time]   check out now or at time",
	"# $0 period a-b   add a worked period to today",
	"# $0 help         show this text",
	"#",
	"# Lines starting with # are comments, lines starting with @ are headers.",
}

const ledgerHeader = "@v;date      ;wh;eo;rm;periods;note"

func runInit(cmd *cobra.Command, _ []string) error {
	path, err := ledgerPath()
	if err != nil {
		return storageFailure(err)
	}

	first := model.Entry{
		Version: model.FormatVersion,
		Date:    timecalc.Today(timecalc.SystemClock{}),
		Settings: model.Settings{
			WorkingHours:     initWorkingHours,
			ExcessAsOvertime: initOvertime,
			RoundMinutes:     initRoundMinutes,
		},
		Periods: []period.Period{},
	}
	if err := first.Validate(); err != nil {
		return err
	}

	lines := append(append([]string{}, ledgerPreamble...), ledgerHeader, first.Format())
	if err := (storage.File{Path: path}).Create(lines); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return err
		}
		return storageFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
