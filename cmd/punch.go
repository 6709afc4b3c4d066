package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex-ledger/internal/period"
	"github.com/Tiliavir/flex-ledger/internal/punch"
)

// recentDays is the report printed after today's entry changes.
const recentDays = 7

var inCmd = &cobra.Command{
	Use:   "in [time]",
	Short: "Check in now, or at the given hour (e.g. 8.5)",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseHours(args)
		if err != nil {
			return err
		}
		return runPunch(cmd, punch.In(at...))
	},
}

var outCmd = &cobra.Command{
	Use:   "out [time]",
	Short: "Check out now, or at the given hour (e.g. 17.25)",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseHours(args)
		if err != nil {
			return err
		}
		return runPunch(cmd, punch.Out(at...))
	},
}

var periodCmd = &cobra.Command{
	Use:   "period <start-end>",
	Short: "Add a worked period to today, e.g. 13-15.5",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := period.Parse(args[0])
		if err != nil {
			return err
		}
		return runPunch(cmd, punch.Add(p))
	},
}

// parseHours reads the optional hour-of-day argument.
func parseHours(args []string) ([]float64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	h, err := period.ParseHour(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: expected hours such as 8 or 16.5", args[0])
	}
	return []float64{h}, nil
}

// runPunch applies c to today's entry, persists it and prints the last week.
// Nothing is written when the command is rejected.
func runPunch(cmd *cobra.Command, c punch.Command) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	today, err := s.ledger.Last()
	if err != nil {
		return err
	}

	updated, result, err := punch.Apply(today, c, s.clock)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Message)

	if err := s.saveToday(updated); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return s.render(out, recentDays)
}
