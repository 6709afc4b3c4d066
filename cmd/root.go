package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex-ledger/internal/config"
)

var (
	flagFile    string
	flagVerbose bool
	flagColor   string

	// cfg is the merged configuration, loaded before any command runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "flex [days]",
	Short: "flex – a plain-text flex time ledger",
	Long: `flex keeps one line per working day in ~/.flex/report.card and reports
worked hours, overtime and the accumulated flex bank.

Run "flex" to print the last 31 days, or "flex N" for the last N days.`,
	Args:              reportArgs,
	PersistentPreRunE: setup,
	RunE:              runReport,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// exitError carries the process exit status for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// storageFailure marks err as a storage or configuration failure (exit 2).
func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "Ledger file (default ~/.flex/report.card)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "Colour output: auto, always or never")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(outlookCmd)
	for _, c := range stubCmds() {
		rootCmd.AddCommand(c)
	}
}

// setup merges config file, environment and flags, then installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return storageFailure(err)
	}
	if flagFile != "" {
		c.Ledger = flagFile
	}
	if flagColor != "" {
		c.Report.Color = flagColor
	}
	if flagVerbose {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()})))
	cfg = c
	return nil
}

// reportArgs accepts nothing or a single day count. Any other word is an
// unknown command.
func reportArgs(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		if _, err := parseDays(args[0]); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("expected at most 1 argument, got %d", len(args))
}

// parseDays reads a positive day count.
func parseDays(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("unknown command: %s", arg)
	}
	if n <= 0 {
		return 0, fmt.Errorf("number of days must be positive, got %d", n)
	}
	return n, nil
}

// daysArg returns the day count from args, or the configured default.
func daysArg(args []string) int {
	if len(args) == 0 {
		return cfg.Report.DefaultDays
	}
	n, _ := parseDays(args[0])
	return n
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return s.render(cmd.OutOrStdout(), daysArg(args))
}
