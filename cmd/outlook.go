package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex-ledger/internal/msgraph"
	"github.com/Tiliavir/flex-ledger/internal/timecalc"
)

var outlookSyncDryRun bool

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft Graph with a device code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := outlookClient(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
		return nil
	},
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add today's Outlook meetings to today's periods",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned changes without writing")
	outlookCmd.AddCommand(outlookLoginCmd)
	outlookCmd.AddCommand(outlookSyncCmd)
}

// outlookClient authenticates, prompting for a device code sign-in when no
// usable token is stored or force is set.
func outlookClient(ctx context.Context, force bool) (*msgraph.Client, error) {
	auth, err := msgraph.NewAuthenticator(cfg.Outlook.TenantID, cfg.Outlook.ClientID)
	if err != nil {
		return nil, storageFailure(err)
	}
	tok, err := auth.Token(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return msgraph.NewClient(ctx, tok, auth.Config, auth.Store), nil
}

func runOutlookSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	today, err := s.ledger.Last()
	if err != nil {
		return err
	}

	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook events for %s%s...\n\n", timecalc.FormatDate(today.Date), dryTag)

	client, err := outlookClient(ctx, false)
	if err != nil {
		return err
	}
	from, to := msgraph.DayRange(today.Date, cfg.Outlook.Timezone)
	events, err := client.GetCalendarView(ctx, from, to, cfg.Outlook.Timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	updated, result := msgraph.SyncMeetings(out, today, events, cfg.Outlook.Timezone)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Fprintf(out, "  %d errors\n", result.Errors)
	}

	if outlookSyncDryRun || result.Imported == 0 {
		return nil
	}
	if err := s.saveToday(updated); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return s.render(out, recentDays)
}
