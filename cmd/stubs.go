package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotImplemented = errors.New("not yet implemented")

// stubCmds are commands the ledger format anticipates but flex does not
// support yet. They always fail.
func stubCmds() []*cobra.Command {
	stubs := []struct{ use, short string }{
		{"break <start-end>", "Record a break"},
		{"note <text>", "Set today's note"},
		{"working-hours <hours>", "Change today's expected working hours"},
		{"excess-as-overtime <0|1>", "Count excess hours as overtime"},
		{"round-minutes <minutes>", "Change the rounding granularity"},
	}
	cmds := make([]*cobra.Command, 0, len(stubs))
	for _, st := range stubs {
		cmds = append(cmds, &cobra.Command{
			Use:                st.use,
			Short:              st.short + " (not yet implemented)",
			DisableFlagParsing: true,
			RunE: func(*cobra.Command, []string) error {
				return errNotImplemented
			},
		})
	}
	return cmds
}
