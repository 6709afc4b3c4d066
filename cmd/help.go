package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show the usage notes kept at the top of the ledger",
	Long: `Without arguments, help prints the comment block at the top of the
ledger file, with $0 replaced by the program name. With a command name it
prints that command's help.`,
	RunE: runHelp,
}

func runHelp(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		target, _, err := rootCmd.Find(args)
		if err != nil || target == nil {
			return fmt.Errorf("unknown help topic %q", strings.Join(args, " "))
		}
		return target.Help()
	}

	s, err := readSession()
	if err != nil {
		slog.Debug("no ledger usage notes", "err", err)
		return rootCmd.Help()
	}
	text := usage(s.lines, filepath.Base(os.Args[0]))
	if text == "" {
		return rootCmd.Help()
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

// usage returns the leading block of # lines with the marker stripped and
// $0 replaced by prog.
func usage(lines []string, prog string) string {
	var b strings.Builder
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		b.WriteString(strings.ReplaceAll(text, "$0", prog))
		b.WriteByte('\n')
	}
	return b.String()
}
