package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>...",
		Short: "Replay traces with a full heap audit after every operation",
		Long: `The check command replays each trace with the heap consistency checker
enabled after every operation. It reports the first violated invariant with
the trace line that caused it.

Example:
  memctl check traces/*.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	failed := 0
	for _, path := range args {
		if _, err := replayFile(path, true); err != nil {
			printInfo("✗ %s\n    %v\n", path, err)
			failed++
			continue
		}
		printInfo("✓ %s\n", path)
	}
	if failed > 0 {
		return errors.Newf("%d of %d traces failed", failed, len(args))
	}
	return nil
}
