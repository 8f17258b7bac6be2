package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/trace"
)

var mapStopAt int

func init() {
	cmd := newMapCmd()
	cmd.Flags().IntVar(&mapStopAt, "stop-at", 0, "Stop after this many operations (0 = whole trace)")
	rootCmd.AddCommand(cmd)
}

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map <trace>",
		Short: "Dump the heap layout after replaying a trace",
		Long: `The map command replays a trace (optionally only its first operations)
and prints the resulting heap as JSON: summary fields, free-list lengths per
size class and every block in address order. With --json off, a short text
summary is printed instead.

Example:
  memctl map traces/short1.rep --json
  memctl map --stop-at 100 traces/bash.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(args)
		},
	}
	return cmd
}

func runMap(args []string) error {
	path := args[0]
	tr, err := trace.ParseFile(path)
	if err != nil {
		return err
	}
	if mapStopAt < 0 {
		return errors.Newf("--stop-at must not be negative, got %d", mapStopAt)
	}
	if mapStopAt > 0 && mapStopAt < len(tr.Ops) {
		tr.Ops = tr.Ops[:mapStopAt]
	}

	a, release, err := newAllocator()
	if err != nil {
		return err
	}
	defer release()

	if _, err := trace.Replay(tr, a, &trace.ReplayOptions{Logger: newLogger()}); err != nil {
		return errors.Wrapf(err, "replay %s", path)
	}

	if jsonOut {
		if err := a.WriteHeapMap(os.Stdout); err != nil {
			return err
		}
		_, err := os.Stdout.WriteString("\n")
		return err
	}

	s := a.Summary()
	printInfo("\nHeap after %d operations of %s:\n", len(tr.Ops), tr.Name)
	printInfo("  Heap size:     %d bytes\n", s.HeapSize)
	printInfo("  Blocks:        %d (%d allocated, %d free)\n", s.Blocks, s.AllocatedBlocks, s.FreeBlocks)
	printInfo("  Allocated:     %d bytes\n", s.AllocatedBytes)
	printInfo("  Free:          %d bytes (largest %d)\n", s.FreeBytes, s.LargestFree)
	printInfo("  Utilization:   %.1f%%\n", s.Utilization()*100)
	printInfo("\nFree lists:\n")
	for c, n := range s.ClassCounts {
		if n == 0 && !verbose {
			continue
		}
		printInfo("  class %2d (<= %d bytes): %d\n", c, alloc.ClassLimit(c), n)
	}
	if verbose {
		a.PrintStats(os.Stdout)
	}
	return nil
}
