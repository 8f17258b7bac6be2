package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/trace"
)

var replayCheck bool

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every operation")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report space utilization",
		Long: `The replay command runs each trace against a fresh allocator, verifying
alignment, bounds, overlap and payload contents for every operation, and
reports peak live payload, final heap size and utilization.

Example:
  memctl replay traces/*.rep
  memctl replay --check --arena mmap traces/realloc.rep
  memctl replay traces/bash.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

// replayReport is the JSON form of one trace result.
type replayReport struct {
	Trace        string  `json:"trace"`
	Ops          int     `json:"ops"`
	PeakPayload  int     `json:"peak_payload"`
	HeapSize     int     `json:"heap_size"`
	Utilization  float64 `json:"utilization"`
	GrowCalls    int     `json:"grow_calls"`
	ReallocMoves int     `json:"realloc_moves"`
}

func runReplay(args []string) error {
	results, err := replayAll(args, replayCheck)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(results)
	}

	printInfo("%-24s %10s %14s %14s %8s\n", "trace", "ops", "peak payload", "heap size", "util")
	total := 0.0
	for _, r := range results {
		printInfo("%-24s %10d %14d %14d %7.1f%%\n",
			r.Trace, r.Ops, r.PeakPayload, r.HeapSize, r.Utilization*100)
		printVerbose("  grows: %d, realloc moves: %d\n", r.GrowCalls, r.ReallocMoves)
		total += r.Utilization
	}
	if len(results) > 1 {
		printInfo("%-24s %10s %14s %14s %7.1f%%\n", "average", "", "", "", total/float64(len(results))*100)
	}
	return nil
}

// replayAll replays every trace in order and stops at the first failure.
func replayAll(paths []string, checkEach bool) ([]replayReport, error) {
	var out io.Writer = os.Stderr
	if quiet || jsonOut || len(paths) == 1 {
		out = io.Discard
	}
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("replaying"),
		progressbar.OptionShowCount(),
	)

	results := make([]replayReport, 0, len(paths))
	for _, path := range paths {
		r, err := replayFile(path, checkEach)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return results, nil
}

func replayFile(path string, checkEach bool) (replayReport, error) {
	printVerbose("Replaying: %s\n", path)

	tr, err := trace.ParseFile(path)
	if err != nil {
		return replayReport{}, err
	}
	a, release, err := newAllocator()
	if err != nil {
		return replayReport{}, err
	}
	defer release()

	res, err := trace.Replay(tr, a, &trace.ReplayOptions{CheckEach: checkEach, Logger: newLogger()})
	if err != nil {
		return replayReport{}, errors.Wrapf(err, "replay %s", path)
	}
	return replayReport{
		Trace:        res.Name,
		Ops:          res.Ops,
		PeakPayload:  res.PeakPayload,
		HeapSize:     res.HeapSize,
		Utilization:  res.Utilization,
		GrowCalls:    res.Stats.GrowCalls,
		ReallocMoves: res.Stats.ReallocMoves,
	}, nil
}
