package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/heap/trace"
)

var (
	freqOut string
	freqTop int
)

func init() {
	cmd := newFreqCmd()
	cmd.Flags().StringVarP(&freqOut, "out", "o", "trace-summary", "Directory for the CSV tables")
	cmd.Flags().IntVar(&freqTop, "top", 10, "Rows of each table to print")
	rootCmd.AddCommand(cmd)
}

func newFreqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freq <trace>...",
		Short: "Summarize request-size frequencies",
		Long: `The freq command counts request sizes across all given traces and writes
four CSV tables (alloc, realloc, combined and free frequencies), each sorted
by frequency, most frequent first.

Example:
  memctl freq traces/*.rep
  memctl freq -o summary --top 5 traces/bash.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFreq(args)
		},
	}
	return cmd
}

func runFreq(args []string) error {
	f := trace.NewFrequencies()
	for _, path := range args {
		printVerbose("Reading: %s\n", path)
		tr, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		f.Add(tr)
	}
	if err := f.WriteDir(freqOut); err != nil {
		return err
	}

	tables := []struct {
		title string
		rows  []trace.SizeCount
	}{
		{"alloc", trace.Sorted(f.Alloc)},
		{"realloc", trace.Sorted(f.Realloc)},
		{"combined", trace.Sorted(f.Combined)},
		{"free", trace.Sorted(f.Free)},
	}

	if jsonOut {
		out := map[string][]trace.SizeCount{}
		for _, t := range tables {
			out[t.title] = t.rows
		}
		return printJSON(out)
	}

	for _, t := range tables {
		printInfo("\n%s (%d sizes)\n", t.title, len(t.rows))
		for i, r := range t.rows {
			if i == freqTop {
				break
			}
			printInfo("  %8d bytes  %8d\n", r.Size, r.Count)
		}
	}
	printInfo("\nTables written to %s\n", freqOut)
	return nil
}
