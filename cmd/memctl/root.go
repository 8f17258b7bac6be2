package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/arena"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	arenaKind string
	maxSize   int
	chunkSize uint32
)

var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Replay and analyze allocator workload traces",
	Long: `memctl drives the memkit segregated-fit allocator with CS:APP style
.rep workload traces. It replays traces with full correctness checks, audits
the heap after every operation, reports space utilization, dumps heap maps and
summarizes request-size frequencies.`,
	SilenceUsage: true,
	Version:      version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&arenaKind, "arena", "slice", "Arena provider: slice or mmap")
	rootCmd.PersistentFlags().
		IntVar(&maxSize, "max-size", arena.DefaultMaxSize, "Largest arena size in bytes")
	rootCmd.PersistentFlags().
		Uint32Var(&chunkSize, "chunk-size", alloc.DefaultChunkSize, "Arena growth increment in bytes")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		printer.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		printer.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// newLogger returns the allocator logger: debug records on stderr with
// --verbose, nothing otherwise.
func newLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newAllocator builds an allocator over a fresh arena chosen by --arena.
// The returned function releases the arena.
func newAllocator() (*alloc.Allocator, func() error, error) {
	opts := &arena.Options{MaxSize: maxSize}

	var (
		p       arena.Provider
		release = func() error { return nil }
	)
	switch arenaKind {
	case "slice":
		p = arena.NewSlice(opts)
	case "mmap":
		m, err := arena.NewMmap(opts)
		if err != nil {
			return nil, nil, err
		}
		p, release = m, m.Close
	default:
		return nil, nil, errors.Newf("unknown arena %q (want slice or mmap)", arenaKind)
	}

	a, err := alloc.New(p, &alloc.Config{
		ChunkSize: chunkSize,
		Logger:    newLogger(),
	})
	if err != nil {
		_ = release()
		return nil, nil, err
	}
	return a, release, nil
}
