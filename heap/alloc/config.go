package alloc

import (
	"io"
	"os"

	"golang.org/x/exp/slog"

	"github.com/joshuapare/memkit/internal/format"
)

const (
	// DefaultChunkSize is the default arena growth increment (8KB).
	DefaultChunkSize = 1 << 13

	// logAllocEnv enables debug logging of arena growth and slow paths when set.
	logAllocEnv = "MEMKIT_LOG_ALLOC"
)

// Config tunes an Allocator.
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the arena on a
	// miss. Rounded up to a multiple of 8 and raised to the minimum block
	// size; zero means DefaultChunkSize.
	ChunkSize uint32

	// VerifyEachOp runs MustCheckHeap after every public mutating call.
	// Builds with -tags debug_alloc always verify.
	VerifyEachOp bool

	// Logger receives allocator diagnostics. Nil means a discarding logger,
	// or a stderr debug logger when MEMKIT_LOG_ALLOC is set.
	Logger *slog.Logger

	// OnFatal is called with the checker's error when MustCheckHeap fails.
	// Nil means exit the process with status 1.
	OnFatal func(error)
}

// DefaultConfig is used when New receives a nil config.
var DefaultConfig = Config{
	ChunkSize: DefaultChunkSize,
}

func (c Config) normalized() Config {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	c.ChunkSize = format.AlignUp(c.ChunkSize, format.Alignment)
	if c.ChunkSize < format.MinBlockSize {
		c.ChunkSize = format.MinBlockSize
	}
	if c.Logger == nil {
		c.Logger = defaultLogger()
	}
	if c.OnFatal == nil {
		c.OnFatal = func(error) { os.Exit(1) }
	}
	return c
}

func defaultLogger() *slog.Logger {
	if os.Getenv(logAllocEnv) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
