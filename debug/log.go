package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
	logger  = newLogger(io.Discard)
)

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           log.DebugLevel,
	})
}

// Enable starts debug logging to ~/.config/go-piano/debug.log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	homeDir, _ := os.UserHomeDir()
	dir := filepath.Join(homeDir, ".config", "go-piano")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	logger = newLogger(f)
	logger.WithPrefix("debug").Info("=== Debug logging started ===")

	return nil
}

// EnableTo sends debug logging to w instead of the log file (stderr for
// --verbose, a buffer in tests).
func EnableTo(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	enabled = true
	logger = newLogger(w)
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	enabled = false
	logger = newLogger(io.Discard)
}

func closeFile() {
	if file != nil {
		file.Close()
		file = nil
	}
}

// Logger returns the underlying logger for structured key/value logging.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.WithPrefix(category).Debug(fmt.Sprintf(format, args...))
}

// Warn writes a warning: invalid input or a rejected command.
func Warn(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.WithPrefix(category).Warn(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
