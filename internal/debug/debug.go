package debug

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const logFileName = "carscout-debug.log"

var (
	once   sync.Once
	logger *slog.Logger
)

// GetLogger returns a singleton slog logger instance.
// Terminal surfaces own stdout, so logs go to a file in the temp directory.
// CARSCOUT_DEBUG_LOG overrides the file path.
func GetLogger() *slog.Logger {
	once.Do(func() {
		path := os.Getenv("CARSCOUT_DEBUG_LOG")
		if path == "" {
			path = filepath.Join(os.TempDir(), logFileName)
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			// Fall back to warnings on stderr.
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			return
		}
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	})
	return logger
}
