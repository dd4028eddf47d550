package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"discsplit/internal/logging"
)

// FilePrefix names every temporary file discsplit writes to the scratch
// directory.
const FilePrefix = "discsplit-"

// CleanStaleResult contains the outcome of a stale file cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes scratch files left behind by interrupted runs. Only
// regular files carrying FilePrefix and older than maxAge are touched.
func CleanStale(ctx context.Context, scratchDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	scratchDir = strings.TrimSpace(scratchDir)
	if scratchDir == "" {
		return result
	}

	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: scratchDir, Error: err})
		}
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}
		path := filepath.Join(scratchDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logger.Warn("failed to remove stale scratch file",
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale scratch file",
			logging.String("path", path),
			logging.Int64("bytes", info.Size()),
			logging.Duration("age", time.Since(info.ModTime())),
		)
	}
	return result
}

// TempPath returns a fresh scratch file path ending in suffix.
func TempPath(scratchDir, id, suffix string) string {
	return filepath.Join(scratchDir, FilePrefix+id+suffix)
}
