// Package errlog is the append-only failure audit trail of spec.md §4.8
// and §6.4. It is a best-effort side channel, never part of error
// propagation: a write failure here must be logged but must never mask
// the migration error that triggered it.
package errlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	logDir  = "logs"
	logFile = "migration-error.log"
)

// Sink appends failure records to <cwd>/logs/migration-error.log.
type Sink struct {
	path   string
	logger *slog.Logger
}

// New builds a Sink rooted at the current working directory.
func New(logger *slog.Logger) *Sink {
	return &Sink{path: filepath.Join(logDir, logFile), logger: logger}
}

// Append writes one record: a UTC timestamp, the run ID, the formatted
// message, and a "---" separator, matching spec.md §4.8 exactly.
func (s *Sink) Append(runID ulid.ULID, message string) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logWriteFailure(err)
		return
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logWriteFailure(err)
		return
	}
	defer f.Close()

	record := fmt.Sprintf("%s [%s] %s\n---\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"), runID, message)
	if _, err := f.WriteString(record); err != nil {
		s.logWriteFailure(err)
	}
}

func (s *Sink) logWriteFailure(err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("failed to write migration error log sink", "path", s.path, "error", err)
}
