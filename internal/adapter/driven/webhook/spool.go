package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// Spool accumulates undelivered notification messages in a JSON array file so
// an operator can inspect what never reached the chat provider. It is
// forensic only; nothing reads it back for re-delivery.
type Spool struct {
	path string
}

// NewSpool creates a Spool writing to path. The file is created on first
// append.
func NewSpool(path string) *Spool {
	return &Spool{path: path}
}

// SpoolFilename returns the per-run spool filename, embedding the run date
// and process id so concurrent and successive runs never clobber each other.
func SpoolFilename(now time.Time, pid int) string {
	return fmt.Sprintf("ratatoskr_%s_%d.json", now.Format("2006-01-02"), pid)
}

// Append adds one message to the spool, read-modify-write so earlier failures
// from the same run are preserved.
func (s *Spool) Append(message string) error {
	var messages []string

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First failure this run.
	case err != nil:
		return fmt.Errorf("read spool %s: %w", s.path, err)
	default:
		if err := json.Unmarshal(data, &messages); err != nil {
			// An unreadable spool must not swallow new failures; start over.
			slog.Warn("spool file unreadable, resetting", "spool", s.path, "error", err)
			messages = nil
		}
	}

	messages = append(messages, message)

	out, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode spool: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("write spool %s: %w", s.path, err)
	}

	slog.Warn("spooled undelivered message", "spool", s.path)
	return nil
}
