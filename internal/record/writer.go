// Package record appends observations to the durable follower log.
package record

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JakeFAU/instascrape/internal/clock/system"
	"github.com/JakeFAU/instascrape/internal/profile"
)

// syncWriter is the subset of *os.File the writer needs.
type syncWriter interface {
	io.Writer
	Sync() error
}

// Writer appends one `<RFC3339 timestamp>,<followers>` line per observation
// and syncs the file before returning. The file is opened once in append
// mode and never truncated. A Writer has a single owner and is not safe for
// concurrent use.
type Writer struct {
	out   syncWriter
	close func() error
	clock profile.Clock
	path  string
}

// Open opens (creating if needed) path for appending.
func Open(path string, clock profile.Clock) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: create dir %s: %w", profile.OutputOpenFailed, dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", profile.OutputOpenFailed, err)
	}
	w := newWriter(f, clock)
	w.close = f.Close
	w.path = path
	return w, nil
}

func newWriter(out syncWriter, clock profile.Clock) *Writer {
	if clock == nil {
		clock = system.New()
	}
	return &Writer{
		out:   out,
		close: func() error { return nil },
		clock: clock,
	}
}

// Path returns the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Record writes the observation's line. The timestamp is taken when the line
// is formatted, not when the page was fetched.
func (w *Writer) Record(obs profile.Observation) error {
	line := FormatLine(w.clock.Now(), obs)
	if _, err := io.WriteString(w.out, line); err != nil {
		return fmt.Errorf("%w: %w", profile.WriteFailed, err)
	}
	if err := w.out.Sync(); err != nil {
		return fmt.Errorf("%w: %w", profile.FlushFailed, err)
	}
	return nil
}

// Close syncs and releases the underlying file.
func (w *Writer) Close() error {
	if err := w.out.Sync(); err != nil {
		_ = w.close()
		return fmt.Errorf("%w: %w", profile.FlushFailed, err)
	}
	if err := w.close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// FormatLine renders the log line for obs at ts, including the newline.
func FormatLine(ts time.Time, obs profile.Observation) string {
	return ts.UTC().Format(time.RFC3339) + "," + strconv.FormatUint(obs.Followers, 10) + "\n"
}
