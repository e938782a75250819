// ABOUTME: Append-only activity journal for store mutations.
// ABOUTME: Wraps charmbracelet/log writing one line per add/delete.
package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Supported line formats.
const (
	FormatLogfmt = "logfmt"
	FormatText   = "text"
	FormatJSON   = "json"
)

// Journal is a health.Sink backed by an append-only writer.
type Journal struct {
	logger *log.Logger
	closer io.Closer
	mu     sync.Mutex
}

// Open opens (or creates) the journal file at path for appending.
func Open(path, format string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j, err := New(f, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	j.closer = f
	return j, nil
}

// New writes journal lines to w.
func New(w io.Writer, format string) (*Journal, error) {
	formatter, err := formatterFor(format)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
		Level:           log.InfoLevel,
	})
	return &Journal{logger: logger}, nil
}

// Discard returns a journal that drops every line.
func Discard() *Journal {
	j, _ := New(io.Discard, FormatLogfmt)
	return j
}

func formatterFor(format string) (log.Formatter, error) {
	switch format {
	case "", FormatLogfmt:
		return log.LogfmtFormatter, nil
	case FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	default:
		return 0, fmt.Errorf("unknown journal format: %q", format)
	}
}

// Record writes one line for action with the given key/value pairs.
func (j *Journal) Record(action string, keyvals ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.logger.Info(action, keyvals...)
}

// Close closes the underlying file, if any.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closer != nil {
		err := j.closer.Close()
		j.closer = nil
		return err
	}
	return nil
}
