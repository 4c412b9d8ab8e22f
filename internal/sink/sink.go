// internal/sink/sink.go
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Sample is one decoded reading on its way to storage.
type Sample struct {
	Device      string
	Tag         string
	Description string
	Timestamp   time.Time // cycle start; stored as epoch seconds
	Value       float64
}

// Sink durably records samples. Implementations must be safe for use by
// every device goroutine at once.
type Sink interface {
	Record(ctx context.Context, s Sample) error
}

// execer is the subset of *sql.DB the sink writes through.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteError reports a sample that storage rejected.
// It is retryable: losing one sample must not stop polling.
type WriteError struct {
	Device string
	Tag    string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sink: record device=%s tag=%s: %v", e.Device, e.Tag, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Retryable is always true for write errors.
func (e *WriteError) Retryable() bool { return true }

// SQLSink appends samples into one table per device.
// At most one write is in flight through it at any instant.
type SQLSink struct {
	mu sync.Mutex
	db execer
}

// NewSQLSink wraps a shared storage handle. Tables must already exist (see Bootstrap).
func NewSQLSink(db execer) *SQLSink {
	return &SQLSink{db: db}
}

// Record appends one sample. The lock covers the INSERT only.
func (s *SQLSink) Record(ctx context.Context, smp Sample) error {
	table, err := QuoteIdent(smp.Device)
	if err != nil {
		return &WriteError{Device: smp.Device, Tag: smp.Tag, Err: err}
	}

	query := "INSERT INTO " + table + " (timestamp, tag, description, value) VALUES (?, ?, ?, ?)"

	if err := s.exec(ctx, query, smp.Timestamp.Unix(), smp.Tag, smp.Description, smp.Value); err != nil {
		return &WriteError{Device: smp.Device, Tag: smp.Tag, Err: err}
	}
	return nil
}

// exec runs one statement under the lock. The lock is released even if the
// driver panics, so other devices keep writing.
func (s *SQLSink) exec(ctx context.Context, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

var _ Sink = (*SQLSink)(nil)
