// Package history keeps a local record of sphinx-build invocations.
package history

import (
	"context"
	"time"
)

// Record is one finished invocation.
type Record struct {
	ID        string
	StartedAt time.Time
	Builder   string
	Source    string
	Output    string
	Args      []string
	State     string
	ExitCode  int
	Duration  time.Duration
	Revision  string
}

// Succeeded reports whether the invocation finished with exit code zero.
func (r Record) Succeeded() bool {
	return r.State == "succeeded"
}

// Store defines the interface for persisting and retrieving invocation records.
type Store interface {
	// Append adds a record to the store.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases resources.
	Close() error
}

// NoopStore discards everything.
type NoopStore struct{}

func (NoopStore) Append(context.Context, Record) error          { return nil }
func (NoopStore) Recent(context.Context, int) ([]Record, error) { return nil, nil }
func (NoopStore) Close() error                                  { return nil }
