package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// InMemory opens a database that lives only as long as the store.
const InMemory = ":memory:"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the history database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != InMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "create history directory").
				WithContext("path", dbPath).
				Build()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// every pooled connection to :memory: would see its own empty database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "initialize schema").Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		builder TEXT NOT NULL,
		source TEXT NOT NULL,
		output TEXT NOT NULL,
		args TEXT NOT NULL,
		state TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		revision TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_invocations_started ON invocations(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a record to the store.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args, err := json.Marshal(rec.Args)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "marshal arguments").Build()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, started_at, builder, source, output, args, state, exit_code, duration_ms, revision)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UnixMilli(), rec.Builder, rec.Source, rec.Output, string(args),
		rec.State, rec.ExitCode, rec.Duration.Milliseconds(), rec.Revision,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert invocation").
			WithContext("invocation_id", rec.ID).
			Build()
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit returns everything.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, builder, source, output, args, state, exit_code, duration_ms, revision
		 FROM invocations ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query invocations").Build()
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec        Record
			startedMs  int64
			durationMs int64
			args       string
			revision   sql.NullString
		)
		if err := rows.Scan(&rec.ID, &startedMs, &rec.Builder, &rec.Source, &rec.Output, &args,
			&rec.State, &rec.ExitCode, &durationMs, &revision); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "scan invocation").Build()
		}
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.Revision = revision.String
		if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "unmarshal arguments").Build()
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "iterate rows").Build()
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
