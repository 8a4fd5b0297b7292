package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite-based event store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StoreError("could not open history database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.StoreError("failed to initialize history schema").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		root TEXT NOT NULL,
		generation TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generations_root ON generations(root);
	CREATE INDEX IF NOT EXISTS idx_generations_timestamp ON generations(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store.
func (s *SQLiteStore) Append(ctx context.Context, ev Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO generations (event_type, root, generation, timestamp, payload) VALUES (?, ?, ?, ?, ?)",
		ev.Type, ev.Root, ev.Generation, ev.Timestamp.UnixMilli(), ev.Payload,
	)
	if err != nil {
		return 0, errors.StoreError("failed to append generation event").
			WithCause(err).
			WithContext("root", ev.Root).
			Build()
	}
	return res.LastInsertId()
}

// ByRoot returns the newest events recorded for root.
func (s *SQLiteStore) ByRoot(ctx context.Context, root string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_type, root, generation, timestamp, payload FROM generations WHERE root = ? ORDER BY id DESC LIMIT ?",
		root, limit,
	)
	if err != nil {
		return nil, errors.StoreError("failed to query generation events").WithCause(err).Build()
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Range retrieves events within a time range.
func (s *SQLiteStore) Range(ctx context.Context, start, end time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_type, root, generation, timestamp, payload FROM generations WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, errors.StoreError("failed to query generation events").WithCause(err).Build()
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ms int64
		if err := rows.Scan(&e.ID, &e.Type, &e.Root, &e.Generation, &ms, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ms)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation events: %w", err)
	}
	return events, nil
}

// Close closes the database connection. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
