package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotProvisioned is returned when the backing table does not exist yet.
// Run Provision (or `minerush remote provision`) to create it.
var ErrNotProvisioned = errors.New("remote store not provisioned")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS game_saves (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL UNIQUE,
    data       TEXT NOT NULL,
    last_saved BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`

// Record is one user's cloud save.
type Record struct {
	RowID     string
	UserID    string
	Data      []byte // serialized GameState
	LastSaved int64  // unix milliseconds, copied from the snapshot
	UpdatedAt time.Time
}

// Store is a remote save store over database/sql.
type Store struct {
	db       *sql.DB
	postgres bool
	newID    func() string
	now      func() time.Time
}

// Open connects to a remote store. driver is "postgres" or "sqlite3".
func Open(driver, dsn string) (*Store, error) {
	if driver != "postgres" && driver != "sqlite3" {
		return nil, fmt.Errorf("unsupported remote driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping remote database: %w", err)
	}
	return New(db, driver), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, driver string) *Store {
	return &Store{
		db:       db,
		postgres: driver == "postgres",
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		now:      time.Now,
	}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Provision creates the backing table. It is idempotent.
func (s *Store) Provision(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("provision remote store: %w", err)
	}
	return nil
}

// Fetch returns the user's record, or nil when the user has none.
func (s *Store) Fetch(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	var data string
	var updated int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, user_id, data, last_saved, updated_at
		FROM game_saves
		WHERE user_id = ?
	`), userID).Scan(&rec.RowID, &rec.UserID, &data, &rec.LastSaved, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", userID, classify(err))
	}
	rec.Data = []byte(data)
	rec.UpdatedAt = time.UnixMilli(updated)
	return &rec, nil
}

// Upsert writes the user's record and returns it with the row id the
// server holds. A first write inserts a new row id; later writes keep it.
func (s *Store) Upsert(ctx context.Context, rec Record) (Record, error) {
	if rec.UserID == "" {
		return Record{}, errors.New("upsert: empty user id")
	}
	rowID := rec.RowID
	if rowID == "" {
		rowID = s.newID()
	}
	updated := s.now()

	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO game_saves (id, user_id, data, last_saved, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			data = excluded.data,
			last_saved = excluded.last_saved,
			updated_at = excluded.updated_at
		RETURNING id
	`), rowID, rec.UserID, string(rec.Data), rec.LastSaved, updated.UnixMilli()).Scan(&rec.RowID)
	if err != nil {
		return Record{}, fmt.Errorf("upsert %s: %w", rec.UserID, classify(err))
	}
	rec.UpdatedAt = time.UnixMilli(updated.UnixMilli())
	return rec, nil
}

// Delete removes the user's record. Deleting a missing record is not an
// error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM game_saves WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", userID, classify(err))
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps driver errors onto ErrNotProvisioned where the table is
// missing, and wraps everything else unchanged.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42P01" { // undefined_table
		return fmt.Errorf("%w: %v", ErrNotProvisioned, err)
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotProvisioned, err)
	}
	return err
}
