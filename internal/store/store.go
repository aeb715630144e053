// Package store persists staff and bookings in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid entity")
)

// timeLayout is fixed width so stored UTC timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps sql.DB with the scheduler's queries.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger

	locMu sync.RWMutex
	loc   *time.Location
}

// Open opens the database at path, creating its directory, and runs migrations.
func Open(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{DB: db, path: path, loc: time.UTC, logger: logger}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// UseLocation sets the zone booking times are returned in. Times are always
// stored as UTC. Safe to call while queries run.
func (db *DB) UseLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	db.locMu.Lock()
	defer db.locMu.Unlock()
	db.loc = loc
}

func (db *DB) location() *time.Location {
	db.locMu.RLock()
	defer db.locMu.RUnlock()
	return db.loc
}

func migrate(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			skills TEXT NOT NULL DEFAULT '[]',
			availability TEXT NOT NULL DEFAULT '[]',
			hourly_rate REAL NOT NULL,
			max_hours_per_day INTEGER NOT NULL DEFAULT 8,
			max_hours_per_week INTEGER NOT NULL DEFAULT 40,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			customer TEXT NOT NULL,
			services TEXT NOT NULL,
			scheduled_start TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			assigned_staff_id TEXT,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_staff_name ON staff(name)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start ON bookings(scheduled_start)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > 60 {
		return q[:60] + "..."
	}
	return q
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
