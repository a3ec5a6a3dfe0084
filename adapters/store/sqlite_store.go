package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// migrations is an ordered list of SQL statements applied on startup.
// Each entry is idempotent (IF NOT EXISTS) so re-running is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL DEFAULT '',
		display_name  TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		user_id      TEXT NOT NULL,
		device_id    TEXT NOT NULL,
		token        TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		PRIMARY KEY (user_id, device_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_token ON devices (token)`,
}

// SQLiteStore implements ports.AccountStore using a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time.

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// --- Users ---

func (s *SQLiteStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, password_hash, created_at) VALUES (?, ?, ?)`,
		userID, passwordHash, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *SQLiteStore) SetDisplayName(ctx context.Context, userID, displayName string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET display_name = ? WHERE id = ?`, displayName, userID)
	return err
}

// --- Devices ---

func (s *SQLiteStore) DeviceExists(ctx context.Context, userID, deviceID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM devices WHERE user_id = ? AND device_id = ?`, userID, deviceID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) CreateDevice(ctx context.Context, userID, deviceID, token, displayName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (user_id, device_id, token, display_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, deviceID, token, displayName, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) SetDeviceToken(ctx context.Context, userID, deviceID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE devices SET token = ? WHERE user_id = ? AND device_id = ?`,
		token, userID, deviceID)
	return err
}

func (s *SQLiteStore) UserByToken(ctx context.Context, token string) (string, string, error) {
	var userID, deviceID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, device_id FROM devices WHERE token = ?`, token).Scan(&userID, &deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", core.ErrInvalidToken
	}
	if err != nil {
		return "", "", err
	}
	return userID, deviceID, nil
}

func (s *SQLiteStore) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM devices WHERE user_id = ? AND device_id = ?`, userID, deviceID)
	return err
}

func (s *SQLiteStore) DeviceIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT device_id FROM devices WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ ports.AccountStore = (*SQLiteStore)(nil)
