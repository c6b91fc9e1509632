package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const slotSchema = `CREATE TABLE IF NOT EXISTS history_slots (
	slot_key   TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteSlots stores slots in a local sqlite file so history survives
// client restarts.
type SQLiteSlots struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteSlots, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history failed: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(slotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema failed: %w", err)
	}
	return &SQLiteSlots{db: db}, nil
}

func (s *SQLiteSlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM history_slots WHERE slot_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query history slot failed: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteSlots) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_slots(slot_key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert history slot failed: %w", err)
	}
	return nil
}

func (s *SQLiteSlots) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history_slots WHERE slot_key = ?", key); err != nil {
		return fmt.Errorf("delete history slot failed: %w", err)
	}
	return nil
}

func (s *SQLiteSlots) Close() error {
	return s.db.Close()
}
