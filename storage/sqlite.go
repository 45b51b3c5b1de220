package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/taskwell/taskwell/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// SQLiteKV keeps the key-value pairs in a single embedded sqlite database.
// Per-key writes are single statements and therefore atomic.
type SQLiteKV struct {
	db       *sql.DB
	capacity int64
}

// NewSQLiteKV opens (creating if necessary) the database at path.
// A capacity of 0 selects DefaultCapacityBytes.
func NewSQLiteKV(path string, capacity int64) (*SQLiteKV, error) {
	if capacity <= 0 {
		capacity = DefaultCapacityBytes
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// The store is single-writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLiteKV{db: db, capacity: capacity}, nil
}

func (s *SQLiteKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &models.StorageError{Op: "read", Err: err}
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(key string, value []byte) error {
	usage, err := s.Usage()
	if err != nil {
		return err
	}
	var existing int64
	_ = s.db.QueryRow(`SELECT length(value) FROM kv WHERE key = ?`, key).Scan(&existing)
	if usage-existing+int64(len(value)) > s.capacity {
		return quotaErr("write")
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return &models.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return &models.StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Usage() (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(length(value) + length(key)), 0) FROM kv`).Scan(&total)
	if err != nil {
		return 0, &models.StorageError{Op: "stat", Err: err}
	}
	return total.Int64, nil
}

func (s *SQLiteKV) Capacity() int64 {
	return s.capacity
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
