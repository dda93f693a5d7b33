package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/existflow/kawai/internal/db"
)

// Persisted keys
const (
	keyUser  = "user"
	keyToken = "token"
)

// Storage persists the user record and token as a pair.
// Load returns empty strings for missing keys. Save writes both or neither.
// Version changes whenever another writer commits.
type Storage interface {
	Load(ctx context.Context) (user, token string, err error)
	Save(ctx context.Context, user, token string) error
	Clear(ctx context.Context) error
	Version(ctx context.Context) (int64, error)
}

// SQLiteStorage keeps the session in the shared kawai database.
type SQLiteStorage struct {
	db *db.DB

	// data_version is per connection, so it is read on a pinned one.
	mu   sync.Mutex
	conn *sql.Conn
}

// NewSQLiteStorage pins a connection for Version and returns the storage.
func NewSQLiteStorage(ctx context.Context, database *db.DB) (*SQLiteStorage, error) {
	conn, err := database.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pin version connection: %w", err)
	}
	return &SQLiteStorage{db: database, conn: conn}, nil
}

// Load reads both keys
func (s *SQLiteStorage) Load(ctx context.Context) (string, string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session WHERE key IN (?, ?)`, keyUser, keyToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	var user, token string
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return "", "", fmt.Errorf("failed to scan session: %w", err)
		}
		switch k {
		case keyUser:
			user = v
		case keyToken:
			token = v
		}
	}
	return user, token, rows.Err()
}

// Save writes user and token in one transaction
func (s *SQLiteStorage) Save(ctx context.Context, user, token string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session write: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	const upsert = `INSERT INTO session (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err = tx.ExecContext(ctx, upsert, keyUser, user); err != nil {
		return fmt.Errorf("failed to write user: %w", err)
	}
	if _, err = tx.ExecContext(ctx, upsert, keyToken, token); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Clear removes both keys
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key IN (?, ?)`, keyUser, keyToken); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Version returns SQLite's data_version for the pinned connection.
func (s *SQLiteStorage) Version(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v int64
	if err := s.conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read data_version: %w", err)
	}
	return v, nil
}

// Close releases the pinned connection. The database stays open.
func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

// MemoryStorage is a process-local Storage.
type MemoryStorage struct {
	mu      sync.Mutex
	user    string
	token   string
	version int64
}

// NewMemoryStorage returns an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.token, nil
}

func (m *MemoryStorage) Save(_ context.Context, user, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user, m.token = user, token
	m.version++
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user, m.token = "", ""
	m.version++
	return nil
}

func (m *MemoryStorage) Version(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

// Put sets the raw persisted values, bypassing validation.
// It models another process writing the same storage.
func (m *MemoryStorage) Put(user, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user, m.token = user, token
	m.version++
}
