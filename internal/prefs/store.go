package prefs

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/rushmanagement/rushnotify/internal/logging"
)

// Store persists the single preferences record.
type Store interface {
	// Load returns the stored preferences, or Default() when the record is
	// missing or unreadable. It never fails.
	Load() Preferences
	// Save replaces the stored record with p in a single write.
	Save(p Preferences) error
}

// SQLiteStore keeps the record as JSON in a single-row table.
type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger
}

// NewSQLiteStore wraps an open database whose schema includes
// notification_preferences.
func NewSQLiteStore(db *sql.DB, log logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, log: logging.WithComponent(log, "prefs")}
}

// Load implements Store.
func (s *SQLiteStore) Load() Preferences {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM notification_preferences WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Default()
	}
	if err != nil {
		s.log.WithError(err).Warn("reading notification preferences failed, using defaults")
		return Default()
	}

	p, err := Decode(data)
	if err != nil {
		s.log.WithError(err).Warn("stored notification preferences are corrupt, using defaults")
		return Default()
	}
	return p
}

// Save implements Store.
func (s *SQLiteStore) Save(p Preferences) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO notification_preferences (id, data, updated_at)
		VALUES (1, ?, strftime('%s', 'now'))
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, data)
	return err
}

// MemoryStore is an in-memory Store used by tests and as a fallback when the
// database cannot be opened. It stores the encoded bytes so it behaves like
// the persistent store.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	err  error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return Default()
	}
	p, err := Decode(m.data)
	if err != nil {
		return Default()
	}
	return p
}

// Save implements Store.
func (m *MemoryStore) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// Test helpers

// SetRaw replaces the stored bytes, e.g. with a corrupt record.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// Raw returns the stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// FailSaves makes every subsequent Save return err.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Verify implementations at compile time.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
