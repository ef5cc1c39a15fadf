// Package state opens the device-local SQLite database shared by the settings
// UI and the background daemon.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "rushnotify"
	dbFileName = "rushnotify.db"
	memoryPath = ":memory:"

	// Both processes write to the same file; wait instead of failing on lock.
	connPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

type Manager struct {
	db *sql.DB
}

// Open opens the database at the default XDG data location.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path, creating parent directories and the
// schema as needed. ":memory:" opens a private in-memory database.
func OpenPath(path string) (*Manager, error) {
	dsn := memoryPath
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = "file:" + path + connPragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == memoryPath {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Path returns the default database location.
func Path() (string, error) {
	return getDBPath()
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
