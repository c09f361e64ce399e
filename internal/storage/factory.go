package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/storage/sqlite"
)

const (
	// BackendFile selects JSON documents in the state directory.
	BackendFile = "file"
	// BackendSQLite selects a SQLite key-value table.
	BackendSQLite = "sqlite"
	// BackendMemory selects a store that forgets everything on exit.
	BackendMemory = "memory"

	favoritesDirName = "favorites"
	dbFileName       = "soundboard.db"
)

var _ Store = (*sqlite.Store)(nil)
var _ Store = (*FileStorage)(nil)
var _ Store = (*MemoryStore)(nil)

// GetStateDir returns the configured state directory.
func GetStateDir() string {
	return config.Get("state_dir", "")
}

// NewFromConfig creates a storage backend based on configuration.
func NewFromConfig() (Store, error) {
	return NewForBackend(config.Get("storage_backend", BackendFile), GetStateDir())
}

// NewForBackend creates the named backend rooted at stateDir. Unknown names
// and a sqlite database that cannot be opened fall back to file storage.
func NewForBackend(backend, stateDir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStorage(filepath.Join(stateDir, favoritesDirName))
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		store, err := sqlite.NewStore(filepath.Join(stateDir, dbFileName))
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite backend, falling back to file: %v", err))
			return NewFileStorage(filepath.Join(stateDir, favoritesDirName))
		}
		return store, nil
	default:
		colors.Warning(fmt.Sprintf("unknown storage backend '%s', falling back to file", backend))
		return NewFileStorage(filepath.Join(stateDir, favoritesDirName))
	}
}
