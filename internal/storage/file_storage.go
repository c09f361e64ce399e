package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cristianoliveira/soundboard/internal/domain"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileStorage keeps one JSON document per key in a directory. Writes go to a
// temporary file that is renamed into place while holding the directory lock,
// so readers never observe a partial document.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates a FileStorage rooted at dir, creating it if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("file storage: directory cannot be empty")
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		return nil, fmt.Errorf("file storage: create directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (fs *FileStorage) pathFor(key string) string {
	return filepath.Join(fs.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (fs *FileStorage) lockDir() string {
	return filepath.Join(fs.dir, "lock")
}

// Get reads the list stored under key.
func (fs *FileStorage) Get(ctx context.Context, key string) ([]domain.Sound, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(fs.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("file storage: read %s: %w", key, err)
	}
	var value []domain.Sound
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("file storage: parse %s: %w", key, err)
	}
	if value == nil {
		value = []domain.Sound{}
	}
	return value, true, nil
}

// Set replaces the list stored under key.
func (fs *FileStorage) Set(ctx context.Context, key string, value []domain.Sound) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == nil {
		value = []domain.Sound{}
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("file storage: marshal %s: %w", key, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	return WithLock(fs.lockDir(), func() error {
		target := fs.pathFor(key)
		tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
		if err != nil {
			return fmt.Errorf("file storage: create temp file: %w", err)
		}
		tmpName := tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("file storage: write %s: %w", key, err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("file storage: close %s: %w", key, err)
		}
		if err := os.Chmod(tmpName, FileModeFile); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("file storage: chmod %s: %w", key, err)
		}
		if err := os.Rename(tmpName, target); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("file storage: replace %s: %w", key, err)
		}
		return nil
	})
}

// Close is a no-op; every write is complete when Set returns.
func (fs *FileStorage) Close() error {
	return nil
}
