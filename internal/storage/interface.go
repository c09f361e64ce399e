// Package storage provides the persistent key-value store for the favorites list.
package storage

import (
	"context"
	"errors"

	"github.com/cristianoliveira/soundboard/internal/domain"
)

// ErrEmptyKey is returned when a store is called with an empty key.
var ErrEmptyKey = errors.New("storage: key cannot be empty")

// Store persists named lists of sounds.
//
// Get reports found=false for a key that was never written. Set replaces the
// whole list stored under key.
type Store interface {
	Get(ctx context.Context, key string) (value []domain.Sound, found bool, err error)
	Set(ctx context.Context, key string, value []domain.Sound) error
	Close() error
}
