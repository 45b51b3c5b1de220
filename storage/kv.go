// Package storage provides the durable key-value byte store the persistence
// layer writes through. Two backends exist: a file-per-key store on an afero
// filesystem and an embedded sqlite database. Neither assigns any meaning to
// the bytes it holds.
package storage

import "github.com/taskwell/taskwell/models"

// DefaultCapacityBytes mirrors the conventional 5 MB per-origin ceiling of
// browser local storage and is the default for both backends.
const DefaultCapacityBytes int64 = 5 * 1024 * 1024

// KV is a durable key-value byte store. Implementations must make Set
// all-or-nothing per key and return an error wrapping
// models.ErrQuotaExceeded when a write would push usage past Capacity.
type KV interface {
	// Get returns the value for key. The second return is false when the
	// key is absent; absence is not an error.
	Get(key string) ([]byte, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key if present. Deleting an absent key is a no-op.
	Delete(key string) error

	// Usage returns the current number of stored bytes across all keys.
	Usage() (int64, error)

	// Capacity returns the configured ceiling in bytes.
	Capacity() int64

	// Close releases any underlying resources (locks, connections).
	Close() error
}

// quotaErr builds the canonical over-capacity error for a backend.
func quotaErr(op string) error {
	return &models.StorageError{Op: op, Err: models.ErrQuotaExceeded}
}
