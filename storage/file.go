package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/taskwell/taskwell/models"
)

const lockFileName = ".taskwell.lock"

// FileKV stores each key as a file inside a data directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// value behind. When backed by the real filesystem, a flock on a sidecar
// lock file serializes access across processes.
type FileKV struct {
	fs       afero.Fs
	dir      string
	capacity int64
	flk      *flock.Flock
}

// NewFileKV creates a file-backed store rooted at dir. A capacity of 0
// selects DefaultCapacityBytes. The directory is created if missing.
func NewFileKV(fs afero.Fs, dir string, capacity int64) (*FileKV, error) {
	if capacity <= 0 {
		capacity = DefaultCapacityBytes
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	s := &FileKV{fs: fs, dir: dir, capacity: capacity}
	// flock needs a real path; in-memory filesystems used by tests have a
	// single caller and skip cross-process locking entirely.
	if _, ok := fs.(*afero.OsFs); ok {
		s.flk = flock.New(filepath.Join(dir, lockFileName))
	}
	return s, nil
}

// keyPath maps a storage key onto a file name. Keys contain dots but no
// path separators; anything else is rejected to keep values inside dir.
func (s *FileKV) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileKV) lock() (func(), error) {
	if s.flk == nil {
		return func() {}, nil
	}
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock data directory %s: %w", s.dir, err)
	}
	return func() { _ = s.flk.Unlock() }, nil
}

func (s *FileKV) Get(key string) ([]byte, bool, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, false, err
	}
	unlock, err := s.lock()
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &models.StorageError{Op: "read", Err: err}
	}
	return data, true, nil
}

func (s *FileKV) Set(key string, value []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	usage, err := s.usageLocked()
	if err != nil {
		return err
	}
	var existing int64
	if info, statErr := s.fs.Stat(path); statErr == nil {
		existing = info.Size()
	}
	if usage-existing+int64(len(value)) > s.capacity {
		return quotaErr("write")
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return &models.StorageError{Op: "write", Err: err}
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return &models.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *FileKV) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return &models.StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *FileKV) Usage() (int64, error) {
	unlock, err := s.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.usageLocked()
}

func (s *FileKV) usageLocked() (int64, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, &models.StorageError{Op: "stat", Err: err}
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name() == lockFileName || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		total += e.Size()
	}
	return total, nil
}

func (s *FileKV) Capacity() int64 {
	return s.capacity
}

// Path returns the absolute path backing the given key, for callers that
// watch the file for out-of-process writes.
func (s *FileKV) Path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileKV) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
