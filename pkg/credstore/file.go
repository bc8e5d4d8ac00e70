package credstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileStore keeps each key in its own file under dir. One file per key
// preserves the independent-write semantics of the credential pair.
type FileStore struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{
		fs:  fs,
		dir: dir,
	}
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := afero.ReadFile(s.fs, s.path(key))
	if os.IsNotExist(err) {
		return ``, false, nil
	}
	if err != nil {
		return ``, false, fmt.Errorf("credstore: can't read key %q, %w", key, err)
	}
	return string(raw), true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("credstore: can't create state dir %q, %w", s.dir, err)
	}
	if err := afero.WriteFile(s.fs, s.path(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("credstore: can't write key %q, %w", key, err)
	}
	return nil
}

func (s *FileStore) RemoveMany(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		err := s.fs.Remove(s.path(key))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("credstore: can't remove key %q, %w", key, err)
		}
	}
	return firstErr
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}
