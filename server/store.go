package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// backupDir is created beside an edited file to hold its rotated copies.
const backupDir = ".refine-backups"

// Store performs the file reads and writes behind the source API. Writes to
// the same path are serialized with a per-path mutex so a concurrent save
// can never interleave the backup/write/invalidate sequence.
type Store struct {
	backups    int
	invalidate func(path string)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store keeping up to backups copies per file.
// invalidate, when non-nil, runs after every successful write — the hook
// where a compiled-template cache clears its entry for the path.
func NewStore(backups int, invalidate func(path string)) *Store {
	return &Store{
		backups:    backups,
		invalidate: invalidate,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Read returns the current contents of path.
func (s *Store) Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("store: read %s: %w", path, err)
	}
	return string(b), nil
}

// Write backs up the current contents of path, then replaces them with
// content, then fires the invalidation hook.
func (s *Store) Write(path, content string) error {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("store: stat %s: %w", path, err)
	}

	if s.backups > 0 {
		if err := s.backup(path); err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}

	if s.invalidate != nil {
		s.invalidate(path)
	}
	return nil
}

// pathLock returns the mutex guarding writes to path, creating it on first
// use.
func (s *Store) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}

// backup copies path into its backup directory under a timestamped name and
// prunes the oldest copies beyond the configured limit.
func (s *Store) backup(path string) error {
	dir := filepath.Join(filepath.Dir(path), backupDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create backup dir: %w", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("store: read for backup %s: %w", path, err)
	}

	stamp := time.Now().UTC().Format("20060102T150405.000000000")
	name := fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp)
	if err := os.WriteFile(filepath.Join(dir, name), contents, 0o644); err != nil {
		return fmt.Errorf("store: write backup %s: %w", name, err)
	}

	return s.prune(dir, filepath.Base(path))
}

// prune removes the oldest backups of base beyond the retention limit.
// Timestamped names sort lexically in creation order.
func (s *Store) prune(dir, base string) error {
	pattern := filepath.Join(dir, base+".*.bak")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("store: list backups: %w", err)
	}
	if len(matches) <= s.backups {
		return nil
	}

	sort.Strings(matches)
	for _, old := range matches[:len(matches)-s.backups] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("store: prune backup %s: %w", old, err)
		}
	}
	return nil
}
