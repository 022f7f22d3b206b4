// Package localstore is the CLI's durable queue of results that have not
// reached the server yet. The queue is a JSON file guarded by an exclusive
// lock file so concurrent CLI runs never interleave writes.
package localstore

import (
	"complykit/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Entry is one queued result
type Entry struct {
	ID       string                    `json:"id"`
	QueuedAt time.Time                 `json:"queuedAt"`
	Result   model.QuestionnaireResult `json:"result"`
}

type file struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

const fileVersion = 1

// Store is a file-backed pending queue
type Store struct {
	path string
	lock *flock.Flock
}

// Open returns a store rooted at path. The file is created on first write.
func Open(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// DefaultPath is pending.json under the user's config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "complykit", "pending.json"), nil
}

func (s *Store) Path() string {
	return s.path
}

// Add queues a result and returns its entry id
func (s *Store) Add(result *model.QuestionnaireResult) (string, error) {
	id := uuid.New().String()
	err := s.Update(func(entries []Entry) ([]Entry, error) {
		return append(entries, Entry{ID: id, QueuedAt: time.Now().UTC(), Result: *result}), nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns queued entries, oldest first
func (s *Store) List() ([]Entry, error) {
	if err := s.withLock(); err != nil {
		return nil, err
	}
	defer s.lock.Unlock()
	return s.read()
}

// Clear drops every entry
func (s *Store) Clear() error {
	return s.Update(func([]Entry) ([]Entry, error) { return nil, nil })
}

// Update runs fn over the entries under the lock and atomically writes its
// result. If fn fails nothing is written.
func (s *Store) Update(fn func([]Entry) ([]Entry, error)) error {
	if err := s.withLock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(entries)
	if err != nil {
		return err
	}
	return s.write(next)
}

func (s *Store) withLock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("%s was written by a newer version (v%d)", s.path, f.Version)
	}
	return f.Entries, nil
}

func (s *Store) write(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(file{Version: fileVersion, Entries: entries}, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes to a temp file in the target directory and renames it
// over the target, so readers never observe a partial file
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pending-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	tmp = nil
	return nil
}

// ClientID returns this install's anonymous client id, creating it on first
// use. The server keys pending results by it until a user claims them.
func (s *Store) ClientID() (string, error) {
	if err := s.withLock(); err != nil {
		return "", err
	}
	defer s.lock.Unlock()

	path := filepath.Join(filepath.Dir(s.path), "client_id")
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read client id: %w", err)
	}

	id := uuid.New().String()
	if err := atomicWrite(path, []byte(id+"\n")); err != nil {
		return "", err
	}
	return id, nil
}

// Remove drops the entries with the given ids
func (s *Store) Remove(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return s.Update(func(entries []Entry) ([]Entry, error) {
		kept := entries[:0]
		for _, e := range entries {
			if !drop[e.ID] {
				kept = append(kept, e)
			}
		}
		return kept, nil
	})
}
