package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alexschlessinger/vanillachat/messages"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	contextExt     = ".json"
	lockWait       = 10 * time.Second
	lockPoll       = 100 * time.Millisecond
	defaultFileTTL = 7 * 24 * time.Hour
)

// contextFile is the on-disk form of a file session
type contextFile struct {
	Name     string                 `json:"name"`
	History  []messages.ChatMessage `json:"history"`
	Metadata *Metadata              `json:"metadata"`
}

// FileSession is a session persisted as JSON. Its file stays locked until Close.
type FileSession struct {
	*conversation
	path string
	lock *flock.Flock
}

// Close releases the file lock. Further changes are still saved.
func (s *FileSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		zap.S().Debugw("session_unlock_failed", "name", s.name, "error", err)
	}
	s.lock = nil
}

func (s *FileSession) save() error {
	data, err := json.MarshalIndent(contextFile{
		Name:     s.name,
		History:  s.history,
		Metadata: s.metadata,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// FileStore keeps one JSON file per context under a directory
type FileStore struct {
	dir      string
	defaults *Metadata
}

// NewFileStore creates the store directory; an empty dir means ~/.vanilla/contexts
func NewFileStore(dir string, defaults *Metadata) (*FileStore, error) {
	if defaults == nil {
		defaults = DefaultMetadata()
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".vanilla", "contexts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create context directory: %w", err)
	}
	return &FileStore{dir: dir, defaults: defaults}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+contextExt)
}

// Get locks and loads the named context, creating it if missing or unreadable
func (s *FileStore) Get(name string) (Session, error) {
	if err := ValidateContextName(name); err != nil {
		return nil, fmt.Errorf("invalid context name '%s': %w", name, err)
	}

	path := s.path(name)
	lock := flock.New(path)
	ctx, cancel := context.WithTimeout(context.Background(), lockWait)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, lockPoll)
	if err != nil {
		return nil, fmt.Errorf("context '%s' is in use: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("context '%s' is in use", name)
	}

	conv := s.load(name, path)
	session := &FileSession{conversation: conv, path: path, lock: lock}
	conv.persist = session.save

	conv.mu.Lock()
	err = conv.changed()
	conv.mu.Unlock()
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to save context: %w", err)
	}
	return session, nil
}

// load reads the context file, falling back to a fresh conversation
func (s *FileStore) load(name, path string) *conversation {
	fresh := newConversation(name, newMetadata(name, s.defaults))

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return fresh
	}
	var file contextFile
	if err := json.Unmarshal(data, &file); err != nil {
		zap.S().Debugw("session_file_corrupt", "name", name, "error", err)
		return fresh
	}

	if file.Metadata != nil {
		fresh.metadata = MergeMetadata(fresh.metadata, file.Metadata)
		fresh.metadata.Name = name
	}
	if file.History != nil {
		fresh.history = file.History
	}
	return fresh
}

// Delete removes the context file even if another process holds it
func (s *FileStore) Delete(name string) {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		zap.S().Debugw("session_delete_failed", "name", name, "error", err)
	}
}

// Expire removes unlocked contexts unused for longer than their TTL (7 days by default)
func (s *FileStore) Expire() {
	names, err := s.List()
	if err != nil {
		return
	}
	for _, name := range names {
		path := s.path(name)
		lock := flock.New(path)
		if ok, err := lock.TryLock(); err != nil || !ok {
			continue
		}
		if s.expired(path) {
			zap.S().Debugw("session_expired", "name", name)
			_ = os.Remove(path)
		}
		_ = lock.Unlock()
	}
}

func (s *FileStore) expired(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var file contextFile
	if err := json.Unmarshal(data, &file); err != nil {
		return false
	}

	ttl := defaultFileTTL
	var lastUsed time.Time
	if file.Metadata != nil {
		lastUsed = file.Metadata.LastUsed
		if file.Metadata.TTL > 0 {
			ttl = file.Metadata.TTL
		}
	}
	if lastUsed.IsZero() {
		if info, err := os.Stat(path); err == nil {
			lastUsed = info.ModTime()
		}
	}
	return time.Since(lastUsed) > ttl
}

// List returns the context names in lexical order
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), contextExt); ok && !entry.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// GetLast returns the context whose file was modified most recently
func (s *FileStore) GetLast() string {
	names, err := s.List()
	if err != nil {
		return ""
	}
	var last string
	var newest time.Time
	for _, name := range names {
		info, err := os.Stat(s.path(name))
		if err == nil && info.ModTime().After(newest) {
			last, newest = name, info.ModTime()
		}
	}
	return last
}
