package sessions

import (
	"sync"
	"time"
)

// memorySession lives only as long as its MemoryStore
type memorySession struct {
	*conversation
}

// Close is a no-op; memory sessions hold no resources
func (memorySession) Close() {}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	sessions sync.Map // name -> memorySession
	defaults *Metadata
}

// NewMemoryStore creates an in-memory store applying defaults to new sessions
func NewMemoryStore(defaults *Metadata) *MemoryStore {
	if defaults == nil {
		defaults = DefaultMetadata()
	}
	return &MemoryStore{defaults: defaults}
}

// Get returns the named session, creating it on first use
func (s *MemoryStore) Get(name string) (Session, error) {
	if v, ok := s.sessions.Load(name); ok {
		session := v.(memorySession)
		session.touch()
		return session, nil
	}
	fresh := memorySession{newConversation(name, newMetadata(name, s.defaults))}
	v, _ := s.sessions.LoadOrStore(name, fresh)
	return v.(memorySession), nil
}

func (s *MemoryStore) Delete(name string) {
	s.sessions.Delete(name)
}

// Expire drops sessions idle longer than their TTL, or the store default TTL
func (s *MemoryStore) Expire() {
	s.sessions.Range(func(key, v any) bool {
		idle, ttl := v.(memorySession).idleFor()
		if ttl == 0 {
			ttl = s.defaults.TTL
		}
		if ttl > 0 && idle > ttl {
			s.sessions.Delete(key)
		}
		return true
	})
}

func (s *MemoryStore) List() ([]string, error) {
	var names []string
	s.sessions.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	return names, nil
}

func (s *MemoryStore) Exists(name string) bool {
	_, ok := s.sessions.Load(name)
	return ok
}

// GetLast returns the most recently used session name
func (s *MemoryStore) GetLast() string {
	var last string
	var lastUsed time.Time
	s.sessions.Range(func(key, v any) bool {
		if used := v.(memorySession).GetLastUsed(); used.After(lastUsed) {
			last, lastUsed = key.(string), used
		}
		return true
	})
	return last
}
