package sessions

import (
	"sync"
	"time"

	"github.com/alexschlessinger/vanillachat/messages"
	"go.uber.org/zap"
)

// conversation is the state shared by memory and file sessions.
// persist, when set, runs with mu held after every mutation.
type conversation struct {
	mu       sync.RWMutex
	name     string
	history  []messages.ChatMessage
	metadata *Metadata
	touched  time.Time
	persist  func() error
}

func newConversation(name string, metadata *Metadata) *conversation {
	return &conversation{
		name:     name,
		metadata: metadata,
		history:  systemHistory(metadata.SystemPrompt),
		touched:  time.Now(),
	}
}

// changed stamps the conversation and saves it if it is persistent
func (c *conversation) changed() error {
	c.touched = time.Now()
	c.metadata.LastUsed = c.touched
	if c.persist == nil {
		return nil
	}
	return c.persist()
}

func (c *conversation) GetHistory() []messages.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CopyHistory(c.history)
}

// AddMessage appends msg and trims the history to MaxHistory
func (c *conversation) AddMessage(msg messages.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = TrimHistory(append(c.history, msg), c.metadata.MaxHistory)
	c.logSaveError(c.changed())
}

// Clear drops everything but the system prompt
func (c *conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = systemHistory(c.metadata.SystemPrompt)
	c.logSaveError(c.changed())
}

func (c *conversation) GetName() string {
	return c.name
}

// GetMetadata returns a copy that callers may modify freely
func (c *conversation) GetMetadata() *Metadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := *c.metadata
	return &snapshot
}

// UpdateMetadata applies the non-zero fields of update
func (c *conversation) UpdateMetadata(update *Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = MergeMetadata(c.metadata, update)
	return c.changed()
}

func (c *conversation) GetLastUsed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.touched
}

func (c *conversation) touch() {
	c.mu.Lock()
	c.touched = time.Now()
	c.mu.Unlock()
}

// idleFor reports how long the conversation has been unused and its own TTL
func (c *conversation) idleFor() (time.Duration, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.touched), c.metadata.TTL
}

func (c *conversation) logSaveError(err error) {
	if err != nil {
		zap.S().Debugw("session_save_failed", "name", c.name, "error", err)
	}
}
