package sessions

import (
	"time"

	"github.com/alexschlessinger/vanillachat/messages"
)

// Session interface defines the contract for session implementations
type Session interface {
	GetHistory() []messages.ChatMessage
	AddMessage(messages.ChatMessage)
	Clear()
	Close() // Release resources (file locks, etc.)

	// Session metadata
	GetName() string
	GetMetadata() *Metadata
	UpdateMetadata(*Metadata) error // Apply partial updates (only non-zero values)
	GetLastUsed() time.Time
}

// SessionStore manages multiple sessions
type SessionStore interface {
	Get(string) (Session, error)
	Delete(string)
	Expire()

	// Session discovery
	List() ([]string, error)
	Exists(string) bool
	GetLast() string // Returns name of most recently used session
}
