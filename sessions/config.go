package sessions

import "time"

// Metadata describes a conversation context
type Metadata struct {
	Name         string        `json:"name"`
	Created      time.Time     `json:"created"`
	LastUsed     time.Time     `json:"last_used"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Route        string        `json:"route,omitempty"`       // backend route the context talks to
	MaxHistory   int           `json:"max_history,omitempty"` // 0 means unlimited
	TTL          time.Duration `json:"ttl,omitempty"`         // 0 means no expiration
}

// DefaultMetadata returns the defaults applied to new contexts
func DefaultMetadata() *Metadata {
	return &Metadata{
		MaxHistory: 0,
		TTL:        0,
	}
}

// newMetadata builds metadata for a freshly created context from store defaults
func newMetadata(name string, defaults *Metadata) *Metadata {
	now := time.Now()
	return &Metadata{
		Name:         name,
		Created:      now,
		LastUsed:     now,
		SystemPrompt: defaults.SystemPrompt,
		Route:        defaults.Route,
		MaxHistory:   defaults.MaxHistory,
		TTL:          defaults.TTL,
	}
}
