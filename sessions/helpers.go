package sessions

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"

	"dario.cat/mergo"
	"github.com/alexschlessinger/vanillachat/messages"
)

// TrimHistory keeps the system prompt (if first) and the most recent maxHistory messages.
// A leading assistant reply left without its user turn is dropped as well.
func TrimHistory(history []messages.ChatMessage, maxHistory int) []messages.ChatMessage {
	if maxHistory <= 0 {
		return history
	}

	var head []messages.ChatMessage
	body := history
	if len(history) > 0 && history[0].Role == messages.MessageRoleSystem {
		head, body = history[:1], history[1:]
	}
	if len(body) <= maxHistory {
		return history
	}

	body = body[len(body)-maxHistory:]
	if len(body) > 0 && body[0].Role == messages.MessageRoleAssistant {
		body = body[1:]
	}

	return append(slices.Clone(head), body...)
}

// systemHistory returns a fresh history holding only the system prompt, if any
func systemHistory(systemPrompt string) []messages.ChatMessage {
	history := []messages.ChatMessage{}
	if systemPrompt != "" {
		history = append(history, messages.ChatMessage{
			Role:    messages.MessageRoleSystem,
			Content: systemPrompt,
		})
	}
	return history
}

// CopyHistory returns a copy callers can modify without touching the session
func CopyHistory(history []messages.ChatMessage) []messages.ChatMessage {
	return slices.Clone(history)
}

// MergeMetadata returns existing with the non-zero fields of update applied.
// Zero values in update never clear existing values.
func MergeMetadata(existing *Metadata, update *Metadata) *Metadata {
	if existing == nil {
		existing = &Metadata{}
	}
	out := *existing
	if update == nil {
		return &out
	}
	if err := mergo.Merge(&out, *update, mergo.WithOverride, mergo.WithTransformers(timeTransformer{})); err != nil {
		return existing
	}
	return &out
}

// timeTransformer stops zero timestamps in an update from clearing existing ones.
type timeTransformer struct{}

func (timeTransformer) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ != reflect.TypeOf(time.Time{}) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && !src.Interface().(time.Time).IsZero() {
			dst.Set(src)
		}
		return nil
	}
}

// ValidateContextName rejects names that are unsafe as file names
func ValidateContextName(name string) error {
	switch {
	case name == "":
		return errors.New("name is empty")
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return errors.New(`name may not contain any of / \ : * ? " < > |`)
	case strings.TrimSpace(name) != name:
		return errors.New("name may not start or end with whitespace")
	case strings.HasPrefix(name, ".") || strings.HasSuffix(name, "."):
		return errors.New("name may not start or end with a dot")
	case strings.ContainsFunc(name, unicode.IsControl):
		return errors.New("name contains control characters")
	}
	return nil
}
