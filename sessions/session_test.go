package sessions

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexschlessinger/vanillachat/messages"
)

const testPrompt = "test system prompt"

// bothStores returns a memory and a file store sharing the same defaults
func bothStores(t *testing.T, defaults *Metadata) map[string]SessionStore {
	t.Helper()
	files, err := NewFileStore(t.TempDir(), defaults)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]SessionStore{
		"memory": NewMemoryStore(defaults),
		"file":   files,
	}
}

func testStores(t *testing.T) map[string]SessionStore {
	return bothStores(t, &Metadata{MaxHistory: 10, SystemPrompt: testPrompt})
}

// open gets name from store and closes it when the test ends
func open(t *testing.T, store SessionStore, name string) Session {
	t.Helper()
	session, err := store.Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	t.Cleanup(session.Close)
	return session
}

func user(content string) messages.ChatMessage {
	return messages.ChatMessage{Role: messages.MessageRoleUser, Content: content}
}

func TestNewSessionStartsWithSystemPrompt(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "fresh")
			session.AddMessage(user("Hello"))

			history := session.GetHistory()
			if len(history) != 2 {
				t.Fatalf("history has %d messages, want 2", len(history))
			}
			if history[0].Content != testPrompt || history[1].Content != "Hello" {
				t.Errorf("history = %+v", history)
			}
			if session.GetName() != "fresh" {
				t.Errorf("GetName() = %q", session.GetName())
			}
		})
	}
}

func TestHistoryIsCopied(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "copy")
			session.GetHistory()[0].Content = "mutated"

			if got := session.GetHistory()[0].Content; got != testPrompt {
				t.Errorf("stored history changed through a copy: %q", got)
			}
			session.GetMetadata().Route = "mutated"
			if session.GetMetadata().Route == "mutated" {
				t.Error("stored metadata changed through a copy")
			}
		})
	}
}

func TestClearKeepsOnlySystemPrompt(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "clear")
			session.AddMessage(user("one"))
			session.AddMessage(messages.ChatMessage{Role: messages.MessageRoleAssistant, Content: "two"})
			session.Clear()

			history := session.GetHistory()
			if len(history) != 1 || history[0].Role != messages.MessageRoleSystem || history[0].Content != testPrompt {
				t.Errorf("history after Clear = %+v", history)
			}
		})
	}
}

func TestClearWithoutSystemPrompt(t *testing.T) {
	session := open(t, NewMemoryStore(nil), "bare")
	session.AddMessage(user("hi"))
	session.Clear()

	if history := session.GetHistory(); len(history) != 0 {
		t.Errorf("history after Clear has %d messages, want 0", len(history))
	}
}

func TestDeleteStartsOver(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			first, err := store.Get("gone")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			first.AddMessage(user("forget me"))
			first.Close()

			store.Delete("gone")
			if store.Exists("gone") {
				t.Fatal("context still exists after Delete")
			}

			if history := open(t, store, "gone").GetHistory(); len(history) != 1 {
				t.Errorf("recreated context has %d messages, want 1", len(history))
			}
		})
	}
}

func TestAddMessageTrims(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "trim")
			for i := range 15 {
				session.AddMessage(user(fmt.Sprintf("message-%d", i)))
			}

			history := session.GetHistory()
			if len(history) != 11 {
				t.Fatalf("history has %d messages, want system prompt + 10", len(history))
			}
			if history[0].Role != messages.MessageRoleSystem {
				t.Errorf("first message role = %s, want system", history[0].Role)
			}
			if last := history[10].Content; last != "message-14" {
				t.Errorf("newest message = %q, want message-14", last)
			}
		})
	}
}

func TestConcurrentAddMessage(t *testing.T) {
	const writers, perWriter = 20, 10

	for kind, store := range bothStores(t, &Metadata{SystemPrompt: "system"}) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "concurrent")

			var wg sync.WaitGroup
			for w := range writers {
				wg.Go(func() {
					for m := range perWriter {
						session.AddMessage(user(fmt.Sprintf("w%d-m%d", w, m)))
					}
				})
			}
			wg.Wait()

			history := session.GetHistory()
			if len(history) != 1+writers*perWriter {
				t.Errorf("history has %d messages, want %d", len(history), 1+writers*perWriter)
			}
			if history[0].Role != messages.MessageRoleSystem {
				t.Error("system prompt is no longer first")
			}
		})
	}
}

func TestUpdateMetadataKeepsUnsetFields(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			session := open(t, store, "meta")
			created := session.GetMetadata().Created

			if err := session.UpdateMetadata(&Metadata{Route: "chat_succint"}); err != nil {
				t.Fatalf("UpdateMetadata: %v", err)
			}

			got := session.GetMetadata()
			if got.Route != "chat_succint" {
				t.Errorf("Route = %q, want chat_succint", got.Route)
			}
			if got.SystemPrompt != testPrompt || got.MaxHistory != 10 {
				t.Errorf("unset fields changed: %+v", got)
			}
			if !got.Created.Equal(created) {
				t.Errorf("Created moved from %v to %v", created, got.Created)
			}
		})
	}
}

func TestFileSessionSurvivesReopen(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), &Metadata{SystemPrompt: "persist"})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	session, err := store.Get("saved")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	session.AddMessage(user("remember me"))
	if err := session.UpdateMetadata(&Metadata{Route: "chat"}); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	session.Close()

	reopened := open(t, store, "saved")
	if history := reopened.GetHistory(); len(history) != 2 || history[1].Content != "remember me" {
		t.Fatalf("reopened history = %+v", history)
	}
	if route := reopened.GetMetadata().Route; route != "chat" {
		t.Errorf("reopened Route = %q, want chat", route)
	}
}

func TestFileSessionLockedUntilClose(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the file lock")
	}
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	holder, err := store.Get("locked")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		second, err := store.Get("locked")
		if err == nil {
			second.Close()
		}
		acquired <- err
	}()

	select {
	case err := <-acquired:
		t.Fatalf("second Get returned while the lock was held: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	holder.Close()
	if err := <-acquired; err != nil {
		t.Fatalf("second Get after Close: %v", err)
	}
}

func TestFileStoreRejectsInvalidName(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Get("../escape"); err == nil {
		t.Fatal("Get accepted a path-like context name")
	}
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(dir, &Metadata{SystemPrompt: "fresh"})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	history := open(t, store, "broken").GetHistory()
	if len(history) != 1 || history[0].Content != "fresh" {
		t.Errorf("history = %+v, want a fresh context", history)
	}
}

func TestListAndGetLast(t *testing.T) {
	for kind, store := range testStores(t) {
		t.Run(kind, func(t *testing.T) {
			for _, name := range []string{"alpha", "beta"} {
				session, err := store.Get(name)
				if err != nil {
					t.Fatalf("Get(%q): %v", name, err)
				}
				session.Close()
				time.Sleep(20 * time.Millisecond)
			}

			names, err := store.List()
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(names) != 2 {
				t.Errorf("List() = %v, want 2 names", names)
			}
			if last := store.GetLast(); last != "beta" {
				t.Errorf("GetLast() = %q, want beta", last)
			}
			if store.Exists("gamma") {
				t.Error("Exists reported a context that was never created")
			}
		})
	}
}

func TestMemoryStoreExpire(t *testing.T) {
	store := NewMemoryStore(&Metadata{TTL: 10 * time.Millisecond})
	session, err := store.Get("short")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	session.Close()

	time.Sleep(30 * time.Millisecond)
	store.Expire()

	if store.Exists("short") {
		t.Error("idle session survived Expire")
	}
}

func TestFileStoreExpire(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	stale := `{"name":"stale","history":[],"metadata":{"name":"stale","last_used":"2000-01-01T00:00:00Z"}}`
	if err := os.WriteFile(filepath.Join(dir, "stale.json"), []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}
	fresh, err := store.Get("fresh")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	fresh.Close()

	store.Expire()

	if store.Exists("stale") {
		t.Error("stale context survived Expire")
	}
	if !store.Exists("fresh") {
		t.Error("fresh context was expired")
	}
}
