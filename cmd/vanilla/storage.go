package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alexschlessinger/vanillachat/sessions"
)

// defaultContext names the in-memory session used when no context is given
const defaultContext = "default"

// needsFileStore reports whether the command touches persistent contexts
func needsFileStore(config *Config) bool {
	return config.ContextID != "" || config.ListContexts || config.DeleteContext != ""
}

// setupSessionStore creates the appropriate session store based on configuration
func setupSessionStore(config *Config, baseDir string) (sessions.SessionStore, error) {
	defaults := &sessions.Metadata{
		SystemPrompt: config.SystemPrompt,
		Route:        string(config.Route),
		MaxHistory:   config.MaxHistory,
	}

	if needsFileStore(config) {
		store, err := sessions.NewFileStore(baseDir, defaults) // "" uses ~/.vanilla/contexts
		if err != nil {
			return nil, err
		}
		store.Expire()
		return store, nil
	}
	return sessions.NewMemoryStore(defaults), nil
}

// openSession gets the session for config and applies flag overrides to it
func openSession(store sessions.SessionStore, config *Config) (sessions.Session, error) {
	name := config.ContextID
	if name == "" {
		name = defaultContext
	}
	session, err := store.Get(name)
	if err != nil {
		return nil, err
	}

	info := session.GetMetadata()
	changedPrompt := config.SystemPromptWasSet && config.SystemPrompt != info.SystemPrompt
	update := &sessions.Metadata{
		LastUsed: time.Now(),
		Route:    string(config.Route),
	}
	if config.SystemPromptWasSet {
		update.SystemPrompt = config.SystemPrompt
	}
	if err := session.UpdateMetadata(update); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to update context: %w", err)
	}

	if config.ResetContext || changedPrompt {
		session.Clear()
	}
	return session, nil
}

// handleListContexts lists all available contexts, marking the last used one
func handleListContexts(store sessions.SessionStore, w io.Writer) error {
	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list contexts: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No contexts found")
		return nil
	}

	last := store.GetLast()
	for _, name := range names {
		marker := ""
		if name == last {
			marker = dimStyle.Styled(" *")
		}
		fmt.Fprintf(w, "%s%s\n", name, marker)
	}
	return nil
}

// handleDeleteContext deletes the specified context
func handleDeleteContext(store sessions.SessionStore, name string, w io.Writer) error {
	if err := sessions.ValidateContextName(name); err != nil {
		return fmt.Errorf("invalid context name '%s': %w", name, err)
	}
	if !store.Exists(name) {
		return fmt.Errorf("context '%s' not found", name)
	}
	store.Delete(name)
	fmt.Fprintln(w, successStyle.Styled(fmt.Sprintf("Context '%s' deleted", name)))
	return nil
}
