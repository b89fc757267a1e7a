package main

import (
	"time"

	"github.com/alexschlessinger/vanillachat/llm"
)

// Config holds all configuration from command-line flags
type Config struct {
	// API configuration
	BaseURL      string
	Environment  llm.Environment
	Route        llm.Route
	Token        string
	TokenCommand string        // command printing a bearer token on stdout
	TokenTTL     time.Duration // how long a command token is reused; 0 means until failure
	Timeout      time.Duration

	// Context configuration
	ContextID     string
	ResetContext  bool // Reset context (clear history, keep settings)
	ListContexts  bool
	DeleteContext string
	MaxHistory    int

	// Input/Output configuration
	Prompt             string
	SystemPrompt       string
	SystemPromptWasSet bool // Track if system prompt was explicitly provided
	JSONOutput         bool
	Quiet              bool
	Debug              bool
}
