package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexschlessinger/vanillachat/auth"
	"github.com/alexschlessinger/vanillachat/llm"
)

func readFromStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("error reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func getPrompt(config *Config) (string, error) {
	if config.Prompt != "" {
		return config.Prompt, nil
	}

	if stdinIsTerminal() {
		fmt.Fprint(os.Stderr, "Enter prompt (Ctrl+D when done):\n")
	}
	prompt, err := readFromStdin()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return prompt, nil
}

// setupSignalHandling cancels ctx on SIGINT/SIGTERM, which ends the stream quietly
func setupSignalHandling(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// tokenSource builds the token source for config. A token command is run
// once and its output reused until TokenTTL elapses.
func tokenSource(config *Config) auth.TokenSource {
	if config.TokenCommand == "" {
		return auth.StaticToken(config.Token)
	}
	command := config.TokenCommand
	return auth.NewCachedSource(auth.TokenFunc(func(ctx context.Context) (string, error) {
		out, err := exec.CommandContext(ctx, "sh", "-c", command).Output()
		if err != nil {
			return "", fmt.Errorf("token command failed: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}), config.TokenTTL)
}

func newClient(config *Config, route llm.Route) *llm.Client {
	return llm.NewClient(llm.ClientConfig{
		Endpoints: llm.Endpoints{
			BaseURL:     config.BaseURL,
			Environment: config.Environment,
		},
		Route:   route,
		Tokens:  tokenSource(config),
		Timeout: config.Timeout,
	})
}
