package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexschlessinger/vanillachat/internal/log"
	"github.com/alexschlessinger/vanillachat/llm"
	"github.com/alexschlessinger/vanillachat/messages"
	"github.com/alexschlessinger/vanillachat/sessions"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	app := &cli.Command{
		Name:     "vanilla",
		Usage:    "Stream chat replies from the Vanilla backend",
		Flags:    defineFlags(),
		Action:   runCommand,
		Commands: []*cli.Command{analyzeCommand()},
	}

	err := app.Run(context.Background(), os.Args)
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Styled(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

func defineFlags() []cli.Flag {
	return []cli.Flag{
		// API configuration
		&cli.StringFlag{
			Name:  "baseurl",
			Usage: "Backend base URL",
			Value: defaultBaseURL,
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Backend environment (DEV or PROD)",
			Value: defaultEnvironment,
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "Bearer token for the backend",
			Value: defaultToken,
		},
		&cli.StringFlag{
			Name:  "token-command",
			Usage: "Shell command printing a bearer token (overrides --token)",
		},
		&cli.DurationFlag{
			Name:  "token-ttl",
			Usage: "How long a token from --token-command is reused (0 reuses it until it fails)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Time to wait for response headers",
			Value: defaultTimeout,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file",
			Value: defaultConfigPath(),
		},

		// Input configuration
		&cli.StringFlag{
			Name:    "prompt",
			Aliases: []string{"p"},
			Usage:   "Prompt (reads from stdin if not provided)",
		},
		&cli.StringFlag{
			Name:    "system",
			Aliases: []string{"s"},
			Usage:   "System prompt",
			Value:   defaultSystemPrompt,
		},
		&cli.BoolFlag{
			Name:  "audio",
			Usage: "Use the terse chat route meant for spoken replies",
		},

		// Context management
		&cli.StringFlag{
			Name:    "context",
			Aliases: []string{"c"},
			Usage:   "Context name for conversation continuity",
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Reset context (clear conversation history, keep settings)",
		},
		&cli.BoolFlag{
			Name:  "list",
			Usage: "List all available contexts",
		},
		&cli.StringFlag{
			Name:  "delete",
			Usage: "Delete the specified context",
		},
		&cli.IntFlag{
			Name:  "maxhistory",
			Usage: "Messages kept in a new context besides the system prompt (0 keeps all)",
			Value: defaultMaxHistory,
		},

		// Output configuration
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print every snapshot as a JSON line",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide think blocks and confirmation messages",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug logging",
		},
	}
}

func setupLogging(config *Config) {
	log.InitLogger(config.Debug)
	initColors()
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	config, err := parseConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(config)

	if config.ContextID != "" {
		if err := sessions.ValidateContextName(config.ContextID); err != nil {
			return fmt.Errorf("invalid context name '%s': %w", config.ContextID, err)
		}
	}

	store, err := setupSessionStore(config, "")
	if err != nil {
		return fmt.Errorf("failed to create context store: %w", err)
	}

	if config.ListContexts {
		return handleListContexts(store, os.Stdout)
	}
	if config.DeleteContext != "" {
		return handleDeleteContext(store, config.DeleteContext, os.Stdout)
	}

	ctx, cancel := setupSignalHandling(ctx)
	defer cancel()

	return runConversation(ctx, config, store, newClient(config, config.Route))
}

func runConversation(ctx context.Context, config *Config, store sessions.SessionStore, client llm.LLM) error {
	session, err := openSession(store, config)
	if err != nil {
		return err
	}
	defer session.Close()

	prompt, err := getPrompt(config)
	if err != nil {
		return err
	}
	session.AddMessage(messages.ChatMessage{Role: messages.MessageRoleUser, Content: prompt})

	final, err := streamReply(ctx, config, client, session.GetHistory())
	if err != nil {
		return err
	}
	if text := final.Text(); text != "" {
		session.AddMessage(messages.ChatMessage{Role: messages.MessageRoleAssistant, Content: text})
	}
	return nil
}

// streamReply requests a completion for history and renders it as it streams
func streamReply(ctx context.Context, config *Config, client llm.LLM, history []messages.ChatMessage) (messages.Snapshot, error) {
	processor := newRenderer(config, os.Stdout)
	if status := createStatus(config, os.Stderr); status != nil {
		status.Start("waiting")
		defer status.Stop()
		processor = withStatus(processor, status)
	}

	events, err := client.ChatCompletionStream(ctx, &llm.CompletionRequest{Messages: history})
	if err != nil {
		return messages.Snapshot{}, err
	}

	final, err := messages.ProcessEventStream(ctx, events, processor)
	if ctx.Err() != nil {
		zap.S().Debugw("chat_cancelled", "text_length", len(final.Text()))
	}
	return final, err
}
