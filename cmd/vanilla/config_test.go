package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexschlessinger/vanillachat/llm"
	"github.com/urfave/cli/v3"
)

// runParse parses args with the real flag set and returns the resulting config
func runParse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var config *Config
	var parseErr error
	cmd := &cli.Command{
		Name:  "vanilla",
		Flags: defineFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			config, parseErr = parseConfig(c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"vanilla"}, args...)); err != nil {
		t.Fatalf("flag parsing failed: %v", err)
	}
	return config, parseErr
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfigFlags(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	_, err := runParse(t,
		"--config", missing,
		"--baseurl", "https://api.example.com",
		"--env", "dev",
		"--token", "tok",
		"--timeout", "5s",
		"-c", "work",
		"-p", "hello",
		"--audio",
		"--json",
	)
	if err == nil {
		t.Fatal("explicit missing config file should fail")
	}

	path := writeConfigFile(t, "")
	config, err := runParse(t,
		"--config", path,
		"--baseurl", "https://api.example.com",
		"--env", "dev",
		"--token", "tok",
		"--timeout", "5s",
		"-c", "work",
		"-p", "hello",
		"--audio",
		"--json",
	)
	if err != nil {
		t.Fatalf("parseConfig failed: %v", err)
	}
	if config.BaseURL != "https://api.example.com" || config.Environment != llm.EnvDev || config.Token != "tok" {
		t.Errorf("unexpected API config %+v", config)
	}
	if config.Timeout != 5*time.Second || config.ContextID != "work" || config.Prompt != "hello" {
		t.Errorf("unexpected config %+v", config)
	}
	if config.Route != llm.RouteAudioChat || !config.JSONOutput {
		t.Errorf("route = %s, json = %v", config.Route, config.JSONOutput)
	}
}

func TestParseConfigFileBelowFlags(t *testing.T) {
	for _, key := range []string{"VANILLA_BASEURL", "VANILLA_ENV", "VANILLA_SYSTEM", "VANILLA_TIMEOUT"} {
		t.Setenv(key, "")
	}
	path := writeConfigFile(t, `
baseurl: https://from-file.example.com
env: DEV
system: be terse
timeout: 30s
`)

	config, err := runParse(t, "--config", path, "--baseurl", "https://flag.example.com")
	if err != nil {
		t.Fatalf("parseConfig failed: %v", err)
	}
	if config.BaseURL != "https://flag.example.com" {
		t.Errorf("flag should win over file, got %s", config.BaseURL)
	}
	if config.Environment != llm.EnvDev || config.SystemPrompt != "be terse" || config.Timeout != 30*time.Second {
		t.Errorf("file values not applied: %+v", config)
	}
	if config.SystemPromptWasSet {
		t.Error("system prompt from file is not an explicit flag")
	}
	if config.Route != llm.RouteChat {
		t.Errorf("route = %s", config.Route)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	path := writeConfigFile(t, "timeout: soon\n")
	t.Setenv("VANILLA_TIMEOUT", "")
	if _, err := runParse(t, "--config", path); err == nil {
		t.Error("invalid timeout in file should fail")
	}

	path = writeConfigFile(t, "baseurl: [unclosed\n")
	if _, err := runParse(t, "--config", path); err == nil {
		t.Error("malformed YAML should fail")
	}

	path = writeConfigFile(t, "")
	if _, err := runParse(t, "--config", path, "--env", "staging"); err == nil {
		t.Error("unknown environment should fail")
	}
}

func TestLoadFileConfigDefaultMissing(t *testing.T) {
	fc, err := loadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil || fc == nil {
		t.Fatalf("missing default config should be ignored, got %v", err)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("VANILLA_TEST_DURATION", "90s")
	if d := getEnvDuration("VANILLA_TEST_DURATION", time.Second); d != 90*time.Second {
		t.Errorf("getEnvDuration = %v", d)
	}
	t.Setenv("VANILLA_TEST_DURATION", "later")
	if d := getEnvDuration("VANILLA_TEST_DURATION", time.Second); d != time.Second {
		t.Errorf("invalid duration should fall back, got %v", d)
	}
}
