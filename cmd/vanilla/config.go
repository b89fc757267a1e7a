package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexschlessinger/vanillachat/llm"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Default values from environment variables
var (
	defaultBaseURL      = getEnvOrDefault("VANILLA_BASEURL", "")
	defaultEnvironment  = getEnvOrDefault("VANILLA_ENV", "PROD")
	defaultToken        = getEnvOrDefault("VANILLA_TOKEN", "")
	defaultSystemPrompt = getEnvOrDefault("VANILLA_SYSTEM", "")
	defaultTimeout      = getEnvDuration("VANILLA_TIMEOUT", 2*time.Minute)
	defaultMaxHistory   = getEnvInt("VANILLA_MAXHISTORY", 0)
)

// flagEnv maps flags to the environment variable providing their default
var flagEnv = map[string]string{
	"baseurl": "VANILLA_BASEURL",
	"env":     "VANILLA_ENV",
	"token":   "VANILLA_TOKEN",
	"system":  "VANILLA_SYSTEM",
	"timeout": "VANILLA_TIMEOUT",
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// fileConfig is the optional YAML configuration file
type fileConfig struct {
	BaseURL      string `yaml:"baseurl"`
	Environment  string `yaml:"env"`
	Token        string `yaml:"token"`
	TokenCommand string `yaml:"token_command"`
	System       string `yaml:"system"`
	Timeout      string `yaml:"timeout"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vanilla", "config.yaml")
}

// loadFileConfig reads path; a missing file at the default location is not an error
func loadFileConfig(path string, explicit bool) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return fc, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// fromFile reports whether a file value should replace the flag value:
// the flag was not given and its environment variable is unset.
func fromFile(cmd *cli.Command, flag, value string) bool {
	if value == "" || cmd.IsSet(flag) {
		return false
	}
	if env, ok := flagEnv[flag]; ok && os.Getenv(env) != "" {
		return false
	}
	return true
}

// parseConfig extracts configuration from command-line flags, the environment
// and the config file, in that order of precedence
func parseConfig(cmd *cli.Command) (*Config, error) {
	fc, err := loadFileConfig(cmd.String("config"), cmd.IsSet("config"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		BaseURL:      cmd.String("baseurl"),
		Token:        cmd.String("token"),
		TokenCommand: cmd.String("token-command"),
		TokenTTL:     cmd.Duration("token-ttl"),
		Timeout:      cmd.Duration("timeout"),

		ContextID:     cmd.String("context"),
		ResetContext:  cmd.Bool("reset"),
		ListContexts:  cmd.Bool("list"),
		DeleteContext: cmd.String("delete"),
		MaxHistory:    cmd.Int("maxhistory"),

		Prompt:             cmd.String("prompt"),
		SystemPrompt:       cmd.String("system"),
		SystemPromptWasSet: cmd.IsSet("system"),
		JSONOutput:         cmd.Bool("json"),
		Quiet:              cmd.Bool("quiet"),
		Debug:              cmd.Bool("debug"),
	}
	envName := cmd.String("env")

	if fromFile(cmd, "baseurl", fc.BaseURL) {
		config.BaseURL = fc.BaseURL
	}
	if fromFile(cmd, "env", fc.Environment) {
		envName = fc.Environment
	}
	if fromFile(cmd, "token", fc.Token) {
		config.Token = fc.Token
	}
	if fromFile(cmd, "token-command", fc.TokenCommand) {
		config.TokenCommand = fc.TokenCommand
	}
	if fromFile(cmd, "system", fc.System) {
		config.SystemPrompt = fc.System
	}
	if fromFile(cmd, "timeout", fc.Timeout) {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q in config file: %w", fc.Timeout, err)
		}
		config.Timeout = d
	}

	if config.Environment, err = llm.ParseEnvironment(envName); err != nil {
		return nil, err
	}
	config.Route = llm.RouteChat
	if cmd.Bool("audio") {
		config.Route = llm.RouteAudioChat
	}
	return config, nil
}
