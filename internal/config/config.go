// Package config provides configuration loading for issuesmith.
package config

import (
	"fmt"
	"strings"
)

// Config is the complete issuesmith configuration.
type Config struct {
	Temporal  TemporalConfig  `koanf:"temporal"`
	GitHub    GitHubConfig    `koanf:"github"`
	Anthropic AnthropicConfig `koanf:"anthropic"`
	Logging   LoggingConfig   `koanf:"logging"`

	// Workdir is the parent directory for working copies. Empty means the
	// system temp directory.
	Workdir string `koanf:"workdir"`
	// TargetFile is the file the generator edits.
	TargetFile string `koanf:"target_file"`
}

// TemporalConfig locates the durable execution substrate.
type TemporalConfig struct {
	HostPort  string `koanf:"host_port"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`
}

// GitHubConfig holds source-control and issue-tracker settings.
type GitHubConfig struct {
	Token      Secret `koanf:"token"`
	BaseBranch string `koanf:"base_branch"`
}

// AnthropicConfig holds generative-fix settings. An unset APIKey switches
// the worker to the deterministic fallback generator.
type AnthropicConfig struct {
	APIKey Secret `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// LoggingConfig holds the subset of logging settings exposed via config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "issuesmith",
		},
		GitHub: GitHubConfig{
			BaseBranch: "main",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		TargetFile: "README.md",
	}
}

// Validate checks the configuration for structural problems. Credential
// presence is checked by the component that needs the credential, not here,
// so read-only commands work without a token.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Temporal.HostPort) == "" {
		return fmt.Errorf("temporal.host_port must not be empty")
	}
	if strings.TrimSpace(c.Temporal.TaskQueue) == "" {
		return fmt.Errorf("temporal.task_queue must not be empty")
	}
	if strings.TrimSpace(c.TargetFile) == "" {
		return fmt.Errorf("target_file must not be empty")
	}
	if strings.Contains(c.TargetFile, "..") || strings.HasPrefix(c.TargetFile, "/") {
		return fmt.Errorf("target_file must be a relative path inside the repository: %q", c.TargetFile)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
