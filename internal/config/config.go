package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
)

const (
	BackendCLI = "cli"
	BackendAPI = "api"

	maxPRLimit = 100
)

// Config represents the complete pullgod configuration.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Git    GitConfig    `toml:"git"`
	GitHub GitHubConfig `toml:"github"`
	Sync   SyncConfig   `toml:"sync"`
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c Config) Validate() error {
	if c.Git.Timeout < 0 {
		return errors.New("git.timeout cannot be negative")
	}
	switch c.GitHub.Backend {
	case BackendCLI, BackendAPI:
	default:
		return fmt.Errorf("github.backend must be %q or %q, got %q", BackendCLI, BackendAPI, c.GitHub.Backend)
	}
	if c.GitHub.Host == "" {
		return errors.New("github.host cannot be empty")
	}
	if c.GitHub.Limit <= 0 || c.GitHub.Limit > maxPRLimit {
		return fmt.Errorf("github.limit must be between 1 and %d", maxPRLimit)
	}
	if c.GitHub.LowPriorityLabel == "" {
		return errors.New("github.low_priority_label cannot be empty")
	}
	if c.GitHub.LabelDelay < 0 {
		return errors.New("github.label_delay cannot be negative")
	}
	if c.Cache.SourceKey == "" {
		return errors.New("cache.source_key cannot be empty")
	}
	if c.Sync.Interval < 0 {
		return errors.New("sync.interval cannot be negative")
	}
	return nil
}

// CacheConfig configures where pull request lists and checkout times are stored.
type CacheConfig struct {
	// Dir holds caches for workspaces without a .git directory. A leading ~ is expanded.
	Dir       string `toml:"dir"`
	SourceKey string `toml:"source_key"` // key the pull request list is cached under
}

// GitConfig configures git and gh command execution.
type GitConfig struct {
	Timeout time.Duration `toml:"timeout"` // Timeout for each git/gh command (e.g., "10s")
}

// GitHubConfig configures how pull requests are fetched and labeled.
type GitHubConfig struct {
	Backend          string        `toml:"backend"` // "cli" shells out to gh, "api" talks to the API directly
	Host             string        `toml:"host"`
	LabelColor       string        `toml:"label_color"`
	LabelDelay       time.Duration `toml:"label_delay"` // pause between label API calls
	LabelDescription string        `toml:"label_description"`
	Limit            int           `toml:"limit"`
	LowPriorityLabel string        `toml:"low_priority_label"`
}

// SyncConfig configures the background sync loop.
type SyncConfig struct {
	Interval time.Duration `toml:"interval"`
}

// CacheDir returns Cache.Dir with a leading ~ expanded to the home directory.
func (c Config) CacheDir() (string, error) {
	dir, err := homedir.Expand(c.Cache.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to expand cache.dir %q: %w", c.Cache.Dir, err)
	}
	return dir, nil
}
