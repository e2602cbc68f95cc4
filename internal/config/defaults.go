package config

import "time"

// DefaultConfig returns sensible defaults for all configuration.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Dir:       "~/.cache/pullgod",
			SourceKey: "github",
		},
		Git: GitConfig{
			Timeout: 10 * time.Second,
		},
		GitHub: GitHubConfig{
			Backend:          BackendCLI,
			Host:             "github.com",
			LabelColor:       "c2e0c6",
			LabelDelay:       250 * time.Millisecond,
			LabelDescription: "Low priority pull request",
			Limit:            maxPRLimit,
			LowPriorityLabel: "priority:low",
		},
		Sync: SyncConfig{
			Interval: 60 * time.Second,
		},
	}
}
