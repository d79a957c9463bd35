// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for dailynews.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Telegram  TelegramConfig  `yaml:"telegram"`
	GitHub    GitHubConfig    `yaml:"github"`
	Generator GeneratorConfig `yaml:"generator"`
	News      NewsConfig      `yaml:"news"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Status    StatusConfig    `yaml:"status"`
	History   HistoryConfig   `yaml:"history"`

	// Presets adds to (or overrides) the built-in news presets.
	Presets map[string]Preset `yaml:"presets,omitempty"`
}

// TelegramConfig identifies the bot and target chat. Both fields empty
// means Telegram delivery is disabled.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

// GitHubConfig identifies the archive repository. Empty repo means the
// GitHub archive step is disabled.
type GitHubConfig struct {
	Repo      string `yaml:"repo"` // "owner/name"
	Token     string `yaml:"token"`
	Branch    string `yaml:"branch"`
	UserName  string `yaml:"user_name"`
	UserEmail string `yaml:"user_email"`
}

// GeneratorConfig controls the assistant CLI invocation.
type GeneratorConfig struct {
	Command   string        `yaml:"command"`
	Profile   string        `yaml:"profile"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	Streaming *bool         `yaml:"streaming"` // nil means true
}

// NewsConfig selects the preset and output location.
type NewsConfig struct {
	Preset string `yaml:"preset"`
	Dir    string `yaml:"dir"` // digest output directory
}

// DeliveryConfig tunes message splitting and pacing.
type DeliveryConfig struct {
	MaxMessageLength int           `yaml:"max_message_length"`
	MessageDelay     time.Duration `yaml:"message_delay"`
}

// ScheduleConfig drives the schedule command.
type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// StatusConfig controls the HTTP status server in schedule mode.
// Empty addr disables it.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// HistoryConfig locates the run database. Empty path disables recording.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Preset describes one news collection profile.
type Preset struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Sources     []string `yaml:"sources,omitempty"`
	Prompt      string   `yaml:"prompt"`
}

func (c *Config) defaults() {
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = "main"
	}
	if c.GitHub.UserName == "" {
		c.GitHub.UserName = "Daily News Bot"
	}
	if c.GitHub.UserEmail == "" {
		c.GitHub.UserEmail = "bot@example.com"
	}
	if c.Generator.Command == "" {
		c.Generator.Command = "ccs"
	}
	if c.Generator.Profile == "" {
		c.Generator.Profile = "glm"
	}
	if c.Generator.Model == "" {
		c.Generator.Model = "sonnet"
	}
	if c.Generator.Timeout <= 0 {
		c.Generator.Timeout = 5 * time.Minute
	}
	if c.News.Preset == "" {
		c.News.Preset = "ai_tech"
	}
	if c.News.Dir == "" {
		c.News.Dir = "news"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 8 * * *"
	}
}

// StreamingEnabled reports whether streaming output is on (the default).
func (g GeneratorConfig) StreamingEnabled() bool {
	return g.Streaming == nil || *g.Streaming
}
