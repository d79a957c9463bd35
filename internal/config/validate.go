package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks the structural validity of a Config. Optional outputs
// (Telegram, GitHub) are not required here; the orchestrator skips them
// when unconfigured. What must hold: a known version, a resolvable preset,
// and well-formed values for everything that is set.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if _, ok := ResolvePreset(cfg, cfg.News.Preset); !ok {
		errs = append(errs, fmt.Errorf("config: unknown preset %q", cfg.News.Preset))
	}

	for name, p := range cfg.Presets {
		if p.Prompt == "" {
			errs = append(errs, fmt.Errorf("config: preset %q has no prompt", name))
		}
	}

	if cfg.GitHub.Repo != "" && !strings.Contains(cfg.GitHub.Repo, "/") {
		errs = append(errs, fmt.Errorf("config: github.repo %q must be \"owner/name\"", cfg.GitHub.Repo))
	}

	if cfg.Delivery.MaxMessageLength < 0 {
		errs = append(errs, errors.New("config: delivery.max_message_length must not be negative"))
	}
	if cfg.Delivery.MessageDelay < 0 {
		errs = append(errs, errors.New("config: delivery.message_delay must not be negative"))
	}

	if cfg.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("config: invalid schedule.timezone %q: %w", cfg.Schedule.Timezone, err))
		}
	}

	return errors.Join(errs...)
}

// TelegramReady reports whether Telegram delivery is configured, with a
// human-readable reason when it is not.
func TelegramReady(cfg *Config) (bool, string) {
	if cfg.Telegram.Token == "" || cfg.Telegram.Token == "your_bot_token_here" {
		return false, "telegram token is not configured"
	}
	if cfg.Telegram.ChatID == "" || cfg.Telegram.ChatID == "your_chat_id_here" {
		return false, "telegram chat_id is not configured"
	}
	return true, ""
}

// GitHubReady reports whether the GitHub archive step is configured.
func GitHubReady(cfg *Config) (bool, string) {
	if cfg.GitHub.Token == "" || strings.HasPrefix(cfg.GitHub.Token, "ghp_your") {
		return false, "github token is not configured"
	}
	if cfg.GitHub.Repo == "" || !strings.Contains(cfg.GitHub.Repo, "/") {
		return false, "github repo is not configured (want \"owner/name\")"
	}
	return true, ""
}
