package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cclank/dailynews/internal/config"
	"github.com/cclank/dailynews/internal/history"
	"github.com/cclank/dailynews/internal/telegram"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available news presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			for _, name := range config.PresetNames(cfg) {
				p, _ := config.ResolvePreset(cfg, name)
				marker := " "
				if name == cfg.News.Preset {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
				if p.Name != "" {
					fmt.Printf("    %s\n", p.Name)
				}
				if p.Description != "" {
					fmt.Printf("    %s\n", p.Description)
				}
				if len(p.Sources) > 0 {
					fmt.Printf("    Sources: %s\n", strings.Join(p.Sources, ", "))
				}
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent digest runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path := cfg.History.Path
			if path == "" {
				path = filepath.Join(config.DataDir(), "runs.db")
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				state := "ok"
				if !run.OK {
					state = "FAILED"
				}
				fmt.Printf("%s  %-10s  %-6s  items=%d sent=%d\n",
					run.StartedAt.Format("2006-01-02 15:04"),
					run.Preset,
					state,
					run.ItemCount,
					run.Sent,
				)
				if run.ErrorDetail != "" {
					fmt.Printf("    %s\n", run.ErrorDetail)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func configCmd() *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	check := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			path = config.ResolvePath(path)

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			fmt.Printf("Configuration OK (%s)\n", path)
			if ok, reason := config.TelegramReady(cfg); !ok {
				fmt.Printf("  telegram: %s\n", reason)
			} else if live {
				username, err := verifyTelegram(cmd.Context(), cfg.Telegram.Token, "")
				if err != nil {
					return fmt.Errorf("telegram token check failed: %w", err)
				}
				fmt.Printf("  telegram: token valid (@%s)\n", username)
			} else {
				fmt.Println("  telegram: configured")
			}
			if ok, reason := config.GitHubReady(cfg); ok {
				fmt.Println("  github:   configured")
			} else {
				fmt.Printf("  github:   %s\n", reason)
			}
			return nil
		},
	}
	check.Flags().BoolVar(&live, "live", false, "Call the Telegram API to verify the bot token")
	cmd.AddCommand(check)
	return cmd
}

// verifyTelegram calls getMe to confirm the configured token works and
// returns the bot's username. baseURL may be empty for the public API.
func verifyTelegram(ctx context.Context, token, baseURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	user, err := telegram.NewClient(token, baseURL).GetMe(ctx)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
