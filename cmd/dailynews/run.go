package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cclank/dailynews/internal/app"
)

func runCmd() *cobra.Command {
	var (
		preset       string
		model        string
		timeout      time.Duration
		dryRun       bool
		skipTelegram bool
		skipGitHub   bool
		noStreaming  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the digest pipeline once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger := newLogger(verbose)

			if timeout > 0 {
				cfg.Generator.Timeout = timeout
			}

			rt, err := buildRuntime(cfg, model, noStreaming, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := rt.runner.Run(ctx, app.Options{
				Preset:       preset,
				DryRun:       dryRun,
				SkipTelegram: skipTelegram,
				SkipGitHub:   skipGitHub,
			})
			if err != nil {
				return err
			}

			printReport(report)
			if !report.OK() {
				return fmt.Errorf("run finished with failures: %s", report.ErrorDetail())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "News preset to use (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "Model override (sonnet, opus, haiku)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Generator timeout override (e.g. 15m)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip Telegram and GitHub")
	cmd.Flags().BoolVar(&skipTelegram, "skip-telegram", false, "Skip sending to Telegram")
	cmd.Flags().BoolVar(&skipGitHub, "skip-github", false, "Skip pushing to GitHub")
	cmd.Flags().BoolVar(&noStreaming, "no-streaming", false, "Use batch output instead of streaming")
	return cmd
}

func printReport(r *app.Report) {
	fmt.Printf("Date:      %s\n", r.Date)
	fmt.Printf("Preset:    %s\n", r.Preset)
	fmt.Printf("Items:     %d\n", r.ItemCount)
	fmt.Printf("File:      %s\n", r.FilePath)
	fmt.Printf("Telegram:  %s", r.Telegram)
	if r.MessagesSent > 0 {
		fmt.Printf(" (%d messages)", r.MessagesSent)
	}
	if r.TelegramError != "" {
		fmt.Printf(": %s", r.TelegramError)
	}
	fmt.Println()
	fmt.Printf("GitHub:    %s", r.GitHub)
	if r.GitHubError != "" {
		fmt.Printf(": %s", r.GitHubError)
	}
	fmt.Println()
	if r.ArchiveURL != "" {
		fmt.Printf("Archive:   %s\n", r.ArchiveURL)
	}
	fmt.Printf("Duration:  %s\n", r.Duration.Round(time.Second))
}
