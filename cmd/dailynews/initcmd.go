package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// initCmd interactively writes a starter configuration file.
func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".config", "dailynews", "dailynews.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers := wizardAnswers{
				preset:   "ai_tech",
				model:    "sonnet",
				cronExpr: "0 8 * * *",
				branch:   "main",
			}
			if err := wizardForm(&answers).Run(); err != nil {
				return err
			}

			content := renderConfig(answers)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", path)
			if answers.botToken != "" {
				fmt.Println("Export TELEGRAM_BOT_TOKEN before running.")
			}
			if answers.ghToken != "" {
				fmt.Println("Export GITHUB_TOKEN before running.")
			}
			fmt.Println("Run `dailynews config check` to verify it.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

type wizardAnswers struct {
	botToken string
	chatID   string
	repo     string
	ghToken  string
	branch   string
	preset   string
	model    string
	cronExpr string
	status   bool
}

func wizardForm(a *wizardAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Leave empty to disable Telegram delivery.").
				Value(&a.botToken),
			huh.NewInput().
				Title("Telegram chat ID").
				Description("Target chat or channel ID.").
				Value(&a.chatID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub repository").
				Description("owner/name of the archive repo. Leave empty to disable pushing.").
				Value(&a.repo),
			huh.NewInput().
				Title("GitHub token").
				EchoMode(huh.EchoModePassword).
				Value(&a.ghToken),
			huh.NewInput().
				Title("Branch").
				Value(&a.branch),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("News preset").
				Options(
					huh.NewOption("AI & Tech News", "ai_tech"),
					huh.NewOption("China Tech News", "china_tech"),
				).
				Value(&a.preset),
			huh.NewSelect[string]().
				Title("Model").
				Options(
					huh.NewOption("sonnet", "sonnet"),
					huh.NewOption("opus", "opus"),
					huh.NewOption("haiku", "haiku"),
				).
				Value(&a.model),
			huh.NewInput().
				Title("Cron schedule").
				Description("5-field cron expression for schedule mode.").
				Value(&a.cronExpr),
			huh.NewConfirm().
				Title("Enable the status HTTP server in schedule mode?").
				Value(&a.status),
		),
	)
}

// renderConfig produces the YAML for the chosen answers. Secrets are
// referenced through environment variables rather than written inline.
func renderConfig(a wizardAnswers) string {
	content := "version: \"1\"\n\ntelegram:\n"
	if a.botToken != "" {
		content += "  token: ${TELEGRAM_BOT_TOKEN}\n"
		content += fmt.Sprintf("  chat_id: %q\n", a.chatID)
	} else {
		content += "  token: \"\"\n  chat_id: \"\"\n"
	}

	content += "\ngithub:\n"
	if a.repo != "" {
		content += fmt.Sprintf("  repo: %s\n", a.repo)
		content += "  token: ${GITHUB_TOKEN}\n"
		content += fmt.Sprintf("  branch: %s\n", a.branch)
	} else {
		content += "  repo: \"\"\n"
	}

	content += fmt.Sprintf("\ngenerator:\n  model: %s\n", a.model)
	content += fmt.Sprintf("\nnews:\n  preset: %s\n", a.preset)
	content += fmt.Sprintf("\nschedule:\n  cron: %q\n", a.cronExpr)
	if a.status {
		content += "\nstatus:\n  addr: :8080\n"
	}
	return content
}
