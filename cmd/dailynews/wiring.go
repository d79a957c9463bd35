package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cclank/dailynews/internal/app"
	"github.com/cclank/dailynews/internal/archive"
	"github.com/cclank/dailynews/internal/config"
	"github.com/cclank/dailynews/internal/delivery"
	"github.com/cclank/dailynews/internal/generator"
	"github.com/cclank/dailynews/internal/history"
	"github.com/cclank/dailynews/internal/skill"
	"github.com/cclank/dailynews/internal/telegram"
)

// loadConfig resolves and loads the configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path := config.ResolvePath(explicit)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// runtime bundles everything a run needs plus its cleanup.
type runtime struct {
	runner *app.Runner
	store  *history.Store
}

func (rt *runtime) close() {
	if rt.store != nil {
		_ = rt.store.Close()
	}
}

// buildRuntime constructs the orchestrator and its collaborators from the
// configuration. Outputs that are not configured get nil collaborators;
// the orchestrator skips them.
func buildRuntime(cfg *config.Config, modelOverride string, noStreaming bool, logger *slog.Logger) (*runtime, error) {
	skills := skill.NewManager("", logger)

	genCfg := generator.Config{
		Command:   cfg.Generator.Command,
		Profile:   cfg.Generator.Profile,
		Model:     cfg.Generator.Model,
		Timeout:   cfg.Generator.Timeout,
		Streaming: cfg.Generator.StreamingEnabled() && !noStreaming,
	}
	if modelOverride != "" {
		genCfg.Model = modelOverride
	}
	gen := generator.NewRunner(genCfg, logger)

	var deliverer app.Deliverer
	if ok, _ := config.TelegramReady(cfg); ok {
		client := telegram.NewClient(cfg.Telegram.Token, "")
		sender := delivery.NewTelegramSender(client, cfg.Telegram.ChatID)
		translator := telegram.NewTranslator(telegram.DefaultTranslatorConfig(), logger)
		deliverer = delivery.NewPipeline(sender, translator, delivery.Config{
			MaxMessageLength: cfg.Delivery.MaxMessageLength,
			MessageDelay:     cfg.Delivery.MessageDelay,
		}, logger)
	}

	var pusher app.Archiver
	if ok, _ := config.GitHubReady(cfg); ok {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		pusher = archive.NewPusher(archive.Config{
			Repo:      cfg.GitHub.Repo,
			Token:     cfg.GitHub.Token,
			Branch:    cfg.GitHub.Branch,
			UserName:  cfg.GitHub.UserName,
			UserEmail: cfg.GitHub.UserEmail,
			Dir:       cwd,
		}, logger)
	}

	rt := &runtime{}

	historyPath := cfg.History.Path
	if historyPath == "" {
		historyPath = filepath.Join(config.DataDir(), "runs.db")
	}
	store, err := history.Open(historyPath)
	if err != nil {
		// Run history is best-effort; a broken store must not block the run.
		logger.Warn("history store unavailable", "path", historyPath, "error", err)
	} else {
		rt.store = store
	}

	var recorder app.RunRecorder
	if rt.store != nil {
		recorder = rt.store
	}
	rt.runner = app.NewRunner(cfg, skills, gen, deliverer, pusher, recorder, logger)
	return rt, nil
}
