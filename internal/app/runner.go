// Package app orchestrates one digest run: skill check, generation,
// archive file, Telegram delivery, GitHub push, history record.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cclank/dailynews/internal/archive"
	"github.com/cclank/dailynews/internal/config"
	"github.com/cclank/dailynews/internal/delivery"
	"github.com/cclank/dailynews/internal/digest"
	"github.com/cclank/dailynews/internal/generator"
	"github.com/cclank/dailynews/internal/history"
)

// minContentRunes rejects generator responses too short to be a digest.
const minContentRunes = 50

// ErrInsufficientContent is returned when the generator output is too
// short to be a real digest.
var ErrInsufficientContent = errors.New("app: generator returned insufficient content")

// Generator produces the raw digest text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*generator.Response, error)
}

// Deliverer sends the segmented digest to the notification channel.
type Deliverer interface {
	Deliver(ctx context.Context, summary string, items []string) delivery.Result
}

// Archiver commits and pushes one file.
type Archiver interface {
	Push(ctx context.Context, filePath, commitMessage string) error
}

// SkillInstaller makes sure the news-aggregator skill is present.
type SkillInstaller interface {
	EnsureInstalled(ctx context.Context) error
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Options are per-run overrides and switches.
type Options struct {
	Preset       string // empty means config default
	DryRun       bool   // skip Telegram and GitHub
	SkipTelegram bool
	SkipGitHub   bool
}

// Runner wires the pipeline steps together.
type Runner struct {
	cfg      *config.Config
	skill    SkillInstaller
	gen      Generator
	deliver  Deliverer
	pusher   Archiver
	recorder RunRecorder
	logger   *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner. deliver, pusher and recorder may be nil when
// the corresponding output is not configured.
func NewRunner(
	cfg *config.Config,
	skill SkillInstaller,
	gen Generator,
	deliver Deliverer,
	pusher Archiver,
	recorder RunRecorder,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		skill:    skill,
		gen:      gen,
		deliver:  deliver,
		pusher:   pusher,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one full digest run. Generation failures are fatal; delivery
// and archive failures are recorded in the report and the run continues.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	started := r.now()
	date := started.Format("2006-01-02")

	presetName := opts.Preset
	if presetName == "" {
		presetName = r.cfg.News.Preset
	}
	preset, ok := config.ResolvePreset(r.cfg, presetName)
	if !ok {
		return nil, fmt.Errorf("app: unknown preset %q", presetName)
	}
	if preset.Prompt == "" {
		return nil, fmt.Errorf("app: preset %q has no prompt", presetName)
	}

	report := &Report{Date: date, Preset: presetName}
	r.logger.Info("run: starting", "date", date, "preset", presetName)

	if err := r.skill.EnsureInstalled(ctx); err != nil {
		return nil, fmt.Errorf("app: skill check: %w", err)
	}

	resp, err := r.gen.Generate(ctx, preset.Prompt)
	if err != nil {
		return nil, fmt.Errorf("app: collect news: %w", err)
	}
	content := resp.Content
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentRunes {
		return nil, ErrInsufficientContent
	}
	report.ItemCount = digest.CountItems(content)
	r.logger.Info("run: news collected", "items", report.ItemCount, "chars", len(content))

	filePath, err := r.saveDigest(content, date, started)
	if err != nil {
		return nil, err
	}
	report.FilePath = filePath
	r.logger.Info("run: digest saved", "file", filePath)

	r.runTelegram(ctx, report, content, date, opts)
	r.runGitHub(ctx, report, filePath, date, opts)

	report.Duration = r.now().Sub(started)
	r.record(ctx, report, started)
	return report, nil
}

// saveDigest writes the dated archive file with the standard header.
func (r *Runner) saveDigest(content, date string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(r.cfg.News.Dir, 0o755); err != nil {
		return "", fmt.Errorf("app: create news dir: %w", err)
	}

	filePath := filepath.Join(r.cfg.News.Dir, date+".md")
	full := digest.RenderFileHeader(date, generatedAt) + content + "\n"
	if err := os.WriteFile(filePath, []byte(full), 0o644); err != nil {
		return "", fmt.Errorf("app: write %s: %w", filePath, err)
	}
	return filePath, nil
}

func (r *Runner) runTelegram(ctx context.Context, report *Report, content, date string, opts Options) {
	if opts.DryRun || opts.SkipTelegram {
		report.Telegram = StepSkipped
		return
	}
	if ok, reason := config.TelegramReady(r.cfg); !ok {
		r.logger.Info("run: telegram skipped", "reason", reason)
		report.Telegram = StepNotConfigured
		return
	}

	summary, items := digest.Segment(content)
	summaryUnit := r.composeSummary(summary, date, opts)

	res := r.deliver.Deliver(ctx, summaryUnit, items)
	report.MessagesSent = res.Sent
	report.MessagesFailed = len(res.Failures)
	if res.OK {
		report.Telegram = StepOK
		if errs := res.ErrorSummary(); errs != "" {
			report.TelegramError = errs
			r.logger.Warn("run: telegram partially delivered", "errors", errs)
		}
	} else {
		report.Telegram = StepFailed
		report.TelegramError = res.ErrorSummary()
		r.logger.Warn("run: telegram delivery failed", "errors", report.TelegramError)
	}
}

// composeSummary builds the overview unit: digest header line, overview
// text, and the archive link when the push step will produce one.
func (r *Runner) composeSummary(summary, date string, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗞️ **Daily News Digest - %s**\n\n", date)
	b.WriteString(summary)

	if ghOK, _ := config.GitHubReady(r.cfg); ghOK && !opts.DryRun && !opts.SkipGitHub {
		relPath := path.Join(filepath.ToSlash(r.cfg.News.Dir), date+".md")
		url := archive.BlobURL(r.cfg.GitHub.Repo, r.cfg.GitHub.Branch, relPath)
		fmt.Fprintf(&b, "\n\n📎 [完整報告](%s)", url)
	}
	return b.String()
}

func (r *Runner) runGitHub(ctx context.Context, report *Report, filePath, date string, opts Options) {
	if opts.DryRun || opts.SkipGitHub {
		report.GitHub = StepSkipped
		return
	}
	if ok, reason := config.GitHubReady(r.cfg); !ok {
		r.logger.Info("run: github skipped", "reason", reason)
		report.GitHub = StepNotConfigured
		return
	}

	commitMessage := fmt.Sprintf("📰 Daily News Update: %s", date)
	if err := r.pusher.Push(ctx, filePath, commitMessage); err != nil {
		report.GitHub = StepFailed
		report.GitHubError = err.Error()
		r.logger.Warn("run: github push failed", "error", err)
		return
	}

	relPath := path.Join(filepath.ToSlash(r.cfg.News.Dir), date+".md")
	report.ArchiveURL = archive.BlobURL(r.cfg.GitHub.Repo, r.cfg.GitHub.Branch, relPath)
	report.GitHub = StepOK
}

// record persists the run outcome; failures only log.
func (r *Runner) record(ctx context.Context, report *Report, started time.Time) {
	if r.recorder == nil {
		return
	}
	_, err := r.recorder.Record(ctx, history.Run{
		Preset:      report.Preset,
		StartedAt:   started,
		FinishedAt:  r.now(),
		OK:          report.OK(),
		ItemCount:   report.ItemCount,
		Sent:        report.MessagesSent,
		FilePath:    report.FilePath,
		ArchiveURL:  report.ArchiveURL,
		ErrorDetail: report.ErrorDetail(),
	})
	if err != nil {
		r.logger.Warn("run: history record failed", "error", err)
	}
}
