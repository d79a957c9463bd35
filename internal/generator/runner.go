// Package generator invokes the assistant CLI that produces the raw news
// digest for a preset prompt. The CLI is consumed as a black box: given a
// prompt, it returns markdown text or a structured failure.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// defaultAllowedTools are the tools the news-aggregator skill needs.
var defaultAllowedTools = []string{
	"Read",
	"Write",
	"Bash",
	"mcp__fetch__fetch",
}

// Sentinel errors for generator failures.
var (
	ErrNotInstalled = errors.New("generator: assistant CLI not found in PATH")
	ErrEmptyOutput  = errors.New("generator: assistant returned empty output")
)

// Config controls how the assistant CLI is invoked.
type Config struct {
	// Command is the CLI binary name. Default "ccs".
	Command string

	// Profile selects the CLI profile (first positional argument).
	Profile string

	// Model is the model alias passed via --model.
	Model string

	// Timeout bounds the whole invocation. Default 5 minutes.
	Timeout time.Duration

	// Streaming selects stream-json output with incremental collection.
	Streaming bool

	// AllowedTools are auto-approved tools. Empty means the default set.
	AllowedTools []string
}

func (c *Config) defaults() {
	if c.Command == "" {
		c.Command = "ccs"
	}
	if c.Profile == "" {
		c.Profile = "glm"
	}
	if c.Model == "" {
		c.Model = "sonnet"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	if len(c.AllowedTools) == 0 {
		c.AllowedTools = defaultAllowedTools
	}
}

// Response is the successful result of one assistant invocation.
type Response struct {
	Content   string
	SessionID string
}

// Runner invokes the assistant CLI.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a Runner with the given configuration.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Generate runs the assistant with the given prompt and returns the digest
// text. Every failure mode — CLI missing, timeout, error envelope, empty
// output — is returned as an error; no panic escapes.
func (r *Runner) Generate(ctx context.Context, prompt string) (*Response, error) {
	if _, err := exec.LookPath(r.cfg.Command); err != nil {
		return nil, ErrNotInstalled
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if r.cfg.Streaming {
		return r.runStreaming(ctx, prompt)
	}
	return r.runBatch(ctx, prompt)
}

// buildArgs assembles the CLI arguments for the given output format.
func (r *Runner) buildArgs(prompt, outputFormat string) []string {
	args := []string{
		r.cfg.Profile,
		"-p", prompt,
		"--model", r.cfg.Model,
		"--output-format", outputFormat,
	}
	if outputFormat == "stream-json" {
		// Required by the CLI for stream-json with -p.
		args = append(args, "--verbose")
	}
	args = append(args, "--allowedTools", strings.Join(r.cfg.AllowedTools, ","))
	return args
}

// resultEnvelope is the JSON envelope the CLI prints in batch mode and as
// the final stream event.
type resultEnvelope struct {
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
	IsError   bool   `json:"is_error"`
}

// runBatch invokes the CLI with --output-format json and parses the single
// JSON envelope from stdout.
func (r *Runner) runBatch(ctx context.Context, prompt string) (*Response, error) {
	cmd := exec.CommandContext(ctx, r.cfg.Command, r.buildArgs(prompt, "json")...)
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("generator: invoking assistant",
		"command", r.cfg.Command,
		"profile", r.cfg.Profile,
		"model", r.cfg.Model,
	)

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("generator: timed out after %s: %w", r.cfg.Timeout, ctx.Err())
	}

	resp, err := parseBatchOutput(stdout.String(), runErr == nil)
	if err != nil {
		if runErr != nil && stderr.Len() > 0 {
			return nil, fmt.Errorf("generator: %s: %w", firstLine(stderr.String()), err)
		}
		return nil, err
	}
	return resp, nil
}

// parseBatchOutput decodes the batch JSON envelope. Non-JSON output from a
// successful run is treated as raw content.
func parseBatchOutput(raw string, exitOK bool) (*Response, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyOutput
	}

	var env resultEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		if exitOK {
			return &Response{Content: raw}, nil
		}
		return nil, fmt.Errorf("generator: unparseable output: %w", err)
	}

	if env.IsError {
		msg := env.Result
		if msg == "" {
			msg = "assistant returned an error"
		}
		return nil, fmt.Errorf("generator: %s", msg)
	}
	if env.Result == "" {
		return nil, ErrEmptyOutput
	}

	return &Response{Content: env.Result, SessionID: env.SessionID}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
