package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	commandTimeout = 60 * time.Second
	pushTimeout    = 120 * time.Second
)

// Push error classification. Callers match with errors.Is.
var (
	ErrAuth           = errors.New("archive: authentication failed")
	ErrNonFastForward = errors.New("archive: push rejected, remote has changes")
	ErrTimeout        = errors.New("archive: git command timed out")
)

// Config identifies the target repository and commit author.
type Config struct {
	Repo      string // "owner/name"
	Token     string
	Branch    string
	UserName  string
	UserEmail string
	Dir       string // local working copy root
}

// Pusher commits and pushes digest files using the git CLI.
type Pusher struct {
	cfg    Config
	logger *slog.Logger
}

// NewPusher creates a Pusher for the given repository.
func NewPusher(cfg Config, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pusher{cfg: cfg, logger: logger}
}

// Push runs the full workflow for one file: configure the local git user,
// point the remote at the token-authenticated URL, stage, commit and push.
// A file with no changes commits nothing and succeeds.
func (p *Pusher) Push(ctx context.Context, filePath, commitMessage string) error {
	relPath, err := p.relPath(filePath)
	if err != nil {
		return err
	}

	if err := p.configureUser(ctx); err != nil {
		return err
	}
	if err := p.setRemote(ctx); err != nil {
		return err
	}

	committed, err := p.addAndCommit(ctx, relPath, commitMessage)
	if err != nil {
		return err
	}
	if !committed {
		p.logger.Info("archive: no changes to commit", "file", relPath)
		return nil
	}

	if err := p.push(ctx); err != nil {
		return err
	}

	p.logger.Info("archive: pushed", "file", relPath, "repo", p.cfg.Repo, "branch", p.cfg.Branch)
	return nil
}

func (p *Pusher) relPath(filePath string) (string, error) {
	if !filepath.IsAbs(filePath) {
		return filePath, nil
	}
	rel, err := filepath.Rel(p.cfg.Dir, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("archive: %s is not inside repository %s", filePath, p.cfg.Dir)
	}
	return rel, nil
}

func (p *Pusher) configureUser(ctx context.Context) error {
	if _, err := p.git(ctx, commandTimeout, "config", "user.name", p.cfg.UserName); err != nil {
		return fmt.Errorf("archive: set user.name: %w", err)
	}
	if _, err := p.git(ctx, commandTimeout, "config", "user.email", p.cfg.UserEmail); err != nil {
		return fmt.Errorf("archive: set user.email: %w", err)
	}
	return nil
}

// setRemote points origin at the token-authenticated HTTPS URL, adding the
// remote if it does not exist yet.
func (p *Pusher) setRemote(ctx context.Context) error {
	authURL := authRemoteURL(p.cfg.Repo, p.cfg.Token)

	remotes, err := p.git(ctx, commandTimeout, "remote")
	if err != nil {
		return fmt.Errorf("archive: list remotes: %w", err)
	}

	action := "add"
	for _, name := range strings.Fields(remotes) {
		if name == "origin" {
			action = "set-url"
			break
		}
	}

	if _, err := p.git(ctx, commandTimeout, "remote", action, "origin", authURL); err != nil {
		return fmt.Errorf("archive: configure remote: %w", err)
	}
	return nil
}

// authRemoteURL builds the token-authenticated clone URL.
func authRemoteURL(repo, token string) string {
	return fmt.Sprintf("https://%s@github.com/%s.git", token, repo)
}

// addAndCommit stages the file and commits. Returns false when there was
// nothing to commit.
func (p *Pusher) addAndCommit(ctx context.Context, relPath, message string) (bool, error) {
	if _, err := p.git(ctx, commandTimeout, "add", relPath); err != nil {
		return false, fmt.Errorf("archive: stage %s: %w", relPath, err)
	}

	status, err := p.git(ctx, commandTimeout, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("archive: status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		return false, nil
	}

	if out, err := p.git(ctx, commandTimeout, "commit", "-m", message); err != nil {
		if strings.Contains(out, "nothing to commit") {
			return false, nil
		}
		return false, fmt.Errorf("archive: commit: %w", err)
	}
	return true, nil
}

func (p *Pusher) push(ctx context.Context) error {
	out, err := p.git(ctx, pushTimeout, "push", "origin", p.cfg.Branch)
	if err != nil {
		return fmt.Errorf("%w: %s", classifyPushError(out, err), firstLine(out))
	}
	return nil
}

// classifyPushError maps git output to the typed push errors.
func classifyPushError(output string, err error) error {
	lower := strings.ToLower(output)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case strings.Contains(lower, "non-fast-forward") || strings.Contains(lower, "fetch first"):
		return ErrNonFastForward
	case strings.Contains(lower, "authentication failed") ||
		strings.Contains(lower, "invalid username or token") ||
		strings.Contains(lower, "403"):
		return ErrAuth
	default:
		return fmt.Errorf("archive: push failed: %w", err)
	}
}

// git runs one git command in the repository directory with a bounded
// timeout, returning combined output.
func (p *Pusher) git(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.cfg.Dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := buf.String()
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, err
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
