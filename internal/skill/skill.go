// Package skill manages the news-aggregator skill the assistant needs:
// checking whether it is installed, installing it via the npx skill
// registry, and parsing SKILL.md metadata.
package skill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultName is the skill the digest generator depends on.
	DefaultName = "news-aggregator-skill"
	// DefaultRepoURL is where the skill is installed from.
	DefaultRepoURL = "https://github.com/cclank/news-aggregator-skill"

	installTimeout = 2 * time.Minute
)

// Sentinel errors for skill management.
var (
	ErrNpxMissing    = errors.New("skill: npx not found, install Node.js and npm first")
	ErrNoFrontmatter = errors.New("skill: missing YAML frontmatter")
	ErrMissingName   = errors.New("skill: missing required 'name' field")
)

// Manager checks and installs one named skill.
type Manager struct {
	name    string
	repoURL string
	baseDir string // skills root, default ~/.claude/skills
	logger  *slog.Logger
}

// NewManager creates a Manager for the default skill. baseDir overrides the
// skills root; empty means ~/.claude/skills.
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			baseDir = filepath.Join(home, ".claude", "skills")
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		name:    DefaultName,
		repoURL: DefaultRepoURL,
		baseDir: baseDir,
		logger:  logger,
	}
}

// Dir returns the installation directory for the managed skill.
func (m *Manager) Dir() string {
	return filepath.Join(m.baseDir, m.name)
}

// Installed reports whether the skill is present: either its SKILL.md
// exists, or the skill directory exists with any content.
func (m *Manager) Installed() bool {
	dir := m.Dir()
	if _, err := os.Stat(filepath.Join(dir, "SKILL.md")); err == nil {
		return true
	}
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// EnsureInstalled installs the skill when it is missing and verifies the
// install by parsing SKILL.md. Already-installed is success, not a no-op
// error.
func (m *Manager) EnsureInstalled(ctx context.Context) error {
	if m.Installed() {
		m.logger.Debug("skill: already installed", "name", m.name, "dir", m.Dir())
	} else {
		m.logger.Info("skill: not found, installing", "name", m.name)
		if err := m.install(ctx); err != nil {
			return err
		}
	}
	return m.verify()
}

// verify parses SKILL.md so a corrupt install fails here instead of mid-run.
// An install that carries no SKILL.md at all is accepted as-is.
func (m *Manager) verify() error {
	if _, err := os.Stat(filepath.Join(m.Dir(), "SKILL.md")); err != nil {
		return nil
	}
	s, err := m.Load()
	if err != nil {
		return err
	}
	m.logger.Debug("skill: verified", "name", s.Meta.Name)
	return nil
}

// install runs `npx skills add <repo>` with a bounded timeout.
func (m *Manager) install(ctx context.Context) error {
	if _, err := exec.LookPath("npx"); err != nil {
		return ErrNpxMissing
	}

	ctx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "npx", "skills", "add", m.repoURL)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("skill: install timed out after %s", installTimeout)
		}
		msg := strings.TrimSpace(buf.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("skill: install %s failed: %s", m.name, firstLine(msg))
	}

	m.logger.Info("skill: installed", "name", m.name)
	return nil
}

// Meta holds the YAML frontmatter of a SKILL.md file.
type Meta struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tools       []string `yaml:"tools_required"`
}

// Skill is a parsed SKILL.md file.
type Skill struct {
	Meta Meta
	Body string
	Path string
}

// Load parses the managed skill's SKILL.md.
func (m *Manager) Load() (Skill, error) {
	path := filepath.Join(m.Dir(), "SKILL.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, fmt.Errorf("skill: read %s: %w", path, err)
	}
	return Parse(string(data), path)
}

// Parse parses SKILL.md content. The content must start with YAML
// frontmatter delimited by "---".
func Parse(content, path string) (Skill, error) {
	front, body, err := splitFrontmatter(content)
	if err != nil {
		return Skill{}, err
	}

	var meta Meta
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		return Skill{}, fmt.Errorf("skill: invalid YAML in %s: %w", path, err)
	}
	if meta.Name == "" {
		return Skill{}, fmt.Errorf("%w in %s", ErrMissingName, path)
	}

	return Skill{
		Meta: meta,
		Body: strings.TrimSpace(body),
		Path: path,
	}, nil
}

// splitFrontmatter splits content into YAML frontmatter and body.
// The content must begin with "---\n" and have a closing "---\n".
func splitFrontmatter(content string) (front, body string, err error) {
	const delimiter = "---"

	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, delimiter) {
		return "", "", ErrNoFrontmatter
	}

	rest := content[len(delimiter):]
	if len(rest) == 0 || rest[0] != '\n' {
		return "", "", ErrNoFrontmatter
	}
	rest = rest[1:]

	idx := strings.Index(rest, "\n"+delimiter)
	if idx < 0 {
		return "", "", ErrNoFrontmatter
	}

	front = rest[:idx]
	body = rest[idx+1+len(delimiter):]

	return front, body, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
