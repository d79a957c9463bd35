package skill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleSkill = `---
name: news-aggregator-skill
description: Collects AI news from configured sources
tools_required:
  - Read
  - Bash
---

# News Aggregator

Collect the day's AI news and write a digest.
`

func TestParse(t *testing.T) {
	s, err := Parse(sampleSkill, "SKILL.md")
	if err != nil {
		t.Fatal(err)
	}
	if s.Meta.Name != "news-aggregator-skill" {
		t.Errorf("Name = %q", s.Meta.Name)
	}
	if s.Meta.Description != "Collects AI news from configured sources" {
		t.Errorf("Description = %q", s.Meta.Description)
	}
	if len(s.Meta.Tools) != 2 {
		t.Errorf("Tools = %q, want 2 entries", s.Meta.Tools)
	}
	if s.Body == "" || s.Body[0] != '#' {
		t.Errorf("Body = %q, want markdown starting at heading", s.Body)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "no frontmatter", content: "# just markdown", want: ErrNoFrontmatter},
		{name: "unclosed frontmatter", content: "---\nname: x\n", want: ErrNoFrontmatter},
		{name: "missing name", content: "---\ndescription: d\n---\nbody", want: ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, "SKILL.md")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInstalled(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		m := NewManager(filepath.Join(t.TempDir(), "nope"), nil)
		if m.Installed() {
			t.Error("Installed = true for missing dir")
		}
	})

	t.Run("skill md present", func(t *testing.T) {
		base := t.TempDir()
		dir := filepath.Join(base, DefaultName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(sampleSkill), 0o644); err != nil {
			t.Fatal(err)
		}

		m := NewManager(base, nil)
		if !m.Installed() {
			t.Error("Installed = false with SKILL.md present")
		}
	})

	t.Run("directory with other content", func(t *testing.T) {
		base := t.TempDir()
		dir := filepath.Join(base, DefaultName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		m := NewManager(base, nil)
		if !m.Installed() {
			t.Error("Installed = false for non-empty skill dir")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		base := t.TempDir()
		if err := os.MkdirAll(filepath.Join(base, DefaultName), 0o755); err != nil {
			t.Fatal(err)
		}

		m := NewManager(base, nil)
		if m.Installed() {
			t.Error("Installed = true for empty skill dir")
		}
	})
}

func TestEnsureInstalled(t *testing.T) {
	writeSkill := func(t *testing.T, content string) *Manager {
		t.Helper()
		base := t.TempDir()
		dir := filepath.Join(base, DefaultName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return NewManager(base, nil)
	}

	t.Run("valid install", func(t *testing.T) {
		m := writeSkill(t, sampleSkill)
		if err := m.EnsureInstalled(context.Background()); err != nil {
			t.Fatalf("EnsureInstalled = %v", err)
		}
	})

	t.Run("corrupt skill md", func(t *testing.T) {
		m := writeSkill(t, "# no frontmatter here")
		err := m.EnsureInstalled(context.Background())
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Errorf("err = %v, want %v", err, ErrNoFrontmatter)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		m := writeSkill(t, "---\ndescription: d\n---\nbody")
		err := m.EnsureInstalled(context.Background())
		if !errors.Is(err, ErrMissingName) {
			t.Errorf("err = %v, want %v", err, ErrMissingName)
		}
	})

	t.Run("dir install without skill md", func(t *testing.T) {
		base := t.TempDir()
		dir := filepath.Join(base, DefaultName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		m := NewManager(base, nil)
		if err := m.EnsureInstalled(context.Background()); err != nil {
			t.Errorf("EnsureInstalled = %v, want nil for dir-only install", err)
		}
	})
}

func TestLoad(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, DefaultName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(sampleSkill), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(base, nil)
	s, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Meta.Name != DefaultName {
		t.Errorf("Name = %q, want %q", s.Meta.Name, DefaultName)
	}
}
