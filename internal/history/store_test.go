package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, Run{
			Preset:     "default",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
			OK:         i != 1,
			ItemCount:  5 + i,
			Sent:       6,
			FilePath:   "news/2026-08-24.md",
			ArchiveURL: "https://github.com/cclank/daily-news/blob/main/news/2026-08-24.md",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent = %d runs, want 3", len(runs))
	}
	// Newest first.
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not ordered newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if runs[0].ItemCount != 7 {
		t.Errorf("newest ItemCount = %d, want 7", runs[0].ItemCount)
	}
	if runs[1].OK {
		t.Error("middle run OK = true, want false")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Run{
			Preset:     "default",
			StartedAt:  time.Unix(int64(1000+i), 0),
			FinishedAt: time.Unix(int64(1001+i), 0),
			OK:         true,
		}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("Recent(2) = %d runs", len(runs))
	}
}

func TestLast(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Last(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Last on empty store = %v, want ErrNotFound", err)
	}

	if _, err := s.Record(ctx, Run{
		Preset:      "default",
		StartedAt:   time.Unix(2000, 0),
		FinishedAt:  time.Unix(2010, 0),
		OK:          false,
		ErrorDetail: "Overview: boom",
	}); err != nil {
		t.Fatal(err)
	}

	last, err := s.Last(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if last.ErrorDetail != "Overview: boom" {
		t.Errorf("ErrorDetail = %q", last.ErrorDetail)
	}
	if last.OK {
		t.Error("OK = true, want false")
	}
}
