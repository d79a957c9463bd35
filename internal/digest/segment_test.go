package digest

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestSegmentSeparators(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSummary string
		wantItems   []string
	}{
		{
			name:        "intro plus two numbered items",
			input:       "Intro text\n---\n### 1. Title A\n來源: X\n🔗 link\n---\n### 2. Title B\n來源: Y\n🔗 link",
			wantSummary: "Intro text",
			wantItems: []string{
				"### 1. Title A\n來源: X\n🔗 link",
				"### 2. Title B\n來源: Y\n🔗 link",
			},
		},
		{
			name:        "bold opener with source marker",
			input:       "Today's overview.\n---\n**Big Launch**\n來源: TechCrunch\n🔥 hot",
			wantSummary: "Today's overview.",
			wantItems:   []string{"**Big Launch**\n來源: TechCrunch\n🔥 hot"},
		},
		{
			name:        "source and link without heading",
			input:       "Overview here\n---\nSomething happened today\n來源: Reuters\n🔗 https://example.com",
			wantSummary: "Overview here",
			wantItems:   []string{"Something happened today\n來源: Reuters\n🔗 https://example.com"},
		},
		{
			name:        "source with discussion question",
			input:       "Overview\n---\nA new paper dropped\n來源: arXiv\n💬 討論: what next?",
			wantSummary: "Overview",
			wantItems:   []string{"A new paper dropped\n來源: arXiv\n💬 討論: what next?"},
		},
		{
			name:        "boilerplate piece discarded",
			input:       "Overview\n---\n### 1. Item\n來源: X\n🔗 y\n---\nFull report saved to news/2026-01-01.md",
			wantSummary: "Overview",
			wantItems:   []string{"### 1. Item\n來源: X\n🔗 y"},
		},
		{
			name:        "only boilerplate after separator yields zero items",
			input:       "Overview text\n---\nFull report saved to disk",
			wantSummary: "Overview text",
			wantItems:   nil,
		},
		{
			name:        "consecutive separators collapse",
			input:       "Overview\n---\n---\n### 1. Item\n來源: X\n🔗 y",
			wantSummary: "Overview",
			wantItems:   []string{"### 1. Item\n來源: X\n🔗 y"},
		},
		{
			name:        "multiple summary pieces joined",
			input:       "Part one of overview\n---\nPart two of overview\n---\n### 1. Item\n來源: X\n🔗 y",
			wantSummary: "Part one of overview\n\nPart two of overview",
			wantItems:   []string{"### 1. Item\n來源: X\n🔗 y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, items := Segment(tt.input)
			if summary != tt.wantSummary {
				t.Errorf("summary\n  got  = %q\n  want = %q", summary, tt.wantSummary)
			}
			if !reflect.DeepEqual(items, tt.wantItems) {
				t.Errorf("items\n  got  = %q\n  want = %q", items, tt.wantItems)
			}
		})
	}
}

// Once a piece is classified as an item, every subsequent piece must also be
// an item, even when it does not look like news on its own.
func TestSegmentItemClassificationIsMonotonic(t *testing.T) {
	input := "Overview\n---\n### 1. Real item\n來源: X\n🔗 link\n---\nJust a plain trailing paragraph"

	summary, items := Segment(input)

	if summary != "Overview" {
		t.Fatalf("summary = %q, want %q", summary, "Overview")
	}
	want := []string{
		"### 1. Real item\n來源: X\n🔗 link",
		"Just a plain trailing paragraph",
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items\n  got  = %q\n  want = %q", items, want)
	}
}

func TestSegmentNumberedFallback(t *testing.T) {
	input := "Here is what happened today in AI.\n1. First story about models\n2. Second story about chips"

	summary, items := Segment(input)

	if summary != "Here is what happened today in AI." {
		t.Fatalf("summary = %q", summary)
	}
	want := []string{
		"1. First story about models",
		"2. Second story about chips",
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items\n  got  = %q\n  want = %q", items, want)
	}
}

func TestSegmentNumberedFallbackWithHeadings(t *testing.T) {
	input := "Overview paragraph.\n### 1. Story A\ndetails\n### 2. Story B\ndetails"

	summary, items := Segment(input)

	if summary != "Overview paragraph." {
		t.Fatalf("summary = %q", summary)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if !strings.HasPrefix(items[0], "### 1. Story A") || !strings.HasPrefix(items[1], "### 2. Story B") {
		t.Errorf("items = %q", items)
	}
}

func TestSegmentNoStructure(t *testing.T) {
	input := "A single block of text with no separators and no numbered headers."

	summary, items := Segment(input)

	if summary != input {
		t.Errorf("summary = %q, want whole input", summary)
	}
	if len(items) != 0 {
		t.Errorf("items = %q, want none", items)
	}
}

func TestSegmentEmpty(t *testing.T) {
	summary, items := Segment("")
	if summary != "" || len(items) != 0 {
		t.Errorf("Segment(\"\") = %q, %q; want empty", summary, items)
	}
}

// Segmentation must partition the digest: joining summary and items (in
// order) reproduces the non-boilerplate content, and no segment is empty.
func TestSegmentIsPartition(t *testing.T) {
	input := "Intro line\n---\n### 1. A\n來源: X\n🔗 a\n---\n### 2. B\n來源: Y\n🔗 b"

	summary, items := Segment(input)

	segments := append([]string{summary}, items...)
	for i, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			t.Errorf("segment %d is empty", i)
		}
	}

	joined := strings.Join(segments, "\n")
	for _, line := range strings.Split(input, "\n") {
		if isSeparatorLine(line) {
			continue
		}
		if !strings.Contains(joined, line) {
			t.Errorf("line %q missing from joined segments", line)
		}
	}
}

func TestStripFileHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "full header stripped",
			input: "# Daily News - 2026-08-24\n\n> Generated on 2026-08-24 08:00:00\n\n---\n\nActual content",
			want:  "\nActual content",
		},
		{
			name:  "no header is a no-op",
			input: "Just content\nwith lines",
			want:  "Just content\nwith lines",
		},
		{
			name:  "title without timestamp line is kept",
			input: "# Daily News - 2026-08-24\n\nContent directly",
			want:  "# Daily News - 2026-08-24\n\nContent directly",
		},
		{
			name:  "missing separator is kept",
			input: "# Daily News - 2026-08-24\n> Generated on 2026-08-24 08:00:00\nContent",
			want:  "# Daily News - 2026-08-24\n> Generated on 2026-08-24 08:00:00\nContent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFileHeader(tt.input)
			if got != tt.want {
				t.Errorf("StripFileHeader\n  got  = %q\n  want = %q", got, tt.want)
			}
		})
	}
}

// The rendered archive header must be recognized by StripFileHeader.
func TestRenderedHeaderRoundTrip(t *testing.T) {
	content := "Digest body here."
	file := RenderFileHeader("2026-08-24", mustParseTime(t, "2026-08-24 08:00:00")) + content

	got := strings.TrimSpace(StripFileHeader(file))
	if got != content {
		t.Errorf("StripFileHeader(rendered) = %q, want %q", got, content)
	}
}

func TestCountItems(t *testing.T) {
	input := "Intro\n---\n### 1. A\n來源: X\n🔗 a\n---\n### 2. B\n來源: Y\n🔗 b"
	if got := CountItems(input); got != 2 {
		t.Errorf("CountItems = %d, want 2", got)
	}
	if got := CountItems("no structure at all"); got != 0 {
		t.Errorf("CountItems = %d, want 0", got)
	}
}
