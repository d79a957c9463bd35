package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateIdentityWithinLimit(t *testing.T) {
	for _, text := range []string{"", "short", strings.Repeat("a", 100)} {
		if got := Truncate(text, 100); got != text {
			t.Errorf("Truncate(%q, 100) = %q, want identity", text, got)
		}
	}
}

func TestTruncateNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1, -4096} {
		if got := Truncate("some digest text", limit); got != "" {
			t.Errorf("Truncate(_, %d) = %q, want empty", limit, got)
		}
	}
}

func TestTruncatePrefersSentenceEnd(t *testing.T) {
	text := strings.Repeat("x", 20) + ". " + strings.Repeat("y", 40)

	got := Truncate(text, 50)

	want := strings.Repeat("x", 20) + "." + truncationMarker
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncateFallsBackToNewline(t *testing.T) {
	text := strings.Repeat("a", 20) + "\n" + strings.Repeat("b", 41)

	got := Truncate(text, 50)

	want := strings.Repeat("a", 20) + truncationMarker
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncateHardCut(t *testing.T) {
	text := strings.Repeat("z", 200)

	got := Truncate(text, 50)

	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("rune length = %d, want 50", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("missing truncation marker: %q", got)
	}
}

// Early break points are ignored: a sentence end before the halfway point
// of the window must not shorten the message drastically.
func TestTruncateIgnoresEarlyBreakPoints(t *testing.T) {
	text := "Hi. " + strings.Repeat("w", 100)

	got := Truncate(text, 50)

	if got == "Hi."+truncationMarker {
		t.Fatalf("cut at early sentence end: %q", got)
	}
	if utf8.RuneCountInString(got) > 50 {
		t.Errorf("rune length = %d, want <= 50", utf8.RuneCountInString(got))
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("多語言內容測試。", 100),
		strings.Repeat("word ", 2000),
		strings.Repeat("a\n", 3000),
	}
	for _, text := range inputs {
		for _, limit := range []int{50, 100, MaxMessageLength} {
			got := Truncate(text, limit)
			if n := utf8.RuneCountInString(got); n > limit {
				t.Errorf("Truncate(len %d, %d) returned %d runes", utf8.RuneCountInString(text), limit, n)
			}
		}
	}
}

func TestSplitMessageIdentityWithinLimit(t *testing.T) {
	text := "line one\nline two"
	got := SplitMessage(text, 100)
	if len(got) != 1 || got[0] != text {
		t.Errorf("SplitMessage = %q, want single identical chunk", got)
	}
}

func TestSplitMessagePacksLines(t *testing.T) {
	text := strings.TrimSuffix(strings.Repeat("aaaaaaaaaa\n", 5), "\n")

	chunks := SplitMessage(text, 25)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 25 {
			t.Errorf("chunk %d has %d runes, want <= 25", i, n)
		}
	}
	if joined := strings.Join(chunks, "\n"); strings.Count(joined, "a") != 50 {
		t.Errorf("content lost: %q", chunks)
	}
}

func TestSplitMessageWordFallback(t *testing.T) {
	chunks := SplitMessage("word1 word2 word3 word4", 12)

	want := []string{"word1 word2", "word3 word4"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %q, want %q", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitMessageUnsplittableRun(t *testing.T) {
	run := strings.Repeat("x", 30)

	chunks := SplitMessage(run, 10)

	if len(chunks) != 1 || chunks[0] != run {
		t.Errorf("chunks = %q, want the run verbatim", chunks)
	}
}
