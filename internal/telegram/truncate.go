package telegram

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Bot API's hard limit for a single text message.
const MaxMessageLength = 4096

// truncationMarker is appended to truncated messages. It is already escaped
// for MarkdownV2 because truncation runs after translation.
const truncationMarker = "\n\n✂️ _\\[truncated\\]_"

// sentenceTerminators are the clean-cut points Truncate prefers, across the
// scripts the generator emits.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Truncate bounds text to limit runes. Texts within the limit are returned
// unchanged. Otherwise a suffix budget is reserved for the truncation
// marker and the cut point is chosen, in order of preference: the last
// sentence terminator past the halfway point of the window, the last
// newline past the halfway point, or a hard cut at the budget.
// A non-positive limit yields an empty string.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	budget := limit - utf8.RuneCountInString(truncationMarker)
	if budget <= 0 {
		return string(runes[:limit])
	}
	window := runes[:budget]

	for i := len(window) - 1; i > budget/2; i-- {
		if sentenceTerminators[window[i]] {
			return string(window[:i+1]) + truncationMarker
		}
	}

	for i := len(window) - 1; i > budget/2; i-- {
		if window[i] == '\n' {
			return string(window[:i]) + truncationMarker
		}
	}

	return string(window) + truncationMarker
}

// SplitMessage splits text into chunks of at most limit runes using a
// line-greedy pack: lines accumulate until adding one would overflow, then
// the chunk is flushed. A single line longer than the limit is packed
// word by word. Only a single unsplittable run longer than the limit can
// produce an oversized chunk, and it is emitted verbatim.
//
// SplitMessage is the lossless counterpart to Truncate for callers that
// must keep the whole text. The digest pipeline itself never splits a
// unit; each segment maps to exactly one message.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		currentLen = 0
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if currentLen+lineLen+1 > limit {
			flush()

			// A single overlong line is packed word by word.
			if lineLen > limit {
				for _, word := range strings.Split(line, " ") {
					wordLen := utf8.RuneCountInString(word)
					if currentLen+wordLen+1 > limit {
						flush()
					}
					current.WriteString(word)
					current.WriteByte(' ')
					currentLen += wordLen + 1
				}
				continue
			}
		}

		current.WriteString(line)
		current.WriteByte('\n')
		currentLen += lineLen + 1
	}
	flush()

	return chunks
}
