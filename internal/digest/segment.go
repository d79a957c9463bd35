// Package digest segments an aggregated news digest into a summary and an
// ordered list of news items ready for multi-message delivery.
//
// The generator produces one loosely structured markdown document per run.
// Segmentation is a chain of layered heuristics applied in order, first
// success wins: strip the archive file header, split on horizontal-rule
// separators and classify each piece, fall back to numbered-list markers,
// and finally treat the whole digest as the summary.
package digest

import (
	"regexp"
	"strings"
)

// boilerplatePhrases marks separator pieces that carry no news content.
// Matching is case-insensitive substring.
var boilerplatePhrases = []string{
	"full report saved",
	"完整報告已儲存",
	"generated by daily news",
}

// numberedMarkerPattern matches a numbered-list marker at a line start,
// with an optional heading prefix: "1.", "2)", "3、", "### 1.", "## 2."
var numberedMarkerPattern = regexp.MustCompile(`(?m)^(?:#{1,3}\s*)?\d+[.)、]`)

// startsWithNumberedHeadingPattern anchors the same marker to the start of a piece.
var startsWithNumberedHeadingPattern = regexp.MustCompile(`^(?:#{1,3}\s*)?\d+[.)、]`)

// Segment splits a digest into a summary and an ordered list of news items.
//
// An empty digest yields an empty summary and no items. When no structural
// split is found the entire digest becomes the summary; the caller is then
// expected to deliver the digest as a single message.
func Segment(digest string) (summary string, items []string) {
	text := strings.TrimSpace(StripFileHeader(digest))
	if text == "" {
		return "", nil
	}

	if summary, items, ok := splitBySeparators(text); ok {
		return summary, items
	}
	if summary, items, ok := splitByNumberedMarkers(text); ok {
		return summary, items
	}

	return text, nil
}

// classifierState tracks which side of the summary/items boundary the
// classifier is on. The transition is one-way: once a piece is classified
// as an item, every subsequent piece is forced to an item. Trailing
// boilerplate or garbled pieces after the news section must not reopen
// the summary.
type classifierState int

const (
	inSummary classifierState = iota
	inItems
)

// splitBySeparators splits on horizontal-rule lines and classifies each
// non-empty piece. Succeeds when the split yields at least two non-empty
// pieces, even if classification later discards all of them as boilerplate.
func splitBySeparators(text string) (summary string, items []string, ok bool) {
	var pieces []string
	var current []string

	flush := func() {
		piece := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if isSeparatorLine(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if len(pieces) < 2 {
		return "", nil, false
	}

	var summaryParts []string
	state := inSummary
	for _, piece := range pieces {
		if isBoilerplate(piece) {
			continue
		}
		if state == inSummary && !looksLikeItem(piece) {
			summaryParts = append(summaryParts, piece)
			continue
		}
		state = inItems
		items = append(items, piece)
	}

	return strings.Join(summaryParts, "\n\n"), items, true
}

// splitByNumberedMarkers splits at positions immediately preceding a
// numbered-list marker at a line start. The part before the first marker
// is the summary; each marker starts a new item.
func splitByNumberedMarkers(text string) (summary string, items []string, ok bool) {
	locs := numberedMarkerPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", nil, false
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if piece := strings.TrimSpace(text[prev:loc[0]]); piece != "" {
			parts = append(parts, piece)
		}
		prev = loc[0]
	}
	if piece := strings.TrimSpace(text[prev:]); piece != "" {
		parts = append(parts, piece)
	}

	if len(parts) < 2 {
		return "", nil, false
	}

	return parts[0], parts[1:], true
}

// looksLikeItem reports whether a piece reads like a single news item.
// It is a pure function of the piece's text; the summary/items state is
// carried by the caller.
func looksLikeItem(piece string) bool {
	source := hasSourceMarker(piece)
	link := hasLinkMarker(piece)

	switch {
	case startsWithNumberedHeading(piece):
		return true
	case startsWithItemOpener(piece) && (source || link || hasPopularityMarker(piece)):
		return true
	case source && link:
		return true
	case source && (hasDiscussionMarker(piece) || hasKeyPointsMarker(piece)):
		return true
	}
	return false
}

// startsWithNumberedHeading matches pieces opening with a numbered heading
// such as "### 1. Title" or a bare "1. Title".
func startsWithNumberedHeading(piece string) bool {
	return startsWithNumberedHeadingPattern.MatchString(piece)
}

// startsWithItemOpener matches pieces opening with a level-3 heading or a
// bold title, the two shapes the generator uses for item titles.
func startsWithItemOpener(piece string) bool {
	return strings.HasPrefix(piece, "###") || strings.HasPrefix(piece, "**")
}

func hasSourceMarker(piece string) bool {
	return strings.Contains(piece, "來源") ||
		strings.Contains(piece, "📍") ||
		containsFold(piece, "source:")
}

func hasLinkMarker(piece string) bool {
	return strings.Contains(piece, "🔗") ||
		strings.Contains(piece, "http://") ||
		strings.Contains(piece, "https://")
}

func hasPopularityMarker(piece string) bool {
	return strings.Contains(piece, "🔥") ||
		strings.Contains(piece, "熱度") ||
		containsFold(piece, "popularity")
}

func hasDiscussionMarker(piece string) bool {
	return strings.Contains(piece, "💬") ||
		strings.Contains(piece, "討論") ||
		containsFold(piece, "discussion")
}

func hasKeyPointsMarker(piece string) bool {
	return strings.Contains(piece, "重點") ||
		containsFold(piece, "key point")
}

func isBoilerplate(piece string) bool {
	for _, phrase := range boilerplatePhrases {
		if containsFold(piece, phrase) {
			return true
		}
	}
	return false
}

// isSeparatorLine reports whether a line consists solely of three or more
// dashes (surrounding whitespace allowed).
func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '-' {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// CountItems reports how many news items segmentation finds in a digest.
// Used for run reports and logs only.
func CountItems(digest string) int {
	_, items := Segment(digest)
	return len(items)
}
