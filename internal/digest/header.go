package digest

import (
	"fmt"
	"strings"
	"time"
)

// The archive file header written for every daily digest. StripFileHeader
// recognizes exactly this structure, so the two must evolve together.
const fileHeaderTemplate = "# Daily News - %s\n\n> Generated on %s\n\n---\n\n"

// RenderFileHeader produces the archive file header for a digest generated
// at the given time. date is the digest date in YYYY-MM-DD form.
func RenderFileHeader(date string, generatedAt time.Time) string {
	return fmt.Sprintf(fileHeaderTemplate, date, generatedAt.Format("2006-01-02 15:04:05"))
}

// StripFileHeader removes the archive file header from the start of text:
// a "# Daily News - ..." title line, a "> Generated on ..." line, and a
// horizontal-rule separator, each optionally preceded by blank lines.
// If the structure is not present the text is returned unchanged.
func StripFileHeader(text string) string {
	lines := strings.Split(text, "\n")
	i := 0

	skipBlank := func() {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}

	skipBlank()
	if i >= len(lines) || !strings.HasPrefix(lines[i], "# Daily News - ") {
		return text
	}
	i++

	skipBlank()
	if i >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i]), "> Generated on ") {
		return text
	}
	i++

	skipBlank()
	if i >= len(lines) || !isSeparatorLine(lines[i]) {
		return text
	}
	i++

	return strings.Join(lines[i:], "\n")
}
