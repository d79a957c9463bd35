package telegram

import (
	"log/slog"
	"strings"
)

// markdownV2SpecialChars lists all characters that must be escaped in
// Telegram MarkdownV2.
var markdownV2SpecialChars = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`~`, `\~`,
	"`", "\\`",
	`>`, `\>`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`.`, `\.`,
	`!`, `\!`,
)

// urlSpecialChars escapes the characters MarkdownV2 treats specially inside
// an inline link target.
var urlSpecialChars = strings.NewReplacer(
	`\`, `\\`,
	`)`, `\)`,
)

// EscapeMarkdownV2 escapes all special characters for Telegram MarkdownV2.
// Special chars: _ * [ ] ( ) ~ ` > # + - = | { } . !
func EscapeMarkdownV2(text string) string {
	return markdownV2SpecialChars.Replace(text)
}

// TranslatorConfig controls how generic markdown is rendered as MarkdownV2.
type TranslatorConfig struct {
	// HeadingGlyphs prefix heading lines by level (index 0 = "#").
	// Deeper headings reuse the last glyph.
	HeadingGlyphs [3]string

	// LinkMarker prefixes inline links.
	LinkMarker string
}

// DefaultTranslatorConfig returns the glyphs the digest messages use.
func DefaultTranslatorConfig() TranslatorConfig {
	return TranslatorConfig{
		HeadingGlyphs: [3]string{"📰", "📌", "▪️"},
		LinkMarker:    "🔗",
	}
}

// Translator converts generic markdown into Telegram's MarkdownV2 dialect.
// Construct with NewTranslator; the zero value is not usable.
type Translator struct {
	cfg    TranslatorConfig
	logger *slog.Logger
}

// NewTranslator creates a Translator with the given configuration.
func NewTranslator(cfg TranslatorConfig, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{cfg: cfg, logger: logger}
}

// Translate converts text to MarkdownV2. It never fails: if conversion
// panics the original text is returned unchanged and a warning is logged,
// so delivery proceeds with best-effort formatting.
func (t *Translator) Translate(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("markdown translation failed, using original text", "panic", r)
			out = text
		}
	}()
	return t.format(text)
}

// format walks the text line by line, tracking fenced code blocks, and
// converts headings, bold, underline, inline code and links.
func (t *Translator) format(text string) string {
	lines := strings.Split(text, "\n")
	var result strings.Builder
	inCodeBlock := false

	for i, line := range lines {
		if i > 0 {
			result.WriteByte('\n')
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			result.WriteString(line)
			continue
		}

		if inCodeBlock {
			result.WriteString(line)
			continue
		}

		if glyph, heading, ok := t.splitHeading(trimmed); ok {
			result.WriteString(glyph)
			result.WriteByte(' ')
			result.WriteByte('*')
			result.WriteString(EscapeMarkdownV2(stripInlineBold(heading)))
			result.WriteByte('*')
			continue
		}

		result.WriteString(t.formatLine(line))
	}

	return result.String()
}

// splitHeading recognizes "#", "##", "###"… heading lines and returns the
// configured glyph for the level plus the heading text.
func (t *Translator) splitHeading(line string) (glyph, text string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	rest := line[level:]
	if rest == "" || rest[0] != ' ' {
		return "", "", false
	}
	if level > len(t.cfg.HeadingGlyphs) {
		level = len(t.cfg.HeadingGlyphs)
	}
	return t.cfg.HeadingGlyphs[level-1], strings.TrimSpace(rest), true
}

// stripInlineBold drops ** pairs inside heading text — the whole heading is
// rendered bold already, nested bold would break the markup.
func stripInlineBold(text string) string {
	return strings.ReplaceAll(text, "**", "")
}

// formatLine processes a single line of generic markdown.
func (t *Translator) formatLine(line string) string {
	var result strings.Builder
	runes := []rune(line)
	n := len(runes)
	i := 0

	for i < n {
		// Inline code: ` ... ` passed through unescaped.
		if runes[i] == '`' {
			end := findClosing(runes, i+1, '`')
			if end > 0 {
				result.WriteString(string(runes[i : end+1]))
				i = end + 1
				continue
			}
		}

		// Inline link: [label](url) → marker + MarkdownV2 link.
		if runes[i] == '[' {
			if label, url, next, ok := parseLink(runes, i); ok {
				if t.cfg.LinkMarker != "" {
					result.WriteString(t.cfg.LinkMarker)
					result.WriteByte(' ')
				}
				result.WriteByte('[')
				result.WriteString(EscapeMarkdownV2(label))
				result.WriteString("](")
				result.WriteString(urlSpecialChars.Replace(url))
				result.WriteByte(')')
				i = next
				continue
			}
		}

		// Bold: **text** → *text* (Telegram uses single asterisk for bold).
		if i+1 < n && runes[i] == '*' && runes[i+1] == '*' {
			end := findDoubleClosing(runes, i+2, '*')
			if end > 0 {
				inner := string(runes[i+2 : end])
				result.WriteByte('*')
				result.WriteString(EscapeMarkdownV2(inner))
				result.WriteByte('*')
				i = end + 2
				continue
			}
		}

		// Underline: __text__ kept as-is (double underscore in MarkdownV2).
		if i+1 < n && runes[i] == '_' && runes[i+1] == '_' {
			end := findDoubleClosing(runes, i+2, '_')
			if end > 0 {
				inner := string(runes[i+2 : end])
				result.WriteString("__")
				result.WriteString(EscapeMarkdownV2(inner))
				result.WriteString("__")
				i = end + 2
				continue
			}
		}

		// Everything else: escape.
		result.WriteString(EscapeMarkdownV2(string(runes[i])))
		i++
	}

	return result.String()
}

// parseLink matches [label](url) starting at runes[start] == '['.
// Returns the label, url and the index just past the closing parenthesis.
func parseLink(runes []rune, start int) (label, url string, next int, ok bool) {
	closeBracket := findClosing(runes, start+1, ']')
	if closeBracket < 0 || closeBracket+1 >= len(runes) || runes[closeBracket+1] != '(' {
		return "", "", 0, false
	}
	closeParen := findClosing(runes, closeBracket+2, ')')
	if closeParen < 0 {
		return "", "", 0, false
	}
	return string(runes[start+1 : closeBracket]),
		string(runes[closeBracket+2 : closeParen]),
		closeParen + 1,
		true
}

// findClosing finds the index of the closing delimiter starting from start.
// Returns -1 if not found.
func findClosing(runes []rune, start int, delim rune) int {
	for i := start; i < len(runes); i++ {
		if runes[i] == delim {
			return i
		}
	}
	return -1
}

// findDoubleClosing finds the index of a double-character closing delimiter
// (e.g. ** or __) starting from start. Returns the index of the first
// character of the closing pair, or -1 if not found.
func findDoubleClosing(runes []rune, start int, delim rune) int {
	for i := start; i < len(runes)-1; i++ {
		if runes[i] == delim && runes[i+1] == delim {
			return i
		}
	}
	return -1
}
