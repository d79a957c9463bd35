package config

import (
	"slices"
)

// builtinPresets ship with the binary. Config-file presets with the same
// key override them.
var builtinPresets = map[string]Preset{
	"ai_tech": {
		Name:        "AI & Tech News",
		Description: "Daily AI and technology news from major sources",
		Sources:     []string{"Hacker News", "TechCrunch", "The Verge", "arXiv"},
		Prompt: "Use the news-aggregator-skill to collect today's most important " +
			"AI and technology news. Summarize 5-10 items in markdown. Start with a " +
			"short overview paragraph, then one section per item with title, key " +
			"points, source and link. Separate items with --- lines.",
	},
	"china_tech": {
		Name:        "China Tech News",
		Description: "Daily technology news focused on the Chinese market",
		Sources:     []string{"36Kr", "IT之家", "少数派"},
		Prompt: "Use the news-aggregator-skill to collect today's most important " +
			"technology news from Chinese sources. Summarize 5-10 items in markdown " +
			"with a short overview first, then one section per item with title, " +
			"重點, 來源 and 🔗 link. Separate items with --- lines.",
	},
}

// ResolvePreset looks up a preset by name, config-file entries first,
// then the built-ins.
func ResolvePreset(cfg *Config, name string) (Preset, bool) {
	if p, ok := cfg.Presets[name]; ok {
		return p, true
	}
	p, ok := builtinPresets[name]
	return p, ok
}

// PresetNames returns all available preset names, sorted.
func PresetNames(cfg *Config) []string {
	seen := make(map[string]struct{}, len(builtinPresets)+len(cfg.Presets))
	for name := range builtinPresets {
		seen[name] = struct{}{}
	}
	for name := range cfg.Presets {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
