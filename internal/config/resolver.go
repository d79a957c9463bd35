package config

import (
	"os"
	"path/filepath"
)

const fileName = "dailynews.yaml"

// ResolvePath picks the configuration file to load. An explicit path wins;
// otherwise the first existing candidate of $XDG_CONFIG_HOME/dailynews/,
// ~/.config/dailynews/ and the current directory is used. When none exists
// the current-directory path is returned so error messages name it.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "dailynews", fileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "dailynews", fileName))
	}
	candidates = append(candidates, fileName)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return fileName
}

// DataDir returns the directory for mutable state (the run database).
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dailynews")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "dailynews")
}
