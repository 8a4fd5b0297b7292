package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order without overriding the process environment, so
// .env.local takes precedence over .env.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads the env files found in dir and returns the ones applied.
func loadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		slog.Debug("Loaded environment file", slog.String("path", path))
		loaded = append(loaded, path)
	}
	return loaded, nil
}
