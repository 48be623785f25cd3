package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "SCRAPER"

// LoadEnv overlays SCRAPER_* environment variables onto cfg. DATABASE_URL is
// the only setting also read without the prefix. Variables from
// the given dotenv files are loaded first without overriding the process
// environment; missing files are ignored.
func LoadEnv(cfg *Config, dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
		slog.Debug("loaded dotenv file", slog.String("path", file))
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	return nil
}
