package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and passed explicitly to every
// collaborator; there is no process-wide configuration singleton.
type Config struct {
	AppName string

	// Remote scraping API.
	APIKey     string
	APIURL     string
	APITimeout time.Duration

	LogLevel string

	// StateDir holds the browser session record and the run-history
	// database. Empty means <user-config-dir>/sitegrab.
	StateDir string

	// OutputDir is the root for bulk scrape output bundles.
	OutputDir string
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "sitegrab")
	v.SetDefault("SITEGRAB_API_URL", "https://api.sitegrab.dev")
	v.SetDefault("SITEGRAB_API_TIMEOUT_SECONDS", 120)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SITEGRAB_OUTPUT_DIR", "sitegrab-output")

	return v
}

func NewConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppName: v.GetString("APP_NAME"),

		APIKey:     v.GetString("SITEGRAB_API_KEY"),
		APIURL:     strings.TrimRight(v.GetString("SITEGRAB_API_URL"), "/"),
		APITimeout: time.Duration(v.GetInt("SITEGRAB_API_TIMEOUT_SECONDS")) * time.Second,

		LogLevel: v.GetString("LOG_LEVEL"),

		StateDir:  v.GetString("SITEGRAB_STATE_DIR"),
		OutputDir: v.GetString("SITEGRAB_OUTPUT_DIR"),
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		return Config{}, fmt.Errorf("missing SITEGRAB_API_URL")
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 120 * time.Second
	}

	return cfg, nil
}

// ResolveStateDir returns the directory for local state, creating it with
// owner-only permissions when missing.
func (c Config) ResolveStateDir() (string, error) {
	dir := strings.TrimSpace(c.StateDir)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, "sitegrab")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}
