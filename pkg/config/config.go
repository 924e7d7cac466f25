// Package config loads lovenote settings from .env files, the environment and
// an optional .lovenote.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// BackendSupabase talks to a hosted Supabase project.
	BackendSupabase = "supabase"
	// BackendLocal keeps everything in a sqlite file.
	BackendLocal = "local"
)

// Config is the resolved runtime configuration.
type Config struct {
	Backend      string
	SupabaseURL  string
	SupabaseKey  string
	SessionPath  string
	LocalPath    string
	SyncThrottle time.Duration
}

// Configured reports whether the selected backend has what it needs to be
// reached. An unconfigured client refuses every remote operation.
func (c *Config) Configured() bool {
	if c == nil {
		return false
	}
	switch c.Backend {
	case BackendLocal:
		return c.LocalPath != ""
	default:
		return c.SupabaseURL != "" && c.SupabaseKey != ""
	}
}

// Load reads .env files from the working directory, then the environment
// (LOVENOTE_ prefix) and .lovenote.yaml from LOVENOTE_CONFIG_PATH, ./ or ~.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("backend", BackendSupabase)
	v.SetDefault("session.path", "~/.lovenote/session")
	v.SetDefault("local.path", "~/.lovenote/lovenote.db")
	v.SetDefault("sync.throttle", "150ms")
	v.SetConfigName(".lovenote") // .yaml is implicit
	v.SetEnvPrefix("LOVENOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("LOVENOTE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		SupabaseURL:  strings.TrimSpace(v.GetString("supabase.url")),
		SupabaseKey:  strings.TrimSpace(v.GetString("supabase.key")),
		SyncThrottle: v.GetDuration("sync.throttle"),
	}
	// Names used by the web build of the client.
	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = strings.TrimSpace(os.Getenv("VITE_SUPABASE_URL"))
	}
	if cfg.SupabaseKey == "" {
		cfg.SupabaseKey = strings.TrimSpace(os.Getenv("VITE_SUPABASE_ANON_KEY"))
	}

	switch cfg.Backend {
	case "", BackendSupabase:
		cfg.Backend = BackendSupabase
	case BackendLocal:
	default:
		return nil, fmt.Errorf("config: unknown backend %q (expected %s or %s)", cfg.Backend, BackendSupabase, BackendLocal)
	}

	var err error
	if cfg.SessionPath, err = homedir.Expand(v.GetString("session.path")); err != nil {
		return nil, fmt.Errorf("config: session.path: %w", err)
	}
	if cfg.LocalPath, err = homedir.Expand(v.GetString("local.path")); err != nil {
		return nil, fmt.Errorf("config: local.path: %w", err)
	}
	if cfg.SyncThrottle < 0 {
		cfg.SyncThrottle = 0
	}
	return cfg, nil
}
