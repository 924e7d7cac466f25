package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViperDefaultsToSupabase(t *testing.T) {
	t.Setenv("VITE_SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "")
	v := viper.New()
	v.Set("session.path", "/tmp/session")
	v.Set("sync.throttle", "250ms")
	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if cfg.Backend != BackendSupabase {
		t.Fatalf("expected supabase backend, got %q", cfg.Backend)
	}
	if cfg.Configured() {
		t.Fatalf("expected missing url/key to be unconfigured")
	}
	if cfg.SyncThrottle != 250*time.Millisecond {
		t.Fatalf("unexpected throttle %v", cfg.SyncThrottle)
	}
}

func TestFromViperFallsBackToWebEnvNames(t *testing.T) {
	t.Setenv("VITE_SUPABASE_URL", "https://demo.supabase.co")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "anon")
	cfg, err := fromViper(viper.New())
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if !cfg.Configured() {
		t.Fatalf("expected configured from VITE_ variables: %+v", cfg)
	}
}

func TestFromViperExpandsHome(t *testing.T) {
	v := viper.New()
	v.Set("backend", "LOCAL")
	v.Set("local.path", "~/notes.db")
	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if cfg.Backend != BackendLocal {
		t.Fatalf("expected local backend, got %q", cfg.Backend)
	}
	if strings.HasPrefix(cfg.LocalPath, "~") {
		t.Fatalf("expected ~ to be expanded, got %q", cfg.LocalPath)
	}
	if !cfg.Configured() {
		t.Fatalf("expected local backend with a path to be configured")
	}
}

func TestFromViperRejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	v.Set("backend", "firebase")
	if _, err := fromViper(v); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
