package app

import (
	"fmt"
	"log"

	"tableflip.dev/lovenote/pkg/config"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/localdb"
	"tableflip.dev/lovenote/pkg/session"
	"tableflip.dev/lovenote/pkg/supabase"
)

// Load builds a Service for cfg, reading the configuration when cfg is nil.
// An unconfigured backend still yields a Service; every remote call then
// fails with gateway.ErrNotConfigured.
func Load(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}
	sessions, err := session.Open(cfg.SessionPath)
	if err != nil {
		return nil, err
	}
	o := Options{Sessions: sessions, Throttle: cfg.SyncThrottle}

	if !cfg.Configured() {
		log.Printf("app: %s backend is not configured", cfg.Backend)
		o.Gateway = gateway.New(nil)
		return New(o), nil
	}

	switch cfg.Backend {
	case config.BackendLocal:
		db, err := localdb.Open(cfg.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		o.Gateway = gateway.New(db)
		o.Changes = db
		o.Closer = db
	default:
		o.Gateway = gateway.New(supabase.New(cfg.SupabaseURL, cfg.SupabaseKey))
		o.Changes = supabase.NewRealtime(cfg.SupabaseURL, cfg.SupabaseKey)
	}
	return New(o), nil
}
