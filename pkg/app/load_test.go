package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tableflip.dev/lovenote/pkg/config"
	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/livesync"
	"tableflip.dev/lovenote/pkg/view"
)

func TestLoadUnconfigured(t *testing.T) {
	svc, err := Load(&config.Config{
		Backend:     config.BackendSupabase,
		SessionPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer svc.Close()
	if svc.Configured() {
		t.Fatal("expected an unconfigured service")
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err = svc.Login(context.Background(), "x")
	if !errors.Is(err, gateway.ErrNotConfigured) {
		t.Fatalf("login error = %v", err)
	}
	if got := svc.Views().Error(); got != Message(gateway.ErrNotConfigured) {
		t.Fatalf("view error = %q", got)
	}
}

func TestLoadLocalBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Backend:     config.BackendLocal,
		SessionPath: filepath.Join(dir, "session"),
		LocalPath:   filepath.Join(dir, "lovenote.db"),
	}
	svc, err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.CreateSpace(ctx, fields("s3cret")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.SyncState() != livesync.Armed {
		t.Fatalf("sync state = %v", svc.SyncState())
	}
	if err := svc.SelectIdentity(ctx, "阿晴"); err != nil {
		t.Fatalf("identity: %v", err)
	}
	svc.Close()

	// A second process sees the saved session and the stored space.
	again, err := Load(cfg)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer again.Close()
	if err := again.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if again.Views().Current() != view.Main || again.Identity() != "阿晴" {
		t.Fatalf("view = %v identity = %q", again.Views().Current(), again.Identity())
	}
	if _, err := again.Login(ctx, "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}
