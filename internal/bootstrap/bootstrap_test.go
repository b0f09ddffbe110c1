package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"msgdash/internal/api/apitest"
	"msgdash/internal/config"
	"msgdash/internal/query"
)

func TestBuildEmptyBaseDirFails(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.BaseDir = " "
	if _, err := Build(cfg); err == nil {
		t.Fatal("Build with empty base dir should fail when persistence is on")
	}
}

func TestBuildWithoutPersistence(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Persist = false
	cfg.Storage.BaseDir = ""
	res, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer res.Close()
	if res.Store != nil {
		t.Fatal("store should be nil without persistence")
	}
	if res.Machine == nil || res.Redirector == nil || res.Cache == nil {
		t.Fatalf("incomplete build result: %+v", res)
	}
}

func TestBuildWiresMachineToCache(t *testing.T) {
	b := apitest.New()
	srv := apitest.Start(t, b)

	cfg := config.Default()
	cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "data")
	cfg.API.BaseURL = srv.URL
	cfg.API.RatePerSecond = 0
	res, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer res.Close()
	if res.Store == nil {
		t.Fatal("store is nil")
	}
	if res.BaseURL != srv.URL {
		t.Fatalf("BaseURL=%q, want %q", res.BaseURL, srv.URL)
	}

	ctx := context.Background()
	if _, err := query.Get(ctx, res.Cache, query.StatusKey, res.Client.TelegramStatus); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := res.Machine.Start(ctx, "+15551234567"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := res.Machine.Verify(ctx, "12345", ""); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Cache.Fresh(query.StatusKey) {
		t.Fatal("status should be invalidated after connecting")
	}
	status, err := query.Get(ctx, res.Cache, query.StatusKey, res.Client.TelegramStatus)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Connected {
		t.Fatalf("status=%+v, want connected", status)
	}
}
