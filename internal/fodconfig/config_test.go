package fodconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dynamo-fod/fod/internal/fodconfig"
)

func TestLoadDefaultConfigFallsBackWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.toml")

	cfg, resolved, exists, err := fodconfig.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported absent")
	}
	if resolved != missing {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, missing)
	}
	if cfg.Daemon.MaxParallelLinks != 8 {
		t.Fatalf("unexpected default max_parallel_links: %d", cfg.Daemon.MaxParallelLinks)
	}
	if cfg.Daemon.StagingX509Proxy != "" {
		t.Fatalf("expected empty default staging proxy, got %q", cfg.Daemon.StagingX509Proxy)
	}
}

func TestLoadParsesFileAndDefaultsStagingProxy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fod.toml")
	contents := `
user = "fod"

[daemon]
max_parallel_links = 4
x509_proxy = "/tmp/proxy"

[db]
db_params = "file:test.db"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := fodconfig.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported present")
	}
	if cfg.Daemon.MaxParallelLinks != 4 {
		t.Fatalf("unexpected max_parallel_links: %d", cfg.Daemon.MaxParallelLinks)
	}
	if cfg.Daemon.StagingX509Proxy != "/tmp/proxy" {
		t.Fatalf("expected staging proxy to default to x509_proxy, got %q", cfg.Daemon.StagingX509Proxy)
	}
	if cfg.DB.DBParams != "file:test.db" {
		t.Fatalf("unexpected db params: %q", cfg.DB.DBParams)
	}
}

func TestValidateRejectsBadVerbosity(t *testing.T) {
	cfg := fodconfig.Default()
	cfg.Daemon.GFAL2Verbosity = "extremely-loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported verbosity")
	}
}

func TestValidateRejectsMissingDBParams(t *testing.T) {
	cfg := fodconfig.Default()
	cfg.DB.DBParams = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing db params")
	}
}
