package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCUE(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "nebula.cue")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Snapshot.Dir != "snapshots" || cfg.Snapshot.AutoThreshold != 50 || !cfg.Snapshot.UniqueNames {
		t.Fatalf("unexpected snapshot defaults: %+v", cfg.Snapshot)
	}
	if cfg.Delivery.Mode != "log" || cfg.Delivery.UserID != DefaultUserID {
		t.Fatalf("unexpected delivery defaults: %+v", cfg.Delivery)
	}
	if !cfg.Enrichment.Enabled {
		t.Fatalf("enrichment should default to enabled")
	}
}

func TestLoadFullConfig(t *testing.T) {
	p := writeCUE(t, `{
  configVersion: "1"
  localRoot: "/srv/share"
  snapshot: { dir: "out", autoThreshold: 20, uniqueNames: false }
  workspace: { dirMarkers: [".git"], fileMarkers: ["go.mod", "Makefile"] }
  enrichment: {
    enabled: true
    workers: 3
    cacheSize: 100
    cacheTTL: "5m"
    store: "cache/insights.db"
    scripts: { ".log": "scripts/log.lua" }
  }
  delivery: { mode: "http", baseURL: "http://catalog:8000", timeoutMs: 2500, userId: "u1" }
  archive: { endpoint: "minio:9000", bucket: "pages", useSSL: true }
  log: { level: "debug", json: true }
}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LocalRoot != "/srv/share" || cfg.Snapshot.Dir != "out" || cfg.Snapshot.AutoThreshold != 20 || cfg.Snapshot.UniqueNames {
		t.Fatalf("snapshot section not applied: %+v", cfg)
	}
	if len(cfg.Workspace.FileMarkers) != 2 || cfg.Workspace.DirMarkers[0] != ".git" {
		t.Fatalf("workspace markers: %+v", cfg.Workspace)
	}
	e := cfg.Enrichment
	if e.Workers != 3 || e.CacheSize != 100 || e.CacheTTL != 5*time.Minute || e.Store != "cache/insights.db" {
		t.Fatalf("enrichment: %+v", e)
	}
	if e.Scripts[".log"] != "scripts/log.lua" {
		t.Fatalf("scripts: %+v", e.Scripts)
	}
	if cfg.Delivery.Mode != "http" || cfg.Delivery.TimeoutMs != 2500 || cfg.Delivery.Path != DefaultDeliveryPath {
		t.Fatalf("delivery: %+v", cfg.Delivery)
	}
	if !cfg.Archive.Enabled() || !cfg.Archive.UseSSL {
		t.Fatalf("archive: %+v", cfg.Archive)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Fatalf("log: %+v", cfg.Log)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown version", `{ configVersion: "2" }`, `unsupported configVersion: "2" (supported: 1)`},
		{"wrong type", `{ snapshot: { autoThreshold: "many" } }`, "invalid type for field: snapshot.autoThreshold (expected int)"},
		{"bad mode", `{ delivery: { mode: "fax" } }`, `invalid delivery.mode: "fax"`},
		{"http without url", `{ delivery: { mode: "http" } }`, "requires delivery.baseURL"},
		{"bad ttl", `{ enrichment: { cacheTTL: "soon" } }`, "invalid value for enrichment.cacheTTL"},
		{"syntax", `{ snapshot: `, "invalid config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCUE(t, tc.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error\nwant: %s\n got: %s", tc.want, err.Error())
			}
		})
	}
}

func TestLoadRejectsNonCUE(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nebula.yaml"))
	if err == nil || err.Error() != "unsupported config format: expected .cue" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"SNAPSHOT_DIR":     " /tmp/pages ",
		"SERVER_URL":       "http://api:8000",
		"LOCAL_ROOT":       "/data",
		"NEBULA_USER_ID":   "abc",
		"NEBULA_LOG_LEVEL": "warn",
	}
	ApplyEnv(&cfg, func(k string) string { return env[k] })
	if cfg.Snapshot.Dir != "/tmp/pages" || cfg.Delivery.BaseURL != "http://api:8000" || cfg.LocalRoot != "/data" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Delivery.UserID != "abc" || cfg.Log.Level != "warn" || cfg.Delivery.Mode != "log" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("NEBULA_TEST_A=fromfile\nNEBULA_TEST_B=fromfile\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("NEBULA_TEST_A", "preset")
	t.Cleanup(func() { os.Unsetenv("NEBULA_TEST_B") })

	LoadDotEnv(p)
	if got := os.Getenv("NEBULA_TEST_A"); got != "preset" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("NEBULA_TEST_B"); got != "fromfile" {
		t.Fatalf("variable not loaded: %q", got)
	}
}
