package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/photohandoff/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadHostConfigTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "host.toml")
	if err := WriteTemplate(path, "host", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, "host", false); err == nil {
		t.Fatalf("expected existing config to be protected")
	}

	cfg, err := LoadHostConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "photohandoff" || cfg.Addr != "127.0.0.1:9300" {
		t.Fatalf("unexpected identity: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.StateFile != "local/state/viewer.toml" {
		t.Fatalf("unexpected cors/state: %+v", cfg)
	}
	if cfg.RecoveryWorkers != 4 || cfg.MaxBlobBytes != 65536 || cfg.MismatchPolicy != "prefer_delivered" || cfg.MaxItems != DefaultMaxItems {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
}

func TestLoadHostConfigDefaultsPartialFile(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadHostConfig(writeFile(t, "name = \"viewer-a\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "viewer-a" || cfg.Addr != DefaultAddr || cfg.RecoveryWorkers != DefaultRecoveryWorkers || cfg.MaxItems != DefaultMaxItems {
		t.Fatalf("expected defaults applied, got %+v", cfg)
	}
}

func TestLoadHostConfigFailures(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"recovery_workers": "recovery_workers = -2\n",
		"max_blob_bytes":   "max_blob_bytes = -1\n",
		"mismatch_policy":  "mismatch_policy = \"newest\"\n",
		"max_items":        "max_items = -5\n",
		"parse":            "name = [\n",
	}
	for want, body := range cases {
		_, err := LoadHostConfig(writeFile(t, body))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error mentioning %q, got %v", want, err)
		}
	}
	if _, err := LoadHostConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := Template("seed"); err == nil {
		t.Fatalf("expected unknown template kind error")
	}
}
