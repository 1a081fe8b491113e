package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[checker]\nbinary = \"/opt/nuprl/bin/nuprl\"\ntimeout = \"5s\"\nargs = [\"--quiet\"]\n")
	nested := filepath.Join(root, "proofs", "logic")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Checker.Binary != "/opt/nuprl/bin/nuprl" || len(cfg.Checker.Args) != 1 {
		t.Fatalf("checker = %+v", cfg.Checker)
	}
	if d, _ := cfg.CheckerTimeout(); d != 5*time.Second {
		t.Fatalf("timeout = %s", d)
	}
	if cfg.Reduce.MaxSteps != 1 {
		t.Fatalf("defaults should survive partial files, max_steps = %d", cfg.Reduce.MaxSteps)
	}
	if cfg.Root() != root {
		t.Fatalf("root = %s, want %s", cfg.Root(), root)
	}
	found, ok, err := FindConfigFile(nested)
	if err != nil || !ok || filepath.Dir(found) != root {
		t.Fatalf("FindConfigFile = %s, %v, %v", found, ok, err)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || cfg.Checker.Binary != "nuprl" || !cfg.CacheEnabled() {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "[checker]\nbinray = \"x\"\n", "unknown keys: checker.binray"},
		{"bad timeout", "[checker]\ntimeout = \"soon\"\n", "[checker].timeout"},
		{"negative timeout", "[checker]\ntimeout = \"-1s\"\n", "must be positive"},
		{"empty binary", "[checker]\nbinary = \"  \"\n", "must not be empty"},
		{"negative steps", "[reduce]\nmax_steps = -2\n", "max_steps"},
		{"syntax", "[checker\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[cache]\nenabled = false\ndir = \".cache\"\n[trace]\nlevel = \"detail\"\noutput = \"logs/trace.ndjson\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheEnabled() {
		t.Fatal("cache disabled in file")
	}
	if cfg.Cache.Dir != filepath.Join(dir, ".cache") {
		t.Fatalf("cache dir = %s", cfg.Cache.Dir)
	}
	if cfg.Trace.Output != filepath.Join(dir, "logs", "trace.ndjson") {
		t.Fatalf("trace output = %s", cfg.Trace.Output)
	}
}

func TestWorkingPath(t *testing.T) {
	if got := WorkingPath("/ws", "/ws/a.nup"); got != "/ws" {
		t.Fatalf("with workspace = %s", got)
	}
	if got := WorkingPath("", "/tmp/a.nup"); got != "/tmp/a.nup" {
		t.Fatalf("without workspace = %s", got)
	}
}
