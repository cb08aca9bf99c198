package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
executable_path: /opt/dxc/bin/dxc
trigger: onSave
debounce_ms: 100
include_dirs: [/inc/a, /inc/b]
default_args: ["-Od", "-Ges"]
languages: [hlsl, ush]
cors:
  enabled: true
  allowed_origins: ["*"]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ExecutablePath != "/opt/dxc/bin/dxc" || cfg.Trigger != "onSave" || cfg.DebounceMS != 100 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.IncludeDirs, []string{"/inc/a", "/inc/b"}) || !reflect.DeepEqual(cfg.DefaultArgs, []string{"-Od", "-Ges"}) {
		t.Fatalf("unexpected lists: %+v", cfg)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("unexpected cors: %+v", cfg.CORS)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","executable_path":"dxc.exe","trigger":"never","lint_timeout_ms":5000,"workspace_root":"/w"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ExecutablePath != "dxc.exe" || cfg.Trigger != "never" || cfg.LintTimeoutMS != 5000 || cfg.WorkspaceRoot != "/w" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ntrigger=\"manual\"\ninclude_dirs=[\"/x\"]\n[cors]\nenabled=true\nallowed_methods=[\"GET\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.Trigger != "manual" || len(cfg.IncludeDirs) != 1 || cfg.IncludeDirs[0] != "/x" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORS.Enabled || cfg.CORS.AllowedMethods[0] != "GET" {
		t.Fatalf("unexpected cors: %+v", cfg.CORS)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "executable_path: ~/dxc/bin/dxc\ninclude_dirs: [~/shaders]\nworkspace_root: \"~\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExecutablePath != filepath.Join(home, "dxc/bin/dxc") || cfg.IncludeDirs[0] != filepath.Join(home, "shaders") || cfg.WorkspaceRoot != home {
		t.Fatalf("paths not expanded: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.ExecutablePath != "dxc" || cfg.Trigger != "onType" || cfg.DebounceMS != 250 || cfg.LintTimeoutMS != 30000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"hlsl"}) || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	kept := Config{Trigger: "onSave", DebounceMS: 10, Languages: []string{"hlsl", "fx"}}.WithDefaults()
	if kept.Trigger != "onSave" || kept.DebounceMS != 10 || len(kept.Languages) != 2 {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}

func TestMerge(t *testing.T) {
	base := Config{Addr: ":1", ExecutablePath: "dxc", IncludeDirs: []string{"/a"}, DebounceMS: 100}
	got := base.Merge(Config{ExecutablePath: "/usr/bin/dxc", DebounceMS: 0, DefaultArgs: []string{"-Od"}})
	if got.Addr != ":1" || got.ExecutablePath != "/usr/bin/dxc" || got.DebounceMS != 100 {
		t.Fatalf("unexpected merge: %+v", got)
	}
	if len(got.IncludeDirs) != 1 || len(got.DefaultArgs) != 1 {
		t.Fatalf("unexpected lists: %+v", got)
	}
}

func TestLoadOptional(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := LoadOptional("")
	if err != nil || !reflect.DeepEqual(cfg, Config{}) {
		t.Fatalf("expected zero config, got %+v err=%v", cfg, err)
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "env.yaml", "trigger: onSave\n")
	t.Setenv(EnvConfigPath, p)
	cfg, err = LoadOptional("")
	if err != nil || cfg.Trigger != "onSave" {
		t.Fatalf("expected env config, got %+v err=%v", cfg, err)
	}
}
