package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
}

func TestDiscover_FiltersShaderExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"a.hlsl",
		"b.HLSLI", // case-insensitive
		"sub/c.fx",
		"sub/deep/d.usf",
		"notes.txt",
		".cache/e.hlsl",
	)
	files, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	want := []string{"a.hlsl", "b.HLSLI", "sub/c.fx", "sub/deep/d.usf"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !strings.HasPrefix(files[0].URI, "file://") {
		t.Fatalf("uri not a file URI: %s", files[0].URI)
	}
}

func TestDiscover_ExplicitFilesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "shader.txt", "x.hlsl")
	files, err := Discover([]string{
		filepath.Join(dir, "shader.txt"),
		dir,
		filepath.Join(dir, "x.hlsl"),
	})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if filepath.Base(files[0].Path) != "shader.txt" || filepath.Base(files[1].Path) != "x.hlsl" {
		t.Fatalf("unexpected order: %+v", files)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	if _, err := Discover([]string{filepath.Join(t.TempDir(), "nope.hlsl")}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestDiscover_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	writeFiles(t, home, "shaders/x.hlsl")
	files, err := Discover([]string{"~/shaders"})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "x.hlsl" {
		t.Fatalf("unexpected files: %+v", files)
	}
}
