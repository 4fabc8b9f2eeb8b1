package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadResolvesWorkdirAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tool.env", "FROM_FILE=one\nSHARED=file\n# comment\nexport EXPORTED=yes\n")
	path := writeFile(t, dir, "toolrun.yaml", `
version: "0.1"
defaults:
  backend: local
  workdir: ./work
env:
  SHARED: inline
  EXTRA: value
envFile: ./tool.env
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if want := filepath.Join(dir, "work"); doc.Defaults.Workdir != want {
		t.Fatalf("workdir = %q, want %q", doc.Defaults.Workdir, want)
	}
	want := map[string]string{
		"FROM_FILE": "one",
		"EXPORTED":  "yes",
		"SHARED":    "inline",
		"EXTRA":     "value",
	}
	for k, v := range want {
		if doc.Env[k] != v {
			t.Fatalf("env[%s] = %q, want %q (full: %#v)", k, doc.Env[k], v, doc.Env)
		}
	}
}

func TestLoadAppliesBackendDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toolrun.yaml", "version: \"0.1\"\n")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Defaults.Backend != "local" {
		t.Fatalf("backend = %q, want local", doc.Defaults.Backend)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toolrun.yaml", "version: \"0.1\"\nbogus: true\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toolrun.yaml", "version: \"0.1\"\ndefaults:\n  silent: \"yes\"\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toolrun.yaml", "version: \"0.1\"\ndefaults:\n  backend: warp\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported backend") {
		t.Fatalf("expected unsupported backend error, got %v", err)
	}
}

func TestLoadRequiresVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "toolrun.yaml", "defaults:\n  backend: local\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadEnvFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.env", "NOEQUALS\n")
	path := writeFile(t, dir, "toolrun.yaml", "version: \"0.1\"\nenvFile: ./bad.env\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid env file error")
	}
}
