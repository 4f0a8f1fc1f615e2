package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, ".env")
	raw := "# comment\nDEEPSEEK_API_KEY=sk-abc\nQUOTED='v1'\nDOUBLE=\"v2\"\nbroken line\n=novalue\n"
	if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	env, err := LoadEnvFile(p)
	if err != nil {
		t.Fatalf("LoadEnvFile error: %v", err)
	}
	if env["DEEPSEEK_API_KEY"] != "sk-abc" {
		t.Fatalf("unexpected: %q", env["DEEPSEEK_API_KEY"])
	}
	if env["QUOTED"] != "v1" || env["DOUBLE"] != "v2" {
		t.Fatalf("quotes not stripped: %v", env)
	}
	if len(env) != 3 {
		t.Fatalf("unexpected entries: %v", env)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if _, err := LoadEnvFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error")
	}
}
