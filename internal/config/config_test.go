package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load = %v, want nil", err)
	}
	if cfg.Monitor.DiskPercent != 90 {
		t.Errorf("DiskPercent = %d, want default 90", cfg.Monitor.DiskPercent)
	}
	if cfg.Backup.Keep != 7 {
		t.Errorf("Backup.Keep = %d, want default 7", cfg.Backup.Keep)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
artifact:
  version: "2.1.0"
  url: "https://example.com/tool_{version}_amd64.deb"
monitor:
  disk-percent: 75
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load = %v, want nil", err)
	}
	if cfg.Artifact.Version != "2.1.0" {
		t.Errorf("Artifact.Version = %q, want 2.1.0", cfg.Artifact.Version)
	}
	if cfg.Monitor.DiskPercent != 75 {
		t.Errorf("DiskPercent = %d, want 75", cfg.Monitor.DiskPercent)
	}
	// Untouched sections keep defaults.
	if cfg.Monitor.MemoryPercent != 90 {
		t.Errorf("MemoryPercent = %d, want default 90", cfg.Monitor.MemoryPercent)
	}
	if cfg.Users.Shell != "/bin/bash" {
		t.Errorf("Users.Shell = %q, want default /bin/bash", cfg.Users.Shell)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on invalid yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Artifact.Version = "1.4.2"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save = %v, want nil", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load = %v, want nil", err)
	}
	if loaded.Artifact.Version != "1.4.2" {
		t.Errorf("Version = %q, want 1.4.2", loaded.Artifact.Version)
	}
}

func TestResolveURL(t *testing.T) {
	a := Artifact{
		Version: "1.0.0",
		URL:     "https://example.com/tool_{version}_amd64.deb",
	}
	if got := a.ResolveURL(""); got != "https://example.com/tool_1.0.0_amd64.deb" {
		t.Errorf("ResolveURL(\"\") = %q", got)
	}
	if got := a.ResolveURL("2.0.0"); got != "https://example.com/tool_2.0.0_amd64.deb" {
		t.Errorf("ResolveURL(2.0.0) = %q", got)
	}
}
