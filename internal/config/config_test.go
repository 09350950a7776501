package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catapult.yaml")
	if err := writeFile(path, "sink: tui\nbatch_size: 16\n"); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sink != "tui" {
		t.Fatalf("Sink = %q, want tui", cfg.Sink)
	}
	if cfg.BatchSize != 16 {
		t.Fatalf("BatchSize = %d, want 16", cfg.BatchSize)
	}
	if cfg.Wire != "fixed" {
		t.Fatalf("Wire = %q, want default fixed (unset by file)", cfg.Wire)
	}
}

func TestLoadOptionalEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := LoadOptional("")
	if err != nil {
		t.Fatalf("LoadOptional(\"\"): %v", err)
	}
	if cfg != Default() {
		t.Fatalf("LoadOptional(\"\") = %+v, want Default()", cfg)
	}
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
