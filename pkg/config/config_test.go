package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NbThreads != DefaultConfig().NbThreads {
		t.Fatalf("expected default nb_threads, got %d", cfg.NbThreads)
	}
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "nb_threads: 8\ncontract: \"0xabc\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NbThreads != 8 {
		t.Fatalf("expected nb_threads overridden to 8, got %d", cfg.NbThreads)
	}
	if cfg.Contract != "0xabc" {
		t.Fatalf("expected contract overridden, got %q", cfg.Contract)
	}
	if cfg.CorpusDir != DefaultConfig().CorpusDir {
		t.Fatalf("expected untouched field to keep its default, got %q", cfg.CorpusDir)
	}
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("FUZZ_CONTRACT", "0xdeadbeef")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("contract: \"${FUZZ_CONTRACT}\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Contract != "0xdeadbeef" {
		t.Fatalf("expected env var expanded, got %q", cfg.Contract)
	}
}

func TestValidateRejectsMissingContract(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing contract")
	}
	cfg.Contract = "0xabc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contract = "0xabc"
	cfg.NbThreads = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nb_threads=0")
	}
}

func TestValidateRejectsSandboxWithoutImage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contract = "0xabc"
	cfg.Sandbox.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sandbox enabled without image")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contract = "0xabc"
	cfg.Seed = 99

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Seed != 99 || loaded.Contract != "0xabc" {
		t.Fatalf("expected round-tripped config, got %+v", loaded)
	}
}
