package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 0 {
		t.Errorf("Expected MaxCycles=0 (unlimited), got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.DefaultOrigin != "0x3000" {
		t.Errorf("Expected DefaultOrigin=0x3000, got %s", cfg.Execution.DefaultOrigin)
	}

	if !cfg.Console.RawMode {
		t.Error("Expected Console.RawMode=true")
	}
	if cfg.Console.PollIntervalMS != 1000 {
		t.Errorf("Expected PollIntervalMS=1000, got %d", cfg.Console.PollIntervalMS)
	}

	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("Expected HistorySize=1000, got %d", cfg.Debugger.HistorySize)
	}
	if !cfg.Debugger.ShowRegisters {
		t.Error("Expected ShowRegisters=true")
	}

	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("Expected NumberFormat=hex, got %s", cfg.Display.NumberFormat)
	}

	if cfg.Trace.MaxEntries != 100000 {
		t.Errorf("Expected MaxEntries=100000, got %d", cfg.Trace.MaxEntries)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("Expected API.Port=8080, got %d", cfg.API.Port)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "lc3" && path != "config.toml" {
			t.Errorf("Expected path in lc3 directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 5000000
	cfg.Execution.EnableTrace = true
	cfg.Debugger.HistorySize = 500
	cfg.Display.NumberFormat = "dec"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Execution.MaxCycles != 5000000 {
		t.Errorf("Expected MaxCycles=5000000, got %d", loaded.Execution.MaxCycles)
	}
	if !loaded.Execution.EnableTrace {
		t.Error("Expected EnableTrace=true")
	}
	if loaded.Debugger.HistorySize != 500 {
		t.Errorf("Expected HistorySize=500, got %d", loaded.Debugger.HistorySize)
	}
	if loaded.Display.NumberFormat != "dec" {
		t.Errorf("Expected NumberFormat=dec, got %s", loaded.Display.NumberFormat)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Execution.MaxCycles != 0 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_cycles = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
