package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the LC-3 VM's persisted configuration, loaded from a
// TOML file via github.com/BurntSushi/toml. Shape grounded directly on the
// teacher's config/config.go (struct-of-structs with toml tags,
// DefaultConfig/GetConfigPath), re-scoped from ARM fields to LC-3 ones.
type Config struct {
	// Execution settings
	Execution struct {
		MaxCycles     uint64 `toml:"max_cycles"`     // 0 = unlimited; caps the plain run when -max-cycles is not given
		DefaultOrigin string `toml:"default_origin"` // standard user-program load address
		EnableTrace   bool   `toml:"enable_trace"`
	} `toml:"execution"`

	// Console settings
	Console struct {
		RawMode        bool `toml:"raw_mode"`         // disable echo/line-buffering on stdin
		PollIntervalMS int  `toml:"poll_interval_ms"` // KeyAvailable's polling granularity
	} `toml:"console"`

	// Debugger settings
	Debugger struct {
		HistorySize        int  `toml:"history_size"`
		ShowRegisters      bool `toml:"show_registers"`
		ShowConditionFlags bool `toml:"show_condition_flags"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		NumberFormat string `toml:"number_format"` // hex, dec
		BytesPerLine int    `toml:"bytes_per_line"`
	} `toml:"display"`

	// Trace settings
	Trace struct {
		OutputFile string `toml:"output_file"`
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`

	// API server settings
	API struct {
		Port int `toml:"port"`
	} `toml:"api"`
}

// DefaultConfig returns a configuration with default values matching the
// unmodified spec.md behavior: unlimited cycles, raw console mode on,
// a one-second poll interval (spec §4.3's upper bound).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 0
	cfg.Execution.DefaultOrigin = "0x3000"
	cfg.Execution.EnableTrace = false

	cfg.Console.RawMode = true
	cfg.Console.PollIntervalMS = 1000

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowConditionFlags = true

	cfg.Display.NumberFormat = "hex"
	cfg.Display.BytesPerLine = 8

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.MaxEntries = 100000

	cfg.API.Port = 8080

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "lc3")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "lc3")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// defaults if it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
