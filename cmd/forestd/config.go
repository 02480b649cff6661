// config.go - Daemon configuration and game preset loading.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"encforest/internal/ledger"
	"encforest/internal/noise"
)

// Config represents the daemon configuration
type Config struct {
	// HTTP settings
	ListenAddr string `json:"listen_addr"`

	// Engine settings
	Workers            int  `json:"workers"`
	AttestationEnabled bool `json:"attestation_enabled"`

	// File paths
	StatePath string `json:"state_path"` // empty selects the in-memory store
	KeyDir    string `json:"key_dir"`
	PresetDir string `json:"preset_dir"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Rate limiting (per client, requests per second)
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	// Timeouts
	RequestTimeoutSeconds  int `json:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:             ":8420",
		Workers:                4,
		AttestationEnabled:     true,
		StatePath:              "state.json",
		KeyDir:                 "keys",
		PresetDir:              "presets",
		LogLevel:               "info",
		LogFile:                "",
		RateLimit:              10,
		RateBurst:              20,
		RequestTimeoutSeconds:  120,
		ShutdownTimeoutSeconds: 10,
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		config := DefaultConfig()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("shutdown_timeout_seconds must be positive")
	}
	return nil
}

// GamePreset is one pre-declared game in a YAML preset file. Thresholds
// default to the standard table when omitted.
type GamePreset struct {
	ID           uint64            `yaml:"id"`
	MapDiameter  uint64            `yaml:"map_diameter"`
	Speed        uint64            `yaml:"speed"`
	StartSlot    uint64            `yaml:"start_slot"`
	EndSlot      uint64            `yaml:"end_slot"`
	WinCondition string            `yaml:"win_condition"`
	Whitelist    []string          `yaml:"whitelist"`
	Admin        string            `yaml:"admin"`
	Thresholds   *noise.Thresholds `yaml:"thresholds"`
}

// Game converts the preset into a ledger game record.
func (p *GamePreset) Game() *ledger.Game {
	th := noise.DefaultThresholds()
	if p.Thresholds != nil {
		th = *p.Thresholds
	}
	return &ledger.Game{
		ID:           p.ID,
		MapDiameter:  p.MapDiameter,
		Speed:        p.Speed,
		StartSlot:    p.StartSlot,
		EndSlot:      p.EndSlot,
		WinCondition: ledger.WinCondition(p.WinCondition),
		Whitelist:    p.Whitelist,
		Admin:        p.Admin,
		Thresholds:   th,
	}
}

// LoadPresets reads every *.yaml file in the preset directory. A missing
// directory is not an error: the daemon then starts with no games.
func LoadPresets(dir string) ([]GamePreset, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var presets []GamePreset
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read preset %s: %w", entry.Name(), err)
		}
		var file struct {
			Games []GamePreset `yaml:"games"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse preset %s: %w", entry.Name(), err)
		}
		presets = append(presets, file.Games...)
	}
	return presets, nil
}
