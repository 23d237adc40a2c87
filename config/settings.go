package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultSettings returns the first-run configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Server:        ServerConfig{URL: "http://localhost:8000"},
		DataDirectory: GetDefaultDataDir(),
	}
}

// LoadSettings reads settings.toml, creating it with defaults when missing.
func LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	settingsPath := GetSettingsFilePath()

	if !FileExists(settingsPath) {
		if err := SaveSettings(settings); err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}
		return settings, nil
	}

	if _, err := toml.DecodeFile(settingsPath, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if settings.Server.URL == "" {
		settings.Server.URL = "http://localhost:8000"
	}
	if settings.DataDirectory == "" {
		settings.DataDirectory = GetDefaultDataDir()
	}

	return settings, nil
}

// SaveSettings writes settings.toml with user-only permissions.
func SaveSettings(settings *Settings) error {
	configDir := GetConfigDir()
	if err := EnsureDir(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	f, err := os.OpenFile(settingsPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}
