package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ServerConfig holds the backend connection settings.
type ServerConfig struct {
	URL string `toml:"url"`
}

// Settings is the on-disk configuration shape.
type Settings struct {
	Server        ServerConfig `toml:"server"`
	DataDirectory string       `toml:"data_directory"`

	// "plaintext" or "ssh_key"; controls how the bearer token is stored.
	CredentialSecurity string `toml:"credential_security,omitempty"`
	SSHKeyPath         string `toml:"ssh_key_path,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	ServerURL          string
	DataDirectory      string
	CredentialSecurity SecurityMethod
	SSHKeyPath         string
}

var Debug = false
var DebugLog *log.Logger

// ServerBaseURL returns the backend base URL.
func (c *Config) ServerBaseURL() string {
	return c.ServerURL
}

// DataDir returns the expanded data directory path.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("LAWTUI_SERVER_URL"); url != "" {
		c.ServerURL = url
	}
	if dataDir := os.Getenv("LAWTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

// Load reads settings from disk (creating defaults on first run), applies
// environment overrides, and ensures the data directory exists.
func Load() (*Config, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	method := SecurityMethod(settings.CredentialSecurity)
	if method == "" {
		method = SecurityPlainText
	}

	cfg := &Config{
		ServerURL:          settings.Server.URL,
		DataDirectory:      settings.DataDirectory,
		CredentialSecurity: method,
		SSHKeyPath:         settings.SSHKeyPath,
	}
	cfg.applyEnvOverrides()

	if err := EnsureDir(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func CheckDebug() bool {
	debug := os.Getenv("LAWTUI_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens the file-backed debug logger. TUI programs own the
// terminal, so diagnostics always go to a file in the data directory.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (LAWTUI_DEBUG=%s) ===", os.Getenv("LAWTUI_DEBUG"))
}
