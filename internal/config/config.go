package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for grabbot.
type Config struct {
	General   GeneralConfig   `json:"general"`
	Session   SessionConfig   `json:"session"`
	Status    StatusConfig    `json:"status"`
	Downloads DownloadsConfig `json:"downloads"`
}

type GeneralConfig struct {
	Workspace string `json:"workspace"`
	LogLevel  string `json:"logLevel"` // debug | info | warn | error
}

// SessionConfig configures the messaging session and credential persistence.
type SessionConfig struct {
	AuthDBPath   string `json:"authDbPath"`   // whatsmeow device store
	CredsDBPath  string `json:"credsDbPath"`  // linked-device registration blobs
	PairCodeFile string `json:"pairCodeFile"` // side file the pairing code is written to
}

// StatusConfig configures the HTTP status page that shows the pairing code.
type StatusConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// DownloadsConfig configures the download orchestrator.
type DownloadsConfig struct {
	Dir                string `json:"dir"`                // scratch directory for temp files
	MenuLimit          int    `json:"menuLimit"`          // max formats listed to the sender
	SelectDelaySeconds int    `json:"selectDelaySeconds"` // fixed delay before auto-selecting a format
}

// DefaultConfigDir returns the default config directory (~/.grabbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grabbot"
	}
	return filepath.Join(home, ".grabbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.Workspace = ExpandPath(cfg.General.Workspace)
	cfg.Session.AuthDBPath = ExpandPath(cfg.Session.AuthDBPath)
	cfg.Session.CredsDBPath = ExpandPath(cfg.Session.CredsDBPath)
	cfg.Session.PairCodeFile = ExpandPath(cfg.Session.PairCodeFile)
	cfg.Downloads.Dir = ExpandPath(cfg.Downloads.Dir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Session.AuthDBPath == "" {
		errs = append(errs, "session.authDbPath must not be empty")
	}
	if cfg.Session.CredsDBPath == "" {
		errs = append(errs, "session.credsDbPath must not be empty")
	}
	if cfg.Session.PairCodeFile == "" {
		errs = append(errs, "session.pairCodeFile must not be empty")
	}

	if cfg.Status.Port < 0 || cfg.Status.Port > 65535 {
		errs = append(errs, "status.port must be between 0 and 65535")
	}

	if cfg.Downloads.MenuLimit < 1 {
		errs = append(errs, "downloads.menuLimit must be >= 1")
	}
	if cfg.Downloads.SelectDelaySeconds < 0 {
		errs = append(errs, "downloads.selectDelaySeconds must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
