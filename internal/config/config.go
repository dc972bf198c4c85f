package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/types"
	"github.com/studiowebux/kwintel/internal/validator"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultAPIURL is the address of a locally running extraction service
	DefaultAPIURL = "http://localhost:8000"
	// DefaultNotificationTimeoutMs is how long notifications stay visible
	DefaultNotificationTimeoutMs = 4000
)

// Environment variables that override the config file
const (
	EnvHome     = "KWINTEL_HOME"
	EnvAPIURL   = "KWINTEL_API_URL"
	EnvAPIToken = "KWINTEL_API_TOKEN"
	EnvLogLevel = "KWINTEL_LOG_LEVEL"
)

// configNames are looked up in order inside ConfigDir
var configNames = []string{"config.yaml", "config.yml", "config.json", "config.jsonc"}

var (
	// ConfigDir is the global configuration directory (~/.kwintel)
	ConfigDir string

	// DatabasePath is the SQLite database file for the saved dataset
	DatabasePath string

	// SessionFile is the demo login state file
	SessionFile string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string
)

// Initialize sets up the configuration directory.
// It creates ~/.kwintel/ (or $KWINTEL_HOME) if it doesn't exist.
func Initialize() error {
	dir := os.Getenv(EnvHome)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".kwintel")
	}

	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "kwintel.db")
	SessionFile = filepath.Join(ConfigDir, "session.json")
	LogFile = filepath.Join(ConfigDir, "kwintel.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// Config is the user configuration
type Config struct {
	APIURL                string                       `json:"api_url" yaml:"api_url"`
	APIToken              string                       `json:"api_token,omitempty" yaml:"api_token,omitempty"`
	RequestTimeout        string                       `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	NotificationTimeoutMs int                          `json:"notification_timeout_ms" yaml:"notification_timeout_ms"`
	ExportDir             string                       `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`
	Defaults              types.Params                 `json:"defaults" yaml:"defaults"`
	HistoryEnabled        bool                         `json:"history_enabled" yaml:"history_enabled"`
	LogLevel              string                       `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Keybinds              map[string]map[string]string `json:"keybinds,omitempty" yaml:"keybinds,omitempty"`
	TLS                   *executor.TLSConfig          `json:"tls,omitempty" yaml:"tls,omitempty"`

	// Path is the file the config was loaded from, empty for defaults
	Path string `json:"-" yaml:"-"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		APIURL:                DefaultAPIURL,
		NotificationTimeoutMs: DefaultNotificationTimeoutMs,
		Defaults:              types.DefaultParams(),
		HistoryEnabled:        true,
		LogLevel:              "info",
	}
}

// Load reads the first config file found in dir, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		break
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfg.displayPath(), err)
	}
	return cfg, nil
}

// LoadFile reads one config file. Fields absent from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	cfg.Defaults = cfg.Defaults.WithDefaults()
	cfg.Path = path
	return cfg, nil
}

// Save writes the config as YAML or JSON depending on the extension
func Save(cfg *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json", ".jsonc":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(getenv(EnvAPIToken)); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the config values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http or https URL, got %q", c.APIURL)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if c.NotificationTimeoutMs <= 0 {
		return errors.New("notification_timeout_ms must be positive")
	}

	if err := validator.ValidateParams(c.Defaults); err != nil {
		return fmt.Errorf("defaults: %s", validator.Reason(err))
	}

	return nil
}

// Timeout parses request_timeout. Empty means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.RequestTimeout))
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, errors.New("request_timeout must not be negative")
	}
	return d, nil
}

// NotificationTimeout returns the auto-dismiss delay
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.NotificationTimeoutMs) * time.Millisecond
}

// ClientOptions returns the service client settings
func (c *Config) ClientOptions() (executor.Options, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return executor.Options{}, err
	}
	return executor.Options{
		BaseURL: c.APIURL,
		Token:   c.APIToken,
		Timeout: timeout,
		TLS:     c.TLS,
	}, nil
}

// ResolveExportDir expands ~ and falls back to the current directory
func (c *Config) ResolveExportDir() (string, error) {
	dir := c.ExportDir
	if dir == "" {
		return ".", nil
	}

	if strings.HasPrefix(dir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, dir[2:])
	}
	return dir, nil
}

func (c *Config) displayPath() string {
	if c.Path == "" {
		return "(defaults)"
	}
	return c.Path
}
