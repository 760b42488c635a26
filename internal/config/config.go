// pattern: Imperative Shell

package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"fourddev/internal/fspath"
)

const (
	appDirName     = "fourddev"
	configFileName = "config.yaml"

	// DefaultServerName is the key this tool registers under in host settings.
	DefaultServerName = "4d-dev"
)

type Config struct {
	// ApplicationPath pins a specific 4D.app. Blank means discover it.
	ApplicationPath string    `yaml:"application_path"`
	Theme           string    `yaml:"theme"`
	LogLevel        string    `yaml:"log_level"`
	MCP             MCPConfig `yaml:"mcp"`
}

// MCPConfig controls registration of the tool server in a host's settings file.
type MCPConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SettingsPath string   `yaml:"settings_path"`
	ServerName   string   `yaml:"server_name"`
	Command      string   `yaml:"command"`
	Args         []string `yaml:"args"`
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		MCP: MCPConfig{
			ServerName: DefaultServerName,
		},
	}
}

// Load reads the config from the default location.
func Load() (Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFromDir reads config.yaml from dir.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

// LoadFrom reads configPath. A missing file yields the defaults.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MCP.ServerName == "" {
		cfg.MCP.ServerName = DefaultServerName
	}

	return cfg, nil
}

// Save writes cfg to configPath, creating the directory if needed.
func Save(configPath string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolvedApplicationPath returns the configured application path made
// absolute, or "" when none is configured.
func (c *Config) ResolvedApplicationPath() string {
	p := strings.TrimSpace(c.ApplicationPath)
	if p == "" {
		return ""
	}
	return fspath.Resolve(p)
}

// ResolvedSettingsPath returns the configured host settings path made
// absolute, or "" when none is configured.
func (c *Config) ResolvedSettingsPath() string {
	p := strings.TrimSpace(c.MCP.SettingsPath)
	if p == "" {
		return ""
	}
	return fspath.Resolve(p)
}

// Dir returns the directory holding config and logs: configDir when set,
// otherwise $XDG_CONFIG_HOME/fourddev or ~/.config/fourddev.
func Dir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appDirName)
	}

	return filepath.Join(home, ".config", appDirName)
}

// DefaultPath returns the config file path under Dir("").
func DefaultPath() string {
	return PathIn("")
}

// PathIn returns the config file path under Dir(configDir).
func PathIn(configDir string) string {
	return filepath.Join(Dir(configDir), configFileName)
}
