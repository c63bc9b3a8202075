package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PIXDECK"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Search  SearchConfig  `mapstructure:"search"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds gallery server configuration
type ServerConfig struct {
	URL   string `mapstructure:"url"`   // API root, e.g. https://gallery.example.com/api/v1
	Token string `mapstructure:"token"` // Bearer token
}

// ClientConfig tunes the HTTP client
type ClientConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables throttling
	Burst             int           `mapstructure:"burst"`
}

// SearchConfig holds pager defaults
type SearchConfig struct {
	PageSize        int  `mapstructure:"page_size"`
	MaxScanAttempts int  `mapstructure:"max_scan_attempts"`
	AlbumChance     bool `mapstructure:"album_chance"` // Start searches in album-chance mode
}

// CacheConfig holds the detail/album cache location.
// Empty dir keeps the cache in a temp directory removed on exit.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// ViewerConfig holds the external image viewer
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty for the system default handler
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             3,
		},
		Search: SearchConfig{
			PageSize:        20,
			MaxScanAttempts: 10,
		},
		Viewer: ViewerConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pixdeck", "pixdeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pixdeck", "pixdeck.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pixdeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pixdeck")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath())
}

func loadConfig(v *viper.Viper, configDir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. PIXDECK_SERVER_TOKEN
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"server.url", "server.token",
		"client.timeout", "client.requests_per_second", "client.burst",
		"search.page_size", "search.max_scan_attempts", "search.album_chance",
		"cache.dir", "viewer.command", "logging.file", "logging.level",
	} {
		// Unmarshal only sees env values for keys viper knows about
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), defaultConfigPath(), cfg)
}

func saveConfig(v *viper.Viper, configDir string, cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.token", cfg.Server.Token)

	v.Set("client.timeout", cfg.Client.Timeout.String())
	v.Set("client.requests_per_second", cfg.Client.RequestsPerSecond)
	v.Set("client.burst", cfg.Client.Burst)

	v.Set("search.page_size", cfg.Search.PageSize)
	v.Set("search.max_scan_attempts", cfg.Search.MaxScanAttempts)
	v.Set("search.album_chance", cfg.Search.AlbumChance)

	v.Set("cache.dir", cfg.Cache.Dir)

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	return writeConfig(v, configDir)
}

// SaveToken updates just the token in the configuration
func SaveToken(token string) error {
	v := viper.GetViper()
	v.Set("server.token", token)
	return writeConfig(v, defaultConfigPath())
}

func writeConfig(v *viper.Viper, configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if the server URL is set. The token is optional
// for servers that authenticate by other means.
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// ConfigPath returns the directory searched for config.yaml
func ConfigPath() string {
	return defaultConfigPath()
}

// ClearServerConfig removes the server URL and token from the config file
func ClearServerConfig() error {
	v := viper.GetViper()
	v.Set("server.url", "")
	v.Set("server.token", "")
	return writeConfig(v, defaultConfigPath())
}

// ClearCache removes a persistent cache directory. Empty dir is a no-op.
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	path, err := ExpandHome(dir)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
