// ABOUTME: Configuration loader for the blog client
// ABOUTME: Layers defaults, blog.yaml, .env, BLOG_* env vars and command flags via viper

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// FileName is the config file name without extension
const FileName = "blog"

// EnvPrefix prefixes every environment override, e.g. BLOG_API_URL
const EnvPrefix = "blog"

type Config struct {
	APIURL      string        `mapstructure:"api_url"`
	ConfigDir   string        `mapstructure:"config_dir"`
	PerPage     int           `mapstructure:"per_page"`
	PageWindow  int           `mapstructure:"page_window"`
	NoticeDelay time.Duration `mapstructure:"notice_delay"`
	CatalogTTL  time.Duration `mapstructure:"catalog_ttl"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AllProxy    string        `mapstructure:"all_proxy"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

// Defaults returns the built-in settings
func Defaults() map[string]any {
	return map[string]any{
		"api_url":      "http://localhost:8000/api/v1",
		"config_dir":   DefaultDir(),
		"per_page":     10,
		"page_window":  5,
		"notice_delay": "2s",
		"catalog_ttl":  "5m",
		"timeout":      "30s",
		"all_proxy":    "",
		"log_level":    "warn",
		"log_format":   "text",
	}
}

// flagKeys maps command flag names to config keys
var flagKeys = map[string]string{
	"api-url":   "api_url",
	"per-page":  "per_page",
	"timeout":   "timeout",
	"log-level": "log_level",
}

// DefaultDir returns the default config directory following XDG spec
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blog")
}

// Load resolves the configuration. Precedence, lowest first: defaults,
// config file, .env, environment, flags set on cmd. configFile, when not
// empty, replaces the config file search.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				f = cmd.PersistentFlags().Lookup(name)
			}
			if f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		return fmt.Errorf("per_page must be between 1 and 100, got %d", c.PerPage)
	}
	if c.PageWindow < 1 {
		return fmt.Errorf("page_window must be positive, got %d", c.PageWindow)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// StorageHost returns the API host without its /api/v1 suffix; uploaded
// images are served from <host>/storage.
func (c *Config) StorageHost() string {
	return strings.TrimSuffix(strings.TrimRight(c.APIURL, "/"), "/api/v1")
}

// fileConfig is the on-disk shape written by WriteFile
type fileConfig struct {
	APIURL      string `yaml:"api_url"`
	PerPage     int    `yaml:"per_page"`
	PageWindow  int    `yaml:"page_window"`
	NoticeDelay string `yaml:"notice_delay"`
	CatalogTTL  string `yaml:"catalog_ttl"`
	Timeout     string `yaml:"timeout"`
	AllProxy    string `yaml:"all_proxy,omitempty"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Path returns the config file location inside dir
func Path(dir string) string {
	return filepath.Join(dir, FileName+".yaml")
}

// WriteFile stores c as YAML at path, creating parent directories
func WriteFile(c *Config, path string) error {
	data, err := yaml.Marshal(fileConfig{
		APIURL:      c.APIURL,
		PerPage:     c.PerPage,
		PageWindow:  c.PageWindow,
		NoticeDelay: c.NoticeDelay.String(),
		CatalogTTL:  c.CatalogTTL.String(),
		Timeout:     c.Timeout.String(),
		AllProxy:    c.AllProxy,
		LogLevel:    c.LogLevel,
		LogFormat:   c.LogFormat,
	})
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return os.WriteFile(path, data, 0600)
}
