// Package config loads texprogress settings from an optional YAML file,
// TEXPROGRESS_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. TEXPROGRESS_CHART_OUTPUT.
const EnvPrefix = "TEXPROGRESS"

// Config holds all texprogress configuration. The GitHub token is never part
// of it; see auth.FromEnv.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Chart   ChartConfig   `mapstructure:"chart"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "json" or "sqlite"
	Path    string `mapstructure:"path"`    // JSON history document
	DBPath  string `mapstructure:"db_path"`
}

type ChartConfig struct {
	Output string `mapstructure:"output"`
	Title  string `mapstructure:"title"`
}

type GitHubConfig struct {
	APIURL       string `mapstructure:"api_url"`
	Affiliation  string `mapstructure:"affiliation"`
	PerPage      int    `mapstructure:"per_page"`
	SkipForks    bool   `mapstructure:"skip_forks"`
	SkipArchived bool   `mapstructure:"skip_archived"`
}

type FetchConfig struct {
	Method     string        `mapstructure:"method"` // "gogit" or "cli"
	Timeout    time.Duration `mapstructure:"timeout"`
	ScratchDir string        `mapstructure:"scratch_dir"`
}

type ScanConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads cfgFile if given, otherwise searches for .texprogress.yaml in
// the working directory and $HOME/.config/texprogress. A missing file is not
// an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".texprogress")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/texprogress")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.path", "data/word_count_history.json")
	v.SetDefault("storage.db_path", "data/texprogress.db")

	v.SetDefault("chart.output", "assets/tex_progress.svg")
	v.SetDefault("chart.title", "📝 LaTeX Writing Progress")

	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.affiliation", "owner")
	v.SetDefault("github.per_page", 100)
	v.SetDefault("github.skip_forks", false)
	v.SetDefault("github.skip_archived", false)

	v.SetDefault("fetch.method", "gogit")
	v.SetDefault("fetch.timeout", 120*time.Second)
	v.SetDefault("fetch.scratch_dir", "")

	v.SetDefault("scan.include", []string{"*.tex", "**/*.tex"})
	v.SetDefault("scan.exclude", []string{})

	v.SetDefault("server.bind", "127.0.0.1")
	v.SetDefault("server.port", 37780)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %s (must be json or sqlite)", cfg.Storage.Backend)
	}

	switch cfg.Fetch.Method {
	case "gogit", "cli":
	default:
		return fmt.Errorf("invalid fetch method: %s (must be gogit or cli)", cfg.Fetch.Method)
	}
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", cfg.Fetch.Timeout)
	}

	if cfg.GitHub.PerPage < 1 || cfg.GitHub.PerPage > 100 {
		return fmt.Errorf("github per_page must be between 1 and 100, got %d", cfg.GitHub.PerPage)
	}
	if len(cfg.Scan.Include) == 0 {
		return errors.New("scan include needs at least one pattern")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
