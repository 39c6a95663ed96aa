package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Paging   PagingConfig   `mapstructure:"paging"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Importer ImporterConfig `mapstructure:"importer"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path        string `mapstructure:"path"`
	SearchIndex string `mapstructure:"search_index"`
}

type PagingConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type PlaybackConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type StorageConfig struct {
	Dir     string `mapstructure:"dir"`
	TempDir string `mapstructure:"temp_dir"`
}

type ImporterConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary string `mapstructure:"primary"`
	Accent  string `mapstructure:"accent"`
	Muted   string `mapstructure:"muted"`
	Error   string `mapstructure:"error"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(homeDir, ".voizy.db"),
			SearchIndex: filepath.Join(homeDir, ".voizy", "index.bleve"),
		},
		Paging: PagingConfig{
			Debounce: 500 * time.Millisecond,
		},
		Playback: PlaybackConfig{
			HTTPTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Dir:     filepath.Join(homeDir, ".voizy", "storage"),
			TempDir: "",
		},
		Importer: ImporterConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "voizy/1.0 (https://github.com/voizylabs/voizy)",
		},
		Log: LogConfig{
			Level: "off",
			Path:  "",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary: "#4ECDC4",
				Accent:  "#95E1D3",
				Muted:   "#94A3B8",
				Error:   "#F87171",
			},
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("paging", cfg.Paging)
	v.SetDefault("playback", cfg.Playback)
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("importer", cfg.Importer)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("ui", cfg.UI)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "voizy")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("VOIZY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ and converts to an absolute path.
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	if cfg.Storage.TempDir != "" {
		cfg.Storage.TempDir = expandPath(cfg.Storage.TempDir)
	}
	if cfg.Log.Path != "" {
		cfg.Log.Path = expandPath(cfg.Log.Path)
	}
}

func Save(config *Config, path string) error {
	v := viper.New()

	v.Set("database", map[string]any{
		"path":         config.Database.Path,
		"search_index": config.Database.SearchIndex,
	})
	v.Set("paging", map[string]any{
		"debounce": config.Paging.Debounce.String(),
	})
	v.Set("playback", map[string]any{
		"http_timeout": config.Playback.HTTPTimeout.String(),
	})
	v.Set("storage", map[string]any{
		"dir":      config.Storage.Dir,
		"temp_dir": config.Storage.TempDir,
	})
	v.Set("importer", map[string]any{
		"http_timeout": config.Importer.HTTPTimeout.String(),
		"user_agent":   config.Importer.UserAgent,
	})
	v.Set("log", map[string]any{
		"level": config.Log.Level,
		"path":  config.Log.Path,
	})
	v.Set("ui", map[string]any{
		"colors": map[string]any{
			"primary": config.UI.Colors.Primary,
			"accent":  config.UI.Colors.Accent,
			"muted":   config.UI.Colors.Muted,
			"error":   config.UI.Colors.Error,
		},
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v.SetConfigType("toml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GenerateDefaultConfig writes the default configuration to path.
func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
