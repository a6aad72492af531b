// Package config loads application settings from defaults, an optional
// livepreview.yaml, a local .env file and LIVEPREVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. LIVEPREVIEW_PORT.
const EnvPrefix = "LIVEPREVIEW"

// Config holds the settings shared by the server, admin and CLI binaries.
type Config struct {
	Port             string
	AdminPort        string
	DataDir          string
	DBPath           string
	TemplatesDir     string
	StaticDir        string
	ContentTypesFile string
	SeedFile         string
	BlockID          string
	LogLevel         string
	ServerSideLinks  bool          // normalize link targets in server-rendered markup too
	FormCacheTTL     time.Duration // how long a form session remembers its preview
}

// BlockConfigDir is where block configuration files are stored.
func (c *Config) BlockConfigDir() string {
	return filepath.Join(c.DataDir, "blocks")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("admin_port", "8081")
	v.SetDefault("data_dir", "data")
	v.SetDefault("db_path", "")
	v.SetDefault("templates_dir", filepath.Join("web", "templates"))
	v.SetDefault("static_dir", filepath.Join("web", "static"))
	v.SetDefault("content_types_file", "content_types.yaml")
	v.SetDefault("seed_file", "")
	v.SetDefault("block_id", "live_preview")
	v.SetDefault("log_level", "info")
	v.SetDefault("links.server_side", false)
	v.SetDefault("form_cache_ttl", "6h")
}

// Load reads the configuration. An empty file looks for livepreview.yaml in
// the working directory and tolerates its absence; a named file must exist.
func Load(file string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("livepreview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:             v.GetString("port"),
		AdminPort:        v.GetString("admin_port"),
		DataDir:          v.GetString("data_dir"),
		DBPath:           v.GetString("db_path"),
		TemplatesDir:     v.GetString("templates_dir"),
		StaticDir:        v.GetString("static_dir"),
		ContentTypesFile: v.GetString("content_types_file"),
		SeedFile:         v.GetString("seed_file"),
		BlockID:          v.GetString("block_id"),
		LogLevel:         v.GetString("log_level"),
		ServerSideLinks:  v.GetBool("links.server_side"),
		FormCacheTTL:     v.GetDuration("form_cache_ttl"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "livepreview.db")
	}
	if cfg.BlockID == "" {
		return nil, errors.New("block_id must not be empty")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}

// NewLogger creates the text logger used by every binary.
func NewLogger(w io.Writer, levelName string) *slog.Logger {
	level, err := ParseLevel(levelName)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
