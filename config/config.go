package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxUploadBytes is the hard ceiling on a single uploaded export.
const MaxUploadBytes = 50 << 20

// Config represents the complete application configuration
type Config struct {
	Library LibraryConfig `json:"library" yaml:"library"`
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// LibraryConfig controls where normalized strategies and portfolios persist
type LibraryConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"` // SQLite file, or ":memory:"
}

// IngestConfig contains upload parameters
type IngestConfig struct {
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	Workers        int   `json:"workers" yaml:"workers"` // 0 = one per CPU
}

// ExportConfig contains archive and CSV output parameters
type ExportConfig struct {
	OutputDir       string `json:"output_dir" yaml:"output_dir"`
	MaxArchiveBytes int64  `json:"max_archive_bytes" yaml:"max_archive_bytes"` // 0 = unlimited
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig controls log format and level
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug | info | warn | error
	Format string `json:"format" yaml:"format"` // json | console
}

// LoadFromFile loads configuration from a file (YAML, falling back to
// JSON), then applies .env and STRATFOLIO_* environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load returns the file configuration when path is set, otherwise the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads .env when present and overrides values from the
// environment. Unparseable numeric values are ignored.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("STRATFOLIO_DB_PATH"); v != "" {
		cfg.Library.DBPath = v
	}
	if v := os.Getenv("STRATFOLIO_OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("STRATFOLIO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STRATFOLIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STRATFOLIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v, err := strconv.Atoi(os.Getenv("STRATFOLIO_WORKERS")); err == nil {
		cfg.Ingest.Workers = v
	}
	if v, err := strconv.ParseInt(os.Getenv("STRATFOLIO_MAX_ARCHIVE_BYTES"), 10, 64); err == nil {
		cfg.Export.MaxArchiveBytes = v
	}
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Library.DBPath == "" {
		return fmt.Errorf("library.db_path is required")
	}
	if c.Ingest.MaxUploadBytes <= 0 || c.Ingest.MaxUploadBytes > MaxUploadBytes {
		return fmt.Errorf("ingest.max_upload_bytes must be between 1 and %d", MaxUploadBytes)
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must not be negative")
	}
	if c.Export.MaxArchiveBytes < 0 {
		return fmt.Errorf("export.max_archive_bytes must not be negative")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console", "pretty":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			DBPath: "./stratfolio.sqlite",
		},
		Ingest: IngestConfig{
			MaxUploadBytes: MaxUploadBytes,
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
		Server: ServerConfig{
			Addr: ":8089",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
