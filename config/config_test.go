package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./stratfolio.sqlite", cfg.Library.DBPath)
	assert.Equal(t, int64(MaxUploadBytes), cfg.Ingest.MaxUploadBytes)
	assert.Equal(t, ":8089", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing db path", func(c *Config) { c.Library.DBPath = "" }, "library.db_path is required"},
		{"upload too large", func(c *Config) { c.Ingest.MaxUploadBytes = MaxUploadBytes + 1 }, "ingest.max_upload_bytes"},
		{"zero upload size", func(c *Config) { c.Ingest.MaxUploadBytes = 0 }, "ingest.max_upload_bytes"},
		{"negative workers", func(c *Config) { c.Ingest.Workers = -1 }, "ingest.workers"},
		{"negative archive cap", func(c *Config) { c.Export.MaxArchiveBytes = -5 }, "export.max_archive_bytes"},
		{"missing output dir", func(c *Config) { c.Export.OutputDir = "" }, "export.output_dir is required"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.Library.DBPath = "/tmp/lib.sqlite"
			cfg.Ingest.Workers = 3
			cfg.Export.MaxArchiveBytes = 1024
			path := filepath.Join(tmpDir, "test"+ext)

			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, Default().Library.DBPath, cfg.Library.DBPath)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: [or json"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STRATFOLIO_DB_PATH", "env.sqlite")
	t.Setenv("STRATFOLIO_WORKERS", "7")
	t.Setenv("STRATFOLIO_LOG_LEVEL", "debug")
	t.Setenv("STRATFOLIO_MAX_ARCHIVE_BYTES", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.sqlite", cfg.Library.DBPath)
	assert.Equal(t, 7, cfg.Ingest.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Zero(t, cfg.Export.MaxArchiveBytes)
}
