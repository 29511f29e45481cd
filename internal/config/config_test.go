package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "/tmp/recover_jpeg", cfg.Recover.OutputDir)
	require.Equal(t, "500KB", cfg.Recover.MinSize)
	require.Equal(t, "10MB", cfg.Recover.MaxSize)
	require.Equal(t, "INFO", cfg.Log.Level)
	require.False(t, cfg.Log.Disabled)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("JRECOVER_OUTPUT_DIR", "/var/tmp/out")
	t.Setenv("JRECOVER_NO_LOG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/var/tmp/out", cfg.Recover.OutputDir)
	require.True(t, cfg.Log.Disabled)
}

func TestLoad_DotEnv(t *testing.T) {
	// Registers cleanup for the variable set by the dotenv file.
	t.Setenv("JRECOVER_MAX_SIZE", "")
	require.NoError(t, os.Unsetenv("JRECOVER_MAX_SIZE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JRECOVER_MAX_SIZE=20MB\n"), 0644))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "20MB", cfg.Recover.MaxSize)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("JRECOVER_NO_LOG", "maybe")

	_, err := Load()
	require.Error(t, err)
}
