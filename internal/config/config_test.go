package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("SLASHVAULT_DATA_DIR", dataDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "vault.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dataDir, "vault_data.json"), cfg.Vault.Document)
	assert.Equal(t, filepath.Join(dataDir, "vault_files"), cfg.Vault.FilesDir)
	assert.Equal(t, filepath.Join(dataDir, "vault_thumbs"), cfg.Vault.ThumbsDir)
	assert.False(t, cfg.Vault.DedupeNames)
	assert.Equal(t, 256, cfg.Thumbnail.Size)
	assert.Equal(t, 512, cfg.Thumbnail.VideoWidth)
	assert.Equal(t, 384, cfg.Thumbnail.VideoHeight)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, '/', cfg.Client.CommandRune())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
data_dir = "` + filepath.ToSlash(dataDir) + `"

[vault]
dedupe_names = true
files_dir = "/srv/hidden"

[thumbnail]
size = 128
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SLASHVAULT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Vault.DedupeNames)
	assert.Equal(t, "/srv/hidden", cfg.Vault.FilesDir)
	assert.Equal(t, 128, cfg.Thumbnail.Size)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestCommandRuneFallback(t *testing.T) {
	assert.Equal(t, '/', ClientConfig{}.CommandRune())
	assert.Equal(t, ':', ClientConfig{CommandPrefix: ":x"}.CommandRune())
}
