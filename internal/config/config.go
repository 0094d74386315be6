package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SLASHVAULT"

// Config holds settings for the vault client.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Log       LogConfig       `mapstructure:"log"`
	Client    ClientConfig    `mapstructure:"client"`
}

// DatabaseConfig captures preference storage configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// VaultConfig names the vault document and payload directories.
type VaultConfig struct {
	Document    string `mapstructure:"document"`
	FilesDir    string `mapstructure:"files_dir"`
	ThumbsDir   string `mapstructure:"thumbs_dir"`
	DedupeNames bool   `mapstructure:"dedupe_names"`
}

// ThumbnailConfig defines preview geometry and the video frame extractor.
type ThumbnailConfig struct {
	Size        int    `mapstructure:"size"`
	VideoWidth  int    `mapstructure:"video_width"`
	VideoHeight int    `mapstructure:"video_height"`
	FFmpeg      string `mapstructure:"ffmpeg"`
}

// LogConfig controls the diagnostic log sink.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	CommandPrefix string `mapstructure:"command_prefix"`
	PickerDir     string `mapstructure:"picker_dir"`
}

// Load builds the configuration from defaults, an optional TOML file and
// SLASHVAULT_ environment variables. A .env file in the working directory is
// loaded first when present. An empty path falls back to SLASHVAULT_CONFIG and
// then to config.toml in the user config directory.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "slashvault"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolve()
	return cfg, nil
}

// CommandRune returns the first rune of the configured command prefix.
func (c ClientConfig) CommandRune() rune {
	runes := []rune(c.CommandPrefix)
	if len(runes) == 0 {
		return '/'
	}
	return runes[0]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("database.path", "vault.db")
	v.SetDefault("vault.document", "vault_data.json")
	v.SetDefault("vault.files_dir", "vault_files")
	v.SetDefault("vault.thumbs_dir", "vault_thumbs")
	v.SetDefault("vault.dedupe_names", false)
	v.SetDefault("thumbnail.size", 256)
	v.SetDefault("thumbnail.video_width", 512)
	v.SetDefault("thumbnail.video_height", 384)
	v.SetDefault("thumbnail.ffmpeg", "ffmpeg")
	v.SetDefault("log.path", "vault.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("client.command_prefix", "/")
	v.SetDefault("client.picker_dir", "")
}

// resolve anchors relative paths at the data directory.
func (c *Config) resolve() {
	c.Database.Path = underDataDir(c.DataDir, c.Database.Path)
	c.Vault.Document = underDataDir(c.DataDir, c.Vault.Document)
	c.Vault.FilesDir = underDataDir(c.DataDir, c.Vault.FilesDir)
	c.Vault.ThumbsDir = underDataDir(c.DataDir, c.Vault.ThumbsDir)
	c.Log.Path = underDataDir(c.DataDir, c.Log.Path)
	if c.Client.PickerDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Client.PickerDir = home
		} else {
			c.Client.PickerDir = "."
		}
	}
}

func underDataDir(dataDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "slashvault")
	}
	return ".slashvault"
}
