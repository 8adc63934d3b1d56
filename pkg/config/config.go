// Package config loads herogen settings from herogen.yaml, the environment
// and an optional .env file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "HEROGEN"

type Config struct {
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Live       LiveConfig       `mapstructure:"live"`
	Generation GenerationConfig `mapstructure:"generation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

type GeminiConfig struct {
	APIKey      string `mapstructure:"api_key"`
	ScriptModel string `mapstructure:"script_model"`
	ImageModel  string `mapstructure:"image_model"`
}

type LiveConfig struct {
	Model string `mapstructure:"model"`
	Voice string `mapstructure:"voice"`
}

type GenerationConfig struct {
	PageInterval   time.Duration `mapstructure:"page_interval"`
	PlaceholderURL string        `mapstructure:"placeholder_url"`
	ReferenceSize  int           `mapstructure:"reference_size"`
}

type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	OutputDir string `mapstructure:"output_dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Dir is where herogen keeps its library, exports and logs.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".herogen"
	}
	return filepath.Join(home, ".herogen")
}

func setDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.script_model", "gemini-2.5-flash")
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-image")

	v.SetDefault("live.model", "gemini-2.5-flash-native-audio-preview-09-2025")
	v.SetDefault("live.voice", "Fenrir")

	v.SetDefault("generation.page_interval", 500*time.Millisecond)
	v.SetDefault("generation.placeholder_url", "https://picsum.photos/800/600?error")
	v.SetDefault("generation.reference_size", 1024)

	v.SetDefault("storage.db_path", filepath.Join(dir, "library.db"))
	v.SetDefault("storage.output_dir", filepath.Join(dir, "exports"))

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "herogen.log"))
}

// Load reads the config file at path, or herogen.yaml from the working
// directory or Dir() when path is empty. A missing default file is not an
// error. Environment variables override the file: HEROGEN_GEMINI_API_KEY,
// HEROGEN_SERVER_ADDR and so on. The API key also falls back to
// GEMINI_API_KEY and API_KEY.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("herogen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that make the generator unusable.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("gemini API key is not set (HEROGEN_GEMINI_API_KEY, GEMINI_API_KEY or API_KEY)")
	}
	return nil
}
