package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AWS  AWSConfig  `mapstructure:"aws"`
	Data DataConfig `mapstructure:"data"`
	UI   UIConfig   `mapstructure:"ui"`
	Log  LogConfig  `mapstructure:"log"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type DataConfig struct {
	PageSize       int `mapstructure:"page_size"`
	LazyLoadWindow int `mapstructure:"lazy_load_window"`
	ScrollStep     int `mapstructure:"scroll_step"`
	RequestBuffer  int `mapstructure:"request_buffer"`
	ResponseBuffer int `mapstructure:"response_buffer"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Data: DataConfig{
			PageSize:       100,
			LazyLoadWindow: 5,
			ScrollStep:     5,
			RequestBuffer:  16,
			ResponseBuffer: 16,
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from files. A non-empty file skips the search
// paths and reads exactly that file; it is an error for it to be missing.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Config paths in priority order: user config dir, then cwd.
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, "lazyddb"))
		}
		v.AddConfigPath(".")
	}

	v.SetDefault("aws.region", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("data.page_size", 100)
	v.SetDefault("data.lazy_load_window", 5)
	v.SetDefault("data.scroll_step", 5)
	v.SetDefault("data.request_buffer", 16)
	v.SetDefault("data.response_buffer", 16)
	v.SetDefault("ui.theme", "default")
	v.SetDefault("ui.mouse_enabled", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	// A missing config file is fine, we have defaults.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyddb"), nil
}
