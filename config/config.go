// Package config loads aesfile settings from a YAML file, AESFILE_*
// environment variables and command line overrides, in that order.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the aesfile tool.
type Config struct {
	Mode         string         `yaml:"mode" validate:"required,oneof=cbc ecb"`
	Workers      int            `yaml:"workers" validate:"min=0,max=256"`
	KeystorePath string         `yaml:"keystore_path" validate:"required"`
	Log          LoggerSettings `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:         "cbc",
		Workers:      0,
		KeystorePath: "aesfile-keys.db",
		Log: LoggerSettings{
			LogLevel:   LogLevelInfo,
			LogFormat:  LogFormatConsole,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// LoadConfig reads configPath (if not empty) over the defaults, applies
// environment overrides and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", configPath, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if env := os.Getenv("AESFILE_MODE"); env != "" {
		c.Mode = strings.ToLower(env)
	}
	if env := os.Getenv("AESFILE_WORKERS"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			c.Workers = n
		}
	}
	if env := os.Getenv("AESFILE_KEYSTORE"); env != "" {
		c.KeystorePath = env
	}
	if env := os.Getenv("AESFILE_LOG_LEVEL"); env != "" {
		c.Log.LogLevel = strings.ToLower(env)
	}
	if env := os.Getenv("AESFILE_LOG_FORMAT"); env != "" {
		c.Log.LogFormat = strings.ToLower(env)
	}
	if env := os.Getenv("AESFILE_LOG_FILE"); env != "" {
		c.Log.FilePath = env
	}
}

// Validate checks the struct tags of the config and its logger settings.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for Config: %w", err)
	}
	return c.Log.Validate()
}

// EffectiveWorkers resolves Workers, where 0 means one worker per CPU.
func (c *Config) EffectiveWorkers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// SaveExample writes the default configuration to path.
func SaveExample(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
