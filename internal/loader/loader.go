// Package loader resolves the runtime configuration from its four sources.
// Precedence, highest first: command-line flags, environment variables, the
// YAML config file, built-in platform defaults.
package loader

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/logging"
	"github.com/aurasys/aura/internal/telemetry"
)

// Flags carries the command-line values that participate in resolution.
// Zero values mean "not set on the command line".
type Flags struct {
	DBPath           string
	RetentionSeconds float64
	IntervalSeconds  float64
	ConfigPath       string

	// NoPersist disables the snapshot log entirely; the resolved config
	// carries no path and persistence is reported as disabled.
	NoPersist bool
}

// FileConfig is the YAML config file layout.
type FileConfig struct {
	Persistence struct {
		DBPath           string  `yaml:"db_path"`
		RetentionSeconds float64 `yaml:"retention_seconds"`
	} `yaml:"persistence"`

	Poller struct {
		IntervalSeconds float64 `yaml:"interval_seconds"`
	} `yaml:"poller"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

// RuntimeConfig is the fully resolved configuration. DBSource names the
// layer that decided the snapshot log path: "flag", "env", "file",
// "default", or "disabled".
type RuntimeConfig struct {
	DBPath              string
	RetentionSeconds    float64
	PollIntervalSeconds float64
	PersistenceEnabled  bool
	DBSource            string
	LogLevel            string
	LogJSON             bool
}

// Validate checks the resolved values.
func (c *RuntimeConfig) Validate() error {
	if c.PersistenceEnabled && c.DBPath == "" {
		return errors.ErrEmptyPath
	}
	if !telemetry.IsFinite(c.RetentionSeconds) || c.RetentionSeconds <= 0 {
		return errors.NewInvalidValue("retention_seconds", c.RetentionSeconds, errors.ErrInvalidRetention)
	}
	if !telemetry.IsFinite(c.PollIntervalSeconds) || c.PollIntervalSeconds <= 0 {
		return errors.NewInvalidValue("interval_seconds", c.PollIntervalSeconds, errors.ErrInvalidInterval)
	}
	return nil
}

// LoadFile reads and parses the config file. A missing file is not an
// error; it simply contributes nothing to resolution.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return &cfg, nil
}

// Resolve merges flags, environment, file, and defaults into a validated
// RuntimeConfig.
func Resolve(flags Flags) (*RuntimeConfig, error) {
	log := logging.Component("loader")

	configPath := flags.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	file, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		DBPath:              DefaultDBPath(),
		RetentionSeconds:    config.DefaultRetentionSeconds,
		PollIntervalSeconds: config.DefaultPollIntervalSeconds,
		PersistenceEnabled:  true,
		DBSource:            "default",
		LogLevel:            "info",
	}

	// File layer.
	if file.Persistence.DBPath != "" {
		cfg.DBPath = file.Persistence.DBPath
		cfg.DBSource = "file"
	}
	if file.Persistence.RetentionSeconds != 0 {
		cfg.RetentionSeconds = file.Persistence.RetentionSeconds
	}
	if file.Poller.IntervalSeconds != 0 {
		cfg.PollIntervalSeconds = file.Poller.IntervalSeconds
	}
	if file.Logging.Level != "" {
		cfg.LogLevel = file.Logging.Level
	}
	cfg.LogJSON = file.Logging.JSON

	// Environment layer.
	if v := os.Getenv(config.EnvDBPath); v != "" {
		cfg.DBPath = v
		cfg.DBSource = "env"
	}
	if v := os.Getenv(config.EnvRetentionSeconds); v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Warn("ignoring unparsable retention override",
				"var", config.EnvRetentionSeconds, "value", v)
		} else {
			cfg.RetentionSeconds = seconds
		}
	}

	// Flag layer.
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
		cfg.DBSource = "flag"
	}
	if flags.RetentionSeconds != 0 {
		cfg.RetentionSeconds = flags.RetentionSeconds
	}
	if flags.IntervalSeconds != 0 {
		cfg.PollIntervalSeconds = flags.IntervalSeconds
	}

	if flags.NoPersist {
		cfg.DBPath = ""
		cfg.PersistenceEnabled = false
		cfg.DBSource = "disabled"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultDBPath returns the platform-conventional snapshot log location.
func DefaultDBPath() string {
	return filepath.Join(dataDir(), config.DBFileName)
}

// DefaultConfigPath returns the platform-conventional config file location.
func DefaultConfigPath() string {
	return filepath.Join(dataDir(), config.ConfigFileName)
}

func dataDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, config.AppDirName)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", config.AppDirName)
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, config.AppDirName)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", config.AppDirName)
		}
	}
	// Last resort: current directory.
	return config.AppDirName
}
