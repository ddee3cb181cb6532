// Package config loads thoughtpad settings from defaults, an optional YAML
// file, a .env file and THOUGHTPAD_* environment variables, in increasing
// order of precedence. Bound command-line flags win over all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix      = "THOUGHTPAD"
	configFileName = "config"
	configFileType = "yaml"

	// Config keys
	KeyDBPath            = "db_path"
	KeyWorkers           = "workers"
	KeyMaxBindParameters = "max_bind_parameters"
	KeyLogLevel          = "log.level"
	KeyLogFile           = "log.file"
	KeyLogJSON           = "log.json"

	defaultMaxBindParameters = 999
	// SQLite's compile-time ceiling on host parameters since 3.32
	maxBindParametersCeiling = 32766
)

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"db":        KeyDBPath,
	"workers":   KeyWorkers,
	"log-level": KeyLogLevel,
	"log-file":  KeyLogFile,
	"log-json":  KeyLogJSON,
	"max-binds": KeyMaxBindParameters,
}

// Config holds the resolved settings
type Config struct {
	DBPath            string
	Workers           int
	MaxBindParameters int
	Log               LogConfig
}

// LogConfig controls the logger built by the logging package
type LogConfig struct {
	Level string
	File  string // empty logs to stderr only
	JSON  bool
}

// Options selects where Load looks for settings
type Options struct {
	ConfigFile string         // explicit YAML file; empty searches the config dir
	EnvFile    string         // .env file; empty means ".env" in the working directory
	Flags      *pflag.FlagSet // flags named in flagKeys override every other source
}

// DefaultDir returns ~/.thoughtpad
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thoughtpad"
	}
	return filepath.Join(home, ".thoughtpad")
}

// Load resolves the configuration
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is not an error
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyDBPath, filepath.Join(DefaultDir(), "thoughtpad.db"))
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyMaxBindParameters, defaultMaxBindParameters)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogJSON, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		DBPath:            expandHome(v.GetString(KeyDBPath)),
		Workers:           v.GetInt(KeyWorkers),
		MaxBindParameters: v.GetInt(KeyMaxBindParameters),
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  expandHome(v.GetString(KeyLogFile)),
			JSON:  v.GetBool(KeyLogJSON),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the store or the pool cannot run with
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxBindParameters <= 0 || c.MaxBindParameters > maxBindParametersCeiling {
		return fmt.Errorf("max_bind_parameters must be in 1..%d, got %d", maxBindParametersCeiling, c.MaxBindParameters)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
