// Package config provides configuration loading and validation for splitdepth.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
)

// Sentinel validation errors.
var (
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidMode         = errors.New("unknown solver mode")
	ErrInvalidMaxLength    = errors.New("solver max length out of range")
	ErrInvalidFormat       = errors.New("unknown output format")
	ErrInvalidCacheEntries = errors.New("server cache entries must not be negative")
	ErrInvalidLogFormat    = errors.New("unknown logging format")
	ErrInvalidTimeout      = errors.New("server timeouts must be positive")
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. SPLITDEPTH_SERVER_PORT for server.port.
const EnvPrefix = "SPLITDEPTH"

// DotEnvFile is the dotenv file loaded by [LoadDotEnv] when no path is given.
const DotEnvFile = ".env"

// Default configuration values.
const (
	defaultPort         = 8080
	defaultHost         = "127.0.0.1"
	defaultCacheEntries = 1024
	defaultFormat       = "text"
	defaultLogFormat    = "text"
	maxPort             = 65535
)

// Output formats accepted in output.format. Kept in sync with pkg/render.
var outputFormats = []string{"text", "json", "yaml", "table"}

var logFormats = []string{"text", "json"}

// Config holds all configuration for splitdepth.
type Config struct {
	Solver  SolverConfig  `mapstructure:"solver"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SolverConfig selects the evaluator and the accepted sequence length.
type SolverConfig struct {
	Mode      string `mapstructure:"mode"`
	MaxLength int    `mapstructure:"max_length"`
}

// OutputConfig holds rendering settings for the CLI.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// ServerConfig holds HTTP service configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	CacheEntries int           `mapstructure:"cache_entries"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for splitdepth.yaml in the working directory,
// ./config and /etc/splitdepth; finding none is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("splitdepth")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/splitdepth")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given dotenv files into the
// process environment without overriding variables that are already set.
// With no paths it loads [DotEnvFile]; a missing default file is ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load(DotEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", DotEnvFile, err)
		}

		return nil
	}

	err := godotenv.Load(paths...)
	if err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}

	return nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("solver.mode", string(intervaldp.ModeMemo))
	viperCfg.SetDefault("solver.max_length", intervaldp.MaxLen)

	viperCfg.SetDefault("output.format", defaultFormat)
	viperCfg.SetDefault("output.color", true)

	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.read_timeout", "10s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.cache_entries", defaultCacheEntries)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", defaultLogFormat)
}

func validateConfig(config *Config) error {
	if _, err := intervaldp.ParseMode(config.Solver.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, config.Solver.Mode)
	}

	if config.Solver.MaxLength < 0 || config.Solver.MaxLength > intervaldp.MaxLen {
		return fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidMaxLength, config.Solver.MaxLength, intervaldp.MaxLen)
	}

	if !slices.Contains(outputFormats, config.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, config.Output.Format)
	}

	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.ReadTimeout <= 0 || config.Server.WriteTimeout <= 0 || config.Server.IdleTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if config.Server.CacheEntries < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheEntries, config.Server.CacheEntries)
	}

	if !slices.Contains(logFormats, config.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}
