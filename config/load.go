package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. NAMESCAN_SEARCH_POOL_SIZE.
const EnvPrefix = "NAMESCAN"

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is the YAML file to read. Required.
	ConfigFile string
	// EnvFile is an optional dotenv file loaded before reading the config.
	// Variables already set in the environment win.
	EnvFile string
}

// Load reads the configuration file, applies environment overrides, expands
// ${VAR} references in connection secrets and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
			}
			slog.Debug("env file not found, skipping", "path", opts.EnvFile)
		}
	}

	v := viper.New()
	v.SetConfigFile(opts.ConfigFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", opts.ConfigFile, err)
	}

	cfg.expandSecrets()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers scalar defaults so environment overrides apply even
// when the file omits the key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("search.pool_size", d.Search.PoolSize)
	v.SetDefault("search.probability", d.Search.Probability)
	v.SetDefault("search.connect_timeout", d.Search.ConnectTimeout)
	v.SetDefault("search.connect_attempts", d.Search.ConnectAttempts)
	v.SetDefault("search.retry_delay", d.Search.RetryDelay)
	v.SetDefault("audit.backend", d.Audit.Backend)
	v.SetDefault("audit.path", d.Audit.Path)
	v.SetDefault("audit.source", d.Audit.Source)
	v.SetDefault("audit.table", d.Audit.Table)
	v.SetDefault("http.addr", d.HTTP.Addr)
}

// expandSecrets resolves ${VAR} references so credentials never have to live
// in the config file itself.
func (c *Config) expandSecrets() {
	for i := range c.Sources {
		s := &c.Sources[i]
		s.Host = os.ExpandEnv(s.Host)
		s.Username = os.ExpandEnv(s.Username)
		s.Password = os.ExpandEnv(s.Password)
		s.DSN = os.ExpandEnv(s.DSN)
		s.Path = os.ExpandEnv(s.Path)
	}
}
