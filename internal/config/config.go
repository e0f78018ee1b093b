// Package config resolves process configuration from flags, environment
// variables and an optional luaexport.yaml, in that priority order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Skino1337/PyPoE/internal/repository"
)

const envPrefix = "LUAEXPORT"

// Source selects the repository loader and its options.
type Source struct {
	Type     string `mapstructure:"type"`
	Path     string `mapstructure:"path"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Config is the resolved process configuration.
type Config struct {
	Language     string `mapstructure:"language"`
	OutDir       string `mapstructure:"out_dir"`
	Schema       string `mapstructure:"schema"`
	Translations string `mapstructure:"translations"`
	Corrections  string `mapstructure:"corrections"`
	LogDB        string `mapstructure:"log_db"`
	KeepRuns     int    `mapstructure:"keep_runs"`
	Verify       bool   `mapstructure:"verify"`
	Schedule     string `mapstructure:"schedule"`
	Source       Source `mapstructure:"source"`
}

var defaults = map[string]any{
	"language":        "English",
	"out_dir":         "out",
	"schema":          "",
	"translations":    "",
	"corrections":     "",
	"log_db":          "",
	"keep_runs":       0,
	"verify":          false,
	"schedule":        "",
	"source.type":     "json_file",
	"source.path":     "",
	"source.driver":   "",
	"source.host":     "",
	"source.port":     0,
	"source.database": "",
	"source.username": "",
	"source.password": "",
	"source.sslmode":  "disable",
}

// Flags maps command line flag names onto config keys.
var Flags = map[string]string{
	"language":     "language",
	"out-dir":      "out_dir",
	"schema":       "schema",
	"translations": "translations",
	"corrections":  "corrections",
	"log-db":       "log_db",
	"keep-runs":    "keep_runs",
	"verify":       "verify",
	"source":       "source.type",
	"source-path":  "source.path",
}

// RegisterFlags declares the persistent flags Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "configuration file (default ./luaexport.yaml)")
	flags.StringP("language", "l", "English", "language of the exported data")
	flags.StringP("out-dir", "o", "out", "directory the artifacts are written to")
	flags.String("schema", "", "YAML file declaring table references")
	flags.String("translations", "", "JSON stat translation file")
	flags.String("corrections", "", "YAML file extending the built-in correction tables")
	flags.String("log-db", "", "SQLite file recording export runs")
	flags.Int("keep-runs", 0, "runs kept per dataset in the run log after each export (0 keeps all)")
	flags.Bool("verify", false, "load every artifact in a Lua VM before writing it")
	flags.String("source", "json_file", "repository loader: json_file | csv_dir | xlsx | database")
	flags.String("source-path", "", "file or directory the repository is loaded from")
}

// Load resolves the configuration. flags may be nil.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	configFile := ""
	if flags != nil {
		for name, key := range Flags {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		configFile, _ = flags.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("luaexport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("config: language is required")
	}
	if c.KeepRuns < 0 {
		return fmt.Errorf("config: keep_runs must not be negative")
	}
	switch c.Source.Type {
	case "json_file", "csv_dir", "xlsx":
	case "database":
		if c.Source.Driver == "" {
			return fmt.Errorf("config: source.driver is required for the database source")
		}
	default:
		return fmt.Errorf("config: unknown source type %q", c.Source.Type)
	}
	return nil
}

// LoaderConfig returns the options passed to the repository loader.
func (c *Config) LoaderConfig() repository.LoaderConfig {
	if c.Source.Type == "database" {
		host := c.Source.Host
		if host == "" {
			// SQLite files are usually given as a path.
			host = c.Source.Path
		}
		return repository.LoaderConfig{
			"driver":   c.Source.Driver,
			"host":     host,
			"port":     c.Source.Port,
			"database": c.Source.Database,
			"username": c.Source.Username,
			"password": c.Source.Password,
			"sslmode":  c.Source.SSLMode,
		}
	}
	return repository.LoaderConfig{"path": c.Source.Path}
}

// WatchPaths lists the local files whose changes should trigger a re-export.
func (c *Config) WatchPaths() []string {
	var paths []string
	if c.Source.Type != "database" || c.Source.Driver == "sqlite" {
		if p := c.Source.Path; p != "" {
			paths = append(paths, p)
		} else if c.Source.Driver == "sqlite" && c.Source.Host != "" {
			paths = append(paths, c.Source.Host)
		}
	}
	for _, p := range []string{c.Schema, c.Translations, c.Corrections} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
