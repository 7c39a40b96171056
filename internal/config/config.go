// Package config provides Viper-based configuration loading for the objective tracker.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Catalog drivers.
const (
	DriverEmbedded = "embedded"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// CatalogConfig selects where the shop catalog is loaded from.
type CatalogConfig struct {
	// Driver is one of "embedded", "file", "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// Path is the catalog file for the file driver or the database file for sqlite.
	Path string `mapstructure:"path"`
	// ValidateSchema enables JSON-schema validation of file catalogs.
	ValidateSchema bool `mapstructure:"validate_schema"`
	// SchemaPath overrides the embedded catalog schema when non-empty.
	SchemaPath string `mapstructure:"schema_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// ConnectTimeout bounds connecting to and pinging the database. Zero uses
	// DefaultConnectTimeout.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DefaultConnectTimeout applies when database.connect_timeout is zero.
const DefaultConnectTimeout = 5 * time.Second

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Validate checks the database settings on their own, for tools that always
// need a database regardless of the catalog driver.
func (d DatabaseConfig) Validate() error {
	return validateDatabase(d)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ScriptingConfig holds Lua seed script settings.
type ScriptingConfig struct {
	// SeedDir is the directory of *.lua seed scripts. Empty uses the embedded seeds.
	SeedDir string `mapstructure:"seed_dir"`
	// InstructionLimit caps the VM instructions a seed script may execute.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// NavigatorConfig holds the distance bands used for guidance.
type NavigatorConfig struct {
	// NearTiles is the exclusive upper bound of the near band.
	NearTiles int `mapstructure:"near_tiles"`
	// MediumTiles is the exclusive upper bound of the medium band.
	MediumTiles int `mapstructure:"medium_tiles"`
}

// Config is the top-level application configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Navigator NavigatorConfig `mapstructure:"navigator"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCatalog(c.Catalog); err != nil {
		errs = append(errs, err.Error())
	}
	// The database section only matters when the catalog lives in PostgreSQL.
	if c.Catalog.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateNavigator(c.Navigator); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCatalog(c CatalogConfig) error {
	switch c.Driver {
	case DriverEmbedded, DriverPostgres:
		return nil
	case DriverFile, DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("catalog.path must not be empty for driver %q", c.Driver)
		}
		return nil
	default:
		return fmt.Errorf("catalog.driver must be one of [embedded, file, postgres, sqlite], got %q", c.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.ConnectTimeout < 0 {
		errs = append(errs, fmt.Sprintf("database.connect_timeout must be >= 0, got %s", d.ConnectTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 1 {
		return fmt.Errorf("scripting.instruction_limit must be >= 1, got %d", s.InstructionLimit)
	}
	return nil
}

func validateNavigator(n NavigatorConfig) error {
	var errs []string
	if n.NearTiles < 1 {
		errs = append(errs, fmt.Sprintf("navigator.near_tiles must be >= 1, got %d", n.NearTiles))
	}
	if n.MediumTiles <= n.NearTiles {
		errs = append(errs, fmt.Sprintf("navigator.medium_tiles must exceed navigator.near_tiles (%d), got %d", n.NearTiles, n.MediumTiles))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with OBJTRACK_ prefix
	v.SetEnvPrefix("OBJTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.driver", DriverEmbedded)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.validate_schema", true)
	v.SetDefault("catalog.schema_path", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "objtrack")
	v.SetDefault("database.password", "objtrack")
	v.SetDefault("database.name", "objtrack")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scripting.seed_dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("navigator.near_tiles", 10)
	v.SetDefault("navigator.medium_tiles", 50)
}
