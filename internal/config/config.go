//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-scetl.
// Configuration is loaded from config files, two environment variables
// (SCETL_SOURCE and SCETL_DSN) and CLI flags. CLI flags take precedence
// over environment variables, which take precedence over config file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Environment variables read by Load.
const (
	EnvSource = "SCETL_SOURCE"
	EnvDSN    = "SCETL_DSN"
)

// Defaults that are also used outside this package.
const (
	DefaultSourcePath = "data/DataCoSupplyChainDataset.csv"
	DefaultSQLitePath = "database/supply_chain_dw.db"
	DefaultLogFile    = "pipeline.log"
	DefaultExportDir  = "powerbi_data"
)

// Config holds all configuration for pgedge-scetl.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFile receives JSON logs in addition to the console. Empty disables it.
	LogFile string `mapstructure:"log_file"`

	Source    SourceConfig    `mapstructure:"source"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Report    ReportConfig    `mapstructure:"report"`
	Export    ExportConfig    `mapstructure:"export"`
	Sample    SampleConfig    `mapstructure:"sample"`
}

// SourceConfig describes the input file.
type SourceConfig struct {
	// Path is the delimited source file.
	Path string `mapstructure:"path"`

	// Delimiter is a single field separator character.
	Delimiter string `mapstructure:"delimiter" validate:"delimiter"`

	// InvalidBytes is the policy for invalid UTF-8: latin1, replace or drop.
	InvalidBytes string `mapstructure:"invalid_bytes" validate:"oneof=latin1 replace drop"`
}

// WarehouseConfig describes the load destination.
type WarehouseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`

	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string `mapstructure:"dsn"`

	// BatchSize is the number of rows per insert batch.
	BatchSize int `mapstructure:"batch_size" validate:"gte=1"`
}

// ReportConfig holds defaults for the report command.
type ReportConfig struct {
	// Status restricts KPIs to one order status. Empty means all.
	Status string `mapstructure:"status"`

	// Top limits the late-risk-by-region breakdown.
	Top int `mapstructure:"top" validate:"gte=1"`
}

// ExportConfig holds configuration for the export command.
type ExportConfig struct {
	// Dir receives the exported files.
	Dir string `mapstructure:"dir" validate:"required"`

	// XLSX also writes a workbook with one sheet per table.
	XLSX bool `mapstructure:"xlsx"`
}

// SampleConfig holds configuration for the sample command.
type SampleConfig struct {
	// Out is the file written. Defaults to the source path.
	Out string `mapstructure:"out"`

	// Rows is the number of data rows.
	Rows int `mapstructure:"rows" validate:"gte=0"`

	// Seed makes output reproducible. Zero is random.
	Seed uint64 `mapstructure:"seed"`

	// DuplicateRate is the share of rows repeating an order item id.
	DuplicateRate float64 `mapstructure:"duplicate_rate" validate:"gte=0,lt=1"`

	// MalformedRate is the share of rows with an unparseable price.
	MalformedRate float64 `mapstructure:"malformed_rate" validate:"gte=0,lt=1"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  DefaultLogFile,
		Source: SourceConfig{
			Path:         DefaultSourcePath,
			Delimiter:    ",",
			InvalidBytes: "latin1",
		},
		Warehouse: WarehouseConfig{
			Driver:    "sqlite",
			BatchSize: 1000,
		},
		Report: ReportConfig{
			Status: "COMPLETE",
			Top:    10,
		},
		Export: ExportConfig{
			Dir:  DefaultExportDir,
			XLSX: true,
		},
		Sample: SampleConfig{
			Rows:          10000,
			DuplicateRate: 0.01,
			MalformedRate: 0.01,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-scetl.yaml
// 3. ~/.config/pgedge-scetl/pgedge-scetl.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-scetl")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-scetl"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Only these two keys come from the environment
	_ = v.BindEnv("source.path", EnvSource)
	_ = v.BindEnv("warehouse.dsn", EnvDSN)

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// WarehouseDSN returns the configured DSN, falling back to the default
// SQLite file for the sqlite driver.
func (c *Config) WarehouseDSN() string {
	if c.Warehouse.DSN == "" && c.Warehouse.Driver == "sqlite" {
		return DefaultSQLitePath
	}
	return c.Warehouse.DSN
}

// DelimiterRune returns the source delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Source.Delimiter)
	return r
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if utf8.RuneCountInString(s) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
	})
	return v
}

// Validate checks field constraints common to every command.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldMessage renders one validation failure using the config key name.
func fieldMessage(fe validator.FieldError) string {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", key, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "delimiter":
		return fmt.Sprintf("%s must be a single character other than a quote or newline", key)
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

// configKey turns a validator namespace such as "Config.Warehouse.BatchSize"
// into the config key "warehouse.batch_size".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	switch s {
	case "DSN":
		return "dsn"
	case "XLSX":
		return "xlsx"
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateWarehouse checks configuration required to reach the warehouse.
func (c *Config) ValidateWarehouse() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.WarehouseDSN() == "" {
		return fmt.Errorf("warehouse dsn is required for driver %s (set --dsn or %s)", c.Warehouse.Driver, EnvDSN)
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.ValidateWarehouse(); err != nil {
		return err
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source path is required (set --source or %s)", EnvSource)
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	return c.ValidateWarehouse()
}

// ValidateSample checks configuration required for the sample command.
func (c *Config) ValidateSample() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Sample.Out == "" && c.Source.Path == "" {
		return fmt.Errorf("sample output path is required")
	}
	return nil
}

// SampleOut returns the sample output path, defaulting to the source path.
func (c *Config) SampleOut() string {
	if c.Sample.Out != "" {
		return c.Sample.Out
	}
	return c.Source.Path
}
