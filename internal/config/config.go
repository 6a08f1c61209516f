//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-wmsgen.
// Configuration is loaded from config files, a small set of environment
// variables (optionally from .env files) and CLI flags. CLI flags take
// precedence over environment variables, which take precedence over config
// file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
)

// DateLayout is the layout of all configured dates.
const DateLayout = "2006-01-02"

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "WMSGEN"

// envKeys are the config keys that may come from the environment. Secrets
// and connection targets live here so they can stay out of YAML files.
var envKeys = []string{
	"connection",
	"log_level",
	"textgen.mode",
	"textgen.base_url",
	"textgen.api_key",
	"textgen.model",
}

// Config holds all configuration for pgedge-wmsgen.
type Config struct {
	// Connection is the database target: a PostgreSQL connection string
	// (postgres://...) or a SQLite file (sqlite://path or file:path).
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFile additionally appends JSON log lines to this file.
	LogFile string `mapstructure:"log_file"`

	// Generate holds configuration for dataset generation.
	Generate GenerateConfig `mapstructure:"generate"`

	// TextGen holds configuration for the name generation service.
	TextGen TextGenConfig `mapstructure:"textgen"`

	// Load holds configuration for the load pipeline.
	Load LoadConfig `mapstructure:"load"`
}

// GenerateConfig holds configuration for dataset generation.
type GenerateConfig struct {
	// Seed makes a run reproducible. Zero picks a time-based seed.
	Seed uint64 `mapstructure:"seed"`

	// StartDate and EndDate bound every primary event date (inclusive).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// OutputDir receives one CSV file per table.
	OutputDir string `mapstructure:"output_dir"`

	// Tables holds per-table row counts and distributions.
	Tables TablesConfig `mapstructure:"tables"`
}

// TablesConfig holds the settings of every generated table.
type TablesConfig struct {
	Vehicles    TableConfig `mapstructure:"vehicle_details"`
	Suppliers   TableConfig `mapstructure:"supplier_details"`
	Customers   TableConfig `mapstructure:"customer_details"`
	Employees   TableConfig `mapstructure:"employee_details"`
	Products    TableConfig `mapstructure:"product_details"`
	Inbound     TableConfig `mapstructure:"inbound_log"`
	Outbound    TableConfig `mapstructure:"outbound_log"`
	Returns     TableConfig `mapstructure:"return_handling_log"`
	VehicleNCR  TableConfig `mapstructure:"vehicle_ncr_log"`
	Hygiene     TableConfig `mapstructure:"vehicle_hygiene_log"`
	Complaints  TableConfig `mapstructure:"complaint_handling_log"`
	CycleCounts TableConfig `mapstructure:"cycle_count_log"`
	Disposals   TableConfig `mapstructure:"product_disposal_log"`
	Incidents   TableConfig `mapstructure:"warehouse_incident_reporting_log"`
}

// TableConfig holds the settings of one generated table. Fields that do
// not apply to a table are ignored.
type TableConfig struct {
	// Rows is the number of rows to generate.
	Rows int `mapstructure:"rows"`

	// Distribution is an exact categorical distribution; counts must sum
	// to Rows.
	Distribution []datagen.CategoryCount `mapstructure:"distribution"`

	// Weights is a per-row weighted choice (counts are relative weights).
	Weights []datagen.CategoryCount `mapstructure:"weights"`

	// Anomalies is the number of rows that carry a quantity mismatch.
	Anomalies int `mapstructure:"anomalies"`

	// PoolSize sizes a shared value pool (supplier countries).
	PoolSize int `mapstructure:"pool_size"`
}

// TextGenConfig holds configuration for the name generation service.
type TextGenConfig struct {
	// Mode selects the generator: faker (offline) or openai (any
	// OpenAI-compatible endpoint, including Ollama).
	Mode string `mapstructure:"mode"`

	// BaseURL is the API base URL for openai mode.
	BaseURL string `mapstructure:"base_url"`

	// APIKey is the API key for openai mode.
	APIKey string `mapstructure:"api_key"`

	// Model is the chat model name.
	Model string `mapstructure:"model"`

	// CacheSize bounds the number of memoized responses.
	CacheSize int `mapstructure:"cache_size"`

	// TimeoutSeconds bounds a single generation request.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoadConfig holds configuration for the load pipeline.
type LoadConfig struct {
	// InputDir is where the per-table CSV files are read from.
	InputDir string `mapstructure:"input_dir"`

	// BatchSize is the maximum number of rows per insert statement.
	BatchSize int `mapstructure:"batch_size"`

	// CreateSchema creates missing tables before loading.
	CreateSchema bool `mapstructure:"create_schema"`

	// DropExisting drops all tables before loading.
	DropExisting bool `mapstructure:"drop_existing"`

	// Strict turns any failed table into a non-zero exit.
	Strict bool `mapstructure:"strict"`
}

// ByName maps each table name to its settings.
func (t TablesConfig) ByName() map[string]TableConfig {
	return map[string]TableConfig{
		"vehicle_details":                  t.Vehicles,
		"supplier_details":                 t.Suppliers,
		"customer_details":                 t.Customers,
		"employee_details":                 t.Employees,
		"product_details":                  t.Products,
		"inbound_log":                      t.Inbound,
		"outbound_log":                     t.Outbound,
		"return_handling_log":              t.Returns,
		"vehicle_ncr_log":                  t.VehicleNCR,
		"vehicle_hygiene_log":              t.Hygiene,
		"complaint_handling_log":           t.Complaints,
		"cycle_count_log":                  t.CycleCounts,
		"product_disposal_log":             t.Disposals,
		"warehouse_incident_reporting_log": t.Incidents,
	}
}

// Check rejects negative sizes and weights. The returned error is a
// *datagen.ConfigurationError without a table name.
func (c TableConfig) Check() error {
	switch {
	case c.Rows < 0:
		return &datagen.ConfigurationError{Reason: fmt.Sprintf("rows must not be negative, got %d", c.Rows)}
	case c.Anomalies < 0:
		return &datagen.ConfigurationError{Reason: fmt.Sprintf("anomalies must not be negative, got %d", c.Anomalies)}
	case c.PoolSize < 0:
		return &datagen.ConfigurationError{Reason: fmt.Sprintf("pool_size must not be negative, got %d", c.PoolSize)}
	}
	for _, w := range c.Weights {
		if w.Count < 0 {
			return &datagen.ConfigurationError{Reason: fmt.Sprintf("weight of %q must not be negative", w.Category)}
		}
	}
	return nil
}

// Check runs TableConfig.Check on every table, naming the table in the
// error.
func (t TablesConfig) Check() error {
	byName := t.ByName()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := byName[name].Check(); err != nil {
			return datagen.ForTable(err, name)
		}
	}
	return nil
}

func counts(pairs ...any) []datagen.CategoryCount {
	out := make([]datagen.CategoryCount, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, datagen.CategoryCount{
			Category: pairs[i].(string),
			Count:    pairs[i+1].(int),
		})
	}
	return out
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Generate: GenerateConfig{
			StartDate: "2022-01-01",
			EndDate:   "2024-12-31",
			OutputDir: "data",
			Tables:    DefaultTables(),
		},
		TextGen: TextGenConfig{
			Mode:           "faker",
			BaseURL:        "http://localhost:11434/v1",
			Model:          "mistral",
			CacheSize:      1000,
			TimeoutSeconds: 120,
		},
		Load: LoadConfig{
			InputDir:     "data",
			BatchSize:    1000,
			CreateSchema: true,
		},
	}
}

// DefaultTables returns the default table sizes and distributions.
func DefaultTables() TablesConfig {
	return TablesConfig{
		Vehicles: TableConfig{
			Rows:         40,
			Distribution: counts("10 ton", 20, "12 ton", 12, "20 ton", 8),
		},
		Suppliers: TableConfig{Rows: 100, PoolSize: 20},
		Customers: TableConfig{Rows: 100},
		Employees: TableConfig{
			Rows: 65,
			Distribution: counts(
				"Manager", 5,
				"WH labour - inbound", 30,
				"WH labour - outbound", 30,
			),
		},
		Products: TableConfig{Rows: 1000},
		Inbound: TableConfig{
			Rows:         25000,
			Distribution: counts("Accepted", 22500, "Rejected", 2000, "On-hold", 500),
		},
		Outbound:   TableConfig{Rows: 25000, Anomalies: 750},
		Returns:    TableConfig{Rows: 1000},
		VehicleNCR: TableConfig{Rows: 200, Distribution: counts("CA completed", 100, "CA pending", 100)},
		Hygiene:    TableConfig{Weights: counts("Yes", 98, "No", 2)},
		Complaints: TableConfig{
			Rows:         125,
			Distribution: counts("Resolved", 100, "Pending", 25),
		},
		CycleCounts: TableConfig{Rows: 2500, Anomalies: 125},
		Disposals: TableConfig{
			Rows:         700,
			Distribution: counts("Approved", 679, "Pending", 21),
		},
		Incidents: TableConfig{Weights: counts("0", 70, "1", 20, "2", 7, "3", 3)},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-wmsgen.yaml
// 3. ~/.config/pgedge-wmsgen/config.yaml
func Load(configFile string) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-wmsgen")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-wmsgen"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// DateRange parses StartDate and EndDate.
func (g GenerateConfig) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, g.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", g.StartDate, err)
	}
	end, err := time.Parse(DateLayout, g.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", g.EndDate, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date %s is before start_date %s", g.EndDate, g.StartDate)
	}
	return start, end, nil
}

// Timeout returns the request timeout as a duration.
func (t TextGenConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Validate checks settings shared by all commands.
func (c *Config) Validate() error {
	switch c.TextGen.Mode {
	case "faker", "openai":
	default:
		return fmt.Errorf("textgen mode must be 'faker' or 'openai'")
	}
	if c.TextGen.CacheSize < 1 {
		return fmt.Errorf("textgen cache_size must be at least 1")
	}
	if c.TextGen.TimeoutSeconds < 1 {
		return fmt.Errorf("textgen timeout_seconds must be at least 1")
	}
	return nil
}

// ValidateGenerate checks configuration required for dataset generation.
func (c *Config) ValidateGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, _, err := c.Generate.DateRange(); err != nil {
		return err
	}
	if err := c.Generate.Tables.Check(); err != nil {
		return err
	}
	if c.Generate.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.TextGen.Mode == "openai" && c.TextGen.BaseURL == "" && c.TextGen.APIKey == "" {
		return fmt.Errorf("openai mode needs a base_url or an api_key")
	}
	return nil
}

// ValidateLoad checks configuration required for loading.
func (c *Config) ValidateLoad() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}
