// Package config provides configuration structures and loading for ParcelLink.
package config

import (
	"fmt"
	"strings"
)

// Source kinds a dataset can be loaded from.
const (
	SourceCSV      = "csv"
	SourceDatabase = "database"
)

// Database drivers supported for dataset loading and result persistence.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DefaultIdentifierColumns are the candidate parcel identifier columns used
// when a dataset type declares none.
var DefaultIdentifierColumns = []string{"이동전_필지코드", "이동후_필지코드", "필지코드", "PNU"}

// Config represents the complete application configuration.
type Config struct {
	Datasets []DatasetConfig `yaml:"datasets" mapstructure:"datasets"`
	Linkage  LinkageConfig   `yaml:"linkage" mapstructure:"linkage"`
	Output   OutputConfig    `yaml:"output" mapstructure:"output"`
	Database DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Logging  LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// DatasetConfig describes one tabular input taking part in linkage.
type DatasetConfig struct {
	Name   string `yaml:"name" mapstructure:"name"`
	Type   string `yaml:"type" mapstructure:"type"`     // key into linkage.dataset_types
	Source string `yaml:"source" mapstructure:"source"` // csv or database
	Path   string `yaml:"path" mapstructure:"path"`     // CSV file path
	Table  string `yaml:"table" mapstructure:"table"`   // database table name
}

// LinkageConfig controls identifier linkage traversal.
type LinkageConfig struct {
	DefaultColumns []string            `yaml:"default_columns" mapstructure:"default_columns"`
	DatasetTypes   map[string][]string `yaml:"dataset_types" mapstructure:"dataset_types"` // type -> ordered candidate columns
	MaxDepth       int                 `yaml:"max_depth" mapstructure:"max_depth"`         // -1 means unbounded
	Strategy       string              `yaml:"strategy" mapstructure:"strategy"`           // index or scan
}

// OutputConfig controls how match reports are written.
type OutputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	WriteCSV     bool   `yaml:"write_csv" mapstructure:"write_csv"`
	SaveDatabase bool   `yaml:"save_database" mapstructure:"save_database"`
	TablePrefix  string `yaml:"table_prefix" mapstructure:"table_prefix"`
	Color        bool   `yaml:"color" mapstructure:"color"`
	MaxCellWidth int    `yaml:"max_cell_width" mapstructure:"max_cell_width"` // 0 disables truncation
	Verify       string `yaml:"verify" mapstructure:"verify"`                 // count, sha256, or skip
	LockTimeout  int    `yaml:"lock_timeout" mapstructure:"lock_timeout"`     // seconds to wait for the MySQL result lock
}

// DatabaseConfig represents the SQL connection used for database datasets and result tables.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql or sqlite
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	Path               string `yaml:"path" mapstructure:"path"` // sqlite file
	TLS                string `yaml:"tls" mapstructure:"tls"`   // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
// Slices and maps are left nil so that values from a config file replace
// them instead of merging element by element.
func DefaultConfig() *Config {
	return &Config{
		Linkage: LinkageConfig{
			MaxDepth: -1,
			Strategy: "index",
		},
		Output: OutputConfig{
			Dir:          "./out/find",
			WriteCSV:     true,
			SaveDatabase: false,
			TablePrefix:  "link_",
			Color:        true,
			MaxCellWidth: 24,
			Verify:       "count",
			LockTimeout:  10,
		},
		Database: DatabaseConfig{
			Driver:             DriverMySQL,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// GetDataset retrieves a dataset configuration by name.
func (c *Config) GetDataset(name string) (*DatasetConfig, error) {
	for i := range c.Datasets {
		if c.Datasets[i].Name == name {
			return &c.Datasets[i], nil
		}
	}
	return nil, fmt.Errorf("dataset %q not found in configuration", name)
}

// ListDatasets returns all dataset names in declaration order.
func (c *Config) ListDatasets() []string {
	names := make([]string, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		names = append(names, ds.Name)
	}
	return names
}

// ColumnsFor returns the ordered candidate identifier columns declared for a
// dataset type. Unknown or empty types fall back to linkage.default_columns,
// then to DefaultIdentifierColumns.
func (c *Config) ColumnsFor(datasetType string) []string {
	if cols, ok := c.lookupType(datasetType); ok {
		return cols
	}
	if len(c.Linkage.DefaultColumns) > 0 {
		return c.Linkage.DefaultColumns
	}
	return DefaultIdentifierColumns
}

// lookupType finds a dataset type case-insensitively; viper lowercases map keys.
func (c *Config) lookupType(datasetType string) ([]string, bool) {
	if datasetType == "" {
		return nil, false
	}
	if cols, ok := c.Linkage.DatasetTypes[datasetType]; ok {
		return cols, true
	}
	cols, ok := c.Linkage.DatasetTypes[strings.ToLower(datasetType)]
	return cols, ok
}

// UsesDatabase reports whether any dataset or the result writer needs a SQL connection.
func (c *Config) UsesDatabase() bool {
	if c.Output.SaveDatabase {
		return true
	}
	for _, ds := range c.Datasets {
		if ds.Source == SourceDatabase {
			return true
		}
	}
	return false
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-empty values are applied; maxDepth is applied when depthSet is true.
func (c *Config) ApplyOverrides(logLevel, logFormat string, maxDepth int, depthSet bool, strategy string) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if depthSet {
		c.Linkage.MaxDepth = maxDepth
	}
	if strategy != "" {
		c.Linkage.Strategy = strategy
	}
}
