package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// SourceKind returns the dataset's source, defaulting to csv.
func (d *DatasetConfig) SourceKind() string {
	if d.Source == "" {
		return SourceCSV
	}
	return d.Source
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if len(c.Datasets) == 0 {
		errors = append(errors, ValidationError{
			Field:   "datasets",
			Message: "at least one dataset must be defined",
		})
	}

	seen := make(map[string]bool)
	for i := range c.Datasets {
		ds := &c.Datasets[i]
		if err := c.validateDataset(i, ds); err != nil {
			errors = append(errors, err...)
		}
		if ds.Name != "" {
			if seen[ds.Name] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("datasets[%d].name", i),
					Message: fmt.Sprintf("duplicate dataset name %q", ds.Name),
				})
			}
			seen[ds.Name] = true
		}
	}

	if err := c.validateLinkage(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateOutput(); err != nil {
		errors = append(errors, err...)
	}

	if c.UsesDatabase() {
		if err := c.validateDatabase(); err != nil {
			errors = append(errors, err...)
		}
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDataset(i int, ds *DatasetConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("datasets[%d]", i)

	if ds.Name == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".name",
			Message: "name is required",
		})
	}

	switch ds.SourceKind() {
	case SourceCSV:
		if ds.Path == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Message: "path is required for csv datasets",
			})
		}
	case SourceDatabase:
		if ds.Table == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".table",
				Message: "table is required for database datasets",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".source",
			Message: "source must be 'csv' or 'database'",
		})
	}

	if ds.Type != "" {
		if _, ok := c.lookupType(ds.Type); !ok {
			errors = append(errors, ValidationError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("dataset type %q is not declared in linkage.dataset_types", ds.Type),
			})
		}
	}

	return errors
}

func (c *Config) validateLinkage() ValidationErrors {
	var errors ValidationErrors

	if c.Linkage.MaxDepth < -1 {
		errors = append(errors, ValidationError{
			Field:   "linkage.max_depth",
			Message: "max_depth must be -1 (unbounded) or a non-negative hop count",
		})
	}

	validStrategies := map[string]bool{"index": true, "scan": true, "": true}
	if !validStrategies[c.Linkage.Strategy] {
		errors = append(errors, ValidationError{
			Field:   "linkage.strategy",
			Message: "strategy must be 'index' or 'scan'",
		})
	}

	for name, cols := range c.Linkage.DatasetTypes {
		for j, col := range cols {
			if strings.TrimSpace(col) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("linkage.dataset_types.%s[%d]", name, j),
					Message: "column name cannot be empty",
				})
			}
		}
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	if c.Output.WriteCSV && c.Output.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Message: "dir is required when write_csv is enabled",
		})
	}

	if c.Output.MaxCellWidth < 0 {
		errors = append(errors, ValidationError{
			Field:   "output.max_cell_width",
			Message: "max_cell_width cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "database.path",
				Message: "path is required for the sqlite driver",
			})
		}
		return errors
	case DriverMySQL, "":
	default:
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: "driver must be 'mysql' or 'sqlite'",
		})
		return errors
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
