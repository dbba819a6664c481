package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Datasets = []DatasetConfig{
		{Name: "이동정리현황", Type: "move_status", Path: "move.csv"},
		{Name: "토지기본", Path: "ledger.csv"},
	}
	cfg.Linkage.DatasetTypes = map[string][]string{
		"move_status": {"이동전_필지코드", "이동후_필지코드"},
	}
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestValidate_NoDatasets(t *testing.T) {
	cfg := validConfig()
	cfg.Datasets = nil

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "datasets") {
		t.Errorf("expected datasets error, got: %v", err)
	}
}

func TestValidate_DatasetErrors(t *testing.T) {
	tests := []struct {
		name  string
		ds    DatasetConfig
		field string
	}{
		{"missing name", DatasetConfig{Path: "a.csv"}, "datasets[2].name"},
		{"csv without path", DatasetConfig{Name: "x"}, "datasets[2].path"},
		{"database without table", DatasetConfig{Name: "x", Source: SourceDatabase}, "datasets[2].table"},
		{"unknown source", DatasetConfig{Name: "x", Source: "xlsx", Path: "a.xlsx"}, "datasets[2].source"},
		{"undeclared type", DatasetConfig{Name: "x", Type: "ghost", Path: "a.csv"}, "datasets[2].type"},
		{"duplicate name", DatasetConfig{Name: "토지기본", Path: "dup.csv"}, "datasets[2].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Datasets = append(cfg.Datasets, tt.ds)
			// keep database validation out of the way for csv cases
			cfg.Database = DatabaseConfig{Driver: DriverSQLite, Path: "x.db"}

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_Linkage(t *testing.T) {
	cfg := validConfig()
	cfg.Linkage.MaxDepth = -2
	cfg.Linkage.Strategy = "dfs"
	cfg.Linkage.DatasetTypes["broken"] = []string{"PNU", " "}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected linkage validation errors")
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(verrs), verrs)
	}
	for _, field := range []string{"linkage.max_depth", "linkage.strategy", "linkage.dataset_types.broken[1]"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %q", field)
		}
	}
}

func TestValidate_MaxDepthZeroAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Linkage.MaxDepth = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("max_depth 0 should be valid, got: %v", err)
	}
}

func TestValidate_Output(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Dir = ""
	cfg.Output.MaxCellWidth = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected output validation errors")
	}
	if !strings.Contains(err.Error(), "output.dir") || !strings.Contains(err.Error(), "output.max_cell_width") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_VerifyAndLockTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Verify = "md5"
	cfg.Output.LockTimeout = -2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected output validation errors")
	}
	if !strings.Contains(err.Error(), "output.verify") || !strings.Contains(err.Error(), "output.lock_timeout") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Output.Verify = "sha256"
	cfg.Output.LockTimeout = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected sha256 with infinite lock wait to be valid, got %v", err)
	}
}

func TestValidate_DatabaseOnlyWhenUsed(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{} // empty but unused

	if err := cfg.Validate(); err != nil {
		t.Errorf("unused database should not be validated, got: %v", err)
	}

	cfg.Output.SaveDatabase = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected database errors once save_database is enabled")
	}
	for _, field := range []string{"database.host", "database.port", "database.user", "database.database"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %q, got: %v", field, err)
		}
	}
}

func TestValidate_SQLiteDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Output.SaveDatabase = true
	cfg.Database = DatabaseConfig{Driver: DriverSQLite}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "database.path") {
		t.Errorf("expected sqlite path error, got: %v", err)
	}

	cfg.Database.Path = "results.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected sqlite config to validate, got: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Output.SaveDatabase = true
	cfg.Database = DatabaseConfig{Driver: "postgres"}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "database.driver") {
		t.Errorf("expected driver error, got: %v", err)
	}
}

func TestValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected logging errors")
	}
	if !strings.Contains(err.Error(), "logging.level") || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidationErrorsFormat(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}

	expected := "validation failed:\n  - a: first\n  - b: second"
	if errs.Error() != expected {
		t.Errorf("unexpected format: %q", errs.Error())
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should format as empty string")
	}
}
