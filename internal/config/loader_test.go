package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "parcellink.yaml")

	configContent := `
datasets:
  - name: 이동정리현황_기간내
    type: move_status
    source: csv
    path: ./1.data/out/이동정리현황_기간내.csv
  - name: 토지기본_기간내
    type: ledger
    path: ./1.data/out/토지기본_기간내.csv
  - name: land_move
    type: move_status
    source: database
    table: land_move_tb

linkage:
  dataset_types:
    move_status: [이동전_필지코드, 이동후_필지코드]
    ledger: [필지코드, PNU]
  max_depth: 5
  strategy: scan

output:
  dir: ./out/find
  write_csv: false
  save_database: true

database:
  driver: mysql
  host: 127.0.0.1
  port: 3307
  user: root
  password: secret
  database: testdb

logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(cfg.Datasets))
	}
	if cfg.Datasets[0].Name != "이동정리현황_기간내" {
		t.Errorf("expected first dataset name to keep Hangul, got %s", cfg.Datasets[0].Name)
	}
	if cfg.Datasets[1].SourceKind() != SourceCSV {
		t.Errorf("expected default source csv, got %s", cfg.Datasets[1].SourceKind())
	}
	if cfg.Datasets[2].Table != "land_move_tb" {
		t.Errorf("expected table 'land_move_tb', got %s", cfg.Datasets[2].Table)
	}

	cols := cfg.ColumnsFor(cfg.Datasets[0].Type)
	if !reflect.DeepEqual(cols, []string{"이동전_필지코드", "이동후_필지코드"}) {
		t.Errorf("unexpected move_status columns: %v", cols)
	}

	if cfg.Linkage.MaxDepth != 5 {
		t.Errorf("expected max_depth 5, got %d", cfg.Linkage.MaxDepth)
	}
	if cfg.Linkage.Strategy != "scan" {
		t.Errorf("expected strategy 'scan', got %s", cfg.Linkage.Strategy)
	}
	if cfg.Output.WriteCSV {
		t.Error("expected write_csv false")
	}
	if !cfg.Output.SaveDatabase {
		t.Error("expected save_database true")
	}
	if cfg.Output.TablePrefix != "link_" {
		t.Errorf("expected default table_prefix to survive, got %s", cfg.Output.TablePrefix)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("expected port 3307, got %d", cfg.Database.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format 'json', got %s", cfg.Logging.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected loaded config to validate, got: %v", err)
	}
}

func TestLoad_MaxDepthDefaultsToUnbounded(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal.yaml")

	configContent := `
datasets:
  - name: a
    path: a.csv
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Linkage.MaxDepth != -1 {
		t.Errorf("expected unbounded max_depth, got %d", cfg.Linkage.MaxDepth)
	}
	if !reflect.DeepEqual(cfg.ColumnsFor(""), DefaultIdentifierColumns) {
		t.Errorf("expected default identifier columns, got %v", cfg.ColumnsFor(""))
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "env-host")
	t.Setenv("TEST_DB_PASS", "env-pass")
	t.Setenv("TEST_DATA_DIR", "/data/out")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
datasets:
  - name: a
    path: ${TEST_DATA_DIR}/a.csv
database:
  host: ${TEST_DB_HOST}
  user: root
  password: $TEST_DB_PASS
  database: testdb
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Host != "env-host" {
		t.Errorf("expected host 'env-host', got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "env-pass" {
		t.Errorf("expected password 'env-pass', got %s", cfg.Database.Password)
	}
	if cfg.Datasets[0].Path != "/data/out/a.csv" {
		t.Errorf("expected expanded dataset path, got %s", cfg.Datasets[0].Path)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "test-value"},
		{"$TEST_VAR", "test-value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"${NONEXISTENT}", "${NONEXISTENT}"}, // Unset vars remain unchanged
		{"no-vars-here", "no-vars-here"},
	}

	for _, tt := range tests {
		result := expandEnvVar(tt.input)
		if result != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}
