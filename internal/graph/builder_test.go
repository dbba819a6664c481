package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dbsmedya/parcellink/internal/config"
	"github.com/dbsmedya/parcellink/internal/types"
)

func builderConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Datasets = []config.DatasetConfig{
		{Name: "moves", Type: "land_move", Path: "moves.csv"},
		{Name: "ledger", Type: "ledger", Path: "ledger.csv"},
		{Name: "other", Path: "other.csv"},
	}
	cfg.Linkage.DatasetTypes = map[string][]string{
		"land_move": {"이동전_필지코드", "이동후_필지코드"},
		"ledger":    {"PNU"},
	}
	return cfg
}

func TestNewBuilder(t *testing.T) {
	cfg := builderConfig()
	builder := NewBuilder(cfg)
	if builder == nil {
		t.Fatal("NewBuilder returned nil")
	}
	if builder.cfg != cfg {
		t.Error("Builder cfg field not set correctly")
	}
}

func TestBuild_UsesDatasetTypeColumns(t *testing.T) {
	moves := types.NewTable("moves", []string{"이동전_필지코드", "이동후_필지코드", "PNU"})
	ledger := types.NewTable("ledger", []string{"PNU", "필지코드"})
	other := types.NewTable("other", []string{"필지코드"})

	indexes, err := NewBuilder(builderConfig()).Build([]*types.Table{moves, ledger, other})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(indexes) != 3 {
		t.Fatalf("expected 3 indexes, got %d", len(indexes))
	}

	tests := []struct {
		name string
		want []string
	}{
		{"moves", []string{"이동전_필지코드", "이동후_필지코드"}},
		{"ledger", []string{"PNU"}},
		// Untyped datasets fall back to the default identifier columns.
		{"other", []string{"필지코드"}},
	}
	for i, tt := range tests {
		if indexes[i].Name != tt.name {
			t.Errorf("index %d name = %q, want %q", i, indexes[i].Name, tt.name)
		}
		if !reflect.DeepEqual(indexes[i].ActiveColumns, tt.want) {
			t.Errorf("%s ActiveColumns = %v, want %v", tt.name, indexes[i].ActiveColumns, tt.want)
		}
	}
}

func TestBuild_UnknownDataset(t *testing.T) {
	table := types.NewTable("unknown", []string{"PNU"})

	_, err := NewBuilder(builderConfig()).Build([]*types.Table{table})
	if err == nil {
		t.Fatal("expected error for table not in configuration")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuild_DuplicateTable(t *testing.T) {
	a := types.NewTable("moves", []string{"PNU"})
	b := types.NewTable("moves", []string{"PNU"})

	_, err := NewBuilder(builderConfig()).Build([]*types.Table{a, b})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestBuild_NilConfig(t *testing.T) {
	_, err := NewBuilder(nil).Build(nil)
	if err == nil {
		t.Error("expected error for nil configuration")
	}
}

func TestBuildFromConfig(t *testing.T) {
	moves := types.NewTable("moves", []string{"이동전_필지코드"})
	if err := moves.AppendRow([]string{"1"}); err != nil {
		t.Fatal(err)
	}

	indexes, err := BuildFromConfig(builderConfig(), []*types.Table{moves})
	if err != nil {
		t.Fatalf("BuildFromConfig() failed: %v", err)
	}
	if len(indexes) != 1 || indexes[0].RowCount() != 1 {
		t.Errorf("unexpected indexes: %+v", indexes)
	}
}
