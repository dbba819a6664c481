package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/parcellink/internal/database"
	"github.com/dbsmedya/parcellink/internal/logger"
	"github.com/dbsmedya/parcellink/internal/tracer"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and inspect datasets",
	Long: `Validate checks the configuration file, loads every dataset and reports
which identifier columns each dataset will be searched on.

Checks performed:
  - Configuration syntax and required fields
  - Database connectivity (when a dataset or the result writer uses SQL)
  - Dataset availability
  - Active identifier columns per dataset

Example:
  parcellink validate --config parcellink.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := commandContext(cmd)

	var db *sql.DB
	if cfg.UsesDatabase() {
		dbManager := database.NewManager(&cfg.Database)
		if err := dbManager.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbManager.Close()

		if err := dbManager.Ping(ctx); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		db = dbManager.DB
	}

	tr, err := tracer.New(cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	insp, err := tr.Inspect(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect datasets: %w", err)
	}

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Datasets found: %d\n\n", len(cfg.Datasets))

	for _, ix := range insp.Indexes {
		cmd.Printf("--- Dataset: %s ---\n", ix.Name)
		cmd.Printf("Rows: %d\n", ix.RowCount())
		if !ix.Participating() {
			cmd.Printf("⚠️  No identifier columns among %s; dataset excluded\n\n", strings.Join(ix.Declared, ", "))
			continue
		}
		cmd.Printf("Active columns: %s\n", strings.Join(ix.ActiveColumns, ", "))
		cmd.Printf("Distinct identifiers: %d\n", len(ix.DistinctIdentifiers()))
		cmd.Printf("✅ Ready\n\n")
	}

	for _, u := range insp.Unavailable {
		cmd.Printf("--- Dataset: %s ---\n", u.Dataset)
		cmd.Printf("❌ Unavailable: %v\n\n", u.Err)
	}

	if insp.Participating() == 0 {
		return fmt.Errorf("%w: nothing to search", tracer.ErrNoDatasets)
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Printf("✅ %d of %d dataset(s) ready for linkage\n", insp.Participating(), len(cfg.Datasets))
	return nil
}
