package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/parcellink/internal/config"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List all datasets defined in configuration",
	Long: `Datasets displays every dataset defined in the configuration file with
its type, source and the candidate identifier columns declared for the type.

Example:
  parcellink datasets --config parcellink.yaml`,
	RunE: runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.ListDatasets()
	if len(names) == 0 {
		cmd.Printf("No datasets defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Datasets defined in %s:\n\n", configFile)

	for i, name := range names {
		ds, err := cfg.GetDataset(name)
		if err != nil {
			return fmt.Errorf("failed to get dataset %q: %w", name, err)
		}

		cmd.Printf("%d. %s\n", i+1, name)

		if ds.Type != "" {
			cmd.Printf("   Type:          %s\n", ds.Type)
		} else {
			cmd.Printf("   Type:          (default)\n")
		}

		if ds.SourceKind() == config.SourceDatabase {
			cmd.Printf("   Source:        database table %s\n", ds.Table)
		} else {
			cmd.Printf("   Source:        csv %s\n", ds.Path)
		}

		cmd.Printf("   Columns:       %s\n", strings.Join(cfg.ColumnsFor(ds.Type), ", "))

		if i < len(names)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d dataset(s)\n", len(names))
	return nil
}
