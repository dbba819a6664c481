package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/parcellink/internal/config"
	"github.com/dbsmedya/parcellink/internal/database"
	"github.com/dbsmedya/parcellink/internal/graph"
	"github.com/dbsmedya/parcellink/internal/lock"
	"github.com/dbsmedya/parcellink/internal/logger"
	"github.com/dbsmedya/parcellink/internal/report"
	"github.com/dbsmedya/parcellink/internal/tracer"
	"github.com/dbsmedya/parcellink/internal/verifier"
)

var (
	tracePNU      string
	traceMaxDepth int
	traceStrategy string
	traceOut      string
	traceSaveDB   bool
	traceNoColor  bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Trace every record linked to a parcel identifier",
	Long: `Trace loads every configured dataset and searches them breadth-first for
records linked to the given parcel identifier through shared identifier values.

Each matched record is reported with the minimal number of hops from the start:
  hop 0  records holding the start identifier itself
  hop 1  records sharing an identifier with a hop 0 record
  ...

Results are printed per dataset, written to <out>/검색결과_<dataset>_연계.csv
and optionally stored in SQL result tables, which are read back and
verified (output.verify: count, sha256, or skip).

Example:
  parcellink trace --config parcellink.yaml --pnu 4425012345100010000
  parcellink trace --pnu 4425012345-1-0001 --max-depth 2 --out ""`,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVarP(&tracePNU, "pnu", "p", "",
		"Start parcel identifier; non-digit characters are ignored (required)")
	traceCmd.MarkFlagRequired("pnu")

	traceCmd.Flags().IntVar(&traceMaxDepth, "max-depth", -1,
		"Override maximum hop count (-1 for unbounded)")
	traceCmd.Flags().StringVar(&traceStrategy, "strategy", "",
		"Override matching strategy (index, scan)")
	traceCmd.Flags().StringVarP(&traceOut, "out", "o", "",
		"Override CSV output directory; an empty value disables CSV output")
	traceCmd.Flags().BoolVar(&traceSaveDB, "save-db", false,
		"Store results in SQL result tables")
	traceCmd.Flags().BoolVar(&traceNoColor, "no-color", false,
		"Disable colored console output")

	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg.ApplyOverrides("", "", traceMaxDepth, cmd.Flags().Changed("max-depth"), traceStrategy)
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = traceOut
		cfg.Output.WriteCSV = traceOut != ""
	}
	if traceSaveDB {
		cfg.Output.SaveDatabase = true
	}
	if traceNoColor {
		cfg.Output.Color = false
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

	ctx, stop := database.SetupSignalHandler(commandContext(cmd), func(sig os.Signal) {
		log.Warnf("Received %s - stopping", sig)
	})
	defer stop()

	var db *sql.DB
	if cfg.UsesDatabase() {
		dbManager := database.NewManager(&cfg.Database)
		if err := dbManager.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbManager.Close()
		db = dbManager.DB
	}

	tr, err := tracer.New(cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	run, err := tr.Run(ctx, tracePNU)
	if err != nil {
		if errors.Is(err, graph.ErrInvalidStart) {
			return fmt.Errorf("invalid --pnu value: %w", err)
		}
		return fmt.Errorf("trace failed: %w", err)
	}

	out := cmd.OutOrStdout()
	report.NewConsolePrinter(out, cfg.Output.Color, cfg.Output.MaxCellWidth).Print(run.Summary, run.Exports)

	for _, u := range run.Inspection.Unavailable {
		fmt.Fprintf(out, "[SKIP] %s: %v\n", u.Dataset, u.Err)
	}

	if cfg.Output.WriteCSV {
		paths, err := report.NewCSVWriter(cfg.Output.Dir).Write(run.Exports)
		if err != nil {
			return fmt.Errorf("failed to write CSV reports: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(out, "[OK] saved %s\n", p)
		}
	}

	if cfg.Output.SaveDatabase {
		if err := saveResults(ctx, cfg, db, log, run, out); err != nil {
			return err
		}
	}

	return nil
}

// saveResults stores the export tables and verifies them. On MySQL the whole
// save runs under a named lock shared by every trace using the same table prefix.
func saveResults(ctx context.Context, cfg *config.Config, db *sql.DB, log *logger.Logger, run *tracer.RunResult, out io.Writer) error {
	save := func() error {
		writer := database.NewResultWriter(db, cfg.Database.Driver, cfg.Output.TablePrefix, log)
		written, err := writer.Write(ctx, run.RunID, run.Exports)
		if err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		for _, w := range written {
			fmt.Fprintf(out, "[OK] stored %d rows in %s\n", w.Rows, w.Table)
		}

		v, err := verifier.NewVerifier(db, verifier.VerificationMethod(cfg.Output.Verify), log)
		if err != nil {
			return err
		}
		stats, err := v.Verify(ctx, run.RunID, written, run.Exports)
		if err != nil {
			return err
		}
		if stats.Method != verifier.MethodSkip {
			fmt.Fprintf(out, "[OK] verified %d result table(s) (%s)\n", stats.TablesPassed, stats.Method)
		}
		return nil
	}

	if cfg.Database.Driver == config.DriverSQLite {
		return save()
	}

	resultLock := lock.NewResultLock(db, cfg.Output.TablePrefix)
	log.Debugf("Acquiring result lock %s", resultLock.LockName())
	err := resultLock.WithLock(ctx, cfg.Output.LockTimeout, save)
	if errors.Is(err, lock.ErrLockTimeout) {
		return fmt.Errorf("another trace is saving results with prefix %q: %w", cfg.Output.TablePrefix, err)
	}
	return err
}
