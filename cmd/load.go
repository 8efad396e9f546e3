package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/etl"
	"github.com/sells-group/census-tidy/internal/warehouse"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Reshape extracts and load them into the warehouse",
	Long:  "Builds the selected facts and the dimension tables and writes them to the configured store. Reloading a year replaces it. With the postgres driver every fact load is recorded in acs.load_log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.Ingest.DataDir = dir
		}
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		sink, pool, err := openSink(ctx)
		if err != nil {
			return err
		}
		defer sink.Close() //nolint:errcheck

		var loadLog etl.LoadRecorder
		if pool != nil {
			defer pool.Close()
			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := warehouse.Migrate(ctx, pool); err != nil {
					return eris.Wrap(err, "load")
				}
			}
			loadLog = warehouse.NewLoadLog(pool)
		}

		facts, _ := cmd.Flags().GetStringSlice("facts")
		noDims, _ := cmd.Flags().GetBool("no-dims")

		engine := etl.NewEngine(cat, sink, loadLog, etl.Options{
			DataDir:     cfg.Ingest.DataDir,
			LabelColumn: cfg.Ingest.LabelColumn,
			Workers:     cfg.Ingest.Workers,
		})
		summary, err := engine.Run(ctx, etl.RunOpts{Facts: facts, Dims: !noDims})
		if err != nil {
			return eris.Wrap(err, "load")
		}

		zap.L().Info("load complete",
			zap.String("run_id", summary.RunID),
			zap.String("driver", cfg.Store.Driver),
			zap.Int("facts", summary.Loaded),
			zap.Int64("rows", summary.Rows),
		)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringSlice("facts", nil, "facts to load (default all)")
	loadCmd.Flags().String("data-dir", "", "directory holding the extracts (default from config)")
	loadCmd.Flags().Bool("no-dims", false, "skip the dimension tables")
	loadCmd.Flags().Bool("migrate", false, "apply pending migrations first (postgres only)")
	rootCmd.AddCommand(loadCmd)
}
