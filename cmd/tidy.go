package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/etl"
	"github.com/sells-group/census-tidy/internal/warehouse"
)

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Reshape extracts into CSV fact tables",
	Long:  "Reshapes every selected fact from the extracts in the data directory and writes one CSV file per fact table. No database is needed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			cfg.Store.OutputDir = dir
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.Ingest.DataDir = dir
		}
		if err := cfg.Validate("tidy"); err != nil {
			return err
		}

		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		sink, err := warehouse.NewCSVDir(cfg.Store.OutputDir)
		if err != nil {
			return err
		}
		defer sink.Close() //nolint:errcheck

		facts, _ := cmd.Flags().GetStringSlice("facts")
		dims, _ := cmd.Flags().GetBool("dims")

		engine := etl.NewEngine(cat, sink, nil, etl.Options{
			DataDir:     cfg.Ingest.DataDir,
			LabelColumn: cfg.Ingest.LabelColumn,
			Workers:     cfg.Ingest.Workers,
		})
		summary, err := engine.Run(ctx, etl.RunOpts{Facts: facts, Dims: dims})
		if err != nil {
			return eris.Wrap(err, "tidy")
		}

		zap.L().Info("tidy complete",
			zap.String("out", cfg.Store.OutputDir),
			zap.Int("facts", summary.Loaded),
			zap.Int64("rows", summary.Rows),
		)
		return nil
	},
}

func init() {
	tidyCmd.Flags().StringSlice("facts", nil, "facts to build (default all)")
	tidyCmd.Flags().String("out", "", "output directory (default from config)")
	tidyCmd.Flags().String("data-dir", "", "directory holding the extracts (default from config)")
	tidyCmd.Flags().Bool("dims", false, "also write dimension tables")
	rootCmd.AddCommand(tidyCmd)
}
