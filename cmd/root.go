package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/acs"
	"github.com/sells-group/census-tidy/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "census-tidy",
	Short: "Reshape Census table extracts into tidy fact tables",
	Long:  "Reads wide ACS table extracts (one column per state and category), reshapes them into long fact tables and loads them into Postgres, SQLite or CSV files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadCatalog returns the configured fact catalog, or the built-in one.
func loadCatalog() (*acs.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return acs.DefaultCatalog(), nil
	}
	cat, err := acs.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("loaded catalog", zap.String("path", cfg.Catalog.Path), zap.Int("facts", len(cat.Facts)))
	return cat, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
