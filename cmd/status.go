package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/census-tidy/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the warehouse load log",
	Long:  "Displays the load history of every fact, most recent first, or the last successful load of one fact with --fact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("status"); err != nil {
			return err
		}
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		log := warehouse.NewLoadLog(pool)

		if fact, _ := cmd.Flags().GetString("fact"); fact != "" {
			last, err := log.LastSuccess(ctx, fact)
			if err != nil {
				return eris.Wrap(err, "status")
			}
			formatLastSuccess(os.Stdout, fact, last)
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := log.ListAll(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(entries) == 0 {
			zap.L().Info("no load entries found, run 'load' to populate the warehouse")
			return nil
		}

		formatStatusEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("limit", 50, "maximum entries to show (0 for all)")
	statusCmd.Flags().String("fact", "", "only show when this fact last loaded successfully")
	rootCmd.AddCommand(statusCmd)
}

// formatStatusEntries writes a tabular representation of load entries to w.
func formatStatusEntries(out io.Writer, entries []warehouse.LoadEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFACT\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-------\t--------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			d := e.CompletedAt.Sub(e.StartedAt).Round(time.Second)
			dur = d.String()
		}

		errMsg := ""
		if e.Error != "" {
			errMsg = truncate(e.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID,
			e.Fact,
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.RowsLoaded,
			errMsg,
		)
	}
	_ = w.Flush()
}

func formatLastSuccess(out io.Writer, fact string, last *time.Time) {
	if last == nil {
		_, _ = fmt.Fprintf(out, "%s: never loaded\n", fact)
		return
	}
	_, _ = fmt.Fprintf(out, "%s: last loaded %s\n", fact, last.Format("2006-01-02 15:04"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
