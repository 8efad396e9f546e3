package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/census-tidy/internal/acs"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "List the facts of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		formatFacts(os.Stdout, cat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(factsCmd)
}

// formatFacts writes one line per fact: name, source, file pattern, columns.
func formatFacts(out io.Writer, cat *acs.Catalog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FACT\tSOURCE\tPATTERN\tCOLUMNS")

	for _, f := range cat.Facts {
		pattern := "-"
		if src, ok := cat.Source(f.Source); ok {
			pattern = src.Pattern
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			f.Name,
			f.Source,
			pattern,
			strings.Join(f.Schema.ColumnNames(), ", "),
		)
	}
	_ = w.Flush()
}
