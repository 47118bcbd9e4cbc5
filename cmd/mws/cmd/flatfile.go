package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/pkg/flatfile"
)

func flatfileCmd() *cobra.Command {
	var (
		numeric bool
		tz      string
		columns []string
	)
	cmd := &cobra.Command{
		Use:   "flatfile [file]",
		Short: "Parse a tab-separated report into JSON records",
		Long: "Reads a flat-file report from a file or stdin and prints one JSON object per\n" +
			"row keyed by header. Datetimes without an offset are read in --tz.",
		Args: cobra.MaximumNArgs(1),
		Example: `  mws reports get 5001 | mws flatfile --numeric
  mws flatfile listings.tsv --columns sku,price,quantity`,
		RunE: func(_ *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("reading report: %w", err)
			}

			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("loading time zone: %w", err)
			}
			opts := []flatfile.Option{flatfile.WithLocation(loc)}
			if numeric {
				opts = append(opts, flatfile.WithNumeric())
			}

			report, err := flatfile.Parse(data, opts...)
			if err != nil {
				return err
			}
			return outputJSON(selectColumns(report.Records(), columns))
		},
	}
	cmd.Flags().BoolVar(&numeric, "numeric", false, "convert numeric-looking cells to numbers")
	cmd.Flags().StringVar(&tz, "tz", "Local", "time zone for datetimes without an offset")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "only these columns")
	return cmd
}

func selectColumns(records []map[string]any, columns []string) []map[string]any {
	if len(columns) == 0 {
		return records
	}
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		row := make(map[string]any, len(columns))
		for _, c := range columns {
			row[c] = rec[c]
		}
		out[i] = row
	}
	return out
}
