package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lexatlas/regscan/internal/export"
	"github.com/lexatlas/regscan/internal/model"
	"github.com/lexatlas/regscan/internal/store"
)

var (
	recordsStatus string
	recordsDocID  string
	recordsLimit  int
	recordsOut    string
	recordsJSON   bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List stored extraction records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("records"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		records, err := st.ListRecords(ctx, store.RecordFilter{
			Status:     model.RecordStatus(recordsStatus),
			DocumentID: recordsDocID,
			Limit:      recordsLimit,
		})
		if err != nil {
			return err
		}

		if recordsOut != "" {
			switch {
			case strings.HasSuffix(recordsOut, ".xlsx"):
				return export.WriteXLSX(recordsOut, records)
			case strings.HasSuffix(recordsOut, ".csv"):
				return export.WriteCSV(recordsOut, records)
			default:
				return eris.Errorf("unsupported export extension: %s", recordsOut)
			}
		}

		if recordsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOCUMENT\tSTATUS\tDATE\tCHUNKS\tDURATION_MS\tUPDATED")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				rec.DocumentID, rec.Status, rec.State.Date,
				rec.ChunkCount, rec.DurationMS,
				rec.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	recordsCmd.Flags().StringVar(&recordsStatus, "status", "", "filter by status (running|complete|failed)")
	recordsCmd.Flags().StringVar(&recordsDocID, "doc-id", "", "filter by document ID")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 100, "maximum records to list")
	recordsCmd.Flags().StringVar(&recordsOut, "out", "", "write records to a .csv or .xlsx file instead of stdout")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(recordsCmd)
}
