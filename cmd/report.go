package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/tracing"
)

var reportLast int

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Summarize a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		return report(cmd.Context(), reader, cmd.OutOrStdout(), reportLast)
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLast, "last", 5,
		"number of latest batches to list")

	rootCmd.AddCommand(reportCmd)
}

func report(
	ctx context.Context,
	reader datarecording.DataReader,
	out io.Writer,
	last int,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader.MapTable(tracing.LineSummaryTable, tracing.LineSummaryEntry{})
	reader.MapTable(tracing.BatchReleaseTable, tracing.BatchReleaseEntry{})

	lines, _, err := reader.Query(ctx, tracing.LineSummaryTable,
		datarecording.QueryParams{OrderBy: "Line"})
	if err != nil {
		return fmt.Errorf("reading line summaries: %w", err)
	}

	fmt.Fprintf(out, "%-10s %12s %12s %12s\n",
		"line", "generated", "moved", "delivered")

	for _, row := range lines {
		l := row.(*tracing.LineSummaryEntry)
		fmt.Fprintf(out, "%-10s %12d %12d %12d\n",
			l.Name, l.Generated, l.Moved, l.Delivered)
	}

	if last <= 0 {
		return nil
	}

	batches, total, err := reader.Query(ctx, tracing.BatchReleaseTable,
		datarecording.QueryParams{OrderBy: "Batch DESC", Limit: last})
	if err != nil {
		return fmt.Errorf("reading batches: %w", err)
	}

	fmt.Fprintf(out, "batches: %d\n", total)

	for _, row := range batches {
		b := row.(*tracing.BatchReleaseEntry)
		fmt.Fprintf(out, "  batch %d at %.3f with %d totes\n",
			b.Batch, b.Time, b.Totes)
	}

	return nil
}
