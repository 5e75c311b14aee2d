package main

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/recurrence"
	"github.com/spf13/cobra"
)

func expandCmd() *cobra.Command {
	var (
		req     arrangement.RecurrenceRequest
		endDate string
		count   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Preview the working days a recurrence expands to",
		Example: `  wfhctl expand --start 2024-10-01 --unit week --count 4
  wfhctl expand --start 2024-01-31 --unit month --end 2024-06-30 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if endDate != "" {
				req.EndDate = &endDate
			}
			if count > 0 {
				req.Occurrences = &count
			}
			if err := req.Validate(); err != nil {
				return err
			}
			spec, err := req.Spec()
			if err != nil {
				return err
			}
			result, err := recurrence.Expand(spec)
			if err != nil {
				return err
			}

			preview := arrangement.PreviewResponse{
				Dates:         arrangement.FormatDates(result.Dates),
				ExcludedDates: arrangement.FormatDates(result.Excluded),
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}

			for _, d := range preview.Dates {
				fmt.Fprintln(out, d)
			}
			for _, d := range preview.ExcludedDates {
				fmt.Fprintf(out, "%s (weekend, skipped)\n", d)
			}
			fmt.Fprintf(out, "%d working days, %d excluded\n", len(preview.Dates), len(preview.ExcludedDates))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.StartDate, "start", "", "First occurrence (YYYY-MM-DD)")
	cmd.Flags().IntVar(&req.Interval, "interval", 1, "Units between occurrences")
	cmd.Flags().StringVar(&req.Unit, "unit", string(recurrence.UnitWeek), "Recurrence unit (week, month)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last possible date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of occurrences")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
