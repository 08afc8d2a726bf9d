package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// maxReportNameLen bounds product names in the exported report so a single
// long name does not wreck the tabular layout in spreadsheet tools.
const maxReportNameLen = 50

// statusLabels maps outcomes to the operator-facing report wording.
var statusLabels = map[Outcome]string{
	OutcomeUpdated: "Updated",
	OutcomeSkipped: "Skipped",
	OutcomeFailed:  "Failed",
}

// ReportFilename returns the timestamped name for an exported run report,
// e.g. "cost_sync_20260115_0930.csv".
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("cost_sync_%s.csv", t.Format("20060102_1504"))
}

// WriteCSV renders the run ledger as a CSV report with one row per processed
// record. Failed rows carry the write error so the operator can see exactly
// which records need manual follow-up.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Product", "SKU", "New Cost", "Status", "Error"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, r := range results {
		name := r.ProductName
		if len(name) > maxReportNameLen {
			name = name[:maxReportNameLen] + "..."
		}

		sku := r.SKU
		if sku == "" {
			sku = "N/A"
		}

		row := []string{
			name,
			sku,
			fmt.Sprintf("₹%.2f", r.NewCost),
			statusLabels[r.Outcome],
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
