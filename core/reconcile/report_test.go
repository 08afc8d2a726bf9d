package reconcile

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportFilename(t *testing.T) {
	ts := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "cost_sync_20260115_0930.csv", ReportFilename(ts))
}

func TestWriteCSV(t *testing.T) {
	results := []Result{
		{ProductName: "Widget", SKU: "X1", NewCost: 150.0, Outcome: OutcomeUpdated},
		{ProductName: "Gadget", SKU: "", NewCost: 0, Outcome: OutcomeSkipped},
		{ProductName: "Doohickey", SKU: "D-9", NewCost: 12.5, Outcome: OutcomeFailed, Error: "access denied"},
	}

	var buf bytes.Buffer
	err := WriteCSV(&buf, results)
	assert.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3 records

	assert.Equal(t, []string{"Product", "SKU", "New Cost", "Status", "Error"}, rows[0])
	assert.Equal(t, []string{"Widget", "X1", "₹150.00", "Updated", ""}, rows[1])

	// Missing SKU renders as a placeholder.
	assert.Equal(t, "N/A", rows[2][1])
	assert.Equal(t, "Skipped", rows[2][3])

	// Failed rows carry the write error.
	assert.Equal(t, "Failed", rows[3][3])
	assert.Equal(t, "access denied", rows[3][4])
}

func TestWriteCSV_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", 80)
	results := []Result{
		{ProductName: long, SKU: "L", NewCost: 1.0, Outcome: OutcomeUpdated},
	}

	var buf bytes.Buffer
	err := WriteCSV(&buf, results)
	assert.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 50)+"...", rows[1][0])
}
