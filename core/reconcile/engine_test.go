package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeSpy records every write attempt so tests can verify exactly which
// records were written and in what order.
type writeSpy struct {
	calls []writeCall
	fail  map[int64]error
}

type writeCall struct {
	id   int64
	cost float64
}

func (s *writeSpy) write(id int64, cost float64) error {
	s.calls = append(s.calls, writeCall{id: id, cost: cost})
	if err, ok := s.fail[id]; ok {
		return err
	}
	return nil
}

func TestBuildCostLookup(t *testing.T) {
	t.Run("SKU and name keys", func(t *testing.T) {
		refs := []ProductRecord{
			{ID: 1, SKU: "X1", Name: "Widget HQ", Cost: 150.0},
		}

		lookup := BuildCostLookup(refs)
		assert.Equal(t, CostLookup{"X1": 150.0, "Widget HQ": 150.0}, lookup)
	})

	t.Run("empty SKU excluded from SKU keys", func(t *testing.T) {
		refs := []ProductRecord{
			{ID: 1, SKU: "", Name: "Gadget", Cost: 42.0},
		}

		lookup := BuildCostLookup(refs)
		assert.Equal(t, CostLookup{"Gadget": 42.0}, lookup)
	})

	t.Run("zero cost references never inserted", func(t *testing.T) {
		refs := []ProductRecord{
			{ID: 1, SKU: "A", Name: "WidgetA", Cost: 0},
			{ID: 2, SKU: "", Name: "WidgetB", Cost: 0},
		}

		lookup := BuildCostLookup(refs)
		assert.Empty(t, lookup)
	})

	t.Run("last write wins on key collision", func(t *testing.T) {
		refs := []ProductRecord{
			{ID: 1, SKU: "DUP", Name: "First", Cost: 10.0},
			{ID: 2, SKU: "DUP", Name: "Second", Cost: 20.0},
		}

		lookup := BuildCostLookup(refs)
		assert.Equal(t, 20.0, lookup["DUP"])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, BuildCostLookup(nil))
	})
}

func TestResolve_SKUTakesPrecedence(t *testing.T) {
	// Both keys present with different values: SKU must win.
	lookup := CostLookup{"SKU-9": 100.0, "Widget": 55.0}
	record := ProductRecord{ID: 1, SKU: "SKU-9", Name: "Widget"}

	assert.Equal(t, 100.0, lookup.Resolve(record))
}

func TestResolve_NameFallback(t *testing.T) {
	lookup := CostLookup{"Widget": 55.0}

	// SKU set but not in lookup: fall back to the name key.
	assert.Equal(t, 55.0, lookup.Resolve(ProductRecord{SKU: "MISSING", Name: "Widget"}))

	// No SKU at all.
	assert.Equal(t, 55.0, lookup.Resolve(ProductRecord{Name: "Widget"}))

	// Neither key present.
	assert.Equal(t, 0.0, lookup.Resolve(ProductRecord{SKU: "X", Name: "Y"}))
}

func TestApplyCosts_Exhaustiveness(t *testing.T) {
	targets := []ProductRecord{
		{ID: 1, SKU: "A", Name: "Alpha"},
		{ID: 2, SKU: "B", Name: "Beta"},
		{ID: 3, SKU: "", Name: "Gamma"},
		{ID: 4, SKU: "D", Name: "Delta"},
	}
	lookup := CostLookup{"A": 10.0, "B": 20.0}
	spy := &writeSpy{}

	results, summary := ApplyCosts(targets, lookup, spy.write)

	// One result per input record, counts add up to the input length.
	assert.Len(t, results, len(targets))
	assert.Equal(t, len(targets), summary.Total)
	assert.Equal(t, summary.Total, summary.Updated+summary.Skipped+summary.Failed)
}

func TestApplyCosts_SkippedRecordsNeverWritten(t *testing.T) {
	targets := []ProductRecord{
		{ID: 1, SKU: "NOPE", Name: "Unknown"},
		{ID: 2, SKU: "", Name: "Also Unknown"},
	}
	spy := &writeSpy{}

	results, summary := ApplyCosts(targets, CostLookup{"Other": 5.0}, spy.write)

	assert.Empty(t, spy.calls, "write must never be called for skipped records")
	assert.Equal(t, Summary{Skipped: 2, Total: 2}, summary)
	for _, r := range results {
		assert.Equal(t, OutcomeSkipped, r.Outcome)
		assert.Equal(t, 0.0, r.NewCost)
	}
}

func TestApplyCosts_PartialFailureTolerance(t *testing.T) {
	targets := []ProductRecord{
		{ID: 1, SKU: "A", Name: "Alpha"},
		{ID: 2, SKU: "B", Name: "Beta"},
		{ID: 3, SKU: "C", Name: "Gamma"},
	}
	lookup := CostLookup{"A": 1.0, "B": 2.0, "C": 3.0}
	spy := &writeSpy{fail: map[int64]error{2: fmt.Errorf("access denied")}}

	results, summary := ApplyCosts(targets, lookup, spy.write)

	// The middle failure must not abort the batch.
	assert.Len(t, results, 3)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)
	assert.Equal(t, OutcomeFailed, results[1].Outcome)
	assert.Equal(t, "access denied", results[1].Error)
	assert.Equal(t, OutcomeUpdated, results[2].Outcome)

	assert.Equal(t, Summary{Updated: 2, Failed: 1, Total: 3}, summary)

	// Exactly one write attempt per eligible record, no retries.
	assert.Equal(t, []writeCall{{1, 1.0}, {2, 2.0}, {3, 3.0}}, spy.calls)
}

func TestApplyCosts_OrderPreservation(t *testing.T) {
	targets := []ProductRecord{
		{ID: 9, SKU: "Z", Name: "Zulu"},
		{ID: 1, SKU: "A", Name: "Alpha"},
		{ID: 5, SKU: "M", Name: "Mike"},
	}
	spy := &writeSpy{}

	results, _ := ApplyCosts(targets, CostLookup{"A": 1.0, "M": 2.0, "Z": 3.0}, spy.write)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.ProductName)
	}
	assert.Equal(t, []string{"Zulu", "Alpha", "Mike"}, names)
}

// TestApplyCosts_EndToEnd exercises the full build-then-apply flow with the
// canonical Widget/Gadget scenario.
func TestApplyCosts_EndToEnd(t *testing.T) {
	targets := []ProductRecord{
		{ID: 1, SKU: "X1", Name: "Widget", Cost: 0},
		{ID: 2, SKU: "", Name: "Gadget", Cost: 0},
	}
	refs := []ProductRecord{
		{SKU: "X1", Name: "Widget HQ", Cost: 150.0},
		{SKU: "", Name: "Gadget", Cost: 0},
	}

	lookup := BuildCostLookup(refs)
	assert.Equal(t, CostLookup{"X1": 150.0, "Widget HQ": 150.0}, lookup)

	spy := &writeSpy{}
	results, summary := ApplyCosts(targets, lookup, spy.write)

	// Record 1 matches via SKU, record 2 has no reference at all.
	assert.Equal(t, []writeCall{{1, 150.0}}, spy.calls)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)
	assert.Equal(t, 150.0, results[0].NewCost)
	assert.Equal(t, OutcomeSkipped, results[1].Outcome)

	assert.Equal(t, Summary{Updated: 1, Skipped: 1, Failed: 0, Total: 2}, summary)
}

func TestApplyCosts_EmptyTargets(t *testing.T) {
	spy := &writeSpy{}
	results, summary := ApplyCosts(nil, CostLookup{"A": 1.0}, spy.write)

	assert.Empty(t, results)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, spy.calls)
}
