package reconcile

// BuildCostLookup builds a cost lookup from reference records.
// Records with a zero or negative cost never contribute: a zero cost cannot
// be reference truth. For each remaining record the SKU key is inserted when
// the SKU is non-empty, and the name key is always inserted. Later records
// overwrite earlier ones sharing a key (last-write-wins), so callers that
// care about duplicates must de-duplicate the input themselves.
func BuildCostLookup(refs []ProductRecord) CostLookup {
	lookup := make(CostLookup, len(refs)*2)
	for _, ref := range refs {
		if ref.Cost <= 0 {
			continue
		}
		if ref.SKU != "" {
			lookup[ref.SKU] = ref.Cost
		}
		lookup[ref.Name] = ref.Cost
	}
	return lookup
}

// ApplyCosts resolves a reference cost for every target record and writes it
// back through the write callback. It returns one Result per target record,
// in input order, plus the aggregate counts.
//
// A record with a positive resolved cost gets exactly one write attempt;
// a failed write marks the record Failed and processing continues. A record
// with no match is Skipped and the callback is never invoked for it.
func ApplyCosts(targets []ProductRecord, lookup CostLookup, write WriteFunc) ([]Result, Summary) {
	results := make([]Result, 0, len(targets))
	var summary Summary

	for _, target := range targets {
		result := Result{
			ProductName: target.Name,
			SKU:         target.SKU,
		}

		newCost := lookup.Resolve(target)
		result.NewCost = newCost

		if newCost > 0 {
			if err := write(target.ID, newCost); err != nil {
				result.Outcome = OutcomeFailed
				result.Error = err.Error()
				summary.Failed++
			} else {
				result.Outcome = OutcomeUpdated
				summary.Updated++
			}
		} else {
			result.Outcome = OutcomeSkipped
			summary.Skipped++
		}

		results = append(results, result)
	}

	summary.Total = len(targets)
	return results, summary
}
