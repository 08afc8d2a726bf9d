// Package reconcile implements the cost reconciliation engine.
//
// It matches zero-cost products from a target company against reference
// products from a source company and produces a per-item ledger of outcomes.
// The engine is a pure pass over data: it never talks to Odoo directly, and
// the only side effect is the write callback invoked once per matched item.
//
// # Operations
//
// 1. BuildCostLookup: builds a map from SKU and product name to a reference
// cost. Only reference records with a positive cost contribute; a zero cost
// is never reference truth.
//
// 2. ApplyCosts: resolves a cost for every target record (SKU key first,
// then name key), invokes the write callback for records with a match, and
// returns one Result per record in input order plus aggregate counts.
//
// # Failure model
//
// A failed write marks that record Failed and processing continues; partial
// success across a batch is a valid terminal state. There are no retries and
// no rollback. Re-running the affected subset is the retry story.
//
// # Usage Example
//
//	lookup := reconcile.BuildCostLookup(referenceRecords)
//	results, summary := reconcile.ApplyCosts(targets, lookup, func(id int64, cost float64) error {
//	    return client.WriteCost(ctx, targetCompanyID, id, cost)
//	})
package reconcile
