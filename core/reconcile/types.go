package reconcile

// ProductRecord identifies one sellable item inside one company context.
type ProductRecord struct {
	// ID is the Odoo record id, unique within a company.
	ID int64 `json:"id"`

	// SKU is the external product code (default_code). May be empty.
	SKU string `json:"sku"`

	// Name is the product display name. Never empty in Odoo.
	Name string `json:"name"`

	// Cost is the standard price of the product.
	Cost float64 `json:"cost"`

	// Category is the display name of the product category. Informational only.
	Category string `json:"category"`
}

// CostLookup maps a matching key (SKU or product name) to a reference cost.
// It is built fresh per reconciliation run.
type CostLookup map[string]float64

// Resolve returns the reference cost for a record, checking the SKU key
// before the name key. Returns 0 when neither key is present.
func (l CostLookup) Resolve(r ProductRecord) float64 {
	if r.SKU != "" {
		if cost, ok := l[r.SKU]; ok {
			return cost
		}
	}
	return l[r.Name]
}

// Outcome classifies the result of processing a single target record.
type Outcome string

const (
	// OutcomeUpdated means the new cost was written successfully.
	OutcomeUpdated Outcome = "updated"
	// OutcomeSkipped means no reference cost was found; nothing was written.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the write was attempted and rejected.
	OutcomeFailed Outcome = "failed"
)

// Result is the reconciliation outcome for a single target record.
// Results are immutable once created and ordered like the input.
type Result struct {
	// ProductName is the display name of the target product.
	ProductName string `json:"product"`

	// SKU is the target product SKU, or "" when the product has none.
	SKU string `json:"sku"`

	// NewCost is the resolved reference cost, 0 when no match was found.
	NewCost float64 `json:"new_cost"`

	// Outcome is the terminal state for this record.
	Outcome Outcome `json:"outcome"`

	// Error holds the write error message for failed records.
	Error string `json:"error,omitempty"`
}

// Summary provides aggregate counts for a reconciliation run.
// Updated+Skipped+Failed always equals Total.
type Summary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// WriteFunc persists a new cost for one product. Implementations are
// expected to scope the write to the target company.
type WriteFunc func(id int64, cost float64) error
