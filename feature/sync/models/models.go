package models

import (
	"time"

	"cost-sync/core/odoo"
	"cost-sync/core/reconcile"
)

// LoginRequest is the operator credential pair for the web workflow.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CompanyRef identifies one company choice in responses.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LoginResponse carries the issued session and the company landscape.
type LoginResponse struct {
	Token     string         `json:"token"`
	Operator  string         `json:"operator"`
	Companies []odoo.Company `json:"companies"`
	Source    CompanyRef     `json:"source"`
	Target    CompanyRef     `json:"target"`
}

// TargetRequest switches the target company.
type TargetRequest struct {
	CompanyID int64 `json:"company_id"`
}

// FetchResponse reports the outcome of a product fetch.
type FetchResponse struct {
	Count int `json:"count"`
	// Truncated is set when the fetch hit the configured read limit,
	// so the operator knows the list is incomplete.
	Truncated bool `json:"truncated"`
}

// ProductView is one product row in the paginated listing.
type ProductView struct {
	reconcile.ProductRecord
	Selected bool `json:"selected"`
}

// ProductPage is one page of the filtered product listing.
type ProductPage struct {
	Products      []ProductView `json:"products"`
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	TotalPages    int           `json:"total_pages"`
	TotalMatched  int           `json:"total_matched"`
	TotalFetched  int           `json:"total_fetched"`
	SelectedCount int           `json:"selected_count"`
	Truncated     bool          `json:"truncated"`
}

// Selection actions.
const (
	SelectionSelect      = "select"
	SelectionDeselect    = "deselect"
	SelectionSelectAll   = "select_all"
	SelectionDeselectAll = "deselect_all"
	SelectionClear       = "clear"
)

// SelectionRequest mutates the selection set. The select_all and
// deselect_all actions apply to the subset matching Query, mirroring the
// listing filter.
type SelectionRequest struct {
	Action string  `json:"action"`
	IDs    []int64 `json:"ids"`
	Query  string  `json:"query"`
}

// SelectionResponse reports the selection size after a mutation.
type SelectionResponse struct {
	SelectedCount int `json:"selected_count"`
}

// ReferencesResponse reports the reference fetch outcome.
type ReferencesResponse struct {
	// Matches is how many selected products resolved to a reference cost.
	Matches int `json:"matches"`
	// Selected is the size of the selection the lookup was built for.
	Selected int `json:"selected"`
	// References is how many reference records the source company returned.
	References int `json:"references"`
}

// ExecuteResponse carries the run ledger and its aggregate counts.
type ExecuteResponse struct {
	Summary reconcile.Summary  `json:"summary"`
	Results []reconcile.Result `json:"results"`
}

// SyncRun is one executed reconciliation run in the history database.
type SyncRun struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Operator   string        `gorm:"column:operator" json:"operator"`
	SourceID   int64         `gorm:"column:source_id" json:"source_id"`
	SourceName string        `gorm:"column:source_name" json:"source_name"`
	TargetID   int64         `gorm:"column:target_id" json:"target_id"`
	TargetName string        `gorm:"column:target_name" json:"target_name"`
	Updated    int           `gorm:"column:updated" json:"updated"`
	Skipped    int           `gorm:"column:skipped" json:"skipped"`
	Failed     int           `gorm:"column:failed" json:"failed"`
	Total      int           `gorm:"column:total" json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
	Items      []SyncRunItem `gorm:"foreignKey:SyncRunID" json:"items,omitempty"`
}

// TableName overrides the table name for SyncRun.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// SyncRunItem is one ledger row of an executed run.
type SyncRunItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SyncRunID uint    `gorm:"column:sync_run_id;index" json:"-"`
	Product   string  `gorm:"column:product" json:"product"`
	SKU       string  `gorm:"column:sku" json:"sku"`
	NewCost   float64 `gorm:"column:new_cost" json:"new_cost"`
	Status    string  `gorm:"column:status" json:"status"`
	Error     string  `gorm:"column:error" json:"error,omitempty"`
}

// TableName overrides the table name for SyncRunItem.
func (SyncRunItem) TableName() string {
	return "sync_run_items"
}

// RunFromLedger converts an executed run ledger into its history rows.
func RunFromLedger(operator string, sourceID int64, sourceName string, targetID int64, targetName string,
	results []reconcile.Result, summary reconcile.Summary) *SyncRun {

	run := &SyncRun{
		Operator:   operator,
		SourceID:   sourceID,
		SourceName: sourceName,
		TargetID:   targetID,
		TargetName: targetName,
		Updated:    summary.Updated,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		Total:      summary.Total,
	}

	run.Items = make([]SyncRunItem, 0, len(results))
	for _, r := range results {
		run.Items = append(run.Items, SyncRunItem{
			Product: r.ProductName,
			SKU:     r.SKU,
			NewCost: r.NewCost,
			Status:  string(r.Outcome),
			Error:   r.Error,
		})
	}
	return run
}
