package session

import (
	"strings"
	"sync"
	"time"

	"cost-sync/core/odoo"
	"cost-sync/core/reconcile"
)

// Session is the state of one logged-in operator.
type Session struct {
	// Token is the opaque bearer token identifying this session.
	Token string
	// Operator is the application username that logged in.
	Operator string
	// Odoo is the directory connection acquired at login and released on logout.
	Odoo odoo.Client

	mu         sync.Mutex
	companies  []odoo.Company
	sourceID   int64
	sourceName string
	targetID   int64
	targetName string
	products   []reconcile.ProductRecord
	truncated  bool
	selection  map[int64]struct{}
	lookup     reconcile.CostLookup
	results    []reconcile.Result
	summary    reconcile.Summary
	lastRun    time.Time
	lastSeen   time.Time
}

// Companies returns the companies fetched at login.
func (s *Session) Companies() []odoo.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companies
}

// Source returns the fixed source company.
func (s *Session) Source() (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceID, s.sourceName
}

// Target returns the currently selected target company.
func (s *Session) Target() (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetID, s.targetName
}

// SetTarget switches the target company and clears all data derived from the
// previous target: products, selection, lookup and results.
func (s *Session) SetTarget(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetID = id
	s.targetName = name
	s.resetLocked()
}

// Reset clears fetched products, selection, lookup and results while keeping
// the company choices. This is the operator's "refresh data" action.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.products = nil
	s.truncated = false
	s.selection = make(map[int64]struct{})
	s.lookup = nil
	s.results = nil
	s.summary = reconcile.Summary{}
}

// SetProducts replaces the fetched target products and clears the selection
// and any stale lookup or results.
func (s *Session) SetProducts(products []reconcile.ProductRecord, truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.products = products
	s.truncated = truncated
}

// Products returns the fetched target products and the truncation flag.
func (s *Session) Products() ([]reconcile.ProductRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products, s.truncated
}

// FilterProducts returns the products whose name or SKU contains the query,
// case-insensitively. An empty query matches everything.
func (s *Session) FilterProducts(query string) []reconcile.ProductRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		return s.products
	}

	q := strings.ToLower(query)
	matched := make([]reconcile.ProductRecord, 0, len(s.products))
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Select adds product ids to the selection set. Ids not present in the
// fetched product list are ignored; the selection only ever holds stable
// record identifiers from the current fetch.
func (s *Session) Select(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.knownIDsLocked()
	for _, id := range ids {
		if _, ok := known[id]; ok {
			s.selection[id] = struct{}{}
		}
	}
}

// Deselect removes product ids from the selection set.
func (s *Session) Deselect(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.selection, id)
	}
}

// ClearSelection empties the selection set.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[int64]struct{})
}

func (s *Session) knownIDsLocked() map[int64]struct{} {
	known := make(map[int64]struct{}, len(s.products))
	for _, p := range s.products {
		known[p.ID] = struct{}{}
	}
	return known
}

// IsSelected reports whether a product id is in the selection set.
func (s *Session) IsSelected(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selection[id]
	return ok
}

// SelectionCount returns the number of selected products.
func (s *Session) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selection)
}

// SelectedProducts returns the selected records in fetch order. Order
// matters: the run ledger reflects the order the operator reviewed.
func (s *Session) SelectedProducts() []reconcile.ProductRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]reconcile.ProductRecord, 0, len(s.selection))
	for _, p := range s.products {
		if _, ok := s.selection[p.ID]; ok {
			selected = append(selected, p)
		}
	}
	return selected
}

// SetLookup stores the reference cost lookup for the pending run.
func (s *Session) SetLookup(lookup reconcile.CostLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookup = lookup
}

// Lookup returns the stored reference cost lookup, or nil before the
// reference fetch step has run.
func (s *Session) Lookup() reconcile.CostLookup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup
}

// SetResults stores the ledger of the last executed run.
func (s *Session) SetResults(results []reconcile.Result, summary reconcile.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.summary = summary
	s.lastRun = time.Now()
}

// Results returns the last run ledger, its summary, and the run timestamp.
func (s *Session) Results() ([]reconcile.Result, reconcile.Summary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.summary, s.lastRun
}

// touch records activity for idle expiry.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
