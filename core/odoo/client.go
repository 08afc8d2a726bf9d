package odoo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"cost-sync/core/reconcile"
	"cost-sync/core/utils"

	"github.com/kolo/xmlrpc"
)

// Company is one company (tenant) inside the Odoo instance.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client defines the interface for product directory operations.
// All product calls are scoped to a single company; callers must never omit
// the company context.
type Client interface {
	// ListCompanies returns all companies in the Odoo database.
	ListCompanies(ctx context.Context) ([]Company, error)
	// FindZeroCostProducts returns consumable/storable products in the given
	// company whose standard price is exactly 0. The boolean reports whether
	// the result was truncated at the configured read limit.
	FindZeroCostProducts(ctx context.Context, companyID int64) ([]reconcile.ProductRecord, bool, error)
	// FindReferenceProducts returns products in the given company matching
	// any of the SKUs OR any of the names.
	FindReferenceProducts(ctx context.Context, companyID int64, skus, names []string) ([]reconcile.ProductRecord, error)
	// WriteCost sets the standard price for one product in one company.
	WriteCost(ctx context.Context, companyID, productID int64, newCost float64) error
}

// rpcCaller is the slice of *xmlrpc.Client the adapter uses.
// Extracted so decode logic can be tested against a fake endpoint.
type rpcCaller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
}

type client struct {
	cfg       Config
	uid       int64
	object    rpcCaller
	companies *companyCache
}

// Connect authenticates against the Odoo common endpoint and returns a
// ready-to-use client bound to the object endpoint.
func Connect(cfg Config) (Client, error) {
	transport := newTransport(cfg)

	common, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "connect", Err: err}
	}

	// authenticate returns the numeric uid, or false on bad credentials.
	var reply interface{}
	args := []interface{}{cfg.Database, cfg.Username, cfg.Password, map[string]interface{}{}}
	if err := common.Call("authenticate", args, &reply); err != nil {
		return nil, &Error{Kind: KindAuth, Op: "authenticate", Err: err}
	}

	uid := utils.ToInt64(reply)
	if uid == 0 {
		return nil, &Error{Kind: KindAuth, Op: "authenticate",
			Err: fmt.Errorf("invalid credentials for database %q", cfg.Database)}
	}

	object, err := xmlrpc.NewClient(cfg.URL+"/xmlrpc/2/object", transport)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "connect", Err: err}
	}

	c := &client{cfg: cfg, uid: uid, object: object}
	ttl := time.Duration(cfg.CompanyCacheSeconds) * time.Second
	c.companies = newCompanyCache(ttl, c.fetchCompanies)
	return c, nil
}

// newTransport builds an HTTP transport with strict timeouts so a stalled
// Odoo instance cannot hang an operator request indefinitely.
func newTransport(cfg Config) *http.Transport {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	d := time.Duration(timeout) * time.Second

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   d,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   d,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: d,
	}
}

// executeKw issues a model method call through the object endpoint.
func (c *client) executeKw(model, method string, args []interface{}, options map[string]interface{}, reply interface{}) error {
	params := []interface{}{c.cfg.Database, c.uid, c.cfg.Password, model, method, args}
	if options != nil {
		params = append(params, options)
	}
	return c.object.Call("execute_kw", params, reply)
}

// companyScope builds the allowed_company_ids context for a call.
func companyScope(companyID int64) map[string]interface{} {
	return map[string]interface{}{
		"allowed_company_ids": []int64{companyID},
	}
}

func (c *client) ListCompanies(ctx context.Context) ([]Company, error) {
	return c.companies.Get(ctx)
}

// fetchCompanies is the uncached company list load behind the cache.
func (c *client) fetchCompanies(ctx context.Context) ([]Company, error) {
	var reply interface{}
	options := map[string]interface{}{
		"fields": []string{"id", "name"},
	}
	if err := c.executeKw("res.company", "search_read", []interface{}{emptyDomain()}, options, &reply); err != nil {
		return nil, &Error{Kind: KindRead, Op: "list companies", Err: err}
	}
	return companiesFromPayload(reply), nil
}

func (c *client) FindZeroCostProducts(ctx context.Context, companyID int64) ([]reconcile.ProductRecord, bool, error) {
	domain := []interface{}{
		[]interface{}{"type", "in", []string{"consu", "product"}},
		[]interface{}{"standard_price", "=", 0},
	}
	limit := c.cfg.ReadLimit
	if limit <= 0 {
		limit = 10000
	}
	options := map[string]interface{}{
		"fields":  []string{"id", "default_code", "name", "standard_price", "categ_id"},
		"context": companyScope(companyID),
		"limit":   limit,
	}

	var reply interface{}
	if err := c.executeKw("product.product", "search_read", []interface{}{domain}, options, &reply); err != nil {
		return nil, false, &Error{Kind: KindRead, Op: "search zero-cost products", Err: err}
	}

	records := recordsFromPayload(reply)
	return records, len(records) >= limit, nil
}

func (c *client) FindReferenceProducts(ctx context.Context, companyID int64, skus, names []string) ([]reconcile.ProductRecord, error) {
	// Logical OR across both criteria: a reference may match on either key.
	domain := []interface{}{
		"|",
		[]interface{}{"default_code", "in", skus},
		[]interface{}{"name", "in", names},
	}
	options := map[string]interface{}{
		"fields":  []string{"id", "default_code", "name", "standard_price", "categ_id"},
		"context": companyScope(companyID),
	}

	var reply interface{}
	if err := c.executeKw("product.product", "search_read", []interface{}{domain}, options, &reply); err != nil {
		return nil, &Error{Kind: KindRead, Op: "search reference products", Err: err}
	}
	return recordsFromPayload(reply), nil
}

func (c *client) WriteCost(ctx context.Context, companyID, productID int64, newCost float64) error {
	args := []interface{}{
		[]int64{productID},
		map[string]interface{}{"standard_price": newCost},
	}
	options := map[string]interface{}{
		"context": companyScope(companyID),
	}

	var reply interface{}
	if err := c.executeKw("product.product", "write", args, options, &reply); err != nil {
		return &Error{Kind: KindWrite, Op: fmt.Sprintf("write cost for product %d", productID), Err: err}
	}
	return nil
}

// emptyDomain matches every record of a model.
func emptyDomain() []interface{} {
	return []interface{}{}
}
