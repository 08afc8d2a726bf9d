// Package odoo provides the product directory adapter for the Odoo ERP.
//
// It wraps Odoo's external XML-RPC API (the /xmlrpc/2/common and
// /xmlrpc/2/object endpoints) behind a narrow Client interface covering the
// four calls the reconciliation workflow needs: list companies, search
// zero-cost products, search reference products by SKU or name, and write a
// product's standard price.
//
// # Company scoping
//
// Every product call carries an allowed_company_ids context. In a
// multi-company Odoo database the same product id space is shared across
// companies, and standard_price is a company-dependent property field, so an
// unscoped read or write would silently operate on the wrong company.
//
// # Error model
//
// All failures are returned as *Error with a Kind (Auth, Config, Read,
// Write). Callers use KindOf to decide how to surface a failure: read
// failures become an error banner with prior state preserved, write failures
// become per-item Failed outcomes in the run ledger.
//
// # Client Interface
//
// The Client interface makes the directory mockable for unit testing
// (see core/odoo/mocks).
package odoo
