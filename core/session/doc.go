// Package session holds per-operator state for the cost sync workflow.
//
// A Session is created on login, mutated on user actions, and destroyed on
// logout. It owns everything the browser workflow accumulates between
// requests: the Odoo connection, the company selection, the fetched product
// list, the selection set, the reference cost lookup, and the last run
// ledger. There is deliberately no process-wide session singleton; handlers
// receive the session resolved from the request's bearer token.
//
// The Store is safe for concurrent use because the HTTP server handles
// requests concurrently, but each session is driven by a single operator:
// the design assumes one operator session per target company at a time, and
// concurrent sessions against the same company may race on writes.
package session
