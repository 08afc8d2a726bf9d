// Package sync implements the cost synchronization workflow feature.
//
// It drives the full operator flow against a multi-company Odoo instance:
// log in, pick a target company, fetch its zero-cost products, filter and
// select a subset, fetch reference costs from the fixed source company, and
// execute the bulk update. The matching and apply logic itself lives in
// core/reconcile; this package owns the session-scoped orchestration around
// it.
//
// # Components
//
//   - Service: Orchestrates the Odoo directory, the reconcile engine, the
//     session store, and the optional run-history and report-archive backends.
//   - Handler: Exposes the HTTP endpoints for every workflow step.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /auth/login       : app login, Odoo connect, session issue.
//   - POST /auth/logout      : destroy the session.
//   - GET  /companies        : companies available as sync targets.
//   - PUT  /session/target   : switch the target company.
//   - POST /session/refresh  : clear fetched data and selection.
//   - POST /products/fetch   : load zero-cost products from the target.
//   - GET  /products         : filtered, paginated product view.
//   - POST /products/selection : mutate the selection set.
//   - POST /references/fetch : build the reference cost lookup.
//   - POST /sync/execute     : run the bulk cost update.
//   - GET  /report           : download the last run ledger as CSV.
//   - GET  /history          : past runs (requires the history database).
//   - GET  /reports          : archived reports (requires storage).
//   - GET  /reports/:name    : download one archived report.
package sync
