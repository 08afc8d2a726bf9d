// Package server holds configuration for the HTTP surface of cost-sync.
//
// Besides the listen port it carries the application login pair: the
// operator-facing username/password that gates the web workflow. These are
// deliberately distinct from the Odoo service account credentials, which
// live in the odoo package configuration.
package server
