// Package utils provides common utility functions for the cost-sync application.
// Its main job is converting dynamically typed XML-RPC payload values (Odoo
// returns untyped maps) into concrete Go types without panicking on surprises.
package utils
