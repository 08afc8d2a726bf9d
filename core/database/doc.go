// Package database handles the run-history database connection.
//
// It provides a wrapper around GORM to configure MySQL connections (or
// SQLite, used by tests and small deployments) based on the application's
// configuration. The database is optional: when the connection fails at
// startup, cost-sync runs with run history disabled rather than refusing
// to start.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("history disabled", zap.Error(err))
//	}
package database
