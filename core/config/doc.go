// Package config provides configuration management for cost-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, app login pair, session TTL)
//   - Odoo: XML-RPC endpoint, tenant, service credentials, source company
//   - Database: run-history database connection
//   - Storage: S3/MinIO report archive
//   - Log: logging level and format
//
// Environment variables map to nested keys: SERVER_PORT -> server.port,
// ODOO_SOURCE_COMPANY -> odoo.source_company, and so on.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Odoo.URL)
package config
