package odoo

// Config holds configuration for the Odoo connection.
type Config struct {
	// URL is the base URL of the Odoo instance (scheme included).
	URL string `mapstructure:"url" default:"http://localhost:8069"`
	// Database is the Odoo database (tenant) name.
	Database string `mapstructure:"database" default:"odoo"`
	// Username is the service account used for the XML-RPC session.
	Username string `mapstructure:"username" default:""`
	// Password is the service account password or API key.
	Password string `mapstructure:"password" default:""`
	// SourceCompany is the name of the company whose costs are reference truth.
	SourceCompany string `mapstructure:"source_company" default:""`
	// ReadLimit caps the number of records returned by a single product
	// search. Results hitting the cap are reported as truncated, not silently
	// cut off.
	ReadLimit int `mapstructure:"read_limit" default:"10000"`
	// CompanyCacheSeconds is the TTL for the cached company list.
	// Zero disables caching.
	CompanyCacheSeconds int `mapstructure:"company_cache_seconds" default:"300"`
	// TimeoutSeconds is the HTTP timeout for XML-RPC calls.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
