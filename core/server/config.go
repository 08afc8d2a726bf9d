package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// AppUsername is the operator login name for the web workflow.
	AppUsername string `mapstructure:"app_username" default:"admin"`
	// AppPassword is the operator login password. Empty disables login.
	AppPassword string `mapstructure:"app_password" default:""`
	// SessionTTLMinutes is the idle timeout for operator sessions.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" default:"60"`
}

// CheckLogin verifies an operator credential pair. A blank configured
// password always fails: an unset password must not mean open access.
func (c Config) CheckLogin(username, password string) bool {
	if c.AppPassword == "" {
		return false
	}
	return username == c.AppUsername && password == c.AppPassword
}
