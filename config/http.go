package config

import "fmt"

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
	// AllowedOrigins feeds the CORS headers; "*" allows any dashboard.
	AllowedOrigins []string `json:"allowed_origins"`
	// Token is a static bearer token accepted on mutating endpoints.
	Token string `json:"token"`
	// JWTSecret verifies HS256 bearer tokens on mutating endpoints.
	JWTSecret string `json:"jwt_secret"`
	// ReadTimeoutSeconds bounds request reads. Websocket streams are exempt.
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 15
	}
}

func (c HTTPConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.ReadTimeoutSeconds < 0 {
		return fmt.Errorf("read_timeout_seconds must not be negative")
	}
	return nil
}

// AuthEnabled reports whether mutating endpoints require a bearer token.
func (c HTTPConfig) AuthEnabled() bool { return c.Token != "" || c.JWTSecret != "" }
