package dbsql

import (
	"net/url"
	"strings"
)

// Config defines the configuration for the client.
type Config struct {
	// Host is the URL of the Databricks workspace, e.g. "https://adb-123.4.azuredatabricks.net".
	//
	// When the scheme is omitted, https is assumed.
	Host string `json:"host"`
	// Token is the bearer token sent with every request.
	Token string `json:"token"`
	// WarehouseID is the default SQL warehouse for statements that do not name one.
	WarehouseID string `json:"warehouse_id"`
}

// endpoint resolves path against the configured host.
func (c *Config) endpoint(path string) (*url.URL, error) {
	if c.Host == "" {
		return nil, ErrMissingHost
	}
	if c.Token == "" {
		return nil, ErrMissingToken
	}

	host := strings.TrimRight(c.Host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return url.Parse(host + path)
}
