// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the playground server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the REST and gRPC endpoints.
//   - DatabaseDSN: MySQL DSN (go-sql-driver format); its database is the control database.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - TenantDBPrefix: prefix of provisioned database names.
//   - TenantCacheTTL: how long a username → database mapping stays cached.
//   - AllowedOrigins: CORS origins for the web front end.
//   - S3*: object storage used by table exports; ExportLinkValidity bounds presigned links.
type Config struct {
	EndpointAddrHTTP             string
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	TenantDBPrefix               string
	TenantCacheTTL               time.Duration
	AllowedOrigins               []string
	LogLevel                     string
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	ExportLinkValidity           time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "root:root@tcp(127.0.0.1:3306)/new_project"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.TenantDBPrefix = "user_db_"
	c.TenantCacheTTL = 10 * time.Minute
	c.AllowedOrigins = []string{"*"}
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "exports"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ExportLinkValidity = 15 * time.Minute
}

// ExportEnabled reports whether table exports have somewhere to go.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != "" && c.S3BaseEndpoint != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
