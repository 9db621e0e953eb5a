// Package config provides centralized configuration management for the converter.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Convert  ConvertConfig
	Inbox    InboxConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080). PORT is honoured for PaaS deployments.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds web upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 16MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"16777216"`

	// MaxConcurrent is the maximum number of conversions running at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a conversion slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for the convert endpoint (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are believed. Empty trusts none.
	TrustedProxies string `env:"SECURITY_TRUSTED_PROXIES"`

	// RequireAPIKey protects the /api routes with an X-API-Key header.
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys string `env:"SECURITY_API_KEYS"`
}

// TrustedProxyList returns TrustedProxies split on commas.
func (c SecurityConfig) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

// APIKeyList returns APIKeys split on commas.
func (c SecurityConfig) APIKeyList() []string {
	return splitList(c.APIKeys)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ConvertConfig holds the pipeline policy settings.
type ConvertConfig struct {
	// Layout is a registered layout key, or "auto" to detect from the header (default: auto)
	Layout string `env:"CONVERT_LAYOUT" default:"auto"`

	// LayoutFile is an optional YAML file with additional layouts
	LayoutFile string `env:"CONVERT_LAYOUT_FILE"`

	// OutputName is the file name given to converted output (default: 11_Ready.csv)
	OutputName string `env:"CONVERT_OUTPUT_NAME" default:"11_Ready.csv"`

	// OutputFormat is csv or xlsx (default: csv)
	OutputFormat string `env:"CONVERT_OUTPUT_FORMAT" default:"csv"`

	// VehiclePolicy is B (two-digit year, make, model) or A (four-digit year, model) (default: B)
	VehiclePolicy string `env:"CONVERT_VEHICLE_POLICY" default:"B"`

	// AppointmentLayout is the Go time layout used to render the appointment date
	AppointmentLayout string `env:"CONVERT_APPOINTMENT_LAYOUT" default:"Monday, January 2"`

	// RequireAppointment drops rows whose appointment date or time did not parse (default: false)
	RequireAppointment bool `env:"CONVERT_REQUIRE_APPOINTMENT" default:"false"`

	// InputEncoding is utf-8, windows-1252 or latin1 (default: utf-8)
	InputEncoding string `env:"CONVERT_INPUT_ENCODING" default:"utf-8"`

	// OutputCRLF terminates output rows with \r\n (default: true)
	OutputCRLF bool `env:"CONVERT_OUTPUT_CRLF" default:"true"`

	// HeaderSearchRows is how many leading rows may precede the header (default: 20)
	HeaderSearchRows int `env:"CONVERT_HEADER_SEARCH_ROWS" default:"20"`
}

// InboxConfig holds settings for directory sweeps.
type InboxConfig struct {
	// Dir is the directory scanned for new exports
	Dir string `env:"INBOX_DIR"`

	// OutputDir receives converted files (default: next to the input)
	OutputDir string `env:"INBOX_OUTPUT_DIR"`

	// Schedule is an optional cron expression for periodic sweeps
	Schedule string `env:"INBOX_SCHEDULE"`

	// Debounce delays a sweep after file events settle (default: 500ms)
	Debounce time.Duration `env:"INBOX_DEBOUNCE" default:"500ms"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled serves metrics on the web server (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is the metrics endpoint (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
