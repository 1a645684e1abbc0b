// Package config provides centralized configuration management for csvimport.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: localhost)
	Host string `env:"SERVER_HOST" default:"localhost"`

	// Port is the port to listen on (default: 5000)
	Port int `env:"SERVER_PORT" default:"5000"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-import requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig selects the destination database.
type DatabaseConfig struct {
	// Driver is sqlite or postgres; empty infers it from URL.
	Driver string `env:"DB_DRIVER"`

	// URL is the SQLite file path or a Postgres connection string (default: output/test.db)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"output/test.db"`

	// Table is the destination table, replaced on every import (default: csv_import)
	Table string `env:"DB_TABLE" default:"csv_import"`
}

// UploadConfig holds import settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted request body; accepts KB/MB/GB suffixes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"100MB" unit:"bytes"`

	// MaxWaitTime is how long an import waits for a running one to finish (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import, including the wait (default: 5m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`

	// ArtifactPath receives a copy of the extracted CSV; empty disables it (default: uploaded.csv)
	ArtifactPath string `env:"UPLOAD_ARTIFACT_PATH" default:"uploaded.csv" allowEmpty:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
