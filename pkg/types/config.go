// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citetree/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the Semantic Scholar batch client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key. Unauthenticated
	// requests are subject to much stricter rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestDelay is the minimum delay between consecutive batch requests
	// (default 1.5s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries is the number of retry attempts for failed batch requests
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BatchSize caps the number of identifiers per batch request. The API
	// rejects batches above 500; values outside (0, 500] use the default.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Fields is the comma-separated field selector sent with each batch
	// request. Empty selects the default field set.
	Fields string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// BuildConfig holds settings for the citation tree traversal.
type BuildConfig struct {
	// MaxDepth is the maximum traversal depth from the root (default 2).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Verbose enables progress reporting during the build.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// PostgresConfig holds connection parameters for the PostgreSQL exporter.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Table is the destination table name (default "citation_tree").
	Table string `json:"table" yaml:"table"`
}

// DSN returns a pgx-compatible connection string.
func (c PostgresConfig) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, host, port, c.Database)
}

// SQLiteConfig holds settings for the SQLite exporter.
type SQLiteConfig struct {
	// Path is the database file path (default "citetree.db").
	Path string `json:"path" yaml:"path"`

	// Table is the destination table name (default "citation_tree").
	Table string `json:"table" yaml:"table"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Client   ClientConfig   `json:"client" yaml:"client"`
	Build    BuildConfig    `json:"build" yaml:"build"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	SQLite   SQLiteConfig   `json:"sqlite" yaml:"sqlite"`
}
