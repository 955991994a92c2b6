package database

import (
	"fmt"
	"strings"
)

// Driver identifies the SQL backend behind a connection string.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver Driver
	// DSN is the driver-specific connection string.
	DSN string
	// URL is the original connection string, used by the migrator.
	URL string
}

// NewConfig derives the driver and DSN from a DATABASE_URL style string.
// Accepted forms: postgres://…, postgresql://…, sqlite://path, file:…
func NewConfig(databaseURL string) (*Config, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return &Config{Driver: DriverPostgres, DSN: databaseURL, URL: databaseURL}, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite database url has no path")
		}
		return &Config{Driver: DriverSQLite, DSN: path, URL: databaseURL}, nil
	case strings.HasPrefix(databaseURL, "file:"):
		return &Config{Driver: DriverSQLite, DSN: databaseURL, URL: databaseURL}, nil
	default:
		return nil, fmt.Errorf("unsupported database url %q: expected postgres:// or sqlite://", redact(databaseURL))
	}
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i] + "://…"
	}
	return "…"
}
