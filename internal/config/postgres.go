package config

import (
	"fmt"
	"strings"
)

// PostgresConfig holds the connection settings of the results database
type PostgresConfig struct {
	User     string
	Password string
	Database string
	Host     string
	Port     string
	SSLMode  string
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(getenv func(string) string) (*PostgresConfig, error) {
	config := &PostgresConfig{
		User:     getenv("POSTGRES_USER"),
		Password: getenv("POSTGRES_PASSWORD"),
		Database: getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOSTNAME"),
		Port:     getenv("POSTGRES_PORT"),
		SSLMode:  getenv("POSTGRES_SSLMODE"),
	}

	// Validate required fields
	if config.User == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("POSTGRES_HOSTNAME is required")
	}
	if config.Port == "" {
		config.Port = "5432"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// ConnectionString returns a lib/pq key=value connection string
func (c *PostgresConfig) ConnectionString() string {
	parts := []string{
		"host=" + quoteConnValue(c.Host),
		"port=" + quoteConnValue(c.Port),
		"user=" + quoteConnValue(c.User),
		"dbname=" + quoteConnValue(c.Database),
		"sslmode=" + quoteConnValue(c.SSLMode),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteConnValue(c.Password))
	}
	return strings.Join(parts, " ")
}

// quoteConnValue quotes values with spaces or quotes the way lib/pq expects
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
