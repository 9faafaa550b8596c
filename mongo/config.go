package mongo

import (
	"fmt"
	"time"

	appconfig "github.com/origon-labs/apiutils/config"
)

// Config holds MongoDB connection configuration.
type Config struct {
	// URI is the MongoDB connection string.
	URI string `mapstructure:"uri"`

	// Database is the database name.
	Database string `mapstructure:"database"`

	// VersionsCollection names the collection holding schema version documents.
	VersionsCollection string `mapstructure:"versions_collection"`

	// EnumeratorsCollection names the collection holding enumerator documents.
	EnumeratorsCollection string `mapstructure:"enumerators_collection"`

	// ConnectTimeout bounds each connection attempt.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// OperationTimeout bounds individual CRUD calls when the caller's context
	// has no deadline of its own.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`
}

// FromAppConfig derives a Mongo Config from the resolved application
// configuration, with defaults applied.
func FromAppConfig(cfg *appconfig.Config) Config {
	c := Config{
		URI:                   cfg.MongoURI(),
		Database:              cfg.MongoDatabase(),
		VersionsCollection:    cfg.VersionsCollection(),
		EnumeratorsCollection: cfg.EnumeratorsCollection(),
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 10 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.VersionsCollection == "" {
		c.VersionsCollection = "Versions"
	}
	if c.EnumeratorsCollection == "" {
		c.EnumeratorsCollection = "Enumerators"
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database name is required")
	}
	return nil
}
