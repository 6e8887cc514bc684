package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Config holds the database connection settings read from the key=value
// configuration file. Built once at startup and passed by reference; keys
// missing from the file stay empty.
type Config struct {
	DatabaseName string
	User         string
	Password     string
	Address      string
	Port         string
	LogLevel     string
}

// Load parses a key=value file (godotenv syntax) into a Config.
func Load(path string) (*Config, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromMap(vals), nil
}

// FromMap builds a Config from already-parsed key=value pairs.
func FromMap(vals map[string]string) *Config {
	return &Config{
		DatabaseName: vals["DB_SCHEMA"],
		User:         vals["DB_USER"],
		Password:     vals["DB_PASSWORD"],
		Address:      vals["DB_ADDRESS"],
		Port:         vals["DB_PORT"],
		LogLevel:     vals["LOG_LEVEL"],
	}
}

// DSN is the connection string for the configured database.
func (c *Config) DSN() string {
	return c.dsn(c.DatabaseName)
}

// MaintenanceDSN targets the engine's built-in postgres database, used
// only to create the configured database when it does not exist yet.
func (c *Config) MaintenanceDSN() string {
	return c.dsn("postgres")
}

func (c *Config) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Address, c.Port, database)
}
