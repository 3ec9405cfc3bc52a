// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the gatekeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: SQLite file path or PostgreSQL DSN (pgx).
//   - HashAlgorithm: password digest algorithm ("sha256" or "bcrypt").
//   - MaxLoginAttempts: failed attempts tolerated before lockout.
//   - PuzzlePieces: size of the verification challenge.
//   - CompletionDelay: pause between solving the challenge and the reset.
//   - SeedTestAccount: create a throwaway test account on startup.
type Config struct {
	EndpointAddrHTTP string
	DatabaseDSN      string
	HashAlgorithm    string
	MaxLoginAttempts int
	PuzzlePieces     int
	CompletionDelay  time.Duration
	SeedTestAccount  bool
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = "gatekeeper.db"
	c.HashAlgorithm = "sha256"
	c.MaxLoginAttempts = 3
	c.PuzzlePieces = 4
	c.CompletionDelay = 300 * time.Millisecond
	c.SeedTestAccount = false
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
