package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "300ms" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	HashAlgorithm    string         `json:"hash_algorithm"`
	MaxLoginAttempts int            `json:"max_login_attempts"`
	PuzzlePieces     int            `json:"puzzle_pieces"`
	CompletionDelay  timex.Duration `json:"completion_delay"`
	SeedTestAccount  bool           `json:"seed_test_account"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.HashAlgorithm = c.HashAlgorithm
	config.MaxLoginAttempts = c.MaxLoginAttempts
	config.PuzzlePieces = c.PuzzlePieces
	config.CompletionDelay = time.Duration(c.CompletionDelay.Duration)
	config.SeedTestAccount = c.SeedTestAccount
}
