package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http": "www.example:9000",
		"database_dsn":       "access.db",
		"hash_algorithm":     "bcrypt",
		"max_login_attempts": 5,
		"puzzle_pieces":      9,
		"completion_delay":   "250ms",
		"seed_test_account":  true,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "access.db", cfg.DatabaseDSN)
		assert.Equal(t, "bcrypt", cfg.HashAlgorithm)
		assert.Equal(t, 5, cfg.MaxLoginAttempts)
		assert.Equal(t, 9, cfg.PuzzlePieces)
		assert.Equal(t, 250*time.Millisecond, cfg.CompletionDelay)
		assert.True(t, cfg.SeedTestAccount)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP: "defaults:1234",
			DatabaseDSN:      "access.db",
			HashAlgorithm:    "sha256",
			MaxLoginAttempts: 3,
			PuzzlePieces:     4,
			CompletionDelay:  300 * time.Millisecond,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "access.db", cfg.DatabaseDSN)
		assert.Equal(t, "sha256", cfg.HashAlgorithm)
		assert.Equal(t, 3, cfg.MaxLoginAttempts)
		assert.Equal(t, 4, cfg.PuzzlePieces)
		assert.Equal(t, 300*time.Millisecond, cfg.CompletionDelay)
		assert.False(t, cfg.SeedTestAccount)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
