package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   database DSN (SQLite file path or postgres:// URL)
//	-g string   password hash algorithm ("sha256" or "bcrypt")
//	-m int      failed login attempts tolerated before lockout
//	-n int      verification puzzle size, pieces
//	-w int      challenge completion delay, milliseconds
//	-t bool     seed a test account on startup
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-g", "-m", "-n", "-w", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.HashAlgorithm, "g", config.HashAlgorithm, "password hash algorithm")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max failed login attempts before lockout")
	fs.IntVar(&config.PuzzlePieces, "n", config.PuzzlePieces, "verification puzzle size")

	completionDelay := fs.Int("w", int(config.CompletionDelay.Milliseconds()), "challenge completion delay (in milliseconds)")

	fs.BoolVar(&config.SeedTestAccount, "t", config.SeedTestAccount, "seed a test account on startup")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CompletionDelay = time.Duration(*completionDelay) * time.Millisecond
}
