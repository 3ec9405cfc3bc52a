package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/cli"
	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/governor"
	"github.com/dmitrijs2005/gatekeeper/internal/server/password"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	driver, repos := repomanager.ForDSN(cfg.DatabaseDSN)

	db, err := sql.Open(driver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	if err := repos.RunMigrations(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	hasher, err := password.New(cfg.HashAlgorithm)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	st := store.New(db, repos, hasher, logger)
	g := governor.New(st, cfg.MaxLoginAttempts, logger)
	a := access.NewService(st, g, cfg.PuzzlePieces, cfg.CompletionDelay, logger)

	args := flagx.StripArgs(os.Args[1:], []string{"-a", "-d", "-g", "-m", "-n", "-w", "-t", "-c", "-config", "--config"})

	app := cli.NewApp(a, st, os.Stdin, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
