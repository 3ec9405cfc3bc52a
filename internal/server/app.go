// Package server initializes and runs the gatekeeper server: it selects the
// storage backend from the DSN, applies migrations, wires the credential
// store, the lockout governor and the access service, and starts the HTTP
// endpoint with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/governor"
	"github.com/dmitrijs2005/gatekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/gatekeeper/internal/server/password"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	access *access.Service
	store  *store.Store
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	driver, repos := repomanager.ForDSN(cfg.DatabaseDSN)

	db, err := sql.Open(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hasher, err := password.New(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	st := store.New(db, repos, hasher, logger)
	g := governor.New(st, cfg.MaxLoginAttempts, logger)
	ac := access.NewService(st, g, cfg.PuzzlePieces, cfg.CompletionDelay, logger)

	return &App{config: cfg, logger: logger, db: db, access: ac, store: st}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// seedTestAccount creates a throwaway development account. An already
// existing account is not an error.
func (app *App) seedTestAccount(ctx context.Context) {
	err := app.access.Register(ctx, "Test User", "test@test.com", "123456")
	if err != nil && !errors.Is(err, common.ErrDuplicateEmail) {
		app.logger.Error(ctx, "test account seeding failed", "error", err.Error())
		return
	}
	app.logger.Info(ctx, "test account available", "email", "test@test.com")
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.access, app.store, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.SeedTestAccount {
		app.seedTestAccount(ctx)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
