// Package server initializes and runs the kinkeeper tombstone service.
// It opens the database, runs migrations, wires services and the HTTP API,
// and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avoronova/kinkeeper/internal/logging"
	"github.com/avoronova/kinkeeper/internal/server/config"
	kinhttp "github.com/avoronova/kinkeeper/internal/server/http"
	"github.com/avoronova/kinkeeper/internal/server/metrics"
	"github.com/avoronova/kinkeeper/internal/server/repositories/repomanager"
	"github.com/avoronova/kinkeeper/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	tombstones *services.TombstoneService
	hook       *services.DeletionHook
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repomanager init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	if err := metrics.Register(nil); err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	ts := services.NewTombstoneService(db, rm)
	hook := services.NewDeletionHook(ts, logger)

	return &App{config: c, logger: logger, db: db, tombstones: ts, hook: hook}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := kinhttp.NewServer(app.config.EndpointAddrHTTP, app.logger, app.tombstones, app.hook, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
