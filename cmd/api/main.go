package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdpillet/gdpillet-trailmates/internal/config"
	"github.com/gdpillet/gdpillet-trailmates/internal/db"
	"github.com/gdpillet/gdpillet-trailmates/internal/kv"
	"github.com/gdpillet/gdpillet-trailmates/internal/logger"
	"github.com/gdpillet/gdpillet-trailmates/internal/route"
	"github.com/gdpillet/gdpillet-trailmates/internal/server"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	newLogger       func(config.Config) (*zap.Logger, error)
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	migrate         func(context.Context, db.Querier) error
	openStore       func(config.Config, *redis.Client, *zap.Logger) (kv.Store, io.Closer, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, kv.Store, *zap.Logger, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		newLogger:       logger.New,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		migrate:         db.MigratePostgres,
		openStore:       server.NewStore,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	log, err := deps.newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, continuing without logs: %v\n", err)
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Warn("postgres connection failed", zap.Error(err))
		pg = nil
	}
	if pg != nil {
		if err := migrate(deps, pg); err != nil {
			log.Error("postgres migration failed", zap.Error(err))
		}
	}

	rdb := deps.connectRedis(cfg)

	store, closer, err := deps.openStore(cfg, rdb, log)
	if err != nil {
		log.Error("key/value store unavailable", zap.String("driver", cfg.KVDriver), zap.Error(err))
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, store, log, signals, nil); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}
}

func migrate(deps mainDeps, pg *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return deps.migrate(ctx, pg)
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

var loadCatalogFn = func(ctx context.Context, pg *pgxpool.Pool) (*route.Catalog, error) {
	return route.NewRepository(pg).LoadCatalog(ctx)
}

// Run loads the route catalog, starts the HTTP server and waits for a
// termination signal or ctx cancellation.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, store kv.Store, log *zap.Logger, signals <-chan os.Signal, listen ListenFunc) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := server.NewServer(cfg, pg, rdb, store, loadCatalog(ctx, pg, log), log)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	_ = srv.Close()
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("server stopped")
	return nil
}

// loadCatalog never fails: without a database the api serves an empty catalog.
func loadCatalog(ctx context.Context, pg *pgxpool.Pool, log *zap.Logger) *route.Catalog {
	if pg == nil {
		log.Warn("postgres unavailable, route catalog is empty")
		return route.NewCatalog(nil)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	catalog, err := loadCatalogFn(ctx, pg)
	if err != nil {
		log.Error("load route catalog", zap.Error(err))
		return route.NewCatalog(nil)
	}
	log.Info("route catalog loaded", zap.Int("routes", catalog.Len()))
	return catalog
}
