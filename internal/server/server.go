package server

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
	"github.com/gdpillet/gdpillet-trailmates/internal/config"
	"github.com/gdpillet/gdpillet-trailmates/internal/db"
	"github.com/gdpillet/gdpillet-trailmates/internal/event"
	"github.com/gdpillet/gdpillet-trailmates/internal/kv"
	"github.com/gdpillet/gdpillet-trailmates/internal/language"
	"github.com/gdpillet/gdpillet-trailmates/internal/location"
	"github.com/gdpillet/gdpillet-trailmates/internal/logger"
	"github.com/gdpillet/gdpillet-trailmates/internal/metrics"
	"github.com/gdpillet/gdpillet-trailmates/internal/route"
	"github.com/gdpillet/gdpillet-trailmates/internal/stream"
	"github.com/gdpillet/gdpillet-trailmates/internal/wizard"
)

const storePingTimeout = 2 * time.Second

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Store   kv.Store
	Stream  *stream.Hub
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Catalog *route.Catalog
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client, store kv.Store, catalog *route.Catalog, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if catalog == nil {
		catalog = route.NewCatalog(nil)
	}

	app := fiber.New(fiber.Config{
		AppName:      "trailmates-api",
		ErrorHandler: apperror.Handler(log),
	})
	m := metrics.New()

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(m.Middleware())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      pg,
		Redis:   redisClient,
		Store:   store,
		Stream:  stream.NewHub(redisClient, log),
		Metrics: m,
		Log:     log,
		Catalog: catalog,
	}

	registerRoutes(s)
	return s
}

// Close releases the stream subscription. Pools are owned by the caller.
func (s *Server) Close() error {
	return s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "routes": s.Catalog.Len()})
	})
	s.App.Get("/metrics", s.Metrics.Handler())

	var q db.Querier
	if s.DB != nil {
		q = s.DB
	}

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	authSvc := auth.NewService(s.Cfg.JWTSecret, q)
	routeSvc := route.NewService(s.Catalog, s.Metrics)
	eventSvc := event.NewService(q)
	wizardSvc := wizard.NewService(s.Store, eventSvc, routeSvc, s.Stream, s.Metrics, s.Log, s.Cfg.DefaultCoverImage)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc, jwtMiddleware)
	route.RegisterRoutes(s.App.Group("/routes"), routeSvc)
	event.RegisterRoutes(s.App.Group("/events"), eventSvc, s.Cfg.PublicURL)
	wizard.RegisterRoutes(s.App.Group("/drafts"), wizardSvc, authSvc, jwtMiddleware)

	profile := s.App.Group("/profile")
	language.RegisterRoutes(profile, language.NewService(s.Store, s.Log), jwtMiddleware)
	location.RegisterRoutes(profile, location.NewService(s.Store, location.NewNominatim(s.Cfg.NominatimURL), s.Log), jwtMiddleware)

	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

// NewStore picks the key/value backend. Redis is used unless the sqlite driver
// is configured or the client does not answer a ping; otherwise drafts live in
// the sqlite file. The returned closer is nil for redis, whose client the
// caller owns.
func NewStore(cfg config.Config, rdb *redis.Client, log *zap.Logger) (kv.Store, io.Closer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.KVDriver != config.KVDriverSQLite && rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storePingTimeout)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			return kv.NewRedisStore(rdb), nil, nil
		}
		log.Warn("redis unreachable, using sqlite key/value store",
			zap.String("sqlite_path", cfg.SQLitePath), zap.Error(err))
	}
	conn, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return kv.NewSQLiteStore(conn), conn, nil
}
