package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/core/services"
	"github.com/cyberio/backend/internal/infrastructure/ai"
	"github.com/cyberio/backend/internal/infrastructure/cache"
	"github.com/cyberio/backend/internal/infrastructure/db"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/infrastructure/memory"
	"github.com/cyberio/backend/internal/infrastructure/metrics"
	"github.com/cyberio/backend/internal/infrastructure/report"
	transporthttp "github.com/cyberio/backend/internal/transport/http"
	httpmw "github.com/cyberio/backend/internal/transport/http/middleware"
)

func main() {
	startedAt := time.Now()

	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		*configPath = "../config/config.yaml"
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	database, err := db.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Info("database connection established")

	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Info("database migrations completed")

	var (
		redisClient *redis.Client
		sessions    ports.SessionStore
		limiter     ports.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		sessions = cache.NewSessionStore(redisClient, log.Named("sessions"))
		limiter = cache.NewTokenBucket(redisClient, cfg.Scan.RateLimitCapacity, cfg.Scan.RateLimitRefill, bucketTTL(cfg.Scan))
		log.Infow("redis_ready", "addr", cfg.Redis.Addr)
	} else {
		sessions = db.NewSessionRepository(database, log)
		limiter = memory.NewRateLimiter(cfg.Scan.RateLimitCapacity, cfg.Scan.RateLimitRefill, bucketTTL(cfg.Scan))
	}

	var (
		scanRepo ports.ScanRepository
		timeline ports.TimelineRepository
	)
	switch cfg.Scan.Store {
	case "database":
		scanRepo = db.NewScanRepository(database, log)
		timeline = db.NewTimelineRepository(database, log)
	default:
		scanRepo = memory.NewScanRepository()
		timeline = memory.NewTimelineRepository(log.Named("timeline"))
	}

	publisher, err := report.New(context.Background(), cfg.Report, log)
	if err != nil {
		log.Fatalf("failed to configure report sink: %v", err)
	}

	routerCfg := transporthttp.RouterConfig{
		Config:    cfg,
		Logger:    log,
		Timeline:  timeline,
		Limiter:   limiter,
		StartedAt: startedAt,
	}
	trackerCfg := services.ScanTrackerConfig{
		Repository: scanRepo,
		Timeline:   timeline,
		Logger:     log.Named("scan"),
		Schedule: services.ScanSchedule{
			StartDelay:    cfg.Scan.StartDelay,
			ProgressDelay: cfg.Scan.ProgressDelay,
			FinishDelay:   cfg.Scan.FinishDelay,
		},
		Publisher:        publisher,
		MaxConcurrent:    cfg.Scan.MaxConcurrent,
		MaxLifetime:      cfg.Scan.MaxLifetime,
		EnforceOwnership: cfg.Scan.EnforceOwnership,
	}
	if cfg.Features.EnableMetrics {
		recorder := metrics.NewRecorder()
		trackerCfg.Metrics = recorder
		routerCfg.Metrics = recorder
		routerCfg.MetricsHandler = metrics.Handler()
	}

	tracker := services.NewScanTracker(trackerCfg)
	routerCfg.Tracker = tracker
	routerCfg.Auth = services.NewAuthService(services.AuthServiceConfig{
		Users:      db.NewUserRepository(database, log),
		Sessions:   sessions,
		Logger:     log.Named("auth"),
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	responder := ai.NewResponder(cfg.AI)
	log.Infow("agent_responder_ready", "responder", responder.Name())
	routerCfg.Agents = services.NewAgentService(db.NewAgentRepository(database, log), responder, log.Named("agents"))

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          globalErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	allowedOrigins := "http://localhost:3000"
	if len(cfg.Auth.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.Auth.AllowedOrigins, ",")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Token, X-Session-ID, " + cfg.Features.RequestIDHeader,
		AllowMethods: "GET, POST, HEAD, PUT, DELETE, PATCH",
	}))

	app.Use(httpmw.RequestID(cfg.Features.RequestIDHeader))
	if cfg.Features.EnableRequestLogging {
		app.Use(httpmw.AccessLog(log))
	}

	transporthttp.SetupRoutes(app, routerCfg)

	go func() {
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	log.Infow("server_started", "addr", cfg.Server.Address(), "scan_store", cfg.Scan.Store, "redis", cfg.Redis.Enabled)

	gracefulShutdown(app, tracker, redisClient, database, log)
}

// bucketTTL keeps an idle bucket around for twice the time it takes to refill.
func bucketTTL(cfg config.ScanConfig) time.Duration {
	if cfg.RateLimitRefill <= 0 {
		return time.Hour
	}
	refill := time.Duration(float64(cfg.RateLimitCapacity) / cfg.RateLimitRefill * float64(time.Second))
	return 2 * refill
}

func globalErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code < fiber.StatusInternalServerError {
			log.Warnw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", httpmw.GetRequestID(c),
			)
		} else {
			log.Errorw("request error",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", httpmw.GetRequestID(c),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func gracefulShutdown(app *fiber.App, tracker ports.ScanTracker, redisClient *redis.Client, database *gorm.DB, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	// Running scans are marked failed before their store goes away.
	if err := tracker.Shutdown(ctx); err != nil {
		log.Errorf("scan tracker did not stop cleanly: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client: %v", err)
		}
	}

	if err := db.Close(database); err != nil {
		log.Errorf("failed to close database connection: %v", err)
	}

	log.Info("server exited gracefully")
}
