package http

import (
	"net/http"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/handlers"
	httpmw "github.com/cyberio/backend/internal/transport/http/middleware"
)

// RouterConfig carries everything the routes need. Limiter, Metrics and
// MetricsHandler are optional.
type RouterConfig struct {
	Config         *config.Config
	Logger         *logger.Logger
	Tracker        ports.ScanTracker
	Timeline       ports.TimelineRepository
	Auth           ports.AuthService
	Agents         ports.AgentService
	Limiter        ports.RateLimiter
	Metrics        ports.ScanMetrics
	MetricsHandler http.Handler
	StartedAt      time.Time
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	scanHandler := handlers.NewScanHandler(cfg.Tracker, cfg.Logger, cfg.Config.Scan.StreamInterval)
	authHandler := handlers.NewAuthHandler(cfg.Auth, cfg.Logger)
	agentHandler := handlers.NewAgentHandler(cfg.Agents, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.Config.Server.Version, cfg.StartedAt)
	timelineHandler := handlers.NewTimelineHandler(cfg.Timeline)
	webhookHandler := handlers.NewWebhookHandler(cfg.Tracker, cfg.Config.Webhook, cfg.Logger)

	optionalSession := httpmw.SessionAuth(cfg.Auth, false)
	requiredSession := httpmw.SessionAuth(cfg.Auth, true)

	app.Get("/health", healthHandler.Health)
	app.Get("/api/health", healthHandler.Health)

	if cfg.MetricsHandler != nil {
		app.Get("/metrics", httpmw.AdminAuth(cfg.Config), adaptor.HTTPHandler(cfg.MetricsHandler))
	}

	// Scan progress stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/scan/:id", optionalSession, websocket.New(scanHandler.Stream))

	// Scan routes
	scan := app.Group("/scan", optionalSession)
	if cfg.Limiter != nil {
		scan.Post("/start", httpmw.RateLimit(cfg.Limiter, cfg.Metrics, cfg.Logger), scanHandler.StartScan)
	} else {
		scan.Post("/start", scanHandler.StartScan)
	}
	scan.Get("/status/:id", scanHandler.GetStatus)
	scan.Get("/list", scanHandler.ListScans)
	scan.Get("/events/:id", scanHandler.GetEvents)

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	if cfg.Config.Auth.SocialLogin {
		auth.Post("/social-login", authHandler.SocialLogin)
	}
	auth.Post("/logout", optionalSession, authHandler.Logout)
	auth.Get("/profile", requiredSession, authHandler.Profile)
	auth.Get("/profile/:session_id", authHandler.Profile)

	// GitHub webhook, only with a signing secret
	if cfg.Config.Webhook.Secret != "" {
		app.Post("/webhook/github", webhookHandler.GitHub)
	} else {
		cfg.Logger.Infow("github_webhook_disabled", "reason", "webhook.secret not set")
	}

	// AI agent routes
	ai := app.Group("/ai")
	ai.Get("/health", agentHandler.Health)
	agents := ai.Group("/agents", requiredSession)
	agents.Post("/", agentHandler.CreateAgent)
	agents.Get("/", agentHandler.ListAgents)
	agents.Get("/:id", agentHandler.GetAgent)
	agents.Post("/:id/message", agentHandler.SendMessage)
	agents.Delete("/:id", agentHandler.DeleteAgent)

	// Timeline routes
	timeline := app.Group("/timeline", httpmw.AdminAuth(cfg.Config))
	timeline.Get("/", timelineHandler.GetEvents)
}
