package routes

import (
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/adaptor"
    "github.com/gofiber/fiber/v2/middleware/logger"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/backchair/storefront/internal/auth"
    "github.com/backchair/storefront/internal/catalog"
    "github.com/backchair/storefront/internal/checkout"
    "github.com/backchair/storefront/internal/config"
    "github.com/backchair/storefront/internal/identity"
    "github.com/backchair/storefront/internal/logging"
    "github.com/backchair/storefront/internal/metrics"
    "github.com/backchair/storefront/internal/middleware"
    "github.com/backchair/storefront/internal/notification"
    "github.com/backchair/storefront/internal/ticket"
    "github.com/backchair/storefront/internal/verification"
    "github.com/backchair/storefront/internal/webservice"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
    Cfg     config.Config
    DB      *pgxpool.Pool
    Cache   *redis.Client
    Logger  *slog.Logger
    Metrics *metrics.Metrics

    // Optional overrides; defaults are built from Cfg when nil.
    Remote    verification.Remote
    Sessions  auth.SessionStore
    Customers identity.Repository
    Gateway   checkout.PaymentGateway
    Notifier  notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    // Enforce DB/Redis presence outside of dev, even though main also checks.
    if !d.Cfg.IsDev() {
        if d.DB == nil {
            return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Cache == nil {
            return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
    }
    if d.Logger == nil {
        d.Logger = slog.Default()
    }

    // Services
    var (
        identityRepo identity.Repository
        ticketRepo   ticket.Repository
        orderRepo    checkout.Repository
    )
    if d.DB != nil {
        identityRepo = identity.NewPostgresRepository(d.DB)
        ticketRepo = ticket.NewPostgresRepository(d.DB)
        orderRepo = checkout.NewPostgresRepository(d.DB)
    } else {
        identityRepo = identity.NewMemoryRepository()
        ticketRepo = ticket.NewMemoryRepository()
        orderRepo = checkout.NewMemoryRepository()
    }

    if d.Customers != nil {
        identityRepo = d.Customers
    }

    sessions := d.Sessions
    if sessions == nil {
        if d.Cache != nil {
            sessions = auth.NewRedisSessionStore(d.Cache)
        } else {
            sessions = auth.NewMemorySessionStore()
        }
    }
    var flows verification.Store
    if d.Cache != nil {
        flows = verification.NewRedisStore(d.Cache, d.Cfg.FlowTTL)
    } else {
        flows = verification.NewMemoryStore(d.Cfg.FlowTTL)
    }

    remote := d.Remote
    if remote == nil {
        remote = webservice.NewClient(d.Cfg.IdentityServiceURL, d.Cfg.IdentityTimeout,
            logging.Component(d.Logger, "identity-client"), d.Metrics)
    }
    gateway := d.Gateway
    if gateway == nil {
        gateway = checkout.StaticGateway{}
    }
    notifier := d.Notifier
    if notifier == nil {
        notifier = notification.NewLoggerNotifier(d.Logger)
    }

    identitySvc := identity.NewService(identityRepo, d.Cfg.BcryptCost)
    authSvc := auth.NewService(sessions, d.Cfg.SessionSecret, d.Cfg.SessionTTL, d.Metrics)
    ticketSvc := ticket.NewService(ticketRepo, notifier, d.Metrics, d.Logger)
    checkoutSvc := checkout.NewService(orderRepo, gateway, notifier, d.Metrics, d.Logger)

    flowSvc := verification.NewServices(remote, identitySvc)
    flowSvc.AllowAnonymousSkip = d.Cfg.AllowAnonymousSkip
    flowSvc.OnStep = func(k verification.StepKind) { d.Metrics.ObserveStep(string(k)) }

    secure := !d.Cfg.IsDev()
    authHandler := auth.NewHandler(identitySvc, authSvc, d.Logger, secure)
    identityHandler := identity.NewHandler(identitySvc, auth.CurrentUserID)
    ticketHandler := ticket.NewHandler(ticketSvc)
    checkoutHandler := checkout.NewHandler(checkoutSvc)
    catalogHandler := catalog.NewHandler()

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    // Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
    app.Use(logger.New(logger.Config{
        Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
        TimeFormat: "15:04:05",
        TimeZone:   "Local",
    }))
    app.Use(middleware.Audit(logging.Component(d.Logger, "audit")))
    app.Use(middleware.Session(authSvc, d.Logger))

    // Health
    RegisterHealthRoutes(app, d)
    if d.Metrics != nil {
        app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
    }

    api := app.Group("/api")
    api.Get("/ping", func(c *fiber.Ctx) error {
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "status": "ok",
            "request_id": middleware.RequestIDFrom(c),
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    // Public routes
    limiter := middleware.NewLoginLimiter(d.Cache, d.Cfg.LoginAttemptsPerMinute)
    RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(limiter, nil, d.Logger))
    RegisterVerificationRoutes(api, flowSvc, flows, identitySvc, authHandler, limiter, logging.Component(d.Logger, "verification"))
    RegisterCatalogRoutes(api, catalogHandler)

    // Protected routes
    protected := api.Group("", middleware.RequireSession())
    if d.Cache != nil {
        protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
    }
    protected.Get("/account", identityHandler.Account)
    RegisterTicketRoutes(protected, ticketHandler)
    RegisterCheckoutRoutes(protected, checkoutHandler)

    return nil
}
