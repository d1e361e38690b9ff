package server

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/backchair/storefront/internal/config"
    "github.com/backchair/storefront/internal/metrics"
    "github.com/backchair/storefront/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
    app *fiber.App
    cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
    return NewWithDeps(routes.Deps{Cfg: cfg, DB: db, Cache: cache, Metrics: m, Logger: logger})
}

// NewWithDeps builds the server from a fully populated dependency set, which
// lets tests swap the identity service client or the session store.
func NewWithDeps(d routes.Deps) (*Server, error) {
    app := fiber.New(fiber.Config{
        AppName:      d.Cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
        ErrorHandler: errorHandler(d.Logger),
    })

    if err := routes.Setup(app, d); err != nil {
        return nil, err
    }

    return &Server{app: app, cfg: d.Cfg}, nil
}

// App exposes the underlying Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
    return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
    return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every error as {"error": message}. Errors that are not
// *fiber.Error become a 500 with a generic message.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
    return func(c *fiber.Ctx, err error) error {
        code := http.StatusInternalServerError
        msg := "internal error"

        var fe *fiber.Error
        if errors.As(err, &fe) {
            code, msg = fe.Code, fe.Message
        } else if logger != nil {
            logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
        }
        return c.Status(code).JSON(fiber.Map{"error": msg})
    }
}
