// Package api exposes a workflow graph and its engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
)

type API struct {
	logger        *slog.Logger
	graph         *floworb.Graph
	engine        *floworb.Engine
	journal       journal.Store
	notifications *notify.Recorder
	validate      *validator.Validate

	// CORSOrigins restricts cross-origin callers. Empty allows any origin.
	CORSOrigins []string
}

// NewAPI wires the HTTP surface. runs and notifications may be nil, in
// which case their endpoints answer with empty lists.
func NewAPI(
	logger *slog.Logger,
	graph *floworb.Graph,
	engine *floworb.Engine,
	runs journal.Store,
	notifications *notify.Recorder,
) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		logger:        logger,
		graph:         graph,
		engine:        engine,
		journal:       runs,
		notifications: notifications,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	h := &handlers{
		logger:        a.logger,
		graph:         a.graph,
		engine:        a.engine,
		journal:       a.journal,
		notifications: a.notifications,
		validator:     a.validate,
	}

	app := fiber.New()
	if len(a.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{AllowOrigins: a.CORSOrigins}))
	} else {
		app.Use(cors.New())
	}
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Floworb API")
	})

	app.Get("/graph", h.GetGraph)

	n := app.Group("/nodes")
	n.Get("/", h.ListNodes)
	n.Post("/", h.CreateNode)
	n.Get("/:id", h.GetNode)
	n.Patch("/:id", h.UpdateNode)
	n.Delete("/:id", h.DeleteNode)
	n.Post("/:id/run", h.RunNode)
	n.Get("/:id/runs", h.ListRuns)

	conns := app.Group("/connections")
	conns.Get("/", h.ListConnections)
	conns.Post("/", h.CreateConnection)
	conns.Delete("/:id", h.DeleteConnection)

	app.Get("/runs/:runId", h.GetRun)
	app.Get("/notifications", h.ListNotifications)

	return app
}

// Serve listens on port until ctx is cancelled, then shuts the server down.
func (a *API) Serve(ctx context.Context, port int) error {
	app := a.App()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + strconv.Itoa(port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down HTTP server")
		return app.Shutdown()
	}
}
