// Package main provides the FlowKit API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/governance"
	"github.com/apexcrm/flowkit/pkg/persistence"
	"github.com/apexcrm/flowkit/pkg/registry"
	"github.com/apexcrm/flowkit/pkg/runs"
	"github.com/apexcrm/flowkit/pkg/services"
	"github.com/apexcrm/flowkit/pkg/templates"
	"github.com/apexcrm/flowkit/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		registry:    reg,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.registry, a.eventBus, a.logger)
	stateMachine := governance.NewStateMachine(a.persistence, a.eventBus, a.logger)
	ledger := runs.NewLedger(a.persistence, a.eventBus, a.logger)
	installer := templates.NewInstaller(a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(workflowService, stateMachine, ledger, installer, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowKit API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	// Editor session endpoints:
	w.Get("/:id/editable-graph", handlers.GetEditableGraph)
	w.Put("/:id/graph", handlers.PutGraph)

	// Governance endpoints:
	w.Post("/:id/approval/request", handlers.RequestApproval)
	w.Post("/:id/approval/approve", handlers.Approve)
	w.Post("/:id/approval/reject", handlers.Reject)
	w.Get("/:id/approval/history", handlers.GetApprovalHistory)
	w.Post("/:id/activate", handlers.ActivateWorkflow)
	w.Post("/:id/pause", handlers.PauseWorkflow)

	// Run ledger endpoints:
	w.Post("/:id/runs", handlers.StartRun)
	w.Get("/:id/runs", handlers.GetRuns)
	app.Post("/runs/:runId/complete", handlers.CompleteRun)
	app.Post("/runs/:runId/cancel", handlers.CancelRun)

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Post("/:id/install", handlers.InstallTemplate)

	r := app.Group("/registry")
	r.Get("/action-kinds", handlers.GetActionKinds)
	r.Get("/event-types", handlers.GetEventTypes)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
