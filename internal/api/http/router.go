package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/http/handlers"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Policies       *handlers.PoliciesHandler
	Violations     *handlers.ViolationsHandler
	Clients        *handlers.ClientsHandler
	KB             *handlers.KBHandler
	Billing        *handlers.BillingHandler
	Audit          *handlers.AuditHandler
	Dashboard      *handlers.DashboardHandler
	Portal         *handlers.PortalHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/portal/login", cfg.Auth.PortalLogin)

	adminOnly := auth.RequireRole(domain.UserRoleAdmin)
	operators := auth.RequireOperator()

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, adminOnly)
	protectedAuth.Post("/users", cfg.Auth.RegisterUser)
	protectedAuth.Post("/portal/users", cfg.Auth.RegisterPortalUser)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, operators)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", cfg.Tickets.Assign)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/time-entries", cfg.Tickets.LogTime)
	tickets.Get("/:id/time-entries", cfg.Tickets.ListTimeEntries)
	tickets.Get("/:id/sla", cfg.Tickets.SlaState)
	tickets.Post("/:id/escalate", cfg.Tickets.Escalate)
	tickets.Get("/:id/escalations", cfg.Tickets.ListEscalations)

	slaDefs := api.Group("/sla-definitions", cfg.AuthMiddleware.Handle, adminOnly)
	slaDefs.Post("", cfg.Policies.CreateSlaDefinition)
	slaDefs.Get("", cfg.Policies.ListSlaDefinitions)
	slaDefs.Get("/:id", cfg.Policies.GetSlaDefinition)
	slaDefs.Put("/:id", cfg.Policies.UpdateSlaDefinition)
	slaDefs.Delete("/:id", cfg.Policies.DeleteSlaDefinition)

	rules := api.Group("/escalation-rules", cfg.AuthMiddleware.Handle, adminOnly)
	rules.Post("", cfg.Policies.CreateEscalationRule)
	rules.Get("", cfg.Policies.ListEscalationRules)
	rules.Get("/:id", cfg.Policies.GetEscalationRule)
	rules.Put("/:id", cfg.Policies.UpdateEscalationRule)
	rules.Delete("/:id", cfg.Policies.DeleteEscalationRule)

	violations := api.Group("/violations", cfg.AuthMiddleware.Handle, operators)
	violations.Get("", cfg.Violations.List)

	clients := api.Group("/clients", cfg.AuthMiddleware.Handle, operators)
	clients.Post("", cfg.Clients.Create)
	clients.Get("", cfg.Clients.List)
	clients.Get("/:id", cfg.Clients.Get)
	clients.Put("/:id", cfg.Clients.Update)
	clients.Get("/:id/contracts", cfg.Clients.ListContracts)
	clients.Get("/:id/assets", cfg.Clients.ListAssets)

	contracts := api.Group("/contracts", cfg.AuthMiddleware.Handle, operators)
	contracts.Post("", cfg.Clients.CreateContract)
	contracts.Get("/:id", cfg.Clients.GetContract)
	contracts.Put("/:id", cfg.Clients.UpdateContract)

	assets := api.Group("/assets", cfg.AuthMiddleware.Handle, operators)
	assets.Post("", cfg.Clients.CreateAsset)
	assets.Get("/:id", cfg.Clients.GetAsset)
	assets.Put("/:id", cfg.Clients.UpdateAsset)

	kb := api.Group("/kb", cfg.AuthMiddleware.Handle)
	kb.Get("", cfg.KB.List)
	kb.Get("/:id", cfg.KB.Get)
	kb.Post("", operators, cfg.KB.Create)
	kb.Put("/:id", operators, cfg.KB.Update)

	invoices := api.Group("/invoices", cfg.AuthMiddleware.Handle, operators)
	invoices.Post("/generate", cfg.Billing.Generate)
	invoices.Get("", cfg.Billing.List)
	invoices.Get("/:id", cfg.Billing.Get)

	audit := api.Group("/audit", cfg.AuthMiddleware.Handle, adminOnly)
	audit.Get("/logs", cfg.Audit.List)
	audit.Get("/summary", cfg.Audit.Summary)

	dashboard := api.Group("/dashboard", cfg.AuthMiddleware.Handle, operators)
	dashboard.Get("/stats", cfg.Dashboard.Stats)

	portal := api.Group("/portal", cfg.AuthMiddleware.Handle)
	portal.Get("/settings", cfg.Portal.Settings)
	portal.Put("/settings", adminOnly, cfg.Portal.UpdateSettings)

	portalTickets := portal.Group("/tickets", auth.RequirePortal())
	portalTickets.Post("", cfg.Portal.OpenTicket)
	portalTickets.Get("", cfg.Portal.ListTickets)
	portalTickets.Get("/:id", cfg.Portal.GetTicket)
	portalTickets.Post("/:id/comments", cfg.Portal.AddComment)
	portalTickets.Get("/:id/comments", cfg.Portal.ListComments)
}
