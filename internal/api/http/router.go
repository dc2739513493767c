package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/http/handlers"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Patients       *handlers.PatientsHandler
	Appointments   *handlers.AppointmentsHandler
	Records        *handlers.RecordsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Each guarded route declares its role
// allowlist once at registration; an empty RequireRole() gate means any
// authenticated caller.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authed.Get("/me", auth.RequireRole(), cfg.Auth.Me)
	authed.Post("/password/change", auth.RequireRole(), cfg.Auth.ChangePassword)
	authed.Post("/staff", auth.RequireRole(domain.RoleAdmin), cfg.Auth.CreateStaff)

	patients := app.Group("/patients", cfg.AuthMiddleware.Handle)
	patients.Get("/me", auth.RequireRole(domain.RolePatient), cfg.Patients.GetMe)
	patients.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Patients.Create)
	patients.Get("", auth.RequireRole(domain.RoleAdmin, domain.RoleDoctor), cfg.Patients.List)
	patients.Get("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleDoctor), cfg.Patients.Get)
	patients.Patch("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleDoctor), cfg.Patients.Update)
	patients.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Patients.Deactivate)
	patients.Get("/:id/records", auth.RequireRole(domain.RoleAdmin, domain.RoleDoctor), cfg.Records.ListByPatient)

	appointments := app.Group("/appointments", cfg.AuthMiddleware.Handle)
	appointments.Post("", auth.RequireRole(domain.RolePatient, domain.RoleAdmin), cfg.Appointments.Book)
	appointments.Get("", auth.RequireRole(), cfg.Appointments.List)
	appointments.Get("/:id", auth.RequireRole(), cfg.Appointments.Get)
	appointments.Post("/:id/status", auth.RequireRole(domain.RoleDoctor, domain.RoleAdmin), cfg.Appointments.UpdateStatus)
	appointments.Post("/:id/cancel", auth.RequireRole(domain.RolePatient, domain.RoleAdmin), cfg.Appointments.Cancel)

	records := app.Group("/records", cfg.AuthMiddleware.Handle)
	records.Get("/me", auth.RequireRole(domain.RolePatient), cfg.Records.ListMine)
	records.Post("", auth.RequireRole(domain.RoleDoctor), cfg.Records.Create)
	records.Patch("/:id", auth.RequireRole(domain.RoleDoctor), cfg.Records.Amend)
}
