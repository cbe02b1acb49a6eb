package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/wellpass/wellpass-backend/internal/config"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
	"github.com/wellpass/wellpass-backend/internal/pkg/metrics"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth      AuthHandler
	Me        MeHandler
	Company   CompanyHandler
	Employee  EmployeeHandler
	Invoice   InvoiceHandler
	Partner   PartnerHandler
	Plan      PlanHandler
	CheckIn   CheckInHandler
	Analytics AnalyticsHandler
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	JWTService     jwt.Service
	Membership     *middleware.MembershipMiddleware
	PartnerService partner.PartnerService
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
	RateLimit      config.RateLimitConfig
	Mock           config.MockConfig
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderPartnerID, middleware.HeaderTerminalKey},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Instrument)
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Mock.LatencyEnabled {
			r.Use(middleware.SimulatedLatency(cfg.Mock.LatencyMin, cfg.Mock.LatencyMax))
		}

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.Handler).Post("/login", h.Auth.Login)
			r.With(limiter.Handler).Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.With(limiter.Handler).Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		// Public catalogue
		r.Get("/plans", h.Plan.List)
		r.Get("/plans/{id}", h.Plan.GetByID)
		r.Get("/partners", h.Partner.ListApproved)
		r.Get("/partners/{id}", h.Partner.GetApproved)

		// Partner terminals authenticate with their own key, not a user session.
		r.Route("/terminal", func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Use(middleware.TerminalAuth(cfg.PartnerService))
			r.Post("/checkins", h.CheckIn.RecordFromTerminal)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(cfg.Membership.RequireActiveMembership)

			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.RequireRoles(user.RoleEmployee, user.RoleCompanyAdmin, user.RolePlatformAdmin))
				r.Get("/", h.Me.GetProfile)
				r.Patch("/", h.Me.UpdateProfile)
				r.Get("/checkins", h.Me.ListCheckIns)
				r.Get("/quota", h.Me.GetQuota)

				r.Group(func(r chi.Router) {
					r.Use(middleware.EmployeeOnly)
					r.Post("/qr-token", h.Me.IssueQRToken)
					r.Get("/qr-token/stream", h.Me.StreamQRToken)
					r.Get("/qr-token/pass", h.Me.DownloadPass)
				})
			})

			r.Route("/company", func(r chi.Router) {
				r.Use(middleware.RequireCompany)
				r.Get("/employees", h.Employee.List)
				r.Post("/employees/invite", h.Employee.Invite)
				r.Put("/employees/{id}/plan", h.Employee.AssignPlan)
				r.Post("/employees/{id}/deactivate", h.Employee.Deactivate)
				r.Get("/usage", h.Employee.Usage)
				r.Get("/invoices", h.Invoice.ListForCompany)
				r.Get("/invoices/{id}/pdf", h.Invoice.DownloadPDF)
				r.Get("/plans", h.Plan.List)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/partners", func(r chi.Router) {
					r.Get("/", h.Partner.List)
					r.Post("/", h.Partner.Create)
					r.Put("/{id}", h.Partner.Update)
					r.Delete("/{id}", h.Partner.Delete)
					r.Patch("/{id}/status", h.Partner.UpdateStatus)
					r.Post("/{id}/terminal-key", h.Partner.RotateTerminalKey)
				})

				r.Route("/plans", func(r chi.Router) {
					r.Get("/", h.Plan.List)
					r.Post("/", h.Plan.Create)
					r.Put("/{id}", h.Plan.Update)
					r.Delete("/{id}", h.Plan.Delete)
				})

				r.Route("/companies", func(r chi.Router) {
					r.Get("/", h.Company.List)
					r.Post("/", h.Company.Create)
					r.Get("/{id}", h.Company.GetByID)
					r.Put("/{id}", h.Company.Update)
					r.Delete("/{id}", h.Company.Delete)
				})

				r.Route("/invoices", func(r chi.Router) {
					r.Post("/", h.Invoice.Generate)
					r.Get("/{id}/pdf", h.Invoice.DownloadPDF)
					r.Patch("/{id}/status", h.Invoice.UpdateStatus)
				})

				r.Get("/analytics", h.Analytics.Get)
				r.Post("/checkins", h.CheckIn.RecordManual)
			})
		})
	})
	return r
}
