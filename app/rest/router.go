package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"civic-portal/app/domain"
	"civic-portal/app/driver/postgres"
	"civic-portal/app/obs"
	"civic-portal/app/rest/handlers"
	custommw "civic-portal/app/rest/middleware"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/security"
	"civic-portal/app/utils/validator"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger       *slog.Logger
	DB           *postgres.DB
	Validator    *validator.Validator
	LocalAuth    *usecase.LocalAuthUseCase
	Registration *usecase.RegistrationUseCase
	Sessions     *usecase.StaffSessionUseCase
	Bearers      *usecase.CitizenBearerUseCase
	Federated    *usecase.FederatedUseCase // nil when the provider is not configured
	Requests     *usecase.RequestUseCase
	Admin        *usecase.AdminUseCase
	Reference    *usecase.ReferenceUseCase

	ClientOrigin  string
	CookieSecure  bool
	BearerTTL     time.Duration
	EnableMetrics bool
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	cookies := handlers.CookieConfig{Secure: config.CookieSecure}

	// Handlers
	authHandler := handlers.NewAuthHandler(config.LocalAuth, config.Registration,
		config.Sessions, config.Bearers, config.Validator, cookies, config.BearerTTL, config.Logger)
	requestHandler := handlers.NewRequestHandler(config.Requests, config.Validator, config.Logger)
	staffHandler := handlers.NewStaffHandler(config.Requests, config.Logger)
	adminHandler := handlers.NewAdminHandler(config.Admin, config.Validator, config.Logger)
	referenceHandler := handlers.NewReferenceHandler(config.Reference, config.Logger)
	healthHandler := handlers.NewHealthHandler(config.DB, config.Logger)

	// Middleware
	identity := custommw.NewIdentityMiddleware(config.Sessions, config.Bearers, config.Logger)
	rateLimiter := custommw.NewRateLimiter()
	abuse := security.NewAbuseDetector(config.Logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.NewCORSMiddleware(custommw.CORSConfigForOrigins(config.ClientOrigin)))
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !abuse.Inspect(c.RealIP(), req.Header.Get("User-Agent"), req.URL.RequestURI()) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	})

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}, error=${error}\n",
	}))

	if config.EnableMetrics {
		obs.Init()
		e.Use(obs.Instrument())
		e.GET("/metrics", echo.WrapHandler(obs.Handler()))
	}

	e.Use(identity.Resolve())

	// Health endpoints
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/health/ready", healthHandler.ReadinessCheck)

	// Staff browser surface
	e.GET("/", authHandler.Home)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.StaffLogin)
	e.POST("/logout", authHandler.StaffLogout)
	e.POST("/staff/register", authHandler.StaffRegister)

	// Federated login, mounted only when the provider is configured
	if config.Federated != nil {
		federatedHandler := handlers.NewFederatedHandler(config.Federated, config.Sessions,
			config.Bearers, cookies, config.BearerTTL, config.ClientOrigin, config.Logger)
		e.GET("/auth/federated/start", federatedHandler.Start)
		e.GET("/auth/federated/callback", federatedHandler.Callback)
	}

	api := e.Group("/api")

	// Public reference data
	api.GET("/departments", referenceHandler.Departments)
	api.GET("/services", referenceHandler.Services)

	// Citizen authentication
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.CitizenRegister)
	auth.POST("/login", authHandler.CitizenLogin)
	auth.POST("/logout", authHandler.CitizenLogout)
	auth.GET("/me", authHandler.CitizenMe, identity.RequireRoles(domain.RoleCitizen))
	auth.PUT("/profile", authHandler.CitizenUpdateProfile, identity.RequireRoles(domain.RoleCitizen))

	// Citizen requests
	requests := api.Group("/requests", identity.RequireRoles(domain.RoleCitizen))
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/:id", requestHandler.Get)
	requests.GET("/:id/documents", requestHandler.Documents)
	requests.POST("/:id/documents", requestHandler.AttachDocument)
	requests.GET("/:id/payments", requestHandler.Payments)
	requests.POST("/:id/payments", requestHandler.AttachPayment)

	// Staff self-service
	staff := api.Group("/staff", identity.RequireRoles(domain.StaffRoles...))
	staff.GET("/me", authHandler.StaffMe)
	staff.PUT("/profile", authHandler.StaffUpdateProfile)

	// Officer inbox and decisions
	officer := api.Group("/officer", identity.RequireRoles(domain.StaffRoles...))
	officer.GET("/requests", staffHandler.Inbox)
	officer.GET("/requests/:id", staffHandler.Get)
	officer.POST("/requests/:id/review", staffHandler.Review)
	officer.POST("/requests/:id/decision", staffHandler.Decide)

	// Administration
	admin := api.Group("/admin", identity.RequireRoles(domain.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/reports", adminHandler.Reports)
	admin.GET("/accounts", adminHandler.ListAccounts)
	admin.POST("/accounts", adminHandler.ProvisionStaff)
	admin.POST("/accounts/:id/approve", adminHandler.ApproveStaff)
	admin.POST("/accounts/:id/disable", adminHandler.DisableAccount)
	admin.POST("/departments", adminHandler.CreateDepartment)
	admin.POST("/services", adminHandler.CreateService)

	return e
}
