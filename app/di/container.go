package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"civic-portal/app/config"
	"civic-portal/app/driver/oidc"
	"civic-portal/app/driver/postgres"
	"civic-portal/app/gateway"
	"civic-portal/app/rest"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/token"
	"civic-portal/app/utils/validator"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DB *postgres.DB

	LocalAuth    *usecase.LocalAuthUseCase
	Registration *usecase.RegistrationUseCase
	Sessions     *usecase.StaffSessionUseCase
	Bearers      *usecase.CitizenBearerUseCase
	Federated    *usecase.FederatedUseCase
	Requests     *usecase.RequestUseCase
	Admin        *usecase.AdminUseCase
	Reference    *usecase.ReferenceUseCase

	validator *validator.Validator
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	var err error
	container.DB, err = postgres.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	accounts := postgres.NewAccountRepository(container.DB.Pool(), logger)
	sessions := postgres.NewSessionRepository(container.DB.Pool(), logger)
	requests := postgres.NewRequestRepository(container.DB.Pool(), logger)
	refs := postgres.NewReferenceRepository(container.DB.Pool(), logger)

	signer, err := token.NewSigner(cfg.TokenSecret, cfg.BearerTTL, cfg.PendingSignupTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}

	container.LocalAuth = usecase.NewLocalAuthUseCase(accounts)
	container.Registration = usecase.NewRegistrationUseCase(accounts, signer)
	container.Sessions = usecase.NewStaffSessionUseCase(sessions, accounts, cfg.SessionTTL)
	container.Bearers = usecase.NewCitizenBearerUseCase(accounts, signer)
	container.Requests = usecase.NewRequestUseCase(requests, refs, cfg.DecidePolicy)
	container.Admin = usecase.NewAdminUseCase(accounts, refs, requests)
	container.Reference = usecase.NewReferenceUseCase(refs)

	if cfg.FederatedEnabled() {
		provider, err := oidc.NewProvider(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
		}
		idp := gateway.NewFederatedGateway(provider, logger)
		container.Federated = usecase.NewFederatedUseCase(accounts, idp, signer, logger)
	} else {
		logger.Info("federated login disabled, no provider configured")
	}

	container.validator = validator.New()

	logger.Info("container initialized")
	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	return rest.NewRouter(rest.RouterConfig{
		Logger:       c.Logger,
		DB:           c.DB,
		Validator:    c.validator,
		LocalAuth:    c.LocalAuth,
		Registration: c.Registration,
		Sessions:     c.Sessions,
		Bearers:      c.Bearers,
		Federated:    c.Federated,
		Requests:     c.Requests,
		Admin:        c.Admin,
		Reference:    c.Reference,

		ClientOrigin:  c.Config.ClientOrigin,
		CookieSecure:  c.Config.CookieSecure,
		BearerTTL:     c.Config.BearerTTL,
		EnableMetrics: c.Config.EnableMetrics,
	})
}

// Close releases held resources
func (c *Container) Close() error {
	if c.DB != nil {
		c.DB.Close()
	}
	return nil
}
