package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"civic-portal/app/domain"
	"civic-portal/app/driver/oidc"
	"civic-portal/app/port"
)

// FederatedGateway implements port.IdentityProvider.
// It acts as an anti-corruption layer between the reconciler and the OIDC
// driver: driver errors never leak upward in raw form.
type FederatedGateway struct {
	provider *oidc.Provider
	logger   *slog.Logger
}

// NewFederatedGateway creates a new FederatedGateway instance
func NewFederatedGateway(provider *oidc.Provider, logger *slog.Logger) port.IdentityProvider {
	return &FederatedGateway{
		provider: provider,
		logger:   logger.With("component", "federated_gateway"),
	}
}

// AuthCodeURL builds the provider redirect URL for the given state
func (g *FederatedGateway) AuthCodeURL(state string) string {
	return g.provider.AuthCodeURL(state)
}

// Exchange swaps an authorization code for a verified assertion
func (g *FederatedGateway) Exchange(ctx context.Context, code string) (*domain.FederatedAssertion, error) {
	assertion, err := g.provider.Exchange(ctx, code)
	if err != nil {
		g.logger.Error("federated exchange failed", "error", err)
		return nil, fmt.Errorf("federated exchange failed: %w", err)
	}

	if assertion.Email == "" || assertion.ExternalID == "" {
		return nil, fmt.Errorf("incomplete assertion from identity provider")
	}

	return assertion, nil
}
