// Package oidc talks to the external identity provider over the standard
// authorization code flow. Only the id token is consumed; access tokens are
// discarded because the portal never calls the provider's APIs on the
// user's behalf.
package oidc

import (
	"context"
	"fmt"
	"log/slog"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"civic-portal/app/config"
	"civic-portal/app/domain"
)

// Provider wraps the discovered OIDC provider and its oauth2 client config
type Provider struct {
	oauth    oauth2.Config
	verifier *gooidc.IDTokenVerifier
	logger   *slog.Logger
}

// NewProvider discovers the issuer's endpoints and builds the verifier.
// Discovery happens once at startup; a provider outage at boot fails fast.
func NewProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.OIDCIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.OIDCClientID}),
		logger:   logger.With("component", "oidc_provider"),
	}, nil
}

// AuthCodeURL builds the provider redirect URL carrying the given state
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange swaps an authorization code for a verified assertion. Any failure
// along the way, exchange, missing id token, bad signature, is surfaced as an
// error; the caller decides how to map it.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.FederatedAssertion, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("provider response contains no id token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id token carries no email claim")
	}

	p.logger.Info("federated assertion verified", "subject", idToken.Subject)

	return &domain.FederatedAssertion{
		ExternalID: idToken.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
	}, nil
}
