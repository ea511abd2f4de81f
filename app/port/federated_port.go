package port

//go:generate mockgen -source=federated_port.go -destination=../mocks/mock_federated_port.go

import (
	"context"

	"civic-portal/app/domain"
)

// IdentityProvider abstracts the external identity provider's authorization
// redirect flow. The state round-trips through the provider unchanged and
// carries the caller's declared intent.
type IdentityProvider interface {
	// AuthCodeURL builds the provider redirect URL for the given state.
	AuthCodeURL(state string) string
	// Exchange swaps an authorization code for a verified assertion
	// (provider-issued id, email, display name).
	Exchange(ctx context.Context, code string) (*domain.FederatedAssertion, error)
}

// IdentityResolver resolves an inbound credential to an identity. The staff
// session manager and the citizen bearer manager are the two
// implementations; both fail with domain.ErrUnauthenticated rather than
// returning stale identities.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*domain.Identity, error)
}
