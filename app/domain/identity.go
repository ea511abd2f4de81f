package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the minimal resolved caller identity. It is produced either by
// the staff session manager or the citizen bearer manager and is always
// rehydrated from the credential store, so Status and DepartmentID reflect
// the account as of this request, not as of login.
type Identity struct {
	AccountID    uuid.UUID
	Role         Role
	DepartmentID *int64
	Status       AccountStatus
}

// IsStaff returns true if the identity carries a staff role
func (i *Identity) IsStaff() bool {
	return i != nil && i.Role.IsStaff()
}

// FederatedIntent discriminates which population a federated login targets.
// It is threaded through the identity provider redirect, not stored.
type FederatedIntent string

const (
	IntentCitizen FederatedIntent = "citizen"
	IntentStaff   FederatedIntent = "staff"
)

// IsValid returns true for a known intent
func (fi FederatedIntent) IsValid() bool {
	return fi == IntentCitizen || fi == IntentStaff
}

// FederatedAssertion is a verified assertion from the external identity
// provider, combined with the intent carried through the redirect.
type FederatedAssertion struct {
	ExternalID string
	Email      string
	Name       string
	Intent     FederatedIntent
}

// RedirectHandle is the begin half of the federated flow: the URL the caller
// must be redirected to, plus the state echoed back on the callback.
type RedirectHandle struct {
	URL   string
	State string
}

// PendingSignup is the ephemeral record produced when a federated assertion
// matches no account and the caller declared citizen intent. It lives only
// inside a signed, self-contained token with embedded expiry; the credential
// store never sees it.
type PendingSignup struct {
	ExternalID string
	Email      string
	Name       string
}

// Session is a server-side staff session. The payload is deliberately
// minimal: mutable account fields are re-read from the credential store on
// every request.
type Session struct {
	Handle    uuid.UUID
	AccountID uuid.UUID
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewSession creates a staff session valid for the given duration
func NewSession(accountID uuid.UUID, role Role, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Handle:    uuid.New(),
		AccountID: accountID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
