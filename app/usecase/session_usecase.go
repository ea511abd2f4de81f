package usecase

import (
	"context"
	"errors"
	"time"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/google/uuid"
)

// StaffSessionUseCase manages server-side staff sessions. The session
// payload is the minimal (account id, role) pair; everything mutable is
// re-read from the credential store on every resolution.
type StaffSessionUseCase struct {
	sessions port.SessionRepository
	accounts port.AccountRepository
	ttl      time.Duration
}

// NewStaffSessionUseCase creates a new StaffSessionUseCase instance
func NewStaffSessionUseCase(sessions port.SessionRepository, accounts port.AccountRepository, ttl time.Duration) *StaffSessionUseCase {
	return &StaffSessionUseCase{
		sessions: sessions,
		accounts: accounts,
		ttl:      ttl,
	}
}

// Issue creates a session for an authenticated staff account
func (uc *StaffSessionUseCase) Issue(ctx context.Context, account *domain.Account) (*domain.Session, error) {
	if !account.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	session := domain.NewSession(account.ID, account.Role, uc.ttl)
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve rehydrates an identity from a session handle. It fails closed:
// an unknown or expired handle, a vanished account, or a revoked staff role
// all resolve to ErrUnauthenticated rather than a stale identity. An
// inactive staff account still resolves; the authorization guard is what
// reports it as not active.
func (uc *StaffSessionUseCase) Resolve(ctx context.Context, credential string) (*domain.Identity, error) {
	handle, err := uuid.Parse(credential)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := uc.sessions.Get(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if session.IsExpired() {
		_ = uc.sessions.Delete(ctx, handle)
		return nil, domain.ErrUnauthenticated
	}

	account, err := uc.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if !account.Role.IsStaff() {
		return nil, domain.ErrUnauthenticated
	}

	return account.Identity(), nil
}

// Destroy deletes a session. Logout is synchronous: the delete completes
// before the caller gets a response.
func (uc *StaffSessionUseCase) Destroy(ctx context.Context, credential string) error {
	handle, err := uuid.Parse(credential)
	if err != nil {
		return nil
	}
	return uc.sessions.Delete(ctx, handle)
}
