package usecase

import (
	"context"
	"errors"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/password"
)

// LocalAuthUseCase implements email+secret authentication against the
// credential store.
type LocalAuthUseCase struct {
	accounts port.AccountRepository
}

// NewLocalAuthUseCase creates a new LocalAuthUseCase instance
func NewLocalAuthUseCase(accounts port.AccountRepository) *LocalAuthUseCase {
	return &LocalAuthUseCase{accounts: accounts}
}

// Authenticate verifies an email+secret pair. The three credential failure
// modes, unknown email, federated-only account, wrong secret, all cost one
// bcrypt comparison and all surface as ErrInvalidCredentials so response
// timing does not reveal which one occurred. A staff account that matches
// but is not ACTIVE fails with ErrAccountNotActive instead of a session.
func (uc *LocalAuthUseCase) Authenticate(ctx context.Context, email, secret string) (*domain.Account, error) {
	account, err := uc.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			password.VerifyDummy(secret)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if account.PasswordHash == nil {
		password.VerifyDummy(secret)
		return nil, domain.ErrInvalidCredentials
	}

	if err := password.Verify(*account.PasswordHash, secret); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if account.Role.IsStaff() && !account.IsActive() {
		return nil, domain.ErrAccountNotActive
	}

	return account, nil
}
