package usecase

import (
	"context"
	"errors"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/token"

	"github.com/google/uuid"
)

// CitizenBearerUseCase manages the signed, stateless citizen credential.
// There is no server-side session entry per citizen; the token carries only
// the account id and the account is re-read on every resolution.
type CitizenBearerUseCase struct {
	accounts port.AccountRepository
	signer   *token.Signer
}

// NewCitizenBearerUseCase creates a new CitizenBearerUseCase instance
func NewCitizenBearerUseCase(accounts port.AccountRepository, signer *token.Signer) *CitizenBearerUseCase {
	return &CitizenBearerUseCase{accounts: accounts, signer: signer}
}

// Issue signs a bearer token for a citizen account
func (uc *CitizenBearerUseCase) Issue(accountID uuid.UUID) (string, error) {
	return uc.signer.SignBearer(accountID)
}

// Resolve validates a bearer token and rehydrates the identity. The role is
// re-checked at resolution time: an account promoted to staff stops
// resolving as a citizen bearer even while its token is structurally valid.
// Tampered tokens, unknown ids, non-citizen roles and inactive accounts are
// deliberately indistinguishable; all resolve to ErrUnauthenticated.
func (uc *CitizenBearerUseCase) Resolve(ctx context.Context, credential string) (*domain.Identity, error) {
	accountID, err := uc.signer.ParseBearer(credential)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if account.Role != domain.RoleCitizen || !account.IsActive() {
		return nil, domain.ErrUnauthenticated
	}

	return account.Identity(), nil
}
