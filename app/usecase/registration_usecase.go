package usecase

import (
	"context"
	"fmt"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/password"
	"civic-portal/app/utils/token"
)

// RegistrationUseCase implements account self-service: citizen registration
// (local or federated), staff self-registration, and profile updates.
type RegistrationUseCase struct {
	accounts port.AccountRepository
	signer   *token.Signer
}

// NewRegistrationUseCase creates a new RegistrationUseCase instance
func NewRegistrationUseCase(accounts port.AccountRepository, signer *token.Signer) *RegistrationUseCase {
	return &RegistrationUseCase{accounts: accounts, signer: signer}
}

// Complete creates a CITIZEN account. With a pending token the account is
// linked to the token's external identity and may omit a secret (federated
// only). Without one a secret is mandatory. The pending token is single-use:
// the unique external id column makes a second completion collide with
// ErrAlreadyExists.
func (uc *RegistrationUseCase) Complete(ctx context.Context, pendingToken, email, secret string, profile domain.Profile) (*domain.Account, error) {
	var externalID *string

	if pendingToken != "" {
		pending, err := uc.signer.ParsePending(pendingToken)
		if err != nil {
			return nil, err
		}
		externalID = &pending.ExternalID
		if email == "" {
			email = pending.Email
		}
		if profile.Name == "" {
			profile.Name = pending.Name
		}
	}

	if secret == "" && externalID == nil {
		return nil, domain.ErrMissingSecret
	}

	var hash *string
	if secret != "" {
		h, err := password.Hash(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to hash secret: %w", err)
		}
		hash = &h
	}

	account, err := domain.NewCitizenAccount(email, hash, externalID, profile)
	if err != nil {
		return nil, err
	}

	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// RegisterStaff creates an OFFICER account in PENDING status. The account
// cannot authenticate into a session until an administrator approves it.
func (uc *RegistrationUseCase) RegisterStaff(ctx context.Context, email, secret string, departmentID int64, profile domain.Profile) (*domain.Account, error) {
	hash, err := password.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	account, err := domain.NewStaffAccount(email, hash, domain.RoleOfficer, &departmentID, domain.AccountStatusPending, profile)
	if err != nil {
		return nil, err
	}

	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Account loads the account behind a resolved identity, for the "who am I"
// endpoints and profile pages.
func (uc *RegistrationUseCase) Account(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	return uc.accounts.GetByID(ctx, identity.AccountID)
}

// UpdateCitizenProfile updates the contact fields a citizen may edit
func (uc *RegistrationUseCase) UpdateCitizenProfile(ctx context.Context, identity *domain.Identity, update domain.Profile) (*domain.Account, error) {
	account, err := uc.accounts.GetByID(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}

	profile := account.Profile
	profile.Name = update.Name
	profile.Phone = update.Phone
	profile.Address = update.Address
	profile.NationalID = update.NationalID

	if err := uc.accounts.UpdateProfile(ctx, account.ID, profile); err != nil {
		return nil, err
	}
	account.Profile = profile
	return account, nil
}

// UpdateStaffProfile updates the fields a staff member may edit
func (uc *RegistrationUseCase) UpdateStaffProfile(ctx context.Context, identity *domain.Identity, update domain.Profile) (*domain.Account, error) {
	account, err := uc.accounts.GetByID(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}

	profile := account.Profile
	profile.Name = update.Name
	profile.JobTitle = update.JobTitle

	if err := uc.accounts.UpdateProfile(ctx, account.ID, profile); err != nil {
		return nil, err
	}
	account.Profile = profile
	return account, nil
}
