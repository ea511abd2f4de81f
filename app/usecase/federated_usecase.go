package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/token"

	"github.com/google/uuid"
)

// FederatedUseCase reconciles verified external identity assertions with
// local accounts. It never provisions staff; citizen provisioning is
// deferred to an explicit registration step behind a pending token.
type FederatedUseCase struct {
	accounts port.AccountRepository
	provider port.IdentityProvider
	signer   *token.Signer
	logger   *slog.Logger
}

// NewFederatedUseCase creates a new FederatedUseCase instance
func NewFederatedUseCase(accounts port.AccountRepository, provider port.IdentityProvider, signer *token.Signer, logger *slog.Logger) *FederatedUseCase {
	return &FederatedUseCase{
		accounts: accounts,
		provider: provider,
		signer:   signer,
		logger:   logger.With("component", "federated_usecase"),
	}
}

// Begin builds the provider redirect for the declared intent. The intent is
// threaded through the opaque state parameter together with a nonce; it is
// request-scoped and never stored server-side.
func (uc *FederatedUseCase) Begin(ctx context.Context, intent domain.FederatedIntent) (*domain.RedirectHandle, error) {
	if !intent.IsValid() {
		return nil, fmt.Errorf("invalid federated intent: %s", intent)
	}

	state := string(intent) + ":" + uuid.NewString()
	return &domain.RedirectHandle{
		URL:   uc.provider.AuthCodeURL(state),
		State: state,
	}, nil
}

// IntentFromState recovers the declared intent from a callback state value
func IntentFromState(state string) (domain.FederatedIntent, error) {
	intent, _, found := strings.Cut(state, ":")
	if !found || !domain.FederatedIntent(intent).IsValid() {
		return "", fmt.Errorf("malformed state parameter")
	}
	return domain.FederatedIntent(intent), nil
}

// Exchange swaps the callback authorization code for a verified assertion
// and stamps it with the intent recovered from state.
func (uc *FederatedUseCase) Exchange(ctx context.Context, code, state string) (*domain.FederatedAssertion, error) {
	intent, err := IntentFromState(state)
	if err != nil {
		return nil, err
	}

	assertion, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	assertion.Intent = intent
	return assertion, nil
}

// Complete reconciles a verified assertion with the credential store:
//
//  1. match by normalized email
//  2. matched: attach the external id if none is attached, then for staff
//     intent require a staff role and ACTIVE status
//  3. no match, citizen intent: issue a pending signup token and signal
//     signup-required; no account is created here
//  4. no match, staff intent: fail, staff is never auto-provisioned
func (uc *FederatedUseCase) Complete(ctx context.Context, assertion *domain.FederatedAssertion) (*domain.Account, error) {
	account, err := uc.accounts.GetByEmail(ctx, assertion.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, uc.noMatch(assertion)
		}
		return nil, err
	}

	switch {
	case account.ExternalID == nil:
		if err := uc.accounts.LinkExternalID(ctx, account.ID, assertion.ExternalID); err != nil {
			return nil, err
		}
		account.ExternalID = &assertion.ExternalID
	case *account.ExternalID != assertion.ExternalID:
		// The email matched an account linked to a different external
		// identity. Internal consistency fault: the existing link is never
		// overwritten and the caller still gets the account.
		uc.logger.Error("external id mismatch on federated login",
			"account_id", account.ID)
	}

	if assertion.Intent == domain.IntentStaff {
		if !account.Role.IsStaff() {
			return nil, domain.ErrStaffNotFound
		}
		if !account.IsActive() {
			return nil, domain.ErrAccountNotActive
		}
	}

	return account, nil
}

func (uc *FederatedUseCase) noMatch(assertion *domain.FederatedAssertion) error {
	if assertion.Intent == domain.IntentStaff {
		return domain.ErrStaffNotFound
	}

	pendingToken, err := uc.signer.SignPending(domain.PendingSignup{
		ExternalID: assertion.ExternalID,
		Email:      assertion.Email,
		Name:       assertion.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to sign pending token: %w", err)
	}

	return &domain.SignupRequiredError{
		Email:        assertion.Email,
		Name:         assertion.Name,
		ExternalID:   assertion.ExternalID,
		PendingToken: pendingToken,
	}
}
