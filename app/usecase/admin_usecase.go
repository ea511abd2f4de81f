package usecase

import (
	"context"
	"errors"
	"fmt"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/password"
)

// defaultStaffSecret is the provisioning fallback when the admin does not
// choose an initial secret. Staff are expected to change it.
const defaultStaffSecret = "changeme123"

// AdminUseCase implements administrator operations: staff provisioning and
// approval, account disabling, reference data writes, dashboard reads.
type AdminUseCase struct {
	accounts port.AccountRepository
	refs     port.ReferenceRepository
	requests port.RequestRepository
}

// NewAdminUseCase creates a new AdminUseCase instance
func NewAdminUseCase(accounts port.AccountRepository, refs port.ReferenceRepository, requests port.RequestRepository) *AdminUseCase {
	return &AdminUseCase{
		accounts: accounts,
		refs:     refs,
		requests: requests,
	}
}

// ProvisionStaff creates or converts an account into an ACTIVE staff
// account. An existing account under the email (citizen or staff) is
// promoted in place; otherwise a fresh account is created. The department
// must exist for department-bound roles.
func (uc *AdminUseCase) ProvisionStaff(ctx context.Context, email, secret string, role domain.Role, departmentID *int64, profile domain.Profile) (*domain.Account, error) {
	if !role.IsStaff() {
		return nil, fmt.Errorf("invalid staff role: %s", role)
	}
	if err := uc.checkDepartment(ctx, role, departmentID); err != nil {
		return nil, err
	}

	if secret == "" {
		secret = defaultStaffSecret
	}
	hash, err := password.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	existing, err := uc.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := uc.accounts.PromoteToStaff(ctx, existing.ID, role, departmentID, hash); err != nil {
			return nil, err
		}
		return uc.accounts.GetByID(ctx, existing.ID)
	case errors.Is(err, domain.ErrNotFound):
		account, err := domain.NewStaffAccount(email, hash, role, departmentID, domain.AccountStatusActive, profile)
		if err != nil {
			return nil, err
		}
		if err := uc.accounts.Create(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	default:
		return nil, err
	}
}

// ApproveStaff activates a PENDING staff account with its final role and
// department assignment.
func (uc *AdminUseCase) ApproveStaff(ctx context.Context, accountID string, role domain.Role, departmentID *int64) (*domain.Account, error) {
	account, err := uc.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountStatusPending {
		return nil, fmt.Errorf("account %s is not pending approval", account.ID)
	}
	if !role.IsStaff() {
		return nil, fmt.Errorf("invalid staff role: %s", role)
	}
	if err := uc.checkDepartment(ctx, role, departmentID); err != nil {
		return nil, err
	}
	if !role.RequiresDepartment() {
		departmentID = nil
	}

	if err := uc.accounts.SetRoleDepartment(ctx, account.ID, role, departmentID); err != nil {
		return nil, err
	}
	if err := uc.accounts.SetStatus(ctx, account.ID, domain.AccountStatusActive); err != nil {
		return nil, err
	}
	return uc.accounts.GetByID(ctx, account.ID)
}

// Disable transitions an account to DISABLED. Accounts are never deleted.
func (uc *AdminUseCase) Disable(ctx context.Context, accountID string) error {
	account, err := uc.getAccount(ctx, accountID)
	if err != nil {
		return err
	}
	return uc.accounts.SetStatus(ctx, account.ID, domain.AccountStatusDisabled)
}

// ListAccounts returns all accounts for the admin console
func (uc *AdminUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accounts.List(ctx)
}

// Dashboard returns request totals by status
func (uc *AdminUseCase) Dashboard(ctx context.Context) (*domain.StatusCounts, error) {
	return uc.requests.CountByStatus(ctx)
}

// DepartmentReport returns the per-department aggregates
func (uc *AdminUseCase) DepartmentReport(ctx context.Context) ([]*domain.DepartmentReport, error) {
	return uc.requests.DepartmentReport(ctx)
}

// CreateDepartment creates a department
func (uc *AdminUseCase) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	return uc.refs.CreateDepartment(ctx, name)
}

// CreateService creates a service under an existing department
func (uc *AdminUseCase) CreateService(ctx context.Context, departmentID int64, name string, feeCents int64) (*domain.Service, error) {
	if _, err := uc.refs.GetDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	return uc.refs.CreateService(ctx, departmentID, name, feeCents)
}

func (uc *AdminUseCase) checkDepartment(ctx context.Context, role domain.Role, departmentID *int64) error {
	if !role.RequiresDepartment() {
		return nil
	}
	if departmentID == nil {
		return fmt.Errorf("department is required for role %s", role)
	}
	_, err := uc.refs.GetDepartment(ctx, *departmentID)
	return err
}

func (uc *AdminUseCase) getAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	id, err := parseAccountID(accountID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return uc.accounts.GetByID(ctx, id)
}
