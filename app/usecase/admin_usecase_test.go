package usecase

import (
	"context"
	"testing"

	"civic-portal/app/domain"
	mock_port "civic-portal/app/mocks"
	"civic-portal/app/utils/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAdminUseCase_ProvisionStaff(t *testing.T) {
	deptID := int64(3)

	t.Run("creates a fresh active staff account", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		accounts := mock_port.NewMockAccountRepository(ctrl)
		refs := mock_port.NewMockReferenceRepository(ctrl)
		requests := mock_port.NewMockRequestRepository(ctrl)

		refs.EXPECT().GetDepartment(gomock.Any(), deptID).Return(&domain.Department{ID: deptID, Name: "Urban Planning"}, nil)
		accounts.EXPECT().GetByEmail(gomock.Any(), "officer@example.com").Return(nil, domain.ErrNotFound)
		accounts.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, account *domain.Account) error {
				assert.Equal(t, domain.RoleOfficer, account.Role)
				assert.Equal(t, domain.AccountStatusActive, account.Status)
				require.NotNil(t, account.DepartmentID)
				assert.Equal(t, deptID, *account.DepartmentID)
				return nil
			})

		uc := NewAdminUseCase(accounts, refs, requests)
		account, err := uc.ProvisionStaff(context.Background(), "officer@example.com", "initial-secret", domain.RoleOfficer, &deptID, domain.Profile{Name: "New Officer"})
		require.NoError(t, err)
		require.NotNil(t, account.PasswordHash)
		assert.NoError(t, password.Verify(*account.PasswordHash, "initial-secret"))
	})

	t.Run("promotes an existing citizen in place", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		accounts := mock_port.NewMockAccountRepository(ctrl)
		refs := mock_port.NewMockReferenceRepository(ctrl)
		requests := mock_port.NewMockRequestRepository(ctrl)

		existing := activeCitizen(t, "person@example.com", "their-secret")
		promoted := *existing
		promoted.Role = domain.RoleDeptHead
		promoted.DepartmentID = &deptID

		refs.EXPECT().GetDepartment(gomock.Any(), deptID).Return(&domain.Department{ID: deptID}, nil)
		accounts.EXPECT().GetByEmail(gomock.Any(), "person@example.com").Return(existing, nil)
		accounts.EXPECT().
			PromoteToStaff(gomock.Any(), existing.ID, domain.RoleDeptHead, &deptID, gomock.Any()).
			Return(nil)
		accounts.EXPECT().GetByID(gomock.Any(), existing.ID).Return(&promoted, nil)

		uc := NewAdminUseCase(accounts, refs, requests)
		account, err := uc.ProvisionStaff(context.Background(), "person@example.com", "", domain.RoleDeptHead, &deptID, domain.Profile{})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleDeptHead, account.Role)
	})

	t.Run("rejects a department-bound role without a department", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uc := NewAdminUseCase(mock_port.NewMockAccountRepository(ctrl), mock_port.NewMockReferenceRepository(ctrl), mock_port.NewMockRequestRepository(ctrl))
		_, err := uc.ProvisionStaff(context.Background(), "officer@example.com", "s", domain.RoleOfficer, nil, domain.Profile{})
		assert.Error(t, err)
	})

	t.Run("rejects a citizen role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uc := NewAdminUseCase(mock_port.NewMockAccountRepository(ctrl), mock_port.NewMockReferenceRepository(ctrl), mock_port.NewMockRequestRepository(ctrl))
		_, err := uc.ProvisionStaff(context.Background(), "x@example.com", "s", domain.RoleCitizen, nil, domain.Profile{})
		assert.Error(t, err)
	})

	t.Run("rejects an unknown department", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		refs := mock_port.NewMockReferenceRepository(ctrl)
		refs.EXPECT().GetDepartment(gomock.Any(), deptID).Return(nil, domain.ErrNotFound)

		uc := NewAdminUseCase(mock_port.NewMockAccountRepository(ctrl), refs, mock_port.NewMockRequestRepository(ctrl))
		_, err := uc.ProvisionStaff(context.Background(), "officer@example.com", "s", domain.RoleOfficer, &deptID, domain.Profile{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdminUseCase_ApproveStaff(t *testing.T) {
	deptID := int64(3)

	t.Run("activates a pending officer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		accounts := mock_port.NewMockAccountRepository(ctrl)
		refs := mock_port.NewMockReferenceRepository(ctrl)
		requests := mock_port.NewMockRequestRepository(ctrl)

		pending := activeOfficer(t, "officer@example.com", "secret123", deptID)
		pending.Status = domain.AccountStatusPending
		approved := *pending
		approved.Status = domain.AccountStatusActive

		accounts.EXPECT().GetByID(gomock.Any(), pending.ID).Return(pending, nil)
		refs.EXPECT().GetDepartment(gomock.Any(), deptID).Return(&domain.Department{ID: deptID}, nil)
		accounts.EXPECT().SetRoleDepartment(gomock.Any(), pending.ID, domain.RoleOfficer, &deptID).Return(nil)
		accounts.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.AccountStatusActive).Return(nil)
		accounts.EXPECT().GetByID(gomock.Any(), pending.ID).Return(&approved, nil)

		uc := NewAdminUseCase(accounts, refs, requests)
		account, err := uc.ApproveStaff(context.Background(), pending.ID.String(), domain.RoleOfficer, &deptID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusActive, account.Status)
	})

	t.Run("refuses to approve an already active account", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		accounts := mock_port.NewMockAccountRepository(ctrl)
		active := activeOfficer(t, "officer@example.com", "secret123", deptID)
		accounts.EXPECT().GetByID(gomock.Any(), active.ID).Return(active, nil)

		uc := NewAdminUseCase(accounts, mock_port.NewMockReferenceRepository(ctrl), mock_port.NewMockRequestRepository(ctrl))
		_, err := uc.ApproveStaff(context.Background(), active.ID.String(), domain.RoleOfficer, &deptID)
		assert.Error(t, err)
	})

	t.Run("malformed account id maps to not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uc := NewAdminUseCase(mock_port.NewMockAccountRepository(ctrl), mock_port.NewMockReferenceRepository(ctrl), mock_port.NewMockRequestRepository(ctrl))
		_, err := uc.ApproveStaff(context.Background(), "not-a-uuid", domain.RoleOfficer, &deptID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdminUseCase_Disable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mock_port.NewMockAccountRepository(ctrl)
	account := activeCitizen(t, "citizen@example.com", "secret123")
	accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	accounts.EXPECT().SetStatus(gomock.Any(), account.ID, domain.AccountStatusDisabled).Return(nil)

	uc := NewAdminUseCase(accounts, mock_port.NewMockReferenceRepository(ctrl), mock_port.NewMockRequestRepository(ctrl))
	assert.NoError(t, uc.Disable(context.Background(), account.ID.String()))
}

func TestAdminUseCase_CreateService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	refs := mock_port.NewMockReferenceRepository(ctrl)
	deptID := int64(2)
	refs.EXPECT().GetDepartment(gomock.Any(), deptID).Return(&domain.Department{ID: deptID}, nil)
	refs.EXPECT().
		CreateService(gomock.Any(), deptID, "Building Permit", int64(500)).
		Return(&domain.Service{ID: 1, DepartmentID: deptID, Name: "Building Permit", FeeCents: 500}, nil)

	uc := NewAdminUseCase(mock_port.NewMockAccountRepository(ctrl), refs, mock_port.NewMockRequestRepository(ctrl))
	svc, err := uc.CreateService(context.Background(), deptID, "Building Permit", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), svc.FeeCents)
}
