package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civic-portal/app/domain"
	mock_port "civic-portal/app/mocks"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/logger"
	"civic-portal/app/utils/validator"
)

type adminFixture struct {
	handler  *AdminHandler
	accounts *mock_port.MockAccountRepository
	refs     *mock_port.MockReferenceRepository
	requests *mock_port.MockRequestRepository
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mock_port.NewMockAccountRepository(ctrl)
	refs := mock_port.NewMockReferenceRepository(ctrl)
	requests := mock_port.NewMockRequestRepository(ctrl)

	log, err := logger.New("debug")
	require.NoError(t, err)

	handler := NewAdminHandler(
		usecase.NewAdminUseCase(accounts, refs, requests),
		validator.New(),
		log,
	)
	return &adminFixture{handler: handler, accounts: accounts, refs: refs, requests: requests}
}

func TestAdminHandler_ProvisionStaff(t *testing.T) {
	t.Run("creates a fresh active officer", func(t *testing.T) {
		f := newAdminFixture(t)
		f.refs.EXPECT().
			GetDepartment(gomock.Any(), int64(2)).
			Return(&domain.Department{ID: 2, Name: "Urban Planning"}, nil)
		f.accounts.EXPECT().
			GetByEmail(gomock.Any(), "new.officer@portal.gov").
			Return(nil, domain.ErrNotFound)
		f.accounts.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, account *domain.Account) error {
				assert.Equal(t, domain.RoleOfficer, account.Role)
				assert.Equal(t, domain.AccountStatusActive, account.Status)
				return nil
			})

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts",
			`{"email":"new.officer@portal.gov","name":"New Officer","role":"OFFICER","department_id":2}`)

		require.NoError(t, f.handler.ProvisionStaff(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ACTIVE"`)
	})

	t.Run("promotes an existing citizen in place", func(t *testing.T) {
		f := newAdminFixture(t)
		existing := citizenAccount(t, "ada@example.com")

		f.refs.EXPECT().
			GetDepartment(gomock.Any(), int64(2)).
			Return(&domain.Department{ID: 2, Name: "Urban Planning"}, nil)
		f.accounts.EXPECT().
			GetByEmail(gomock.Any(), "ada@example.com").
			Return(existing, nil)
		f.accounts.EXPECT().
			PromoteToStaff(gomock.Any(), existing.ID, domain.RoleDeptHead, gomock.Any(), gomock.Any()).
			Return(nil)
		f.accounts.EXPECT().
			GetByID(gomock.Any(), existing.ID).
			DoAndReturn(func(_ any, _ any) (*domain.Account, error) {
				promoted := *existing
				promoted.Role = domain.RoleDeptHead
				return &promoted, nil
			})

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts",
			`{"email":"ada@example.com","name":"Ada Citizen","role":"DEPT_HEAD","department_id":2}`)

		require.NoError(t, f.handler.ProvisionStaff(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"DEPT_HEAD"`)
	})

	t.Run("citizen role fails validation", func(t *testing.T) {
		f := newAdminFixture(t)

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts",
			`{"email":"someone@example.com","name":"Someone","role":"CITIZEN"}`)

		require.NoError(t, f.handler.ProvisionStaff(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown department is not found", func(t *testing.T) {
		f := newAdminFixture(t)
		f.refs.EXPECT().
			GetDepartment(gomock.Any(), int64(99)).
			Return(nil, domain.ErrNotFound)

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts",
			`{"email":"new.officer@portal.gov","name":"New Officer","role":"OFFICER","department_id":99}`)

		require.NoError(t, f.handler.ProvisionStaff(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminHandler_ApproveStaff(t *testing.T) {
	t.Run("activates a pending officer", func(t *testing.T) {
		f := newAdminFixture(t)
		account := officerAccount(t, "pending@portal.gov")
		account.Status = domain.AccountStatusPending

		f.accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
		f.refs.EXPECT().
			GetDepartment(gomock.Any(), int64(3)).
			Return(&domain.Department{ID: 3, Name: "Transport"}, nil)
		f.accounts.EXPECT().
			SetRoleDepartment(gomock.Any(), account.ID, domain.RoleOfficer, gomock.Any()).
			Return(nil)
		f.accounts.EXPECT().
			SetStatus(gomock.Any(), account.ID, domain.AccountStatusActive).
			Return(nil)
		f.accounts.EXPECT().
			GetByID(gomock.Any(), account.ID).
			DoAndReturn(func(_ any, _ any) (*domain.Account, error) {
				approved := *account
				approved.Status = domain.AccountStatusActive
				return &approved, nil
			})

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts/"+account.ID.String()+"/approve",
			`{"role":"OFFICER","department_id":3}`)
		c.SetParamNames("id")
		c.SetParamValues(account.ID.String())

		require.NoError(t, f.handler.ApproveStaff(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ACTIVE"`)
	})

	t.Run("malformed account id is not found", func(t *testing.T) {
		f := newAdminFixture(t)

		rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts/not-a-uuid/approve",
			`{"role":"OFFICER","department_id":3}`)
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")

		require.NoError(t, f.handler.ApproveStaff(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminHandler_DisableAccount(t *testing.T) {
	f := newAdminFixture(t)
	account := citizenAccount(t, "ada@example.com")

	f.accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	f.accounts.EXPECT().
		SetStatus(gomock.Any(), account.ID, domain.AccountStatusDisabled).
		Return(nil)

	rec, c := jsonRequest(http.MethodPost, "/api/admin/accounts/"+account.ID.String()+"/disable", "")
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())

	require.NoError(t, f.handler.DisableAccount(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestAdminHandler_Dashboard(t *testing.T) {
	f := newAdminFixture(t)
	f.requests.EXPECT().
		CountByStatus(gomock.Any()).
		Return(&domain.StatusCounts{All: 12, Submitted: 4, UnderReview: 3, Approved: 4, Rejected: 1}, nil)

	rec, c := jsonRequest(http.MethodGet, "/api/admin/dashboard", "")

	require.NoError(t, f.handler.Dashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"all":12`)
}

func TestAdminHandler_CreateService(t *testing.T) {
	t.Run("creates under an existing department", func(t *testing.T) {
		f := newAdminFixture(t)
		f.refs.EXPECT().
			GetDepartment(gomock.Any(), int64(2)).
			Return(&domain.Department{ID: 2, Name: "Urban Planning"}, nil)
		f.refs.EXPECT().
			CreateService(gomock.Any(), int64(2), "Zoning Variance", int64(7500)).
			Return(&domain.Service{ID: 11, DepartmentID: 2, Name: "Zoning Variance", FeeCents: 7500}, nil)

		rec, c := jsonRequest(http.MethodPost, "/api/admin/services",
			`{"department_id":2,"name":"Zoning Variance","fee_cents":7500}`)

		require.NoError(t, f.handler.CreateService(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("negative fee fails validation", func(t *testing.T) {
		f := newAdminFixture(t)

		rec, c := jsonRequest(http.MethodPost, "/api/admin/services",
			`{"department_id":2,"name":"Zoning Variance","fee_cents":-1}`)

		require.NoError(t, f.handler.CreateService(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
