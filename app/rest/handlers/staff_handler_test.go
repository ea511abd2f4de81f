package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civic-portal/app/config"
	"civic-portal/app/domain"
	mock_port "civic-portal/app/mocks"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/logger"
)

type staffFixture struct {
	handler  *StaffHandler
	requests *mock_port.MockRequestRepository
	refs     *mock_port.MockReferenceRepository
}

func newStaffFixture(t *testing.T, policy config.DecidePolicy) *staffFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	requests := mock_port.NewMockRequestRepository(ctrl)
	refs := mock_port.NewMockReferenceRepository(ctrl)

	log, err := logger.New("debug")
	require.NoError(t, err)

	handler := NewStaffHandler(usecase.NewRequestUseCase(requests, refs, policy), log)
	return &staffFixture{handler: handler, requests: requests, refs: refs}
}

func officerIdentity(departmentID int64) *domain.Identity {
	return &domain.Identity{
		AccountID:    uuid.New(),
		Role:         domain.RoleOfficer,
		DepartmentID: &departmentID,
		Status:       domain.AccountStatusActive,
	}
}

func adminIdentity() *domain.Identity {
	return &domain.Identity{
		AccountID: uuid.New(),
		Role:      domain.RoleAdmin,
		Status:    domain.AccountStatusActive,
	}
}

func departmentRequest(departmentID int64, status domain.RequestStatus) *domain.Request {
	svc := &domain.Service{ID: 3, DepartmentID: departmentID, Name: "Building Permit", FeeCents: 5000}
	request := domain.NewRequest("01J5X7Y8Z9BBBBBBBBBBBBBBBB", uuid.New(), svc, nil)
	request.Status = status
	return request
}

func TestStaffHandler_Inbox(t *testing.T) {
	t.Run("officer sees their department", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		identity := officerIdentity(2)
		f.requests.EXPECT().
			ListByDepartment(gomock.Any(), identity.DepartmentID).
			Return([]*domain.Request{departmentRequest(2, domain.RequestStatusSubmitted)}, nil)

		rec, c := jsonRequest(http.MethodGet, "/api/officer/requests", "")
		c.Set("identity", identity)

		require.NoError(t, f.handler.Inbox(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin sees every department", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		f.requests.EXPECT().
			ListByDepartment(gomock.Any(), gomock.Nil()).
			Return([]*domain.Request{}, nil)

		rec, c := jsonRequest(http.MethodGet, "/api/officer/requests", "")
		c.Set("identity", adminIdentity())

		require.NoError(t, f.handler.Inbox(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStaffHandler_Review(t *testing.T) {
	t.Run("moves a submitted request under review", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		identity := officerIdentity(2)
		request := departmentRequest(2, domain.RequestStatusSubmitted)

		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)
		f.requests.EXPECT().
			MarkUnderReview(gomock.Any(), request.ID, identity.DepartmentID).
			DoAndReturn(func(_ any, id string, _ *int64) (*domain.Request, error) {
				updated := departmentRequest(2, domain.RequestStatusUnderReview)
				updated.ID = id
				return updated, nil
			})

		rec, c := jsonRequest(http.MethodPost, "/api/officer/requests/"+request.ID+"/review", "")
		c.SetParamNames("id")
		c.SetParamValues(request.ID)
		c.Set("identity", identity)

		require.NoError(t, f.handler.Review(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"UNDER_REVIEW"`)
	})

	t.Run("other department reads as not found", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		request := departmentRequest(9, domain.RequestStatusSubmitted)
		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)

		rec, c := jsonRequest(http.MethodPost, "/api/officer/requests/"+request.ID+"/review", "")
		c.SetParamNames("id")
		c.SetParamValues(request.ID)
		c.Set("identity", officerIdentity(2))

		require.NoError(t, f.handler.Review(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("terminal request cannot go back under review", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		request := departmentRequest(2, domain.RequestStatusApproved)
		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)

		rec, c := jsonRequest(http.MethodPost, "/api/officer/requests/"+request.ID+"/review", "")
		c.SetParamNames("id")
		c.SetParamValues(request.ID)
		c.Set("identity", officerIdentity(2))

		require.NoError(t, f.handler.Review(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestStaffHandler_Decide(t *testing.T) {
	decide := func(t *testing.T, f *staffFixture, identity *domain.Identity, id, body string) (int, string) {
		t.Helper()
		rec, c := jsonRequest(http.MethodPost, "/api/officer/requests/"+id+"/decision", body)
		c.SetParamNames("id")
		c.SetParamValues(id)
		c.Set("identity", identity)
		require.NoError(t, f.handler.Decide(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("approves with the JSON status value", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		identity := officerIdentity(2)
		request := departmentRequest(2, domain.RequestStatusUnderReview)

		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)
		f.requests.EXPECT().
			Decide(gomock.Any(), request.ID, domain.RequestStatusApproved, gomock.Any(), identity.DepartmentID).
			DoAndReturn(func(_ any, id string, outcome domain.RequestStatus, _ time.Time, _ *int64) (*domain.Request, error) {
				decided := departmentRequest(2, outcome)
				decided.ID = id
				return decided, nil
			})

		code, body := decide(t, f, identity, request.ID, `{"status":"APPROVED"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, `"status":"APPROVED"`)
	})

	t.Run("accepts the form verb from the browser surface", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		identity := officerIdentity(2)
		request := departmentRequest(2, domain.RequestStatusUnderReview)

		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)
		f.requests.EXPECT().
			Decide(gomock.Any(), request.ID, domain.RequestStatusRejected, gomock.Any(), identity.DepartmentID).
			Return(departmentRequest(2, domain.RequestStatusRejected), nil)

		rec, c := formRequest("/api/officer/requests/"+request.ID+"/decision", url.Values{"decision": {"reject"}})
		c.SetParamNames("id")
		c.SetParamValues(request.ID)
		c.Set("identity", identity)

		require.NoError(t, f.handler.Decide(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown verb is rejected before any lookup", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)

		code, _ := decide(t, f, officerIdentity(2), "abc", `{"status":"MAYBE"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("overwrite policy re-decides a terminal request", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyOverwrite)
		identity := officerIdentity(2)
		request := departmentRequest(2, domain.RequestStatusApproved)

		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)
		f.requests.EXPECT().
			Decide(gomock.Any(), request.ID, domain.RequestStatusRejected, gomock.Any(), identity.DepartmentID).
			Return(departmentRequest(2, domain.RequestStatusRejected), nil)

		code, _ := decide(t, f, identity, request.ID, `{"status":"REJECTED"}`)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("strict policy refuses to re-decide", func(t *testing.T) {
		f := newStaffFixture(t, config.DecidePolicyStrict)
		request := departmentRequest(2, domain.RequestStatusApproved)
		f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil)

		code, body := decide(t, f, officerIdentity(2), request.ID, `{"status":"REJECTED"}`)
		assert.Equal(t, http.StatusConflict, code)
		assert.Contains(t, body, "already decided")
	})
}

func TestStaffHandler_Get(t *testing.T) {
	f := newStaffFixture(t, config.DecidePolicyOverwrite)
	identity := officerIdentity(2)
	request := departmentRequest(2, domain.RequestStatusSubmitted)

	f.requests.EXPECT().GetByID(gomock.Any(), request.ID).Return(request, nil).Times(2)
	f.requests.EXPECT().
		ListDocuments(gomock.Any(), request.ID).
		Return([]*domain.Document{}, nil)

	rec, c := jsonRequest(http.MethodGet, "/api/officer/requests/"+request.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(request.ID)
	c.Set("identity", identity)

	require.NoError(t, f.handler.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"documents"`)
}
