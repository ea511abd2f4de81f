package usecase

import (
	"context"
	"testing"
	"time"

	"civic-portal/app/domain"
	mock_port "civic-portal/app/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStaffSessionUseCase_Issue(t *testing.T) {
	t.Run("issues a session for a staff account", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sessions := mock_port.NewMockSessionRepository(ctrl)
		accounts := mock_port.NewMockAccountRepository(ctrl)
		sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		account := activeOfficer(t, "officer@example.com", "secret123", 1)
		uc := NewStaffSessionUseCase(sessions, accounts, 8*time.Hour)

		session, err := uc.Issue(context.Background(), account)
		require.NoError(t, err)
		assert.Equal(t, account.ID, session.AccountID)
		assert.Equal(t, domain.RoleOfficer, session.Role)
		assert.False(t, session.IsExpired())
	})

	t.Run("refuses to issue a session for a citizen", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sessions := mock_port.NewMockSessionRepository(ctrl)
		accounts := mock_port.NewMockAccountRepository(ctrl)

		account := activeCitizen(t, "citizen@example.com", "secret123")
		uc := NewStaffSessionUseCase(sessions, accounts, 8*time.Hour)

		session, err := uc.Issue(context.Background(), account)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Nil(t, session)
	})
}

func TestStaffSessionUseCase_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		credential func(*domain.Session) string
		setupMocks func(*mock_port.MockSessionRepository, *mock_port.MockAccountRepository, *domain.Session, *domain.Account)
		wantErr    error
	}{
		{
			name:       "valid session rehydrates the identity",
			credential: func(s *domain.Session) string { return s.Handle.String() },
			setupMocks: func(sessions *mock_port.MockSessionRepository, accounts *mock_port.MockAccountRepository, session *domain.Session, account *domain.Account) {
				sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(session, nil)
				accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
			},
		},
		{
			name:       "malformed handle",
			credential: func(*domain.Session) string { return "not-a-handle" },
			setupMocks: func(*mock_port.MockSessionRepository, *mock_port.MockAccountRepository, *domain.Session, *domain.Account) {
			},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:       "unknown session",
			credential: func(s *domain.Session) string { return s.Handle.String() },
			setupMocks: func(sessions *mock_port.MockSessionRepository, accounts *mock_port.MockAccountRepository, session *domain.Session, account *domain.Account) {
				sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(nil, domain.ErrNotFound)
			},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:       "expired session is deleted and rejected",
			credential: func(s *domain.Session) string { return s.Handle.String() },
			setupMocks: func(sessions *mock_port.MockSessionRepository, accounts *mock_port.MockAccountRepository, session *domain.Session, account *domain.Account) {
				session.ExpiresAt = time.Now().Add(-time.Minute)
				sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(session, nil)
				sessions.EXPECT().Delete(gomock.Any(), session.Handle).Return(nil)
			},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:       "account vanished since login",
			credential: func(s *domain.Session) string { return s.Handle.String() },
			setupMocks: func(sessions *mock_port.MockSessionRepository, accounts *mock_port.MockAccountRepository, session *domain.Session, account *domain.Account) {
				sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(session, nil)
				accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(nil, domain.ErrNotFound)
			},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:       "staff role revoked since login",
			credential: func(s *domain.Session) string { return s.Handle.String() },
			setupMocks: func(sessions *mock_port.MockSessionRepository, accounts *mock_port.MockAccountRepository, session *domain.Session, account *domain.Account) {
				account.Role = domain.RoleCitizen
				account.DepartmentID = nil
				sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(session, nil)
				accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
			},
			wantErr: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sessions := mock_port.NewMockSessionRepository(ctrl)
			accounts := mock_port.NewMockAccountRepository(ctrl)

			account := activeOfficer(t, "officer@example.com", "secret123", 1)
			session := domain.NewSession(account.ID, account.Role, 8*time.Hour)
			tt.setupMocks(sessions, accounts, session, account)

			uc := NewStaffSessionUseCase(sessions, accounts, 8*time.Hour)
			identity, err := uc.Resolve(context.Background(), tt.credential(session))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, account.ID, identity.AccountID)
				assert.Equal(t, domain.RoleOfficer, identity.Role)
				assert.Equal(t, domain.AccountStatusActive, identity.Status)
			}
		})
	}

	t.Run("inactive staff still resolves so the guard can classify it", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sessions := mock_port.NewMockSessionRepository(ctrl)
		accounts := mock_port.NewMockAccountRepository(ctrl)

		account := activeOfficer(t, "officer@example.com", "secret123", 1)
		account.Status = domain.AccountStatusDisabled
		session := domain.NewSession(account.ID, account.Role, 8*time.Hour)
		sessions.EXPECT().Get(gomock.Any(), session.Handle).Return(session, nil)
		accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)

		uc := NewStaffSessionUseCase(sessions, accounts, 8*time.Hour)
		identity, err := uc.Resolve(context.Background(), session.Handle.String())
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusDisabled, identity.Status)
	})
}

func TestStaffSessionUseCase_Destroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions := mock_port.NewMockSessionRepository(ctrl)
	accounts := mock_port.NewMockAccountRepository(ctrl)

	handle := uuid.New()
	sessions.EXPECT().Delete(gomock.Any(), handle).Return(nil)

	uc := NewStaffSessionUseCase(sessions, accounts, 8*time.Hour)
	assert.NoError(t, uc.Destroy(context.Background(), handle.String()))

	// A malformed handle is a no-op, not an error.
	assert.NoError(t, uc.Destroy(context.Background(), "garbage"))
}
