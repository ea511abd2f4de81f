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

func activeCitizen(t *testing.T, email, secret string) *domain.Account {
	t.Helper()

	hash, err := password.Hash(secret)
	require.NoError(t, err)

	account, err := domain.NewCitizenAccount(email, &hash, nil, domain.Profile{Name: "Test Citizen"})
	require.NoError(t, err)
	return account
}

func activeOfficer(t *testing.T, email, secret string, departmentID int64) *domain.Account {
	t.Helper()

	hash, err := password.Hash(secret)
	require.NoError(t, err)

	account, err := domain.NewStaffAccount(email, hash, domain.RoleOfficer, &departmentID, domain.AccountStatusActive, domain.Profile{Name: "Test Officer"})
	require.NoError(t, err)
	return account
}

func TestLocalAuthUseCase_Authenticate(t *testing.T) {
	const secret = "correct horse battery staple"

	tests := []struct {
		name       string
		email      string
		secret     string
		setupMocks func(*mock_port.MockAccountRepository)
		wantErr    error
	}{
		{
			name:   "successful login with mixed-case email",
			email:  "  Citizen@Example.COM ",
			secret: secret,
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "citizen@example.com").
					Return(activeCitizen(t, "citizen@example.com", secret), nil)
			},
		},
		{
			name:   "unknown email",
			email:  "nobody@example.com",
			secret: secret,
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "nobody@example.com").
					Return(nil, domain.ErrNotFound)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:   "federated-only account has no usable hash",
			email:  "citizen@example.com",
			secret: secret,
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				externalID := "oidc|42"
				account, err := domain.NewCitizenAccount("citizen@example.com", nil, &externalID, domain.Profile{})
				require.NoError(t, err)
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "citizen@example.com").
					Return(account, nil)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:   "wrong secret",
			email:  "citizen@example.com",
			secret: "not the secret",
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "citizen@example.com").
					Return(activeCitizen(t, "citizen@example.com", secret), nil)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:   "pending staff account matches but is not active",
			email:  "officer@example.com",
			secret: secret,
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				account := activeOfficer(t, "officer@example.com", secret, 1)
				account.Status = domain.AccountStatusPending
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "officer@example.com").
					Return(account, nil)
			},
			wantErr: domain.ErrAccountNotActive,
		},
		{
			name:   "storage failure propagates",
			email:  "citizen@example.com",
			secret: secret,
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().
					GetByEmail(gomock.Any(), "citizen@example.com").
					Return(nil, domain.ErrStorageUnavailable)
			},
			wantErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			accounts := mock_port.NewMockAccountRepository(ctrl)
			tt.setupMocks(accounts)

			uc := NewLocalAuthUseCase(accounts)
			account, err := uc.Authenticate(context.Background(), tt.email, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, account)
			} else {
				require.NoError(t, err)
				require.NotNil(t, account)
				assert.Equal(t, domain.NormalizeEmail(tt.email), account.Email)
			}
		})
	}
}
