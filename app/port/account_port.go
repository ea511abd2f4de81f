package port

//go:generate mockgen -source=account_port.go -destination=../mocks/mock_account_port.go

import (
	"context"

	"civic-portal/app/domain"

	"github.com/google/uuid"
)

// AccountRepository defines credential store access for accounts
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByEmail looks up by normalized email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// LinkExternalID attaches an external identity id if none is linked yet.
	// The update is conditional on the column being NULL, so a concurrent or
	// repeated link is a no-op and an existing link is never overwritten.
	LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error
	// SetRoleDepartment changes role/department of an existing staff account.
	SetRoleDepartment(ctx context.Context, id uuid.UUID, role domain.Role, departmentID *int64) error
	// PromoteToStaff converts an account to a staff role with credentials and
	// ACTIVE status in a single write.
	PromoteToStaff(ctx context.Context, id uuid.UUID, role domain.Role, departmentID *int64, passwordHash string) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// SessionRepository defines the durable staff session store
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, handle uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, handle uuid.UUID) error
}
