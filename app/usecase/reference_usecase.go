package usecase

import (
	"context"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/google/uuid"
)

// ReferenceUseCase exposes the public reference data reads. The core
// consumes departments and services; it does not own their semantics.
type ReferenceUseCase struct {
	refs port.ReferenceRepository
}

// NewReferenceUseCase creates a new ReferenceUseCase instance
func NewReferenceUseCase(refs port.ReferenceRepository) *ReferenceUseCase {
	return &ReferenceUseCase{refs: refs}
}

// Departments lists all departments
func (uc *ReferenceUseCase) Departments(ctx context.Context) ([]*domain.Department, error) {
	return uc.refs.ListDepartments(ctx)
}

// Services lists services, optionally scoped to one department
func (uc *ReferenceUseCase) Services(ctx context.Context, departmentID *int64) ([]*domain.Service, error) {
	return uc.refs.ListServices(ctx, departmentID)
}

func parseAccountID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
