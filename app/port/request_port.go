package port

//go:generate mockgen -source=request_port.go -destination=../mocks/mock_request_port.go

import (
	"context"
	"time"

	"civic-portal/app/domain"

	"github.com/google/uuid"
)

// RequestRepository defines storage access for requests and their
// append-only side-artifacts.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	ListByCitizen(ctx context.Context, citizenID uuid.UUID, status *domain.RequestStatus) ([]*domain.Request, error)
	// ListByDepartment lists requests scoped to a department; a nil
	// department lists all (admin view).
	ListByDepartment(ctx context.Context, departmentID *int64) ([]*domain.Request, error)
	// MarkUnderReview conditionally moves a SUBMITTED request to
	// UNDER_REVIEW; the predicate is evaluated by the storage layer.
	MarkUnderReview(ctx context.Context, id string, departmentID *int64) (*domain.Request, error)
	// Decide writes the decision via a conditional update keyed by id and,
	// unless departmentID is nil, the frozen department. The storage row is
	// the only atomicity boundary: concurrent decisions are last-writer-wins.
	Decide(ctx context.Context, id string, outcome domain.RequestStatus, decidedAt time.Time, departmentID *int64) (*domain.Request, error)

	AddDocument(ctx context.Context, doc *domain.Document) error
	ListDocuments(ctx context.Context, requestID string) ([]*domain.Document, error)
	AddPayment(ctx context.Context, payment *domain.Payment) error
	ListPayments(ctx context.Context, requestID string) ([]*domain.Payment, error)

	CountByStatus(ctx context.Context) (*domain.StatusCounts, error)
	DepartmentReport(ctx context.Context) ([]*domain.DepartmentReport, error)
}

// ReferenceRepository defines read/write access to departments and services.
// The core consumes this reference data but does not own its semantics.
type ReferenceRepository interface {
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	GetDepartment(ctx context.Context, id int64) (*domain.Department, error)
	CreateDepartment(ctx context.Context, name string) (*domain.Department, error)
	ListServices(ctx context.Context, departmentID *int64) ([]*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	CreateService(ctx context.Context, departmentID int64, name string, feeCents int64) (*domain.Service, error)
}
