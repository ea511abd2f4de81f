package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"civic-portal/app/config"
	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/utils/ids"

	"github.com/google/uuid"
)

const (
	paymentProvider = "FAKE"
)

// RequestUseCase owns the case state machine: creation with a frozen
// department, department-scoped review and decision, and append-only
// side-artifacts.
type RequestUseCase struct {
	requests port.RequestRepository
	refs     port.ReferenceRepository
	policy   config.DecidePolicy
}

// NewRequestUseCase creates a new RequestUseCase instance
func NewRequestUseCase(requests port.RequestRepository, refs port.ReferenceRepository, policy config.DecidePolicy) *RequestUseCase {
	return &RequestUseCase{
		requests: requests,
		refs:     refs,
		policy:   policy,
	}
}

// Create submits a new request. The service's owning department is resolved
// now and frozen on the request; moving the service between departments
// later does not move existing requests.
func (uc *RequestUseCase) Create(ctx context.Context, citizen *domain.Identity, serviceID int64, data json.RawMessage) (*domain.Request, error) {
	svc, err := uc.refs.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	request := domain.NewRequest(ids.New(), citizen.AccountID, svc, data)
	if err := uc.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	request.ServiceName = svc.Name
	return request, nil
}

// Get returns a request visible to the identity. The owning citizen sees
// their own; staff see their department's; admins see all. Anything else is
// reported as not found, never as forbidden, so request ids do not leak.
func (uc *RequestUseCase) Get(ctx context.Context, identity *domain.Identity, id string) (*domain.Request, error) {
	request, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.visible(identity, request) {
		return nil, domain.ErrNotFound
	}
	return request, nil
}

// ListMine lists the citizen's own requests, optionally filtered by status
func (uc *RequestUseCase) ListMine(ctx context.Context, citizenID uuid.UUID, status *domain.RequestStatus) ([]*domain.Request, error) {
	return uc.requests.ListByCitizen(ctx, citizenID, status)
}

// Inbox lists the requests a staff identity may act on: the department's
// requests, or every request for an admin.
func (uc *RequestUseCase) Inbox(ctx context.Context, staff *domain.Identity) ([]*domain.Request, error) {
	return uc.requests.ListByDepartment(ctx, deptScope(staff))
}

// Review moves a SUBMITTED request to UNDER_REVIEW within the staff
// identity's department scope.
func (uc *RequestUseCase) Review(ctx context.Context, staff *domain.Identity, id string) (*domain.Request, error) {
	request, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.DecidableBy(staff) {
		return nil, domain.ErrWrongDepartment
	}
	if err := request.CanTransition(domain.RequestStatusUnderReview); err != nil {
		return nil, err
	}

	return uc.requests.MarkUnderReview(ctx, id, deptScope(staff))
}

// Decide writes an APPROVED or REJECTED outcome. The storage layer enforces
// the department predicate again inside the conditional update, so the
// pre-read here only classifies the failure (missing vs wrong department).
// Under the default overwrite policy re-deciding a terminal request is
// last-writer-wins; the strict policy rejects it.
func (uc *RequestUseCase) Decide(ctx context.Context, staff *domain.Identity, id string, outcome domain.RequestStatus) (*domain.Request, error) {
	if !outcome.IsDecision() {
		return nil, fmt.Errorf("invalid decision outcome: %s", outcome)
	}

	request, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.DecidableBy(staff) {
		return nil, domain.ErrWrongDepartment
	}
	if uc.policy == config.DecidePolicyStrict && request.Status.IsTerminal() {
		return nil, domain.ErrAlreadyDecided
	}

	return uc.requests.Decide(ctx, id, outcome, time.Now(), deptScope(staff))
}

// AttachDocument records document metadata on a request the citizen owns.
// Attachment is permitted in any request status and never changes it.
func (uc *RequestUseCase) AttachDocument(ctx context.Context, citizen *domain.Identity, requestID, fileName, mimeType, storageKey string) (*domain.Document, error) {
	request, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CitizenID != citizen.AccountID {
		return nil, domain.ErrNotFound
	}

	doc := &domain.Document{
		ID:         ids.New(),
		RequestID:  requestID,
		FileName:   fileName,
		MimeType:   mimeType,
		StorageKey: storageKey,
		UploadedBy: citizen.AccountID,
		UploadedAt: time.Now(),
	}
	if err := uc.requests.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Documents lists a request's documents for an identity that can see it
func (uc *RequestUseCase) Documents(ctx context.Context, identity *domain.Identity, requestID string) ([]*domain.Document, error) {
	if _, err := uc.Get(ctx, identity, requestID); err != nil {
		return nil, err
	}
	return uc.requests.ListDocuments(ctx, requestID)
}

// AttachPayment records a simulated payment of the service fee on a request
// the citizen owns. The amount is copied from the service at attach time.
func (uc *RequestUseCase) AttachPayment(ctx context.Context, citizen *domain.Identity, requestID string) (*domain.Payment, error) {
	request, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CitizenID != citizen.AccountID {
		return nil, domain.ErrNotFound
	}

	svc, err := uc.refs.GetService(ctx, request.ServiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:          ids.New(),
		RequestID:   requestID,
		AmountCents: svc.FeeCents,
		Status:      domain.PaymentStatusPaid,
		Provider:    paymentProvider,
		TxnRef:      fmt.Sprintf("SIM-%d", now.UnixMilli()),
		PaidAt:      now,
	}
	if err := uc.requests.AddPayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Payments lists a request's payments for an identity that can see it
func (uc *RequestUseCase) Payments(ctx context.Context, identity *domain.Identity, requestID string) ([]*domain.Payment, error) {
	if _, err := uc.Get(ctx, identity, requestID); err != nil {
		return nil, err
	}
	return uc.requests.ListPayments(ctx, requestID)
}

func (uc *RequestUseCase) visible(identity *domain.Identity, request *domain.Request) bool {
	if identity == nil {
		return false
	}
	if identity.Role == domain.RoleCitizen {
		return request.CitizenID == identity.AccountID
	}
	return request.DecidableBy(identity)
}

// deptScope converts a staff identity into the storage-layer department
// predicate: nil means every department (admin).
func deptScope(staff *domain.Identity) *int64 {
	if staff.Role == domain.RoleAdmin {
		return nil
	}
	return staff.DepartmentID
}
