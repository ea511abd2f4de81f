package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the state of a service request.
//
//	SUBMITTED --review--> UNDER_REVIEW --approve/reject--> APPROVED/REJECTED
//	SUBMITTED --approve/reject--> APPROVED/REJECTED (review step optional)
type RequestStatus string

const (
	RequestStatusSubmitted   RequestStatus = "SUBMITTED"
	RequestStatusUnderReview RequestStatus = "UNDER_REVIEW"
	RequestStatusApproved    RequestStatus = "APPROVED"
	RequestStatusRejected    RequestStatus = "REJECTED"
)

// IsValid returns true for a known status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusSubmitted, RequestStatusUnderReview, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true for APPROVED and REJECTED
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// IsDecision returns true for the two decision outcomes
func (s RequestStatus) IsDecision() bool {
	return s.IsTerminal()
}

// Request is a citizen's service request. The department is resolved from
// the service at creation time and frozen on the request; later changes to
// the service do not move existing requests.
type Request struct {
	ID           string          `json:"id"`
	CitizenID    uuid.UUID       `json:"citizen_id"`
	ServiceID    int64           `json:"service_id"`
	DepartmentID int64           `json:"department_id"`
	Status       RequestStatus   `json:"status"`
	Data         json.RawMessage `json:"data,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty"`

	// Display fields populated by list queries, not persisted on the row.
	ServiceName    string `json:"service,omitempty"`
	DepartmentName string `json:"department,omitempty"`
	CitizenName    string `json:"citizen_name,omitempty"`
}

// NewRequest creates a SUBMITTED request for the given service, freezing the
// service's department on the request.
func NewRequest(id string, citizenID uuid.UUID, svc *Service, data json.RawMessage) *Request {
	return &Request{
		ID:           id,
		CitizenID:    citizenID,
		ServiceID:    svc.ID,
		DepartmentID: svc.DepartmentID,
		Status:       RequestStatusSubmitted,
		Data:         data,
		SubmittedAt:  time.Now(),
	}
}

// DecidableBy reports whether the identity may decide this request: an ADMIN
// matches any department, other staff must match the frozen department.
func (r *Request) DecidableBy(staff *Identity) bool {
	if staff == nil || !staff.IsStaff() {
		return false
	}
	if staff.Role == RoleAdmin {
		return true
	}
	return staff.DepartmentID != nil && *staff.DepartmentID == r.DepartmentID
}

// CanTransition reports whether the state machine permits moving from the
// current status to the target status.
func (r *Request) CanTransition(to RequestStatus) error {
	switch to {
	case RequestStatusUnderReview:
		if r.Status != RequestStatusSubmitted {
			return fmt.Errorf("cannot move %s request to %s: %w", r.Status, to, ErrInvalidTransition)
		}
	case RequestStatusApproved, RequestStatusRejected:
		// Decisions are allowed from SUBMITTED and UNDER_REVIEW. Re-deciding
		// a terminal request is a policy question handled by the caller.
	default:
		return fmt.Errorf("invalid target status: %s", to)
	}
	return nil
}

// Document is an append-only side-artifact of a request. Only the storage
// key is recorded; the bytes live in the external blob store.
type Document struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	StorageKey string    `json:"storage_key"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PaymentStatus represents the state of a payment record
type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "PAID"
)

// Payment is an append-only payment record for a request. Attaching one
// never changes the request's status.
type Payment struct {
	ID          string        `json:"id"`
	RequestID   string        `json:"request_id"`
	AmountCents int64         `json:"amount_cents"`
	Status      PaymentStatus `json:"status"`
	Provider    string        `json:"provider"`
	TxnRef      string        `json:"txn_ref"`
	PaidAt      time.Time     `json:"paid_at"`
}

// DepartmentReport is a per-department aggregate row
type DepartmentReport struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Approved   int    `json:"approved"`
	Rejected   int    `json:"rejected"`
}

// StatusCounts holds the dashboard totals by request status
type StatusCounts struct {
	All         int `json:"all"`
	Submitted   int `json:"submitted"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}
