package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestRepository implements port.RequestRepository for PostgreSQL
type RequestRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewRequestRepository creates a new PostgreSQL request repository
func NewRequestRepository(db Querier, logger *slog.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger.With("component", "request_repository"),
	}
}

// Create inserts a new request with its frozen department
func (r *RequestRepository) Create(ctx context.Context, request *domain.Request) error {
	query := `
		INSERT INTO requests (id, citizen_id, service_id, department_id, status, data, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		request.ID,
		request.CitizenID,
		request.ServiceID,
		request.DepartmentID,
		request.Status,
		request.Data,
		request.SubmittedAt,
	)
	if err != nil {
		return storageErr("create request", err)
	}

	r.logger.Info("request created",
		"request_id", request.ID,
		"service_id", request.ServiceID,
		"department_id", request.DepartmentID)
	return nil
}

const requestSelect = `
	SELECT r.id, r.citizen_id, r.service_id, r.department_id, r.status, r.data,
	       r.submitted_at, r.decided_at,
	       s.name AS service, d.name AS department, u.name AS citizen_name
	FROM requests r
	JOIN services s ON s.id = r.service_id
	JOIN departments d ON d.id = r.department_id
	JOIN accounts u ON u.id = r.citizen_id`

// GetByID retrieves a request with its display fields
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	row := r.db.QueryRow(ctx, requestSelect+` WHERE r.id = $1 LIMIT 1`, id)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get request", err)
	}
	return request, nil
}

// ListByCitizen lists a citizen's own requests, optionally filtered by status
func (r *RequestRepository) ListByCitizen(ctx context.Context, citizenID uuid.UUID, status *domain.RequestStatus) ([]*domain.Request, error) {
	query := requestSelect + ` WHERE r.citizen_id = $1`
	args := []interface{}{citizenID}
	if status != nil {
		query += ` AND r.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY r.submitted_at DESC`

	return r.queryRequests(ctx, "list citizen requests", query, args...)
}

// ListByDepartment lists requests scoped to a department; nil lists all
func (r *RequestRepository) ListByDepartment(ctx context.Context, departmentID *int64) ([]*domain.Request, error) {
	query := requestSelect + `
		WHERE ($1::bigint IS NULL OR r.department_id = $1)
		ORDER BY r.submitted_at DESC`

	return r.queryRequests(ctx, "list department requests", query, departmentID)
}

// MarkUnderReview conditionally moves a SUBMITTED request to UNDER_REVIEW.
// The department predicate is part of the UPDATE so the row is the
// atomicity boundary.
func (r *RequestRepository) MarkUnderReview(ctx context.Context, id string, departmentID *int64) (*domain.Request, error) {
	query := `
		UPDATE requests SET status = $1
		WHERE id = $2
		  AND status = $3
		  AND ($4::bigint IS NULL OR department_id = $4)`

	tag, err := r.db.Exec(ctx, query,
		domain.RequestStatusUnderReview, id, domain.RequestStatusSubmitted, departmentID)
	if err != nil {
		return nil, storageErr("mark under review", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("mark under review %s: %w", id, domain.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// Decide writes a decision through a conditional update keyed by id and,
// unless departmentID is nil (admin), the frozen department. There is no
// optimistic lock: two concurrent decisions both succeed, last writer wins.
func (r *RequestRepository) Decide(ctx context.Context, id string, outcome domain.RequestStatus, decidedAt time.Time, departmentID *int64) (*domain.Request, error) {
	query := `
		UPDATE requests SET status = $1, decided_at = $2
		WHERE id = $3
		  AND ($4::bigint IS NULL OR department_id = $4)`

	tag, err := r.db.Exec(ctx, query, outcome, decidedAt, id, departmentID)
	if err != nil {
		return nil, storageErr("decide request", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("decide %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Info("request decided", "request_id", id, "outcome", outcome)
	return r.GetByID(ctx, id)
}

// AddDocument appends a document record. Documents never mutate the request.
func (r *RequestRepository) AddDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, request_id, file_name, mime_type, storage_key, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.RequestID, doc.FileName, doc.MimeType, doc.StorageKey, doc.UploadedBy, doc.UploadedAt)
	if err != nil {
		return storageErr("add document", err)
	}
	return nil
}

// ListDocuments lists a request's documents, newest first
func (r *RequestRepository) ListDocuments(ctx context.Context, requestID string) ([]*domain.Document, error) {
	query := `
		SELECT id, request_id, file_name, mime_type, storage_key, uploaded_by, uploaded_at
		FROM documents WHERE request_id = $1 ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, storageErr("list documents", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc := &domain.Document{}
		if err := rows.Scan(&doc.ID, &doc.RequestID, &doc.FileName, &doc.MimeType,
			&doc.StorageKey, &doc.UploadedBy, &doc.UploadedAt); err != nil {
			return nil, storageErr("scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list documents", err)
	}
	return docs, nil
}

// AddPayment appends a payment record. Payments never mutate the request.
func (r *RequestRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, request_id, amount_cents, status, provider, txn_ref, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		payment.ID, payment.RequestID, payment.AmountCents, payment.Status,
		payment.Provider, payment.TxnRef, payment.PaidAt)
	if err != nil {
		return storageErr("add payment", err)
	}
	return nil
}

// ListPayments lists a request's payments, newest first
func (r *RequestRepository) ListPayments(ctx context.Context, requestID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, request_id, amount_cents, status, provider, txn_ref, paid_at
		FROM payments WHERE request_id = $1 ORDER BY paid_at DESC`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, storageErr("list payments", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p := &domain.Payment{}
		if err := rows.Scan(&p.ID, &p.RequestID, &p.AmountCents, &p.Status,
			&p.Provider, &p.TxnRef, &p.PaidAt); err != nil {
			return nil, storageErr("scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list payments", err)
	}
	return payments, nil
}

// CountByStatus returns the dashboard totals
func (r *RequestRepository) CountByStatus(ctx context.Context) (*domain.StatusCounts, error) {
	query := `
		SELECT COUNT(*)::int,
		       COUNT(*) FILTER (WHERE status = 'SUBMITTED')::int,
		       COUNT(*) FILTER (WHERE status = 'UNDER_REVIEW')::int,
		       COUNT(*) FILTER (WHERE status = 'APPROVED')::int,
		       COUNT(*) FILTER (WHERE status = 'REJECTED')::int
		FROM requests`

	counts := &domain.StatusCounts{}
	err := r.db.QueryRow(ctx, query).Scan(
		&counts.All, &counts.Submitted, &counts.UnderReview, &counts.Approved, &counts.Rejected)
	if err != nil {
		return nil, storageErr("count requests", err)
	}
	return counts, nil
}

// DepartmentReport returns per-department aggregates
func (r *RequestRepository) DepartmentReport(ctx context.Context) ([]*domain.DepartmentReport, error) {
	query := `
		SELECT d.name,
		       COUNT(r.id)::int,
		       COUNT(*) FILTER (WHERE r.status = 'APPROVED')::int,
		       COUNT(*) FILTER (WHERE r.status = 'REJECTED')::int
		FROM departments d
		LEFT JOIN requests r ON r.department_id = d.id
		GROUP BY d.name
		ORDER BY d.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storageErr("department report", err)
	}
	defer rows.Close()

	var report []*domain.DepartmentReport
	for rows.Next() {
		row := &domain.DepartmentReport{}
		if err := rows.Scan(&row.Department, &row.Total, &row.Approved, &row.Rejected); err != nil {
			return nil, storageErr("scan report row", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("department report", err)
	}
	return report, nil
}

func (r *RequestRepository) queryRequests(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Request, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var requests []*domain.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return requests, nil
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	request := &domain.Request{}
	err := row.Scan(
		&request.ID,
		&request.CitizenID,
		&request.ServiceID,
		&request.DepartmentID,
		&request.Status,
		&request.Data,
		&request.SubmittedAt,
		&request.DecidedAt,
		&request.ServiceName,
		&request.DepartmentName,
		&request.CitizenName,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}
