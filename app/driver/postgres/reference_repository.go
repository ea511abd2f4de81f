package postgres

import (
	"context"
	"errors"
	"log/slog"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/jackc/pgx/v5"
)

// ReferenceRepository implements port.ReferenceRepository for PostgreSQL
type ReferenceRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewReferenceRepository creates a new PostgreSQL reference data repository
func NewReferenceRepository(db Querier, logger *slog.Logger) port.ReferenceRepository {
	return &ReferenceRepository{
		db:     db,
		logger: logger.With("component", "reference_repository"),
	}
}

// ListDepartments returns all departments ordered by name
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, storageErr("list departments", err)
	}
	defer rows.Close()

	var departments []*domain.Department
	for rows.Next() {
		dept := &domain.Department{}
		if err := rows.Scan(&dept.ID, &dept.Name); err != nil {
			return nil, storageErr("scan department", err)
		}
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list departments", err)
	}
	return departments, nil
}

// GetDepartment retrieves a single department
func (r *ReferenceRepository) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept := &domain.Department{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM departments WHERE id = $1`, id).
		Scan(&dept.ID, &dept.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get department", err)
	}
	return dept, nil
}

// CreateDepartment inserts a department and returns it with its assigned id
func (r *ReferenceRepository) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	dept := &domain.Department{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO departments (name) VALUES ($1) RETURNING id`, name).
		Scan(&dept.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, storageErr("create department", err)
	}

	r.logger.Info("department created", "department_id", dept.ID, "name", name)
	return dept, nil
}

// ListServices returns services, optionally scoped to a department
func (r *ReferenceRepository) ListServices(ctx context.Context, departmentID *int64) ([]*domain.Service, error) {
	query := `
		SELECT id, department_id, name, fee_cents
		FROM services
		WHERE ($1::bigint IS NULL OR department_id = $1)
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, storageErr("list services", err)
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		svc := &domain.Service{}
		if err := rows.Scan(&svc.ID, &svc.DepartmentID, &svc.Name, &svc.FeeCents); err != nil {
			return nil, storageErr("scan service", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list services", err)
	}
	return services, nil
}

// GetService retrieves a single service
func (r *ReferenceRepository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	svc := &domain.Service{}
	err := r.db.QueryRow(ctx,
		`SELECT id, department_id, name, fee_cents FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.DepartmentID, &svc.Name, &svc.FeeCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get service", err)
	}
	return svc, nil
}

// CreateService inserts a service under a department
func (r *ReferenceRepository) CreateService(ctx context.Context, departmentID int64, name string, feeCents int64) (*domain.Service, error) {
	svc := &domain.Service{DepartmentID: departmentID, Name: name, FeeCents: feeCents}
	err := r.db.QueryRow(ctx,
		`INSERT INTO services (department_id, name, fee_cents) VALUES ($1, $2, $3) RETURNING id`,
		departmentID, name, feeCents).
		Scan(&svc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, storageErr("create service", err)
	}

	r.logger.Info("service created",
		"service_id", svc.ID, "department_id", departmentID, "name", name)
	return svc, nil
}
