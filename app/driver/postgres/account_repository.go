package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// storageErr wraps a collaborator failure so callers can detect a retryable
// storage problem without seeing driver internals.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStorageUnavailable)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// AccountRepository implements port.AccountRepository for PostgreSQL
type AccountRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db Querier, logger *slog.Logger) port.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger.With("component", "account_repository"),
	}
}

const accountColumns = `id, email, password_hash, role, status, department_id, external_id,
		name, phone, address, national_id, job_title, created_at, updated_at`

// Create inserts a new account. A duplicate normalized email or external id
// surfaces as domain.ErrAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, password_hash, role, status, department_id, external_id,
			name, phone, address, national_id, job_title, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Status,
		account.DepartmentID,
		account.ExternalID,
		account.Profile.Name,
		account.Profile.Phone,
		account.Profile.Address,
		account.Profile.NationalID,
		account.Profile.JobTitle,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create account %s: %w", account.Email, domain.ErrAlreadyExists)
		}
		return storageErr("create account", err)
	}

	r.logger.Info("account created", "account_id", account.ID, "role", account.Role)
	return nil
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves an account by normalized email, case-insensitively
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = $1 LIMIT 1`
	return r.scanAccount(r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

// LinkExternalID attaches an external identity id to an account that has
// none. The WHERE clause makes the update conditional on the column being
// NULL, so the row is the atomicity boundary: a repeat of the same link is a
// no-op and an existing different link is never overwritten.
func (r *AccountRepository) LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	query := `UPDATE accounts SET external_id = $1, updated_at = now()
		WHERE id = $2 AND (external_id IS NULL OR external_id = $1)`

	tag, err := r.db.Exec(ctx, query, externalID, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("link external id: %w", domain.ErrAlreadyExists)
		}
		return storageErr("link external id", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the account is gone or it is linked to a different external
		// identity. The latter is an internal consistency fault, never a
		// user-facing error.
		r.logger.Error("external id link skipped", "account_id", id)
	}
	return nil
}

// UpdateProfile updates the mutable profile fields of an account
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error {
	query := `UPDATE accounts
		SET name = $1, phone = $2, address = $3, national_id = $4, job_title = $5, updated_at = now()
		WHERE id = $6`

	tag, err := r.db.Exec(ctx, query,
		profile.Name, profile.Phone, profile.Address, profile.NationalID, profile.JobTitle, id)
	if err != nil {
		return storageErr("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update profile %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetStatus transitions an account's status. Accounts are never deleted,
// only disabled.
func (r *AccountRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return storageErr("set status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set status %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Info("account status changed", "account_id", id, "status", status)
	return nil
}

// SetRoleDepartment changes role and department of an account
func (r *AccountRepository) SetRoleDepartment(ctx context.Context, id uuid.UUID, role domain.Role, departmentID *int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET role = $1, department_id = $2, updated_at = now() WHERE id = $3`,
		role, departmentID, id)
	if err != nil {
		return storageErr("set role/department", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set role/department %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PromoteToStaff converts an account to a staff role with fresh credentials
// and ACTIVE status in one write.
func (r *AccountRepository) PromoteToStaff(ctx context.Context, id uuid.UUID, role domain.Role, departmentID *int64, passwordHash string) error {
	query := `UPDATE accounts
		SET role = $1, department_id = $2, password_hash = $3, status = $4, updated_at = now()
		WHERE id = $5`

	tag, err := r.db.Exec(ctx, query, role, departmentID, passwordHash, domain.AccountStatusActive, id)
	if err != nil {
		return storageErr("promote to staff", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("promote %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Info("account promoted to staff", "account_id", id, "role", role)
	return nil
}

// List returns all accounts, newest first
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := r.scanAccountRow(rows)
		if err != nil {
			return nil, storageErr("scan account", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	account, err := scanAccountFrom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("query account", err)
	}
	return account, nil
}

func (r *AccountRepository) scanAccountRow(rows pgx.Rows) (*domain.Account, error) {
	return scanAccountFrom(rows)
}

func scanAccountFrom(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.DepartmentID,
		&account.ExternalID,
		&account.Profile.Name,
		&account.Profile.Phone,
		&account.Profile.Address,
		&account.Profile.NationalID,
		&account.Profile.JobTitle,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
