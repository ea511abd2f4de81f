package postgres

import (
	"context"
	"errors"
	"log/slog"

	"civic-portal/app/domain"
	"civic-portal/app/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository implements port.SessionRepository for PostgreSQL. Staff
// sessions live in a shared durable table so any instance can resume them;
// the payload is only (account id, role).
type SessionRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db Querier, logger *slog.Logger) port.SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger.With("component", "session_repository"),
	}
}

// Create persists a staff session. Inserting is idempotent enough to retry:
// a duplicate handle simply collides and the caller issues a new one.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (handle, account_id, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		session.Handle, session.AccountID, session.Role, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return storageErr("create session", err)
	}

	r.logger.Debug("session created", "account_id", session.AccountID, "expires_at", session.ExpiresAt)
	return nil
}

// Get retrieves a session by handle. Expiry is evaluated by the caller at
// resolution time; no background sweep exists.
func (r *SessionRepository) Get(ctx context.Context, handle uuid.UUID) (*domain.Session, error) {
	query := `SELECT handle, account_id, role, created_at, expires_at FROM sessions WHERE handle = $1`

	session := &domain.Session{}
	err := r.db.QueryRow(ctx, query, handle).Scan(
		&session.Handle, &session.AccountID, &session.Role, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get session", err)
	}
	return session, nil
}

// Delete destroys a session. Deleting an absent session is not an error so
// logout stays idempotent.
func (r *SessionRepository) Delete(ctx context.Context, handle uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE handle = $1`, handle)
	if err != nil {
		return storageErr("delete session", err)
	}
	return nil
}
