package domain

import "errors"

// Identity and authorization errors. These are terminal for the call and
// surfaced with their distinguishing kind; they are never retried.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotActive   = errors.New("account not active")
	ErrStaffNotFound      = errors.New("staff account not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrExpiredToken       = errors.New("token expired")
	ErrMissingSecret      = errors.New("missing secret")
	ErrAlreadyExists      = errors.New("already exists")
)

// Request lifecycle errors
var (
	ErrNotFound          = errors.New("not found")
	ErrWrongDepartment   = errors.New("wrong department")
	ErrAlreadyDecided    = errors.New("request already decided")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ErrStorageUnavailable marks a collaborator storage failure. Writes behind
// it are safe for the caller to retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrSignupRequired signals that a federated assertion matched no account and
// the caller declared citizen intent. No account has been created; the
// details travel in a SignupRequiredError.
var ErrSignupRequired = errors.New("signup required")

// SignupRequiredError carries the asserted identity and the signed pending
// token the caller must present to complete registration.
type SignupRequiredError struct {
	Email        string
	Name         string
	ExternalID   string
	PendingToken string
}

func (e *SignupRequiredError) Error() string {
	return "signup required for " + e.Email
}

func (e *SignupRequiredError) Unwrap() error {
	return ErrSignupRequired
}
