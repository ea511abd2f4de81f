package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the role of an account
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleOfficer  Role = "OFFICER"
	RoleDeptHead Role = "DEPT_HEAD"
	RoleAdmin    Role = "ADMIN"
)

// StaffRoles lists the roles allowed to act on behalf of a department
var StaffRoles = []Role{RoleOfficer, RoleDeptHead, RoleAdmin}

// IsStaff returns true for OFFICER, DEPT_HEAD and ADMIN roles
func (r Role) IsStaff() bool {
	switch r {
	case RoleOfficer, RoleDeptHead, RoleAdmin:
		return true
	}
	return false
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return r == RoleCitizen || r.IsStaff()
}

// RequiresDepartment returns true for roles that must be bound to a department
func (r Role) RequiresDepartment() bool {
	return r == RoleOfficer || r == RoleDeptHead
}

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusPending  AccountStatus = "PENDING"
	AccountStatusDisabled AccountStatus = "DISABLED"
)

// IsValid returns true if the status is a known status
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusPending, AccountStatusDisabled:
		return true
	}
	return false
}

// Profile holds the mutable contact fields of an account
type Profile struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
}

// Account represents a portal account. Accounts are never hard-deleted,
// only transitioned to DISABLED.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	PasswordHash *string       `json:"-"`
	Role         Role          `json:"role"`
	Status       AccountStatus `json:"status"`
	DepartmentID *int64        `json:"department_id,omitempty"`
	ExternalID   *string       `json:"-"`
	Profile      Profile       `json:"profile"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NormalizeEmail canonicalizes an email address for lookup and storage.
// Exactly one account may exist per normalized email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewCitizenAccount creates a citizen account. passwordHash may be nil for
// federated-only accounts; externalID may be nil for local accounts.
func NewCitizenAccount(email string, passwordHash *string, externalID *string, profile Profile) (*Account, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}
	if profile.Name == "" {
		profile.Name = strings.SplitN(normalized, "@", 2)[0]
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: passwordHash,
		Role:         RoleCitizen,
		Status:       AccountStatusActive,
		ExternalID:   externalID,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewStaffAccount creates a staff account. Staff accounts are only ever
// provisioned explicitly, never through federated login.
func NewStaffAccount(email string, passwordHash string, role Role, departmentID *int64, status AccountStatus, profile Profile) (*Account, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}
	if !role.IsStaff() {
		return nil, fmt.Errorf("invalid staff role: %s", role)
	}
	if role.RequiresDepartment() && departmentID == nil {
		return nil, fmt.Errorf("department is required for role %s", role)
	}
	if !role.RequiresDepartment() {
		departmentID = nil
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: &passwordHash,
		Role:         role,
		Status:       status,
		DepartmentID: departmentID,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive returns true if the account status is ACTIVE
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Identity returns the resolved identity value for this account.
// Both the staff session manager and the citizen bearer manager produce
// this same shape, consumed uniformly by the authorization guard.
func (a *Account) Identity() *Identity {
	return &Identity{
		AccountID:    a.ID,
		Role:         a.Role,
		DepartmentID: a.DepartmentID,
		Status:       a.Status,
	}
}
