package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/validator"
)

// AdminHandler exposes account administration, reference-data management and
// the reporting endpoints.
type AdminHandler struct {
	admin     *usecase.AdminUseCase
	validator *validator.Validator
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *usecase.AdminUseCase, validator *validator.Validator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		validator: validator,
		logger:    logger,
	}
}

// Dashboard returns request counts by status
func (h *AdminHandler) Dashboard(c echo.Context) error {
	counts, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Reports returns per-department request aggregates
func (h *AdminHandler) Reports(c echo.Context) error {
	report, err := h.admin.DepartmentReport(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ListAccounts returns all accounts
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.admin.ListAccounts(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, accountResponse(account))
	}
	return c.JSON(http.StatusOK, out)
}

type ProvisionStaffRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	Role         string `json:"role" validate:"required,staff_role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// ProvisionStaff creates a staff account, or promotes or reassigns an
// existing one, in ACTIVE status.
func (h *AdminHandler) ProvisionStaff(c echo.Context) error {
	var req ProvisionStaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.admin.ProvisionStaff(c.Request().Context(), req.Email, req.Password,
		domain.Role(req.Role), req.DepartmentID, domain.Profile{Name: req.Name})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("staff provisioned", "account_id", account.ID, "role", account.Role)
	return c.JSON(http.StatusCreated, accountResponse(account))
}

type ApproveStaffRequest struct {
	Role         string `json:"role" validate:"required,staff_role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// ApproveStaff activates a PENDING staff account with its final role and
// department.
func (h *AdminHandler) ApproveStaff(c echo.Context) error {
	var req ApproveStaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.admin.ApproveStaff(c.Request().Context(), c.Param("id"), domain.Role(req.Role), req.DepartmentID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("staff approved", "account_id", account.ID, "role", account.Role)
	return c.JSON(http.StatusOK, accountResponse(account))
}

// DisableAccount sets an account's status to DISABLED. Accounts are never
// deleted.
func (h *AdminHandler) DisableAccount(c echo.Context) error {
	if err := h.admin.Disable(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("account disabled", "account_id", c.Param("id"))
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateDepartment adds a department
func (h *AdminHandler) CreateDepartment(c echo.Context) error {
	var req CreateDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	department, err := h.admin.CreateDepartment(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, department)
}

type CreateServiceRequest struct {
	DepartmentID int64  `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	FeeCents     int64  `json:"fee_cents" validate:"gte=0"`
}

// CreateService adds a service under a department
func (h *AdminHandler) CreateService(c echo.Context) error {
	var req CreateServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	service, err := h.admin.CreateService(c.Request().Context(), req.DepartmentID, req.Name, req.FeeCents)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, service)
}
