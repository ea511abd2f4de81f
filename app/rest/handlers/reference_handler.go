package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"civic-portal/app/usecase"
)

// ReferenceHandler serves the public reference data: departments and the
// services they offer.
type ReferenceHandler struct {
	refs   *usecase.ReferenceUseCase
	logger *slog.Logger
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(refs *usecase.ReferenceUseCase, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		refs:   refs,
		logger: logger,
	}
}

// Departments lists all departments
func (h *ReferenceHandler) Departments(c echo.Context) error {
	departments, err := h.refs.Departments(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, departments)
}

// Services lists services, optionally filtered by department
func (h *ReferenceHandler) Services(c echo.Context) error {
	var departmentID *int64
	if raw := c.QueryParam("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid department_id"})
		}
		departmentID = &id
	}

	services, err := h.refs.Services(c.Request().Context(), departmentID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, services)
}
