package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/utils/validator"
)

// ErrorResponse is the uniform JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges a write that returns no entity
type OKResponse struct {
	OK bool `json:"ok"`
}

// respondError maps domain sentinels to HTTP status codes. The body carries
// the error kind only; internal detail stays in the log.
func respondError(c echo.Context, logger *slog.Logger, err error) error {
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, validationErr)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	case errors.Is(err, domain.ErrStaffNotFound):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "staff account not found"})
	case errors.Is(err, domain.ErrAccountNotActive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "account not active"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrWrongDepartment):
		// Scope failures read as absence so request ids do not leak.
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "already exists"})
	case errors.Is(err, domain.ErrAlreadyDecided):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "request already decided"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid status transition"})
	case errors.Is(err, domain.ErrExpiredToken):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "token expired"})
	case errors.Is(err, domain.ErrMissingSecret):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing secret"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		logger.Error("storage unavailable", "error", err, "path", c.Request().URL.Path)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service unavailable"})
	default:
		logger.Error("unhandled error", "error", err, "path", c.Request().URL.Path)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
