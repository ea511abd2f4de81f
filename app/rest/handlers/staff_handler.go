package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/obs"
	"civic-portal/app/rest/middleware"
	"civic-portal/app/usecase"
)

// StaffHandler exposes the officer side of the request lifecycle: the
// department-scoped inbox, review, and decisions.
type StaffHandler struct {
	requests *usecase.RequestUseCase
	logger   *slog.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(requests *usecase.RequestUseCase, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		requests: requests,
		logger:   logger,
	}
}

// Inbox lists the requests the caller may act on. Officers and department
// heads see their department, administrators see everything.
func (h *StaffHandler) Inbox(c echo.Context) error {
	list, err := h.requests.Inbox(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one request within the caller's scope, with its documents
func (h *StaffHandler) Get(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	id := c.Param("id")

	request, err := h.requests.Get(c.Request().Context(), identity, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	docs, err := h.requests.Documents(c.Request().Context(), identity, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"request":   request,
		"documents": docs,
	})
}

// Review moves a SUBMITTED request to UNDER_REVIEW
func (h *StaffHandler) Review(c echo.Context) error {
	request, err := h.requests.Review(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("request under review", "request_id", request.ID)
	return c.JSON(http.StatusOK, request)
}

type DecisionRequest struct {
	Status string `json:"status" form:"decision"`
}

// Decide records an APPROVED or REJECTED decision. The form variant accepts
// approve/reject verbs, the JSON variant the status values themselves.
func (h *StaffHandler) Decide(c echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	var outcome domain.RequestStatus
	switch strings.ToUpper(req.Status) {
	case "APPROVE", "APPROVED":
		outcome = domain.RequestStatusApproved
	case "REJECT", "REJECTED":
		outcome = domain.RequestStatusRejected
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "decision must be approve or reject"})
	}

	request, err := h.requests.Decide(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"), outcome)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	obs.RecordDecision(string(outcome))
	h.logger.Info("request decided", "request_id", request.ID, "outcome", outcome)
	return c.JSON(http.StatusOK, request)
}
