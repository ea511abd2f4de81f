package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/rest/middleware"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/validator"
)

// RequestHandler exposes the citizen side of the request lifecycle
type RequestHandler struct {
	requests  *usecase.RequestUseCase
	validator *validator.Validator
	logger    *slog.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requests *usecase.RequestUseCase, validator *validator.Validator, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		requests:  requests,
		validator: validator,
		logger:    logger,
	}
}

type CreateRequestRequest struct {
	ServiceID int64           `json:"service_id" validate:"required"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Create submits a new request for a service
func (h *RequestHandler) Create(c echo.Context) error {
	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	request, err := h.requests.Create(c.Request().Context(), middleware.IdentityFrom(c), req.ServiceID, req.Data)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("request submitted", "request_id", request.ID, "service_id", req.ServiceID)
	return c.JSON(http.StatusCreated, request)
}

// List returns the caller's requests, optionally filtered by status
func (h *RequestHandler) List(c echo.Context) error {
	var status *domain.RequestStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := domain.RequestStatus(raw)
		if !s.IsValid() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status filter"})
		}
		status = &s
	}

	list, err := h.requests.ListMine(c.Request().Context(), middleware.IdentityFrom(c).AccountID, status)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one of the caller's requests
func (h *RequestHandler) Get(c echo.Context) error {
	request, err := h.requests.Get(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, request)
}

type AttachDocumentRequest struct {
	FileName   string `json:"file_name" validate:"required"`
	MimeType   string `json:"mime_type" validate:"required"`
	StorageKey string `json:"storage_key" validate:"required"`
}

// AttachDocument records document metadata against the caller's request. The
// bytes themselves live in the external blob store under the storage key.
func (h *RequestHandler) AttachDocument(c echo.Context) error {
	var req AttachDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	doc, err := h.requests.AttachDocument(c.Request().Context(), middleware.IdentityFrom(c),
		c.Param("id"), req.FileName, req.MimeType, req.StorageKey)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Documents lists the documents attached to a request
func (h *RequestHandler) Documents(c echo.Context) error {
	docs, err := h.requests.Documents(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// AttachPayment records a simulated payment of the service fee
func (h *RequestHandler) AttachPayment(c echo.Context) error {
	payment, err := h.requests.AttachPayment(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

// Payments lists the payments recorded against a request
func (h *RequestHandler) Payments(c echo.Context) error {
	payments, err := h.requests.Payments(c.Request().Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payments)
}
