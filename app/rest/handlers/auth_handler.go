package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/obs"
	"civic-portal/app/rest/middleware"
	"civic-portal/app/usecase"
	"civic-portal/app/utils/validator"
)

// AuthHandler handles local authentication for both populations: the citizen
// JSON surface (bearer cookie) and the staff browser surface (session cookie,
// form posts, redirects).
type AuthHandler struct {
	local        *usecase.LocalAuthUseCase
	registration *usecase.RegistrationUseCase
	sessions     *usecase.StaffSessionUseCase
	bearers      *usecase.CitizenBearerUseCase
	validator    *validator.Validator
	cookies      CookieConfig
	bearerTTL    time.Duration
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	local *usecase.LocalAuthUseCase,
	registration *usecase.RegistrationUseCase,
	sessions *usecase.StaffSessionUseCase,
	bearers *usecase.CitizenBearerUseCase,
	validator *validator.Validator,
	cookies CookieConfig,
	bearerTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		local:        local,
		registration: registration,
		sessions:     sessions,
		bearers:      bearers,
		validator:    validator,
		cookies:      cookies,
		bearerTTL:    bearerTTL,
		logger:       logger,
	}
}

type CitizenLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CitizenRegisterRequest struct {
	PendingToken string `json:"pending_token,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=8"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	NationalID   string `json:"national_id,omitempty"`
}

type AccountResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         domain.Role    `json:"role"`
	Status       string         `json:"status"`
	DepartmentID *int64         `json:"department_id,omitempty"`
	Profile      domain.Profile `json:"profile"`
}

func accountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:           account.ID.String(),
		Email:        account.Email,
		Role:         account.Role,
		Status:       string(account.Status),
		DepartmentID: account.DepartmentID,
		Profile:      account.Profile,
	}
}

// CitizenLogin authenticates a citizen with email and password and sets the
// bearer cookie. Staff credentials are rejected here; staff sign in through
// the browser surface.
func (h *AuthHandler) CitizenLogin(c echo.Context) error {
	var req CitizenLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.local.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		obs.RecordLogin("citizen", false)
		return respondError(c, h.logger, err)
	}
	if account.Role != domain.RoleCitizen {
		obs.RecordLogin("citizen", false)
		return respondError(c, h.logger, domain.ErrInvalidCredentials)
	}

	bearer, err := h.bearers.Issue(account.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.cookies.set(c, middleware.CitizenBearerCookie, bearer, h.bearerTTL)

	obs.RecordLogin("citizen", true)
	h.logger.Info("citizen logged in", "account_id", account.ID, "ip", c.RealIP())
	return c.JSON(http.StatusOK, accountResponse(account))
}

// CitizenRegister creates a citizen account, either local (email+password)
// or completing a federated signup with a pending token.
func (h *AuthHandler) CitizenRegister(c echo.Context) error {
	var req CitizenRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	profile := domain.Profile{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		NationalID: req.NationalID,
	}

	account, err := h.registration.Complete(c.Request().Context(), req.PendingToken, req.Email, req.Password, profile)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	bearer, err := h.bearers.Issue(account.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.cookies.set(c, middleware.CitizenBearerCookie, bearer, h.bearerTTL)

	h.logger.Info("citizen registered", "account_id", account.ID, "federated", req.PendingToken != "")
	return c.JSON(http.StatusCreated, accountResponse(account))
}

// CitizenLogout clears the bearer cookie. The bearer itself is stateless so
// there is nothing to revoke server-side.
func (h *AuthHandler) CitizenLogout(c echo.Context) error {
	h.cookies.clear(c, middleware.CitizenBearerCookie)
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

// CitizenMe returns the authenticated citizen's account
func (h *AuthHandler) CitizenMe(c echo.Context) error {
	account, err := h.registration.Account(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}

type CitizenProfileRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	NationalID string `json:"national_id,omitempty"`
}

// CitizenUpdateProfile updates the citizen's contact fields
func (h *AuthHandler) CitizenUpdateProfile(c echo.Context) error {
	var req CitizenProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.registration.UpdateCitizenProfile(c.Request().Context(), middleware.IdentityFrom(c), domain.Profile{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		NationalID: req.NationalID,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}

// LoginPage is the staff sign-in entry point. There is no server-rendered
// page: the body reports the error kind the guard or a previous attempt
// redirected with.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if kind := c.QueryParam("err"); kind != "" {
		return c.JSON(http.StatusOK, map[string]string{"login": "required", "err": kind})
	}
	return c.JSON(http.StatusOK, map[string]string{"login": "required"})
}

// Home routes an authenticated staff caller to their surface and everyone
// else to the login page.
func (h *AuthHandler) Home(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil || !identity.IsStaff() {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if identity.Role == domain.RoleAdmin {
		return c.Redirect(http.StatusSeeOther, "/api/admin/dashboard")
	}
	return c.Redirect(http.StatusSeeOther, "/api/officer/requests")
}

// StaffLogin authenticates a staff member from the login form and issues a
// server-side session. Failures redirect back to the login page with the
// error kind in the query.
func (h *AuthHandler) StaffLogin(c echo.Context) error {
	email := c.FormValue("email")
	secret := c.FormValue("password")

	account, err := h.local.Authenticate(c.Request().Context(), email, secret)
	if err != nil {
		obs.RecordLogin("staff", false)
		switch {
		case errors.Is(err, domain.ErrAccountNotActive):
			return c.Redirect(http.StatusSeeOther, "/login?err=inactive")
		default:
			return c.Redirect(http.StatusSeeOther, "/login?err=invalid")
		}
	}
	if !account.Role.IsStaff() {
		obs.RecordLogin("staff", false)
		return c.Redirect(http.StatusSeeOther, "/login?err=staff_only")
	}

	session, err := h.sessions.Issue(c.Request().Context(), account)
	if err != nil {
		obs.RecordLogin("staff", false)
		h.logger.Error("failed to issue staff session", "error", err, "account_id", account.ID)
		return c.Redirect(http.StatusSeeOther, "/login?err=internal")
	}
	h.cookies.set(c, middleware.StaffSessionCookie, session.Handle.String(), time.Until(session.ExpiresAt))

	obs.RecordLogin("staff", true)
	h.logger.Info("staff logged in", "account_id", account.ID, "role", account.Role, "ip", c.RealIP())
	return c.Redirect(http.StatusSeeOther, "/")
}

// StaffLogout destroys the server-side session and clears the cookie
func (h *AuthHandler) StaffLogout(c echo.Context) error {
	if handle := cookieValue(c, middleware.StaffSessionCookie); handle != "" {
		if err := h.sessions.Destroy(c.Request().Context(), handle); err != nil {
			h.logger.Error("failed to destroy staff session", "error", err)
		}
	}
	h.cookies.clear(c, middleware.StaffSessionCookie)
	return c.Redirect(http.StatusSeeOther, "/login")
}

type StaffRegisterRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	Password     string `json:"password" form:"password" validate:"required,min=8"`
	Name         string `json:"name" form:"name" validate:"required"`
	JobTitle     string `json:"job_title" form:"job_title"`
	DepartmentID int64  `json:"department_id" form:"department_id" validate:"required"`
}

// StaffRegister is staff self-signup. The account is created as OFFICER in
// PENDING status and cannot sign in until an administrator approves it.
func (h *AuthHandler) StaffRegister(c echo.Context) error {
	var req StaffRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.registration.RegisterStaff(c.Request().Context(), req.Email, req.Password, req.DepartmentID, domain.Profile{
		Name:     req.Name,
		JobTitle: req.JobTitle,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("staff registration submitted", "account_id", account.ID, "department_id", req.DepartmentID)
	return c.JSON(http.StatusCreated, accountResponse(account))
}

// StaffMe returns the authenticated staff member's account
func (h *AuthHandler) StaffMe(c echo.Context) error {
	account, err := h.registration.Account(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}

type StaffProfileRequest struct {
	Name     string `json:"name" validate:"required"`
	JobTitle string `json:"job_title,omitempty"`
}

// StaffUpdateProfile updates the staff member's own profile fields
func (h *AuthHandler) StaffUpdateProfile(c echo.Context) error {
	var req StaffProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	account, err := h.registration.UpdateStaffProfile(c.Request().Context(), middleware.IdentityFrom(c), domain.Profile{
		Name:     req.Name,
		JobTitle: req.JobTitle,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, accountResponse(account))
}
