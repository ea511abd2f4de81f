package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/obs"
	"civic-portal/app/rest/middleware"
	"civic-portal/app/usecase"
)

// stateCookie pins the federated state to the browser that started the flow
const stateCookie = "fed_state"

const stateTTL = 10 * time.Minute

// FederatedHandler drives the external identity provider flow for both
// intents. Start redirects to the provider; Callback reconciles the
// assertion and lands the caller on the surface their intent belongs to.
type FederatedHandler struct {
	federated    *usecase.FederatedUseCase
	sessions     *usecase.StaffSessionUseCase
	bearers      *usecase.CitizenBearerUseCase
	cookies      CookieConfig
	bearerTTL    time.Duration
	clientOrigin string
	logger       *slog.Logger
}

// NewFederatedHandler creates a new federated login handler
func NewFederatedHandler(
	federated *usecase.FederatedUseCase,
	sessions *usecase.StaffSessionUseCase,
	bearers *usecase.CitizenBearerUseCase,
	cookies CookieConfig,
	bearerTTL time.Duration,
	clientOrigin string,
	logger *slog.Logger,
) *FederatedHandler {
	return &FederatedHandler{
		federated:    federated,
		sessions:     sessions,
		bearers:      bearers,
		cookies:      cookies,
		bearerTTL:    bearerTTL,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Start begins the provider redirect. The intent query parameter selects the
// population; staff is the default because the begin link lives on the staff
// login page.
func (h *FederatedHandler) Start(c echo.Context) error {
	intent := domain.FederatedIntent(c.QueryParam("intent"))
	if intent == "" {
		intent = domain.IntentStaff
	}

	handle, err := h.federated.Begin(c.Request().Context(), intent)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.cookies.set(c, stateCookie, handle.State, stateTTL)
	return c.Redirect(http.StatusSeeOther, handle.URL)
}

// Callback handles the provider redirect back. The state parameter must
// match the cookie set by Start; the intent recovered from state decides
// where every outcome lands.
func (h *FederatedHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")

	expected := cookieValue(c, stateCookie)
	h.cookies.clear(c, stateCookie)

	intent, err := usecase.IntentFromState(state)
	if err != nil || expected == "" || state != expected {
		h.logger.Warn("federated callback with bad state", "ip", c.RealIP())
		return c.Redirect(http.StatusSeeOther, "/login?err=federated")
	}

	assertion, err := h.federated.Exchange(c.Request().Context(), code, state)
	if err != nil {
		h.logger.Error("federated exchange failed", "error", err, "intent", intent)
		obs.RecordFederatedCompletion("exchange_failed")
		return h.failure(c, intent)
	}

	account, err := h.federated.Complete(c.Request().Context(), assertion)
	if err != nil {
		return h.completeError(c, intent, err)
	}

	if intent == domain.IntentStaff {
		return h.staffSuccess(c, account)
	}
	return h.citizenSuccess(c, account)
}

func (h *FederatedHandler) staffSuccess(c echo.Context, account *domain.Account) error {
	session, err := h.sessions.Issue(c.Request().Context(), account)
	if err != nil {
		h.logger.Error("failed to issue session after federated login", "error", err, "account_id", account.ID)
		return c.Redirect(http.StatusSeeOther, "/login?err=internal")
	}
	h.cookies.set(c, middleware.StaffSessionCookie, session.Handle.String(), time.Until(session.ExpiresAt))

	obs.RecordFederatedCompletion("staff_login")
	h.logger.Info("staff logged in via provider", "account_id", account.ID, "role", account.Role)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *FederatedHandler) citizenSuccess(c echo.Context, account *domain.Account) error {
	bearer, err := h.bearers.Issue(account.ID)
	if err != nil {
		h.logger.Error("failed to issue bearer after federated login", "error", err, "account_id", account.ID)
		return c.Redirect(http.StatusSeeOther, h.clientOrigin+"/oauth?err=1")
	}
	h.cookies.set(c, middleware.CitizenBearerCookie, bearer, h.bearerTTL)

	obs.RecordFederatedCompletion("citizen_login")
	h.logger.Info("citizen logged in via provider", "account_id", account.ID)
	return c.Redirect(http.StatusSeeOther, h.clientOrigin+"/oauth?ok=1")
}

func (h *FederatedHandler) completeError(c echo.Context, intent domain.FederatedIntent, err error) error {
	var signup *domain.SignupRequiredError
	if errors.As(err, &signup) {
		// No account yet; hand the signed pending token to the client so it
		// can finish registration.
		obs.RecordFederatedCompletion("signup_required")
		return c.Redirect(http.StatusSeeOther,
			h.clientOrigin+"/signup?pending="+url.QueryEscape(signup.PendingToken))
	}

	obs.RecordFederatedCompletion("rejected")
	switch {
	case errors.Is(err, domain.ErrStaffNotFound):
		return c.Redirect(http.StatusSeeOther, "/login?err=staff_only")
	case errors.Is(err, domain.ErrAccountNotActive):
		if intent == domain.IntentStaff {
			return c.Redirect(http.StatusSeeOther, "/login?err=inactive")
		}
		return h.failure(c, intent)
	default:
		h.logger.Error("federated completion failed", "error", err, "intent", intent)
		return h.failure(c, intent)
	}
}

func (h *FederatedHandler) failure(c echo.Context, intent domain.FederatedIntent) error {
	if intent == domain.IntentStaff {
		return c.Redirect(http.StatusSeeOther, "/login?err=federated")
	}
	return c.Redirect(http.StatusSeeOther, h.clientOrigin+"/oauth?err=1")
}
