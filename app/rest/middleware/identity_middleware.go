package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"civic-portal/app/domain"
	"civic-portal/app/port"
	"civic-portal/app/usecase"
)

// Credential cookie names. The cookie a caller presents discriminates which
// resolver runs: staff carry a server-side session handle, citizens carry a
// self-contained signed bearer.
const (
	StaffSessionCookie  = "sid"
	CitizenBearerCookie = "cid"
)

const identityContextKey = "identity"

// IdentityMiddleware resolves the caller identity from the credential
// cookies and enforces role requirements. Resolution is best-effort: an
// absent or invalid credential leaves the request anonymous and the guard
// decides what that means for the route.
type IdentityMiddleware struct {
	staff   port.IdentityResolver
	citizen port.IdentityResolver
	logger  *slog.Logger
}

// NewIdentityMiddleware creates the identity middleware
func NewIdentityMiddleware(staff, citizen port.IdentityResolver, logger *slog.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{
		staff:   staff,
		citizen: citizen,
		logger:  logger,
	}
}

// Resolve attaches the caller identity to the request context. The staff
// session cookie wins over the citizen bearer when both are present.
func (m *IdentityMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if identity := m.resolve(c); identity != nil {
				c.Set(identityContextKey, identity)
			}
			return next(c)
		}
	}
}

func (m *IdentityMiddleware) resolve(c echo.Context) *domain.Identity {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie(StaffSessionCookie); err == nil && cookie.Value != "" {
		identity, err := m.staff.Resolve(ctx, cookie.Value)
		if err == nil {
			return identity
		}
		m.logger.Debug("staff session did not resolve", "error", err)
	}

	if cookie, err := c.Cookie(CitizenBearerCookie); err == nil && cookie.Value != "" {
		identity, err := m.citizen.Resolve(ctx, cookie.Value)
		if err == nil {
			return identity
		}
		m.logger.Debug("citizen bearer did not resolve", "error", err)
	}

	return nil
}

// IdentityFrom returns the resolved identity for the request, or nil for an
// anonymous caller.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityContextKey).(*domain.Identity)
	return identity
}

// RequireRoles is the JSON guard. The checks run in a fixed order so the
// reported kind is deterministic: unauthenticated, then inactive staff
// account, then role mismatch.
func (m *IdentityMiddleware) RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := usecase.Authorize(IdentityFrom(c), roles...); err != nil {
				return guardJSON(c, err)
			}
			return next(c)
		}
	}
}

// RequireRolesPage is the browser guard: the same checks as RequireRoles,
// reported as a redirect to the login page instead of a JSON body.
func (m *IdentityMiddleware) RequireRolesPage(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := usecase.Authorize(IdentityFrom(c), roles...); err != nil {
				return guardRedirect(c, err)
			}
			return next(c)
		}
	}
}

func guardJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	case errors.Is(err, domain.ErrAccountNotActive):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "account not active"})
	default:
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
}

func guardRedirect(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.Redirect(http.StatusSeeOther, "/login?err=unauthenticated")
	case errors.Is(err, domain.ErrAccountNotActive):
		return c.Redirect(http.StatusSeeOther, "/login?err=inactive")
	default:
		return c.Redirect(http.StatusSeeOther, "/login?err=forbidden")
	}
}
