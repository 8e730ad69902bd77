package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/core/service"
)

// Context keys set by Auth.
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
	CtxTokenID   = "jti"
	CtxExpiresAt = "token_exp"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*service.Claims, error)
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthConfig selects where the token is read from and how a missing token
// is reported.
type AuthConfig struct {
	// CookieName is the role cookie carrying the token.
	CookieName string
	// Subject names the caller in the missing-token message, e.g. "Admin".
	Subject string
}

// Auth validates the session token from the role cookie or a Bearer header
// and injects its claims into the context.
func Auth(verifier TokenVerifier, revocations RevocationChecker, cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c, cfg.CookieName)
			if raw == "" {
				return echo.NewHTTPError(http.StatusBadRequest, cfg.Subject+" Not Authenticated!")
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Or Expired Token!").SetInternal(err)
			}

			if revocations != nil && claims.ID != "" {
				revoked, err := revocations.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					return err
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "Session Has Been Logged Out!")
				}
			}

			c.Set(CtxAccountID, claims.Subject)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxTokenID, claims.ID)
			var exp time.Time
			if claims.ExpiresAt != nil {
				exp = claims.ExpiresAt.Time
			}
			c.Set(CtxExpiresAt, exp)

			return next(c)
		}
	}
}

// tokenFromRequest prefers the role cookie and falls back to the
// Authorization header.
func tokenFromRequest(c echo.Context, cookieName string) string {
	if cookieName != "" {
		if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
			return ck.Value
		}
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
