package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/api/middleware"
)

// sessionClaims is what the Auth middleware leaves in the context.
type sessionClaims struct {
	AccountID string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// ctxSession reads the claims injected by the Auth middleware. A missing
// account id means the route was registered without Auth.
func ctxSession(c echo.Context) (sessionClaims, error) {
	s := sessionClaims{}
	s.AccountID, _ = c.Get(middleware.CtxAccountID).(string)
	s.Role, _ = c.Get(middleware.CtxRole).(string)
	s.TokenID, _ = c.Get(middleware.CtxTokenID).(string)
	s.ExpiresAt, _ = c.Get(middleware.CtxExpiresAt).(time.Time)

	if s.AccountID == "" || s.Role == "" {
		return sessionClaims{}, echo.NewHTTPError(http.StatusUnauthorized, "Missing Authentication Claims!")
	}
	return s, nil
}
