package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

const (
	AdminCookie   = "adminToken"
	PatientCookie = "patientToken"
)

// CookieName returns the session cookie used for a role. Only admins get
// their own cookie; every other role shares the patient cookie.
func CookieName(role string) string {
	if role == domain.RoleAdmin {
		return AdminCookie
	}
	return PatientCookie
}

// SessionBinder writes and clears session cookies.
type SessionBinder struct {
	ttl time.Duration
	now func() time.Time
}

// NewSessionBinder returns a binder whose cookies live for the given number of days.
func NewSessionBinder(days int) *SessionBinder {
	if days <= 0 {
		days = 7
	}
	return &SessionBinder{ttl: time.Duration(days) * 24 * time.Hour, now: time.Now}
}

type sessionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
	Token   string          `json:"token"`
}

// Bind sets the role cookie and mirrors the token in the JSON body.
func (b *SessionBinder) Bind(c echo.Context, status int, message string, res *ports.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     CookieName(res.Account.Role),
		Value:    res.Session.Token,
		Path:     "/",
		Expires:  b.now().Add(b.ttl),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return c.JSON(status, sessionResponse{
		Success: true,
		Message: message,
		User:    res.Account,
		Token:   res.Session.Token,
	})
}

// Clear overwrites the named cookie with an empty, already expired value.
func (b *SessionBinder) Clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  b.now(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
