package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/api/middleware"
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

type stubAccountService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	addAdminFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	addDocFn   func(ctx context.Context, in ports.AddDoctorInput) (*domain.Account, error)
	doctors    []*domain.Account
	current    *domain.Account

	loggedOut    string
	loggedOutExp time.Time
}

func (s *stubAccountService) RegisterPatient(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAccountService) AddAdmin(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.addAdminFn(ctx, in)
}

func (s *stubAccountService) AddDoctor(ctx context.Context, in ports.AddDoctorInput) (*domain.Account, error) {
	return s.addDocFn(ctx, in)
}

func (s *stubAccountService) ListDoctors(context.Context) ([]*domain.Account, error) {
	return s.doctors, nil
}

func (s *stubAccountService) CurrentAccount(_ context.Context, id string) (*domain.Account, error) {
	if s.current == nil || s.current.ID != id {
		return nil, domain.NewNotFoundError("User Not Found!")
	}
	return s.current, nil
}

func (s *stubAccountService) Logout(_ context.Context, jti string, exp time.Time) {
	s.loggedOut = jti
	s.loggedOutExp = exp
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func authResult(role string) *ports.AuthResult {
	return &ports.AuthResult{
		Account: &domain.Account{ID: "acc-1", Email: "a@x.com", Role: role, PasswordHash: "$2a$hash"},
		Session: ports.Session{Token: "signed.jwt.token", JTI: "jti-1"},
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCookieName(t *testing.T) {
	if CookieName(domain.RoleAdmin) != "adminToken" {
		t.Fatal("admin must use adminToken")
	}
	for _, role := range []string{domain.RolePatient, domain.RoleDoctor, ""} {
		if CookieName(role) != "patientToken" {
			t.Fatalf("role %q must use patientToken", role)
		}
	}
}

func TestAccountHandler_RegisterPatient_SetsSessionCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "a@x.com" || in.Password != "p1" || in.DOB != "1990-04-12" || in.Role != "Admin" {
				t.Fatalf("unexpected input %+v", in)
			}
			return authResult(domain.RolePatient), nil
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	body := `{"firstName":"Alice","lastName":"Smith","email":"a@x.com","phone":"0123456789","nic":"123456789012","dob":"1990-04-12","gender":"Female","password":"p1","role":"Admin"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/user/patient/register", body), rec)

	start := time.Now()
	if err := h.RegisterPatient(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ck := findCookie(rec, "patientToken")
	if ck == nil {
		t.Fatalf("expected patientToken cookie")
	}
	if ck.Value != "signed.jwt.token" || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteNoneMode {
		t.Fatalf("unexpected cookie %+v", ck)
	}
	if ck.Expires.Before(start.Add(7*24*time.Hour - time.Minute)) {
		t.Fatalf("cookie expires too early: %s", ck.Expires)
	}

	resp := decode(t, rec)
	if resp["success"] != true || resp["message"] != "User Registered!" || resp["token"] != "signed.jwt.token" {
		t.Fatalf("unexpected body %v", resp)
	}
	user := resp["user"].(map[string]any)
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatal("password hash serialized")
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password serialized")
	}
}

func TestAccountHandler_RegisterPatient_PropagatesDomainError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.NewConflictError("User Already Registered!")
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"a@x.com"}`), rec)

	err := h.RegisterPatient(c)
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if findCookie(rec, "patientToken") != nil {
		t.Fatal("no cookie expected on failure")
	}
}

func TestAccountHandler_RegisterPatient_PasswordTooLong(t *testing.T) {
	e := newTestEcho()
	called := false
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			called = true
			return nil, nil
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	body := `{"password":"` + strings.Repeat("x", 73) + `"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/", body), httptest.NewRecorder())

	err := h.RegisterPatient(c)
	if domain.KindOf(err) != domain.KindValidation || called {
		t.Fatalf("expected validation error before the service, got %v (called=%v)", err, called)
	}
}

func TestAccountHandler_Login_AdminCookieFromForm(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
			if in.Role != domain.RoleAdmin || in.ConfirmPassword != "p1" {
				t.Fatalf("unexpected input %+v", in)
			}
			return authResult(domain.RoleAdmin), nil
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	form := url.Values{"email": {"a@x.com"}, "password": {"p1"}, "confirmPassword": {"p1"}, "role": {"Admin"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if findCookie(rec, "adminToken") == nil {
		t.Fatal("expected adminToken cookie")
	}
	if resp := decode(t, rec); resp["message"] != "User Login Successfully!" {
		t.Fatalf("unexpected body %v", resp)
	}
}

func TestAccountHandler_Login_Rejected(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
			return nil, domain.NewAuthError("Invalid Email Or Password!")
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"a@x.com"}`), httptest.NewRecorder())
	if err := h.Login(c); domain.KindOf(err) != domain.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestAccountHandler_AddAdmin(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		addAdminFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			return &domain.Account{ID: "acc-2", Email: in.Email, Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	rec := httptest.NewRecorder()
	if err := h.AddAdmin(e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"b@x.com"}`), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["message"] != "New Admin Registered!" {
		t.Fatalf("unexpected body %v", resp)
	}
	if findCookie(rec, "adminToken") != nil {
		t.Fatal("adding an admin must not change the caller's session")
	}
}

func multipartDoctor(t *testing.T, avatar []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"firstName": "Gregory", "lastName": "House", "email": "house@x.com",
		"phone": "0123456789", "nic": "123456789012", "dob": "1970-06-11",
		"gender": "Male", "password": "vicodin", "doctorDepartment": "Diagnostics",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if avatar != nil {
		fw, err := w.CreateFormFile("docAvatar", "house.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(avatar)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/doctor/addnew", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAccountHandler_AddDoctor_Multipart(t *testing.T) {
	e := newTestEcho()
	png := []byte("\x89PNG\r\n\x1a\nrest")
	stub := &stubAccountService{
		addDocFn: func(_ context.Context, in ports.AddDoctorInput) (*domain.Account, error) {
			if in.DoctorDepartment != "Diagnostics" || in.FirstName != "Gregory" {
				t.Fatalf("unexpected input %+v", in)
			}
			if in.Avatar == nil || in.Avatar.Filename != "house.png" || !bytes.Equal(in.Avatar.Data, png) {
				t.Fatalf("unexpected avatar %+v", in.Avatar)
			}
			return &domain.Account{ID: "doc-1", Role: domain.RoleDoctor, DocAvatar: &domain.Avatar{PublicID: "p", URL: "u"}}, nil
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 1<<20)

	rec := httptest.NewRecorder()
	if err := h.AddDoctor(e.NewContext(multipartDoctor(t, png), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "New Doctor Registered!" {
		t.Fatalf("unexpected body %v", resp)
	}
	doc := resp["doctor"].(map[string]any)
	if avatar := doc["docAvatar"].(map[string]any); avatar["public_id"] != "p" || avatar["url"] != "u" {
		t.Fatalf("unexpected avatar %v", avatar)
	}
}

func TestAccountHandler_AddDoctor_MissingFileReachesService(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		addDocFn: func(_ context.Context, in ports.AddDoctorInput) (*domain.Account, error) {
			if in.Avatar != nil {
				t.Fatalf("expected nil avatar, got %+v", in.Avatar)
			}
			return nil, domain.NewValidationError("Doctor Avatar Required!")
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 1<<20)

	err := h.AddDoctor(e.NewContext(multipartDoctor(t, nil), httptest.NewRecorder()))
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccountHandler_AddDoctor_AvatarTooLarge(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		addDocFn: func(_ context.Context, in ports.AddDoctorInput) (*domain.Account, error) {
			if in.Avatar == nil || !in.Avatar.Oversize || len(in.Avatar.Data) != 0 {
				t.Fatalf("expected an oversize avatar without data, got %+v", in.Avatar)
			}
			return nil, domain.NewValidationError("Doctor Avatar Too Large!")
		},
	}
	h := NewAccountHandler(stub, NewSessionBinder(7), 8)

	err := h.AddDoctor(e.NewContext(multipartDoctor(t, bytes.Repeat([]byte{0xff}, 64)), httptest.NewRecorder()))
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccountHandler_ListDoctorsEmpty(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{}, NewSessionBinder(7), 0)

	rec := httptest.NewRecorder()
	if err := h.ListDoctors(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"doctors":[]`) {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}

func TestAccountHandler_Me(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{current: &domain.Account{ID: "acc-1", Email: "a@x.com", Role: domain.RolePatient}}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(middleware.CtxAccountID, "acc-1")
	c.Set(middleware.CtxRole, domain.RolePatient)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	user := decode(t, rec)["user"].(map[string]any)
	if user["email"] != "a@x.com" {
		t.Fatalf("unexpected user %v", user)
	}

	// Without claims the handler refuses to run.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAccountHandler_AdminLogout_ClearsCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{}
	h := NewAccountHandler(stub, NewSessionBinder(7), 0)

	exp := time.Now().Add(time.Hour)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(middleware.CtxAccountID, "acc-1")
	c.Set(middleware.CtxRole, domain.RoleAdmin)
	c.Set(middleware.CtxTokenID, "jti-9")
	c.Set(middleware.CtxExpiresAt, exp)

	if err := h.AdminLogout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	responded := time.Now()

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	ck := findCookie(rec, "adminToken")
	if ck == nil || ck.Value != "" {
		t.Fatalf("expected cleared adminToken cookie, got %+v", ck)
	}
	if ck.Expires.After(responded) {
		t.Fatalf("cookie expiry %s is after response time %s", ck.Expires, responded)
	}
	if stub.loggedOut != "jti-9" || !stub.loggedOutExp.Equal(exp) {
		t.Fatalf("expected jti-9 revoked, got %q", stub.loggedOut)
	}
	if resp := decode(t, rec); resp["message"] != "Admin Logged Out Successfully!" {
		t.Fatalf("unexpected body %v", resp)
	}
}

func TestAccountHandler_PatientLogout(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{}, NewSessionBinder(7), 0)

	rec := httptest.NewRecorder()
	if err := h.PatientLogout(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ck := findCookie(rec, "patientToken"); ck == nil || ck.Value != "" {
		t.Fatalf("expected cleared patientToken cookie, got %+v", ck)
	}
}
