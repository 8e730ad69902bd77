package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/medicare/hospital-system/internal/api/handler"
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/core/service"
)

// memAccounts is an in-memory AccountRepository with a unique email index.
type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account
	seq     int
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byEmail[email]; ok {
		c := *a
		return &c, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byEmail {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[a.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	m.seq++
	c := *a
	c.ID = "acc-" + strconv.Itoa(m.seq)
	m.byEmail[a.Email] = &c
	out := c
	return &out, nil
}

func (m *memAccounts) ListByRole(context.Context, string) ([]*domain.Account, error) {
	return nil, nil
}

func (m *memAccounts) FindDoctors(context.Context, string, string, string) ([]*domain.Account, error) {
	return nil, nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memRevocations) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = exp
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type nopAppointments struct{}

func (nopAppointments) Book(context.Context, ports.BookAppointmentInput) (*domain.Appointment, error) {
	return nil, domain.NewNotFoundError("Doctor not found!")
}
func (nopAppointments) ListAll(context.Context) ([]*domain.Appointment, error) { return nil, nil }
func (nopAppointments) ListForPatient(context.Context, string) ([]*domain.Appointment, error) {
	return nil, nil
}
func (nopAppointments) Update(context.Context, ports.UpdateAppointmentInput) (*domain.Appointment, error) {
	return nil, domain.NewNotFoundError("Appointment Not Found!")
}
func (nopAppointments) Delete(context.Context, string) error { return nil }

type testServer struct {
	*httptest.Server
	accounts *memAccounts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	accounts := &memAccounts{byEmail: make(map[string]*domain.Account)}
	revocations := &memRevocations{revoked: make(map[string]time.Time)}
	tokens := service.NewTokenIssuer("test-secret", 7)
	auth := service.NewAuthService(accounts, nil, tokens, revocations, zerolog.Nop())

	reg := prometheus.NewRegistry()
	e := NewRouter(Services{Accounts: auth, Appointments: nopAppointments{}}, Options{
		Tokens:           tokens,
		Revocations:      revocations,
		AllowedOrigins:   []string{"http://localhost:5173"},
		CookieExpireDays: 7,
		MaxAvatarBytes:   1 << 20,
		Registerer:       reg,
		Gatherer:         reg,
		Logger:           zerolog.Nop(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, accounts: accounts}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

const registerBody = `{"firstName":"Alice","lastName":"Smith","email":"a@x.com","phone":"0123456789","nic":"123456789012","dob":"1990-04-12","gender":"Female","password":"p1","role":"Patient"}`

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRouter_RegisterTwice(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v1/user/patient/register", registerBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Fatalf("expected token in body, got %v", body)
	}
	if cookieNamed(resp, handler.PatientCookie) == nil {
		t.Fatal("expected patientToken cookie")
	}

	resp, body = s.do(t, http.MethodPost, "/api/v1/user/patient/register", registerBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["success"] != false || body["message"] != "User Already Registered!" {
		t.Fatalf("unexpected body %v", body)
	}
	if len(s.accounts.byEmail) != 1 {
		t.Fatalf("expected one account, got %d", len(s.accounts.byEmail))
	}
}

func TestRouter_SelfRegistrationIgnoresRole(t *testing.T) {
	s := newTestServer(t)

	body := strings.Replace(registerBody, `"role":"Patient"`, `"role":"Admin"`, 1)
	resp, out := s.do(t, http.MethodPost, "/api/v1/user/patient/register", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, out)
	}
	if user := out["user"].(map[string]any); user["role"] != domain.RolePatient {
		t.Fatalf("expected Patient role, got %v", user["role"])
	}
	if cookieNamed(resp, handler.AdminCookie) != nil {
		t.Fatal("self-registration must not grant an admin session")
	}
}

func TestRouter_RegisterRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing role", strings.Replace(registerBody, `,"role":"Patient"`, "", 1), "Please Fill Full Form!"},
		{"multibyte password over 72 bytes", strings.Replace(registerBody, `"password":"p1"`, `"password":"`+strings.Repeat("é", 40)+`"`, 1), "Password Must Not Exceed 72 Bytes!"},
		{"decimal phone", strings.Replace(registerBody, `"phone":"0123456789"`, `"phone":"12345.6789"`, 1), "Phone Number Must Contain Exact 10 Digits!"},
		{"signed nic", strings.Replace(registerBody, `"nic":"123456789012"`, `"nic":"+12345678901"`, 1), "NIC Must Contain Only 12 Digits!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)

			resp, body := s.do(t, http.MethodPost, "/api/v1/user/patient/register", tc.body)
			if resp.StatusCode != http.StatusBadRequest || body["message"] != tc.msg {
				t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
			}
			if len(s.accounts.byEmail) != 0 {
				t.Fatalf("expected no account, got %d", len(s.accounts.byEmail))
			}
		})
	}
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/user/patient/register", registerBody)

	resp, body := s.do(t, http.MethodPost, "/api/v1/user/login",
		`{"email":"a@x.com","password":"nope","confirmPassword":"nope","role":"Patient"}`)
	if resp.StatusCode != http.StatusBadRequest || body["message"] != "Invalid Email Or Password!" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
	}
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/user/admin/me", "")
	if resp.StatusCode != http.StatusBadRequest || body["message"] != "Admin Not Authenticated!" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
	}

	reg, _ := s.do(t, http.MethodPost, "/api/v1/user/patient/register", registerBody)
	patient := cookieNamed(reg, handler.PatientCookie)

	// A patient token presented in the admin cookie is rejected by role.
	resp, body = s.do(t, http.MethodGet, "/api/v1/appointment/getall", "",
		&http.Cookie{Name: handler.AdminCookie, Value: patient.Value})
	if resp.StatusCode != http.StatusForbidden || body["message"] != "Patient not authorized for this resource!" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
	}
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)

	reg, _ := s.do(t, http.MethodPost, "/api/v1/user/patient/register", registerBody)
	patient := cookieNamed(reg, handler.PatientCookie)

	resp, body := s.do(t, http.MethodGet, "/api/v1/user/patient/me", "", patient)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	resp, body = s.do(t, http.MethodGet, "/api/v1/user/patient/logout", "", patient)
	if resp.StatusCode != http.StatusCreated || body["message"] != "Patient Logged Out Successfully!" {
		t.Fatalf("unexpected logout response %d %v", resp.StatusCode, body)
	}
	if ck := cookieNamed(resp, handler.PatientCookie); ck == nil || ck.Value != "" {
		t.Fatalf("expected cleared cookie, got %+v", ck)
	}

	resp, _ = s.do(t, http.MethodGet, "/api/v1/user/patient/me", "", patient)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		resp, err := s.Client().Get(s.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
