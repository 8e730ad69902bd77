package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/api/middleware"
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
)

type stubAppointmentService struct {
	bookFn   func(ctx context.Context, in ports.BookAppointmentInput) (*domain.Appointment, error)
	updateFn func(ctx context.Context, in ports.UpdateAppointmentInput) (*domain.Appointment, error)
	all      []*domain.Appointment
	mineFor  string
	deleted  string
}

func (s *stubAppointmentService) Book(ctx context.Context, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	return s.bookFn(ctx, in)
}

func (s *stubAppointmentService) ListAll(context.Context) ([]*domain.Appointment, error) {
	return s.all, nil
}

func (s *stubAppointmentService) ListForPatient(_ context.Context, patientID string) ([]*domain.Appointment, error) {
	s.mineFor = patientID
	return nil, nil
}

func (s *stubAppointmentService) Update(ctx context.Context, in ports.UpdateAppointmentInput) (*domain.Appointment, error) {
	return s.updateFn(ctx, in)
}

func (s *stubAppointmentService) Delete(_ context.Context, id string) error {
	if id != "appt-1" {
		return domain.NewNotFoundError("Appointment Not Found!")
	}
	s.deleted = id
	return nil
}

func withPatient(c echo.Context, id string) echo.Context {
	c.Set(middleware.CtxAccountID, id)
	c.Set(middleware.CtxRole, domain.RolePatient)
	return c
}

func TestAppointmentHandler_Post_UsesSessionPatient(t *testing.T) {
	e := newTestEcho()
	stub := &stubAppointmentService{
		bookFn: func(_ context.Context, in ports.BookAppointmentInput) (*domain.Appointment, error) {
			if in.PatientID != "pat-1" || in.DoctorFirstName != "Gregory" || in.AppointmentDate != "2026-11-02" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Appointment{ID: "appt-1", PatientID: in.PatientID, Department: in.Department, Status: domain.StatusPending}, nil
		},
	}
	h := NewAppointmentHandler(stub)

	body := `{"firstName":"Alice","appointment_date":"2026-11-02","department":"Cardiology","doctor_firstName":"Gregory","doctor_lastName":"House","patientId":"someone-else"}`
	rec := httptest.NewRecorder()
	c := withPatient(e.NewContext(jsonRequest(http.MethodPost, "/api/v1/appointment/post", body), rec), "pat-1")

	if err := h.Post(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "Appointment Send!" {
		t.Fatalf("unexpected body %v", resp)
	}
	if appt := resp["appointment"].(map[string]any); appt["status"] != "Pending" || appt["patientId"] != "pat-1" {
		t.Fatalf("unexpected appointment %v", appt)
	}
}

func TestAppointmentHandler_ListAndMine(t *testing.T) {
	e := newTestEcho()
	stub := &stubAppointmentService{all: []*domain.Appointment{{ID: "appt-1"}, {ID: "appt-2"}}}
	h := NewAppointmentHandler(stub)

	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decode(t, rec)["appointments"].([]any); len(got) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(got))
	}

	rec = httptest.NewRecorder()
	c := withPatient(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "pat-7")
	if err := h.Mine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.mineFor != "pat-7" {
		t.Fatalf("expected lookup for pat-7, got %q", stub.mineFor)
	}
	if !strings.Contains(rec.Body.String(), `"appointments":[]`) {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}

func TestAppointmentHandler_Update(t *testing.T) {
	e := newTestEcho()
	stub := &stubAppointmentService{
		updateFn: func(_ context.Context, in ports.UpdateAppointmentInput) (*domain.Appointment, error) {
			if in.ID != "appt-1" || in.Status != "Accepted" || in.HasVisited == nil || !*in.HasVisited {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Appointment{ID: in.ID, Status: domain.StatusAccepted, HasVisited: true}, nil
		},
	}
	h := NewAppointmentHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/v1/appointment/update/appt-1", `{"status":"Accepted","hasVisited":true}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("appt-1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["message"] != "Appointment Status Updated!" {
		t.Fatalf("unexpected body %v", resp)
	}
}

func TestAppointmentHandler_Delete(t *testing.T) {
	e := newTestEcho()
	stub := &stubAppointmentService{}
	h := NewAppointmentHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("appt-1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.deleted != "appt-1" {
		t.Fatalf("expected appt-1 deleted")
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Delete(c); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
