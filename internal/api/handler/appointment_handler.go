package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/observability/metrics"
)

// AppointmentHandler serves appointment booking and review.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// Post handles POST /api/v1/appointment/post.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     PatientCookie
// @Param        body  body      bookAppointmentRequest  true  "Appointment request"
// @Success      200   {object}  appointmentResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /appointment/post [post]
func (h *AppointmentHandler) Post(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req bookAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	appt, err := h.service.Book(c.Request().Context(), req.toInput(s.AccountID))
	if err != nil {
		return err
	}

	metrics.AppointmentsBookedTotal.WithLabelValues(appt.Department).Inc()
	return c.JSON(http.StatusOK, appointmentResponse{Success: true, Message: "Appointment Send!", Appointment: appt})
}

// List handles GET /api/v1/appointment/getall.
//
// @Summary      List every appointment
// @Tags         appointments
// @Produce      json
// @Security     AdminCookie
// @Success      200  {object}  appointmentsResponse
// @Router       /appointment/getall [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	appts, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appointmentsResponse{Success: true, Appointments: nonNil(appts)})
}

// Mine handles GET /api/v1/appointment/me.
//
// @Summary      List the caller's appointments
// @Tags         appointments
// @Produce      json
// @Security     PatientCookie
// @Success      200  {object}  appointmentsResponse
// @Router       /appointment/me [get]
func (h *AppointmentHandler) Mine(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	appts, err := h.service.ListForPatient(c.Request().Context(), s.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appointmentsResponse{Success: true, Appointments: nonNil(appts)})
}

// Update handles PUT /api/v1/appointment/update/:id.
//
// @Summary      Review an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     AdminCookie
// @Param        id    path      string                    true  "Appointment id"
// @Param        body  body      updateAppointmentRequest  true  "New status and/or visit flag"
// @Success      200   {object}  appointmentResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /appointment/update/{id} [put]
func (h *AppointmentHandler) Update(c echo.Context) error {
	var req updateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	appt, err := h.service.Update(c.Request().Context(), ports.UpdateAppointmentInput{
		ID:         c.Param("id"),
		Status:     req.Status,
		HasVisited: req.HasVisited,
	})
	if err != nil {
		return err
	}

	if req.Status != "" {
		metrics.AppointmentReviewsTotal.WithLabelValues(string(appt.Status)).Inc()
	}
	return c.JSON(http.StatusOK, appointmentResponse{Success: true, Message: "Appointment Status Updated!", Appointment: appt})
}

// Delete handles DELETE /api/v1/appointment/delete/:id.
//
// @Summary      Delete an appointment
// @Tags         appointments
// @Produce      json
// @Security     AdminCookie
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /appointment/delete/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Appointment Deleted!"})
}

func nonNil(appts []*domain.Appointment) []*domain.Appointment {
	if appts == nil {
		return []*domain.Appointment{}
	}
	return appts
}
