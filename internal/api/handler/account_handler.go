package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/observability/metrics"
)

const avatarField = "docAvatar"

// AccountHandler serves registration, login, logout and account lookups.
type AccountHandler struct {
	service        ports.AccountService
	sessions       *SessionBinder
	maxAvatarBytes int64
}

func NewAccountHandler(service ports.AccountService, sessions *SessionBinder, maxAvatarBytes int64) *AccountHandler {
	return &AccountHandler{service: service, sessions: sessions, maxAvatarBytes: maxAvatarBytes}
}

// RegisterPatient handles POST /api/v1/user/patient/register.
//
// @Summary      Register a patient
// @Description  Creates a Patient account and logs it in. Any role in the body is ignored.
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "Patient details"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /user/patient/register [post]
func (h *AccountHandler) RegisterPatient(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.RegisterPatient(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(res.Account.Role).Inc()
	return h.sessions.Bind(c, http.StatusOK, "User Registered!", res)
}

// Login handles POST /api/v1/user/login.
//
// @Summary      Log in
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and expected role"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  messageResponse
// @Router       /user/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Login(c.Request().Context(), ports.LoginInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		if domain.KindOf(err) != 0 {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return h.sessions.Bind(c, http.StatusOK, "User Login Successfully!", res)
}

// AddAdmin handles POST /api/v1/user/admin/addnew.
//
// @Summary      Register an admin
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     AdminCookie
// @Param        body  body      registerRequest  true  "Admin details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Router       /user/admin/addnew [post]
func (h *AccountHandler) AddAdmin(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	admin, err := h.service.AddAdmin(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(admin.Role).Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "New Admin Registered!"})
}

// AddDoctor handles POST /api/v1/user/doctor/addnew.
//
// @Summary      Register a doctor
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     AdminCookie
// @Param        docAvatar         formData  file    true  "PNG, JPEG or WEBP avatar"
// @Param        firstName         formData  string  true  "First name"
// @Param        lastName          formData  string  true  "Last name"
// @Param        email             formData  string  true  "Email"
// @Param        phone             formData  string  true  "10 digit phone"
// @Param        nic               formData  string  true  "12 digit NIC"
// @Param        dob               formData  string  true  "Date of birth (YYYY-MM-DD)"
// @Param        gender            formData  string  true  "Male or Female"
// @Param        password          formData  string  true  "Password"
// @Param        doctorDepartment  formData  string  true  "Department"
// @Success      200  {object}  doctorResponse
// @Failure      400  {object}  messageResponse
// @Failure      502  {object}  messageResponse
// @Router       /user/doctor/addnew [post]
func (h *AccountHandler) AddDoctor(c echo.Context) error {
	var req addDoctorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	avatar, err := h.readAvatar(c)
	if err != nil {
		return err
	}

	doctor, err := h.service.AddDoctor(c.Request().Context(), req.toInput(avatar))
	if err != nil {
		return err
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(doctor.Role).Inc()
	return c.JSON(http.StatusOK, doctorResponse{Success: true, Message: "New Doctor Registered!", Doctor: doctor})
}

// ListDoctors handles GET /api/v1/user/doctors.
//
// @Summary      List doctors
// @Tags         users
// @Produce      json
// @Success      200  {object}  doctorsResponse
// @Router       /user/doctors [get]
func (h *AccountHandler) ListDoctors(c echo.Context) error {
	doctors, err := h.service.ListDoctors(c.Request().Context())
	if err != nil {
		return err
	}
	if doctors == nil {
		doctors = []*domain.Account{}
	}
	return c.JSON(http.StatusOK, doctorsResponse{Success: true, Doctors: doctors})
}

// Me handles GET /api/v1/user/admin/me and /api/v1/user/patient/me.
//
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     AdminCookie
// @Security     PatientCookie
// @Success      200  {object}  userResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /user/admin/me [get]
// @Router       /user/patient/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	account, err := h.service.CurrentAccount(c.Request().Context(), s.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Success: true, User: account})
}

// AdminLogout handles GET /api/v1/user/admin/logout.
//
// @Summary      Log out an admin
// @Tags         users
// @Produce      json
// @Security     AdminCookie
// @Success      201  {object}  messageResponse
// @Router       /user/admin/logout [get]
func (h *AccountHandler) AdminLogout(c echo.Context) error {
	return h.logout(c, AdminCookie, "Admin Logged Out Successfully!")
}

// PatientLogout handles GET /api/v1/user/patient/logout.
//
// @Summary      Log out a patient
// @Tags         users
// @Produce      json
// @Security     PatientCookie
// @Success      201  {object}  messageResponse
// @Router       /user/patient/logout [get]
func (h *AccountHandler) PatientLogout(c echo.Context) error {
	return h.logout(c, PatientCookie, "Patient Logged Out Successfully!")
}

func (h *AccountHandler) logout(c echo.Context, cookie, message string) error {
	if s, err := ctxSession(c); err == nil {
		h.service.Logout(c.Request().Context(), s.TokenID, s.ExpiresAt)
	}
	h.sessions.Clear(c, cookie)
	return c.JSON(http.StatusCreated, messageResponse{Success: true, Message: message})
}

// readAvatar loads the uploaded avatar. A request without the file yields a
// nil upload so the service can report it in order with the other checks.
func (h *AccountHandler) readAvatar(c echo.Context) (*ports.AvatarUpload, error) {
	fh, err := c.FormFile(avatarField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid Form Data!").SetInternal(err)
	}
	if h.maxAvatarBytes > 0 && fh.Size > h.maxAvatarBytes {
		return &ports.AvatarUpload{Filename: fh.Filename, Oversize: true}, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &ports.AvatarUpload{Filename: fh.Filename, Data: data}, nil
}

// bindAndValidate binds the body and applies the size bounds on the
// request schema.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return echo.NewHTTPError(he.Code, "Invalid Request Body!").SetInternal(err)
		}
		return err
	}
	return c.Validate(req)
}
