package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/otel/trace"

	"github.com/medicare/hospital-system/internal/api/handler"
	"github.com/medicare/hospital-system/internal/api/middleware"
	"github.com/medicare/hospital-system/internal/core/domain"
	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/observability"
)

const basePath = "/api/v1"

// Services are the use cases the router exposes.
type Services struct {
	Accounts     ports.AccountService
	Appointments ports.AppointmentService
}

// Options carries the router's collaborators and settings.
type Options struct {
	Tokens      middleware.TokenVerifier
	Revocations middleware.RevocationChecker
	Health      map[string]handler.Pinger

	AllowedOrigins   []string
	CookieExpireDays int
	MaxAvatarBytes   int64

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
	TracerProvider trace.TracerProvider

	Logger zerolog.Logger
}

// NewRouter builds the Echo instance with all middleware and routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit(opts.MaxAvatarBytes)))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "hospital",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(observability.Tracing(opts.TracerProvider))

	// --- Dependencies ---
	sessions := handler.NewSessionBinder(opts.CookieExpireDays)
	accounts := handler.NewAccountHandler(svc.Accounts, sessions, opts.MaxAvatarBytes)
	appointments := handler.NewAppointmentHandler(svc.Appointments)

	adminOnly := []echo.MiddlewareFunc{
		middleware.Auth(opts.Tokens, opts.Revocations, middleware.AuthConfig{CookieName: handler.AdminCookie, Subject: "Admin"}),
		middleware.RBAC(domain.RoleAdmin),
	}
	patientOnly := []echo.MiddlewareFunc{
		middleware.Auth(opts.Tokens, opts.Revocations, middleware.AuthConfig{CookieName: handler.PatientCookie, Subject: "User"}),
		middleware.RBAC(domain.RolePatient),
	}

	v1 := e.Group(basePath)

	// --- Account routes ---
	user := v1.Group("/user")
	user.POST("/patient/register", accounts.RegisterPatient)
	user.POST("/login", accounts.Login)
	user.GET("/doctors", accounts.ListDoctors)
	user.POST("/admin/addnew", accounts.AddAdmin, adminOnly...)
	user.POST("/doctor/addnew", accounts.AddDoctor, adminOnly...)
	user.GET("/admin/me", accounts.Me, adminOnly...)
	user.GET("/patient/me", accounts.Me, patientOnly...)
	user.GET("/admin/logout", accounts.AdminLogout, adminOnly...)
	user.GET("/patient/logout", accounts.PatientLogout, patientOnly...)

	// --- Appointment routes ---
	appt := v1.Group("/appointment")
	appt.POST("/post", appointments.Post, patientOnly...)
	appt.GET("/getall", appointments.List, adminOnly...)
	appt.GET("/me", appointments.Mine, patientOnly...)
	appt.PUT("/update/:id", appointments.Update, adminOnly...)
	appt.DELETE("/delete/:id", appointments.Delete, adminOnly...)

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(opts.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// bodyLimit leaves room for the form fields that travel with an avatar.
func bodyLimit(maxAvatarBytes int64) string {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = 5 << 20
	}
	return fmt.Sprintf("%dK", maxAvatarBytes/1024+1024)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			if traceID := observability.TraceID(c.Request().Context()); traceID != "" {
				ev = ev.Str("trace_id", traceID)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// NewServer wraps the router in an http.Server with conservative timeouts.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
