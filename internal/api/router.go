package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/salonbook/salon-api/internal/api/handler"
	"github.com/salonbook/salon-api/internal/api/middleware"
	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

const welcomeMessage = "Welcome to the hair salon booking backend!"

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins   []string
	BodyLimit        string
	EnforceAdminRole bool
	// UploadDir is served under /uploads when set.
	UploadDir string
	// Registerer and Gatherer back the request metrics and /metrics; the
	// Prometheus defaults are used when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Deps are the use cases the routes delegate to.
type Deps struct {
	Auth         ports.AuthService
	Tokens       ports.TokenVerifier
	Reservations ports.ReservationService
	Proofs       ports.ProofStorage
	HealthChecks map[string]handler.HealthCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middleware.TokenHeader,
		},
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "salon",
		Registerer: registerer,
	}))

	// --- Public endpoints ---
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, welcomeMessage)
	})
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	auth := middleware.Auth(deps.Tokens)

	// --- Users ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	users := e.Group("/api/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/auth-test", authHandler.AuthTest, auth)

	// --- Reservations ---
	reservationHandler := handler.NewReservationHandler(deps.Reservations, deps.Proofs)
	reservations := e.Group("/api/reservations", auth)
	reservations.POST("", reservationHandler.Create)
	reservations.POST("/check-availability", reservationHandler.CheckAvailability)
	reservations.GET("/user", reservationHandler.ListMine)
	reservations.DELETE("/:id", reservationHandler.Cancel)

	var adminOnly []echo.MiddlewareFunc
	if opts.EnforceAdminRole {
		adminOnly = append(adminOnly, middleware.RBAC(domain.RoleAdmin))
	}
	reservations.GET("/admin", reservationHandler.ListAll, adminOnly...)
	reservations.PUT("/:id/status", reservationHandler.UpdateStatus, adminOnly...)

	return e
}

// requestLogger writes one access log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
