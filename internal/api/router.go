package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clothify/storefront/docs"
	"github.com/clothify/storefront/internal/api/handler"
	"github.com/clothify/storefront/internal/api/middleware"
	"github.com/clothify/storefront/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Products ports.ProductService

	Cookie handler.CookieConfig
	// AuthRateLimit is the number of login or register calls allowed per IP
	// per minute.
	AuthRateLimit int
	Readiness     map[string]handler.DependencyCheck

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	guard := middleware.NewGuard(d.Auth, d.Cookie.Name)
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	productHandler := handler.NewProductHandler(d.Products)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, rateLimit(d.AuthRateLimit))
	auth.POST("/login", authHandler.Login, rateLimit(d.AuthRateLimit))
	auth.POST("/logout", authHandler.Logout, guard.Authenticated())
	auth.GET("/session", authHandler.Session)

	// --- Catalog routes ---
	v1 := e.Group("/v1")
	v1.GET("/products", productHandler.List, guard.Public())
	v1.GET("/products/:id", productHandler.Get, guard.Public())
	v1.POST("/products", productHandler.Create, guard.Admin())
	v1.PUT("/products/:id", productHandler.Update, guard.Admin())
	v1.DELETE("/products/:id", productHandler.Delete, guard.Admin())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// rateLimit caps requests per client IP over a one minute window. Each call
// returns an independent limiter.
func rateLimit(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = 20
	}
	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}` + "\n"))
		}),
	)
	return echo.WrapMiddleware(limiter)
}
