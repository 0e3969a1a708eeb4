package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/http/authn"
	"github.com/user-admin/user-admin/internal/http/handlers"
)

const sessionCookieName = "user_admin_session"

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h      *handlers.Handlers
	e      *echo.Echo
	logger *slog.Logger
	server *http.Server
}

// NewSessionManager builds the cookie-backed session store used for access tokens
// and the per-session roster.
func NewSessionManager(cfg config.Config) *scs.SessionManager {
	sessions := scs.New()
	if cfg.SessionLifetime > 0 {
		sessions.Lifetime = cfg.SessionLifetime
	}
	sessions.Cookie.Name = sessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.Path = "/"
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.AuthCookieSecure
	return sessions
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(cfg config.Config, api handlers.UserAPIFactory, logger *slog.Logger) (*EchoServer, error) {
	if api == nil {
		return nil, errors.New("user api client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers.Handlers{
		Cfg:      cfg,
		API:      api,
		Sessions: NewSessionManager(cfg),
		Logger:   logger,
	}
	e := echo.New()
	e.Logger = logger

	es := &EchoServer{
		h:      h,
		e:      e,
		logger: logger,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           e,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	e.HTTPErrorHandler = es.httpErrorHandler
	es.registerMiddleware()
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerMiddleware() {
	es.e.Use(requestID())
	es.e.Use(middleware.Recover())
	es.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			es.logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	site := es.e.Group("")
	site.Use(echo.WrapMiddleware(es.h.Sessions.LoadAndSave))
	site.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   es.h.Cfg.AuthCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	guest := site.Group("")
	guest.Use(authn.RequireGuest(es.h.Sessions, es.h.Now))
	guest.GET("/login", es.h.HandleLoginGet)
	guest.POST("/login", es.h.HandleLoginPost)

	authed := site.Group("")
	authed.Use(authn.RequireToken(es.h.Sessions, es.h.Now))
	authed.GET("/", es.h.HandleRoot)
	authed.GET("/users", es.h.HandleUsers)
	authed.POST("/users", es.h.HandleUserCreate)
	authed.POST("/users/refresh", es.h.HandleUsersRefresh)
	authed.POST("/users/:key", es.h.HandleUserUpdate)
	authed.POST("/users/:key/delete", es.h.HandleUserDelete)
	authed.GET("/api/users", es.h.HandleUsersAPI)
	authed.POST("/logout", es.h.HandleLogoutPost)
}

// Handler exposes the router, mainly for tests.
func (es *EchoServer) Handler() http.Handler {
	return es.e
}

// Serve accepts connections on the configured address until Shutdown is called. It
// returns nil after a clean shutdown, including one that happened before Serve ran.
func (es *EchoServer) Serve() error {
	es.logger.Info("listening", "addr", es.server.Addr)
	if err := es.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	return es.server.Shutdown(ctx)
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

type statusCoder interface {
	StatusCode() int
}

func httpStatusFromError(err error) int {
	code := 0
	var coder statusCoder
	var he *echo.HTTPError
	switch {
	case errors.As(err, &coder):
		code = coder.StatusCode()
	case errors.As(err, &he):
		code = he.Code
	}
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusInternalServerError
}

func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRequestID))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.Set(handlers.ContextKeyRequestID, id)
			return next(c)
		}
	}
}
