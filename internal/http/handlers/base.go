// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/http/authn"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
	"github.com/user-admin/user-admin/internal/userapi"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// UserAPI is the part of the remote user API the handlers call.
type UserAPI interface {
	List(ctx context.Context, page, limit int) (userapi.ListResult, error)
	Signup(ctx context.Context, in userapi.SignupInput) error
	Delete(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// UserAPIFactory returns a client authenticated with token. An empty token yields an
// anonymous client.
type UserAPIFactory func(token string) UserAPI

// ClientFactory adapts a userapi.Client to a UserAPIFactory.
func ClientFactory(client *userapi.Client) UserAPIFactory {
	return func(token string) UserAPI {
		if strings.TrimSpace(token) == "" {
			return client
		}
		return client.WithToken(token)
	}
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	API      UserAPIFactory
	Sessions *scs.SessionManager
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handlers) pageSize() int {
	if h.Cfg.PageSize > 0 {
		return h.Cfg.PageSize
	}
	return 5
}

// api returns a client carrying the token of the current request.
func (h *Handlers) api(c *echo.Context) UserAPI {
	token := ""
	if tok, ok := authn.TokenFromContext(c); ok {
		token = tok.Raw
	}
	return h.API(token)
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string) viewmodels.LayoutData {
	csrfToken, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	layout := viewmodels.LayoutData{
		Title:      title,
		CSRFToken:  csrfToken,
		Toast:      popFlashToast(c),
		ActivePath: c.Request().URL.Path,
	}
	if tok, ok := authn.TokenFromContext(c); ok {
		layout.SignedIn = true
		layout.UserLabel = tok.Label()
	}
	return layout
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
		if req.URL != nil {
			path = req.URL.Path
		}
	}
	h.logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// ParseBoolForm parses a form value as a boolean.
func ParseBoolForm(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// HandleHealthz reports liveness.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
