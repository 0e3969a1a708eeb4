package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/auth"
	"github.com/user-admin/user-admin/internal/http/authn"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
	"github.com/user-admin/user-admin/internal/http/views"
	"github.com/user-admin/user-admin/internal/userapi"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgLoginUnavailable   = "Login service unavailable."
)

func (h *Handlers) HandleLoginGet(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	data := viewmodels.LoginViewData{
		Layout: h.LayoutData(c, "Sign in"),
		Next:   authn.SanitizeNext(c.QueryParam("next")),
	}
	return h.RenderComponent(c, views.LoginPage(data))
}

func (h *Handlers) HandleLoginPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	ctx := c.Request().Context()
	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	next := authn.SanitizeNext(c.FormValue("next"))

	data := viewmodels.LoginViewData{
		Layout: h.LayoutData(c, "Sign in"),
		Email:  email,
		Next:   next,
	}

	if email == "" || strings.TrimSpace(password) == "" {
		data.ErrorMessage = msgInvalidCredentials
		return h.RenderComponent(c, views.LoginPage(data))
	}

	token, err := h.API("").Login(ctx, email, password)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, userapi.ErrInvalidCredentials) {
			data.ErrorMessage = msgInvalidCredentials
		} else {
			h.logger().Warn("login failed", "email", email, "error", err)
			data.ErrorMessage = msgLoginUnavailable
		}
		return h.RenderComponent(c, views.LoginPage(data))
	}

	if err := h.Sessions.RenewToken(ctx); err != nil {
		return err
	}
	h.Sessions.Put(ctx, auth.SessionKeyAccessToken, token)
	h.dropRoster(ctx)

	if next != "" {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
		return err
	}
	setFlashToast(c, toastSuccess(toastSignedOut))
	return redirectTo(c, "/login")
}
