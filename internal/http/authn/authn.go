// Package authn gates routes on the access token stored in the session.
package authn

import (
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/auth"
)

const ContextKeyToken = "auth_token"

func TokenFromContext(c *echo.Context) (auth.Token, bool) {
	tok, ok := c.Get(ContextKeyToken).(auth.Token)
	return tok, ok
}

// LoadToken reads the session token. An expired token destroys the session and is
// reported as absent.
func LoadToken(c *echo.Context, sessions *scs.SessionManager, now time.Time) (auth.Token, bool, error) {
	ctx := c.Request().Context()
	raw := sessions.GetString(ctx, auth.SessionKeyAccessToken)
	if strings.TrimSpace(raw) == "" {
		return auth.Token{}, false, nil
	}
	tok := auth.ParseToken(raw)
	if !tok.Valid(now) {
		if err := sessions.Destroy(ctx); err != nil {
			return auth.Token{}, false, err
		}
		return auth.Token{}, false, nil
	}
	return tok, true, nil
}

// RequireToken lets the request through only when the session holds a valid token.
func RequireToken(sessions *scs.SessionManager, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			tok, ok, err := LoadToken(c, sessions, now())
			if err != nil {
				return err
			}
			if !ok {
				return handleUnauth(c)
			}
			c.Set(ContextKeyToken, tok)
			return next(c)
		}
	}
}

// RequireGuest sends signed-in visitors to the home page.
func RequireGuest(sessions *scs.SessionManager, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			_, ok, err := LoadToken(c, sessions, now())
			if err != nil {
				return err
			}
			if ok {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}

func isAPIRequest(c *echo.Context) bool {
	return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func handleUnauth(c *echo.Context) error {
	if isAPIRequest(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	location := "/login"
	if c.Request().Method == http.MethodGet {
		if next := SanitizeNext(c.Request().URL.RequestURI()); next != "" {
			location = "/login?next=" + url.QueryEscape(next)
		}
	}
	if strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true") {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// SanitizeNext returns next when it is a safe local redirect target, otherwise "".
// The bare root is dropped since it is the default destination anyway.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || len(next) > 2048 {
		return ""
	}
	if strings.IndexFunc(next, unicode.IsControl) >= 0 || strings.Contains(next, "\\") {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	decoded, err := url.PathUnescape(u.EscapedPath())
	if err != nil || strings.HasPrefix(decoded, "//") || strings.Contains(decoded, "\\") {
		return ""
	}
	if u.Path == "/" && u.RawQuery == "" {
		return ""
	}
	if u.Path == "/login" || strings.HasPrefix(u.Path, "/login/") {
		return ""
	}
	return next
}
