package authn

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/auth"
)

func TestSanitizeNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: "   ", want: ""},
		{name: "root", in: "/", want: ""},
		{name: "ok_path", in: "/users", want: "/users"},
		{name: "ok_path_query", in: "/users?page=2", want: "/users?page=2"},
		{name: "ok_root_query", in: "/?foo=bar", want: "/?foo=bar"},
		{name: "absolute_url", in: "https://evil.example/", want: ""},
		{name: "protocol_relative", in: "//evil.example/", want: ""},
		{name: "triple_slash", in: "///evil.example/", want: ""},
		{name: "backslash", in: "/\\evil.example/", want: ""},
		{name: "encoded_slash", in: "/%2f%2fevil.example/", want: ""},
		{name: "encoded_backslash", in: "/%5cevil.example/", want: ""},
		{name: "login_path", in: "/login", want: ""},
		{name: "login_subpath", in: "/login/reset", want: ""},
		{name: "newline", in: "/\n/evil", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeNext(tt.in); got != tt.want {
				t.Fatalf("SanitizeNext(%q)=%q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func newSessionContext(t *testing.T, method, target string) (*echo.Context, *httptest.ResponseRecorder, *scs.SessionManager) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := scs.New()
	ctx, err := sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("sessions.Load() error = %v", err)
	}
	c.SetRequest(req.WithContext(ctx))
	return c, rec, sessions
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "42",
		"email": "tony@gmail.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func okHandler(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireTokenRedirectsToLoginWithNext(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/users?page=2")

	if err := RequireToken(sessions, nil)(okHandler)(c); err != nil {
		t.Fatalf("RequireToken() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Fusers%3Fpage%3D2" {
		t.Fatalf("Location = %q", got)
	}
}

func TestRequireTokenAPIPathGetsJSON401(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/api/users")

	if err := RequireToken(sessions, nil)(okHandler)(c); err != nil {
		t.Fatalf("RequireToken() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), `"unauthorized"`) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRequireTokenHTMXGetsHXRedirect(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodPost, "http://example.com/users")
	c.Request().Header.Set("HX-Request", "true")

	if err := RequireToken(sessions, nil)(okHandler)(c); err != nil {
		t.Fatalf("RequireToken() error = %v", err)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Fatalf("HX-Redirect = %q, want /login", got)
	}
}

func TestRequireTokenPassesValidToken(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/users")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.Put(c.Request().Context(), auth.SessionKeyAccessToken, signedToken(t, now.Add(time.Hour)))

	var seen auth.Token
	handler := func(c *echo.Context) error {
		seen, _ = TokenFromContext(c)
		return okHandler(c)
	}
	if err := RequireToken(sessions, func() time.Time { return now })(handler)(c); err != nil {
		t.Fatalf("RequireToken() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if seen.Email != "tony@gmail.com" {
		t.Fatalf("token email = %q", seen.Email)
	}
}

func TestRequireTokenRejectsExpiredToken(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/users")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := c.Request().Context()
	sessions.Put(ctx, auth.SessionKeyAccessToken, signedToken(t, now.Add(-time.Minute)))

	if err := RequireToken(sessions, func() time.Time { return now })(okHandler)(c); err != nil {
		t.Fatalf("RequireToken() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if sessions.Exists(ctx, auth.SessionKeyAccessToken) {
		t.Fatalf("expired token still in session")
	}
}

func TestRequireGuestRedirectsSignedInVisitor(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/login")
	sessions.Put(c.Request().Context(), auth.SessionKeyAccessToken, "opaque-token")

	if err := RequireGuest(sessions, nil)(okHandler)(c); err != nil {
		t.Fatalf("RequireGuest() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireGuestLetsAnonymousThrough(t *testing.T) {
	c, rec, sessions := newSessionContext(t, http.MethodGet, "http://example.com/login")

	if err := RequireGuest(sessions, nil)(okHandler)(c); err != nil {
		t.Fatalf("RequireGuest() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
