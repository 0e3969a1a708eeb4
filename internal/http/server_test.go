package httpapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/http/handlers"
	"github.com/user-admin/user-admin/internal/logging"
	"github.com/user-admin/user-admin/internal/userapi"
	"github.com/user-admin/user-admin/internal/users"
)

type stubAPI struct {
	token string
}

func (s *stubAPI) List(context.Context, int, int) (userapi.ListResult, error) {
	return userapi.ListResult{
		Users: []users.User{{
			ID:        "abc",
			FirstName: "Antonio",
			LastName:  "Nguyenn",
			Email:     "tony@gmail.com",
		}},
		Metadata: users.Metadata{Limit: 1000, Page: 1, Total: 1},
	}, nil
}

func (s *stubAPI) Signup(context.Context, userapi.SignupInput) error { return nil }
func (s *stubAPI) Delete(context.Context, string) error             { return nil }

func (s *stubAPI) Login(_ context.Context, email, password string) (string, error) {
	if email == "tony@gmail.com" && password == "secret" {
		return s.token, nil
	}
	return "", userapi.ErrInvalidCredentials
}

func newTestServer(t *testing.T) *EchoServer {
	t.Helper()

	api := &stubAPI{token: "opaque-token"}
	es, err := NewEchoServer(config.Config{
		SessionLifetime: time.Hour,
		PageSize:        5,
		FetchLimit:      1000,
	}, func(string) handlers.UserAPI { return api }, logging.Discard())
	if err != nil {
		t.Fatalf("NewEchoServer() error = %v", err)
	}
	return es
}

func newErrorTestServer() (*EchoServer, *echo.Echo) {
	e := echo.New()
	e.Logger = logging.Discard()
	return &EchoServer{h: &handlers.Handlers{Logger: logging.Discard()}, e: e, logger: logging.Discard()}, e
}

func serve(es *EchoServer, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	es.Handler().ServeHTTP(rec, req)
	return rec
}

// mergeCookies keeps the latest value for each cookie name.
func mergeCookies(jar []*http.Cookie, fresh []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(jar)+len(fresh))
	seen := map[string]bool{}
	for _, c := range fresh {
		seen[c.Name] = true
		if c.MaxAge >= 0 {
			out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	for _, c := range jar {
		if !seen[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

var csrfFieldRe = regexp.MustCompile(`name="csrf" value="([^"]+)"`)

func TestNewEchoServerRequiresAPI(t *testing.T) {
	if _, err := NewEchoServer(config.Config{}, nil, logging.Discard()); err == nil {
		t.Fatalf("NewEchoServer(nil api) error = nil")
	}
}

func newListeningTestServer(t *testing.T) *EchoServer {
	t.Helper()

	es, err := NewEchoServer(config.Config{HTTPAddr: "127.0.0.1:0", SessionLifetime: time.Hour},
		func(string) handlers.UserAPI { return &stubAPI{} }, logging.Discard())
	if err != nil {
		t.Fatalf("NewEchoServer() error = %v", err)
	}
	return es
}

func waitServe(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve() still running after Shutdown")
	}
}

func TestServeReturnsWhenShutdownRanFirst(t *testing.T) {
	es := newListeningTestServer(t)

	if err := es.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- es.Serve() }()
	waitServe(t, done)
}

func TestServeStopsOnShutdown(t *testing.T) {
	es := newListeningTestServer(t)

	done := make(chan error, 1)
	go func() { done <- es.Serve() }()

	// Shutdown may land before or after ListenAndServe starts; both must end Serve.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := es.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	waitServe(t, done)
}

func TestHealthz(t *testing.T) {
	es := newTestServer(t)

	rec := serve(es, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	es := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-abc")
	rec := serve(es, req, nil)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "req-abc" {
		t.Fatalf("X-Request-ID = %q, want req-abc", got)
	}
}

func TestAuthenticatedRoutesRedirectToLogin(t *testing.T) {
	es := newTestServer(t)

	rec := serve(es, httptest.NewRequest(http.MethodGet, "/users?page=2", nil), nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Fusers%3Fpage%3D2" {
		t.Fatalf("Location = %q", got)
	}

	rec = serve(es, httptest.NewRequest(http.MethodGet, "/api/users", nil), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestFormPostWithoutCSRFIsRejected(t *testing.T) {
	es := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a&password=b"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := serve(es, req, nil)
	if rec.Code < 400 || rec.Code >= 500 {
		t.Fatalf("status = %d, want 4xx", rec.Code)
	}
}

func TestLoginFlowReachesUsersPage(t *testing.T) {
	es := newTestServer(t)

	rec := serve(es, httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /login status = %d", rec.Code)
	}
	jar := mergeCookies(nil, rec.Result().Cookies())
	match := csrfFieldRe.FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatalf("login page missing csrf field")
	}

	form := url.Values{"email": {"tony@gmail.com"}, "password": {"secret"}, "csrf": {match[1]}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = serve(es, req, jar)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("POST /login status = %d location = %q body = %q", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}
	jar = mergeCookies(jar, rec.Result().Cookies())

	rec = serve(es, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/users" {
		t.Fatalf("GET / status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = serve(es, httptest.NewRequest(http.MethodGet, "/users", nil), jar)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /users status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tony@gmail.com") {
		t.Fatalf("users page missing fetched record")
	}

	rec = serve(es, httptest.NewRequest(http.MethodGet, "/login", nil), jar)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("guest page with token: status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHTTPErrorHandlerInternalErrorIsGeneric(t *testing.T) {
	es, e := newErrorTestServer()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handlers.ContextKeyRequestID, "req-123")

	es.httpErrorHandler(c, errors.New("very sensitive error"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusInternalServerError)
	}

	body := rec.Body.String()
	if strings.Contains(body, "very sensitive") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Fatalf("response missing generic message: %q", body)
	}
	if !strings.Contains(body, "Reference: req-123") {
		t.Fatalf("response missing request reference: %q", body)
	}
	if !strings.Contains(body, "Code: "+handlers.InternalErrorCode) {
		t.Fatalf("response missing error code: %q", body)
	}
}

func TestHTTPErrorHandlerNotFoundDoesNotLeakMessage(t *testing.T) {
	es, e := newErrorTestServer()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es.httpErrorHandler(c, echo.NewHTTPError(http.StatusNotFound, "leaky not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNotFound)
	}

	body := rec.Body.String()
	if strings.Contains(body, "leaky") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if !strings.Contains(body, "404 page not found") {
		t.Fatalf("response missing not found message: %q", body)
	}
}

func TestHTTPErrorHandlerEchoErrNotFoundUsesNotFoundStatus(t *testing.T) {
	es, e := newErrorTestServer()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es.httpErrorHandler(c, echo.ErrNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "404 page not found") {
		t.Fatalf("response missing not found message: %q", rec.Body.String())
	}
}

func TestHTTPStatusFromErrorUsesStatusCoder(t *testing.T) {
	if got := httpStatusFromError(echo.ErrNotFound); got != http.StatusNotFound {
		t.Fatalf("status=%d want %d", got, http.StatusNotFound)
	}
	if got := httpStatusFromError(echo.ErrForbidden); got != http.StatusForbidden {
		t.Fatalf("status=%d want %d", got, http.StatusForbidden)
	}
	if got := httpStatusFromError(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status=%d want %d", got, http.StatusInternalServerError)
	}
}

func TestHTTPErrorHandlerBadRequestUsesStatusText(t *testing.T) {
	es, e := newErrorTestServer()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/bad", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	es.httpErrorHandler(c, echo.NewHTTPError(http.StatusBadRequest, "leaky bad request"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusBadRequest)
	}

	body := rec.Body.String()
	if strings.Contains(body, "leaky") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if got := strings.TrimSpace(body); got != http.StatusText(http.StatusBadRequest) {
		t.Fatalf("body=%q want %q", got, http.StatusText(http.StatusBadRequest))
	}
}
