package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/auth"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/http/authn"
	"github.com/user-admin/user-admin/internal/logging"
	"github.com/user-admin/user-admin/internal/userapi"
	"github.com/user-admin/user-admin/internal/users"
)

type fakeUserAPI struct {
	mu sync.Mutex

	listResult userapi.ListResult
	listErr    error
	listCalls  int

	signupErr error
	signups   []userapi.SignupInput

	deleteErr error
	deleted   []string

	loginToken string
	loginErr   error

	tokens []string
}

func (f *fakeUserAPI) factory() UserAPIFactory {
	return func(token string) UserAPI {
		f.mu.Lock()
		f.tokens = append(f.tokens, token)
		f.mu.Unlock()
		return f
	}
}

func (f *fakeUserAPI) List(_ context.Context, _, _ int) (userapi.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return userapi.ListResult{}, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeUserAPI) Signup(_ context.Context, in userapi.SignupInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, in)
	return f.signupErr
}

func (f *fakeUserAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeUserAPI) Login(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginToken, f.loginErr
}

func seedUsers(n int) []users.User {
	out := make([]users.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, users.User{
			ID:        fmt.Sprintf("id-%d", i),
			FirstName: fmt.Sprintf("Firstname%d", i),
			LastName:  fmt.Sprintf("Lastname%d", i),
			Email:     fmt.Sprintf("user%d@example.com", i),
			Address:   "12 Phan Xich Long",
			City:      "Ho Chi Minh",
			Country:   "VN",
			State:     "Q1",
			Role:      "member",
		})
	}
	return out
}

func listOf(n int) userapi.ListResult {
	return userapi.ListResult{
		Users:    seedUsers(n),
		Metadata: users.Metadata{Limit: 1000, Page: 1, Total: n},
	}
}

func validFormValues() url.Values {
	return url.Values{
		users.FieldFirstName: {"Antonio"},
		users.FieldLastName:  {"Nguyenn"},
		users.FieldEmail:     {"tony@gmail.com"},
		users.FieldAddress:   {"1 Le Loi"},
		users.FieldCity:      {"Ho Chi Minh"},
		users.FieldCountry:   {"VN"},
		users.FieldState:     {"Phu Nhuan"},
		users.FieldRole:      {"admin"},
		users.FieldBilling:   {"true"},
	}
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testEnv is one signed-in browser session against a fake API.
type testEnv struct {
	t        *testing.T
	api      *fakeUserAPI
	h        *Handlers
	sessions *scs.SessionManager
	ctx      context.Context
}

func newTestEnv(t *testing.T, api *fakeUserAPI) *testEnv {
	t.Helper()

	sessions := scs.New()
	ctx, err := sessions.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("sessions.Load() error = %v", err)
	}
	sessions.Put(ctx, auth.SessionKeyAccessToken, "opaque-token")

	return &testEnv{
		t:        t,
		api:      api,
		sessions: sessions,
		ctx:      ctx,
		h: &Handlers{
			Cfg:      config.Config{PageSize: 5, FetchLimit: 1000, SignupDefaultPassword: "123456"},
			API:      api.factory(),
			Sessions: sessions,
			Logger:   logging.Discard(),
			Now:      func() time.Time { return testNow },
		},
	}
}

// request builds a signed-in context sharing the environment's session.
func (env *testEnv) request(method, target string, form url.Values) (*echo.Context, *httptest.ResponseRecorder) {
	env.t.Helper()

	e := echo.New()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(env.ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(authn.ContextKeyToken, auth.ParseToken("opaque-token"))
	return c, rec
}

func (env *testEnv) roster() *users.Roster {
	return env.h.loadRoster(env.ctx)
}
