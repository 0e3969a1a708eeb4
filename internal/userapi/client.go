// Package userapi is a client for the remote user REST API.
package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/user-admin/user-admin/internal/metrics"
	"github.com/user-admin/user-admin/internal/users"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	retryDelay      = 200 * time.Millisecond
	maxBodySize     = 8 << 20 // 8 MiB

	opList   = "list"
	opSignup = "signup"
	opDelete = "delete"
	opLogin  = "login"
)

type Client struct {
	BaseURL  string
	Token    string
	Attempts uint
	HTTP     *http.Client
	Logger   *slog.Logger
}

// ListResult is one page of the list endpoint.
type ListResult struct {
	Users    []users.User
	Metadata users.Metadata
}

// SignupInput is the payload of the signup endpoint.
type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	State     string `json:"state"`
}

// SignupInputFromForm builds the signup payload from a submitted form.
func SignupInputFromForm(f users.Form, password string) SignupInput {
	f = f.Normalize()
	return SignupInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Role:      f.Role,
		Password:  password,
		Address:   f.Address,
		City:      f.City,
		Country:   f.Country,
		State:     f.State,
	}
}

// New creates a client for baseURL. A zero timeout uses the default.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("user api base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse user api base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("user api base URL must be http or https, got %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:  base,
		Attempts: defaultAttempts,
		HTTP:     &http.Client{Timeout: timeout},
	}, nil
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = strings.TrimSpace(token)
	return &cp
}

// List fetches one page of users. Transient failures are retried.
func (c *Client) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = users.DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	endpoint, err := c.endpoint("/api/user", q)
	if err != nil {
		return ListResult{}, err
	}

	var body []byte
	err = retry.Do(
		func() error {
			var doErr error
			body, doErr = c.do(ctx, opList, http.MethodGet, endpoint, nil)
			return doErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts()),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger().Debug("user api list retry", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return ListResult{}, err
	}
	return decodeList(body)
}

// Signup creates a user.
func (c *Client) Signup(ctx context.Context, in SignupInput) error {
	endpoint, err := c.endpoint("/api/user/signup", nil)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		Data SignupInput `json:"data"`
	}{Data: in})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, opSignup, http.MethodPost, endpoint, payload)
	return err
}

// Delete removes the user with id. A response with isSucess=false yields ErrDeleteRejected.
func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("user id is required")
	}
	endpoint, err := c.endpoint("/api/user/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, opDelete, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	var payload struct {
		IsSucess  *bool `json:"isSucess"`
		IsSuccess *bool `json:"isSuccess"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	ok := payload.IsSucess
	if ok == nil {
		ok = payload.IsSuccess
	}
	if ok == nil || !*ok {
		return ErrDeleteRejected
	}
	return nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	endpoint, err := c.endpoint("/api/user/login", nil)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(map[string]any{
		"data": map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, opLogin, http.MethodPost, endpoint, payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return "", ErrInvalidCredentials
			}
		}
		return "", err
	}
	var resp struct {
		AccessToken      string `json:"access_token"`
		AccessTokenCamel string `json:"accessToken"`
		Token            string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	for _, token := range []string{resp.AccessToken, resp.AccessTokenCamel, resp.Token} {
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}
	return "", ErrNoToken
}

func (c *Client) endpoint(path string, q url.Values) (string, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return "", errors.New("user api base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload []byte) ([]byte, error) {
	if c.HTTP == nil {
		return nil, errors.New("user api http client is not configured")
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "user-admin")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		return nil, fmt.Errorf("user api %s: %w", op, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("user api %s: read body: %w", op, err)
	}

	c.logger().Debug("user api request",
		"operation", op,
		"method", method,
		"url", safeURL(endpoint),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(op, endpoint, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) attempts() uint {
	if c.Attempts == 0 {
		return 1
	}
	return c.Attempts
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
