package main

import (
	"log/slog"
	"strings"

	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/userapi"
)

// newAPIClient builds the user API client from configuration. The configured token,
// if any, is used for calls made without a session token.
func newAPIClient(cfg config.Config, logger *slog.Logger) (*userapi.Client, error) {
	client, err := userapi.New(cfg.UserAPIBaseURL, cfg.UserAPITimeout)
	if err != nil {
		return nil, err
	}
	if cfg.UserAPIRetries > 0 {
		client.Attempts = cfg.UserAPIRetries
	}
	client.Logger = logger
	if token := strings.TrimSpace(cfg.UserAPIToken); token != "" {
		client = client.WithToken(token)
	}
	return client, nil
}
