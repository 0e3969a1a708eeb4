package handlers

import (
	"context"
	"encoding/gob"
	"fmt"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/users"
)

const sessionKeyRoster = "users_roster"

func init() {
	gob.Register(&users.Roster{})
}

func (h *Handlers) loadRoster(ctx context.Context) *users.Roster {
	roster, _ := h.Sessions.Get(ctx, sessionKeyRoster).(*users.Roster)
	return roster
}

func (h *Handlers) saveRoster(ctx context.Context, roster *users.Roster) {
	h.Sessions.Put(ctx, sessionKeyRoster, roster)
}

func (h *Handlers) dropRoster(ctx context.Context) {
	h.Sessions.Remove(ctx, sessionKeyRoster)
}

// ensureRoster returns the session roster, fetching it from the API on first use.
// A failed fetch leaves the session untouched so the next visit tries again.
func (h *Handlers) ensureRoster(c *echo.Context) (*users.Roster, error) {
	ctx := c.Request().Context()
	if roster := h.loadRoster(ctx); roster != nil {
		return roster, nil
	}

	limit := h.Cfg.FetchLimit
	if limit < 1 {
		limit = 1000
	}
	res, err := h.api(c).List(ctx, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	roster := users.NewRoster(res.Users, res.Metadata)
	h.saveRoster(ctx, roster)
	return roster, nil
}
