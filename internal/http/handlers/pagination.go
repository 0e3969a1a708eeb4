package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
	"github.com/user-admin/user-admin/internal/http/views"
	"github.com/user-admin/user-admin/internal/users"
)

func parsePageParam(c *echo.Context) int {
	page := 1
	if rawPage := strings.TrimSpace(c.QueryParam("page")); rawPage != "" {
		if parsed, err := strconv.Atoi(rawPage); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

func paginationView(w users.Window) viewmodels.PaginationView {
	view := viewmodels.PaginationView{
		Page:        w.Page,
		PageCount:   w.PageCount,
		Total:       w.Total,
		ShowingFrom: w.ShowingFrom,
		ShowingTo:   w.ShowingTo,
		HasPrev:     w.HasPrev(),
		HasNext:     w.HasNext(),
	}
	if view.HasPrev {
		view.PrevHref = views.UsersListURL(w.Page-1, "")
	}
	if view.HasNext {
		view.NextHref = views.UsersListURL(w.Page+1, "")
	}
	view.Pages = make([]viewmodels.PageLink, 0, w.PageCount)
	for n := 1; n <= w.PageCount; n++ {
		view.Pages = append(view.Pages, viewmodels.PageLink{
			Number:  n,
			Href:    views.UsersListURL(n, ""),
			Current: n == w.Page,
		})
	}
	return view
}
