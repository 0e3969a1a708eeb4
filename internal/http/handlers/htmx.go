package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v5"
)

func isHX(c *echo.Context) bool {
	if c == nil || c.Request() == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true")
}

// redirectTo sends the client to location after a form post: htmx requests get an
// HX-Redirect header, everything else a 303.
func redirectTo(c *echo.Context, location string) error {
	addVary(c, "HX-Request")
	if isHX(c) {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// addVary merges header names into Vary without duplicates. A "*" already present wins.
func addVary(c *echo.Context, names ...string) {
	if c == nil || len(names) == 0 {
		return
	}
	header := c.Response().Header()

	var merged []string
	for _, line := range append(header.Values(echo.HeaderVary), names...) {
		for _, token := range strings.Split(line, ",") {
			token = strings.TrimSpace(token)
			switch {
			case token == "":
				continue
			case token == "*":
				header.Set(echo.HeaderVary, "*")
				return
			}
			token = http.CanonicalHeaderKey(token)
			if !slices.ContainsFunc(merged, func(s string) bool { return strings.EqualFold(s, token) }) {
				merged = append(merged, token)
			}
		}
	}
	if len(merged) > 0 {
		header.Set(echo.HeaderVary, strings.Join(merged, ", "))
	}
}
