package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
)

// The toast survives exactly one redirect: it is written on the POST and cleared by
// the next page render.
const (
	flashToastCookieName = "ua_toast"
	flashToastMaxAge     = 30
)

var toastCategories = []string{"success", "error", "warning", "info"}

func toastSuccess(title string) viewmodels.ToastViewData {
	return viewmodels.ToastViewData{Category: "success", Title: title}
}

func toastError(title string) viewmodels.ToastViewData {
	return viewmodels.ToastViewData{Category: "error", Title: title}
}

func cleanToast(toast viewmodels.ToastViewData) (viewmodels.ToastViewData, bool) {
	toast.Category = strings.ToLower(strings.TrimSpace(toast.Category))
	if !slices.Contains(toastCategories, toast.Category) {
		toast.Category = "info"
	}
	toast.Title = strings.TrimSpace(toast.Title)
	toast.Description = strings.TrimSpace(toast.Description)
	return toast, toast.Title != "" || toast.Description != ""
}

func flashToastCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashToastCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func setFlashToast(c *echo.Context, toast viewmodels.ToastViewData) {
	toast, ok := cleanToast(toast)
	if !ok {
		return
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}
	c.SetCookie(flashToastCookie(base64.RawURLEncoding.EncodeToString(payload), flashToastMaxAge))
}

func popFlashToast(c *echo.Context) *viewmodels.ToastViewData {
	cookie, err := c.Cookie(flashToastCookieName)
	if err != nil || cookie == nil {
		return nil
	}
	c.SetCookie(flashToastCookie("", -1))

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var toast viewmodels.ToastViewData
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return nil
	}
	return &toast
}
