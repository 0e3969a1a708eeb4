package views

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

var funcs = template.FuncMap{
	"formatInt":  FormatInt,
	"toastClass": ToastClass,
	"orDash":     OrDash,
}

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

func OrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func ToastClass(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "success", "error", "warning":
		return "toast toast-" + strings.ToLower(strings.TrimSpace(category))
	default:
		return "toast toast-info"
	}
}

// UsersListURL builds the users page URL for a page number and optional edit key.
func UsersListURL(page int, editKey string) string {
	values := url.Values{}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if editKey = strings.TrimSpace(editKey); editKey != "" {
		values.Set("edit", editKey)
	}
	if len(values) == 0 {
		return "/users"
	}
	return "/users?" + values.Encode()
}
