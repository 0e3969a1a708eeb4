// Package users holds the user record model, the add/edit form and the per-session
// roster that backs the users page.
package users

import (
	"strconv"
	"strings"
)

// User is one row of the users table.
type User struct {
	ID        string // server-assigned id, empty for records appended locally
	LocalID   int64  // numeric id; creation time in ms for local records
	FirstName string
	LastName  string
	FullName  string
	Email     string
	Address   string
	City      string
	Country   string
	State     string
	Billing   bool
	Role      string
}

// Key identifies the record for edit and delete actions.
func (u User) Key() string {
	if id := strings.TrimSpace(u.ID); id != "" {
		return id
	}
	if u.LocalID != 0 {
		return strconv.FormatInt(u.LocalID, 10)
	}
	return ""
}

// DisplayName prefers first/last name and falls back to the legacy full name.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(u.FullName)
}
