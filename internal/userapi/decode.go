package userapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/user-admin/user-admin/internal/users"
)

func decodeList(body []byte) (ListResult, error) {
	var payload struct {
		Data  []json.RawMessage `json:"data"`
		Limit json.RawMessage   `json:"limit"`
		Page  json.RawMessage   `json:"page"`
		Total json.RawMessage   `json:"total"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ListResult{}, fmt.Errorf("decode user list: %w", err)
	}

	out := ListResult{
		Users: make([]users.User, 0, len(payload.Data)),
		Metadata: users.Metadata{
			Limit: intField(payload.Limit),
			Page:  intField(payload.Page),
			Total: intField(payload.Total),
		},
	}
	for i, raw := range payload.Data {
		u, err := mapUser(raw)
		if err != nil {
			return ListResult{}, fmt.Errorf("decode user %d: %w", i, err)
		}
		out.Users = append(out.Users, u)
	}
	if out.Metadata.Total < len(out.Users) {
		out.Metadata.Total = len(out.Users)
	}
	return out, nil
}

func mapUser(raw json.RawMessage) (users.User, error) {
	var payload struct {
		ID             json.RawMessage `json:"_id"`
		NumericID      json.RawMessage `json:"id"`
		FirstName      string          `json:"first_name"`
		FirstNameCamel string          `json:"firstName"`
		LastName       string          `json:"last_name"`
		LastNameCamel  string          `json:"lastName"`
		FullName       string          `json:"full_name"`
		Email          string          `json:"email"`
		Address        json.RawMessage `json:"address"`
		City           string          `json:"city"`
		Country        string          `json:"country"`
		State          string          `json:"state"`
		Billing        json.RawMessage `json:"billing"`
		Role           string          `json:"role"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return users.User{}, err
	}

	u := users.User{
		ID:        stringField(payload.ID),
		FirstName: firstNonEmpty(payload.FirstName, payload.FirstNameCamel),
		LastName:  firstNonEmpty(payload.LastName, payload.LastNameCamel),
		FullName:  strings.TrimSpace(payload.FullName),
		Email:     strings.TrimSpace(payload.Email),
		Address:   addressField(payload.Address),
		City:      strings.TrimSpace(payload.City),
		Country:   strings.TrimSpace(payload.Country),
		State:     strings.TrimSpace(payload.State),
		Billing:   boolField(payload.Billing),
		Role:      strings.ToLower(strings.TrimSpace(payload.Role)),
	}

	numeric := stringField(payload.NumericID)
	if n, err := strconv.ParseInt(numeric, 10, 64); err == nil {
		u.LocalID = n
	} else if u.ID == "" {
		u.ID = numeric
	}
	return u, nil
}

// addressField accepts a flat string or an object with a name field.
func addressField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		return strings.TrimSpace(obj.Name)
	}
	return stringField(raw)
}

// stringField accepts a JSON string or number.
func stringField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func intField(raw json.RawMessage) int {
	s := stringField(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func boolField(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(stringField(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
