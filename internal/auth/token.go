// Package auth inspects the access token issued by the user API.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionKeyAccessToken is the session key holding the access token.
const SessionKeyAccessToken = "access_token"

// Token is what the console knows about an access token. Opaque tokens carry no
// claims; JWTs expose their subject, email and expiry without signature verification,
// which stays the API's job.
type Token struct {
	Raw       string
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ParseToken inspects raw. It never fails: a token that does not parse as a JWT is
// treated as opaque.
func ParseToken(raw string) Token {
	raw = strings.TrimSpace(raw)
	tok := Token{Raw: raw}
	if raw == "" {
		return tok
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return tok
	}
	if sub, err := claims.GetSubject(); err == nil {
		tok.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tok.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		tok.Email = strings.TrimSpace(email)
	}
	return tok
}

// Valid reports whether the token is present and not expired at now.
func (t Token) Valid(now time.Time) bool {
	if t.Raw == "" {
		return false
	}
	if !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt) {
		return false
	}
	return true
}

// Label is a short principal description for the page header.
func (t Token) Label() string {
	switch {
	case t.Email != "":
		return t.Email
	case t.Subject != "":
		return t.Subject
	default:
		return "Signed in"
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
