package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair holds the opaque bearer credentials issued by the login endpoint.
// Invariant: a persisted pair always has both tokens set; a missing pair is
// represented as a nil *TokenPair, never as a half-filled value.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete reports whether both tokens are present.
func (p *TokenPair) Complete() bool {
	return p != nil && p.AccessToken != "" && p.RefreshToken != ""
}

// AccessExpiresAt decodes the access token without verifying its signature
// and returns the exp claim. The zero time is returned when the token is not
// a JWT or carries no expiry; the pair is still usable, the server remains
// the authority on validity.
func (p *TokenPair) AccessExpiresAt() time.Time {
	if p == nil || p.AccessToken == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(p.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
